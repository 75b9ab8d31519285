package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hookfang/internal/lsp"
	"github.com/Sumatoshi-tech/hookfang/internal/observability"
	"github.com/Sumatoshi-tech/hookfang/pkg/version"
)

// NewLSPCommand creates the stdio language server command.
func NewLSPCommand(globals *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start a language server publishing import diagnostics (stdio)",
		Long: `Start a Language Server Protocol server on stdio. Open, changed, and
saved Python documents are analyzed for nested imports and the findings are
published as diagnostics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := globals.loadConfig()
			if err != nil {
				return err
			}

			obsCfg := observability.DefaultConfig()
			obsCfg.ServiceVersion = version.Version
			obsCfg.Mode = observability.ModeLSP
			obsCfg.LogJSON = true

			if globals.Verbose {
				obsCfg.LogLevel = slog.LevelDebug
			}

			providers, err := observability.Init(obsCfg)
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			// The LSP session owns stdout; logs go to stderr only.
			slog.SetDefault(providers.Logger)

			providers.Logger.Info("language server starting", "version", version.Version, "pid", os.Getpid())

			return lsp.NewServer(cfg, providers.Logger).Run()
		},
	}
}

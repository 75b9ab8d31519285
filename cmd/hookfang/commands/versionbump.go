package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hookfang/internal/config"
	"github.com/Sumatoshi-tech/hookfang/internal/runner"
)

// NewVersionBumpCommand creates the version-bump check command.
func NewVersionBumpCommand(globals *Globals) *cobra.Command {
	var noFallback bool

	cmd := &cobra.Command{
		Use:   "version-bump [files...]",
		Short: "Verify the project version was bumped alongside code changes",
		Long: `Diff the tracked version files against the upstream tip and fail when
project code changed but no version line did. Without an upstream the parent
of HEAD is used unless --no-fallback is set.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			cfg, err := globals.loadConfig()
			if err != nil {
				return err
			}

			cfg.Hooks = []string{config.HookVersionBump}

			if noFallback {
				cfg.VersionBump.UpstreamFallback = false
			}

			return runHooks(cobraCmd.Context(), globals, cfg, runner.Options{NoColor: globals.NoColor}, args)
		},
	}

	cmd.Flags().BoolVar(&noFallback, "no-fallback", false, "do not fall back to the parent of HEAD when no upstream exists")

	return cmd
}

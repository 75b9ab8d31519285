package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hookfang/internal/config"
	"github.com/Sumatoshi-tech/hookfang/internal/runner"
)

// NewImportsCommand creates the nested-imports check command.
func NewImportsCommand(globals *Globals) *cobra.Command {
	var skipModules []string

	cmd := &cobra.Command{
		Use:   "imports [files...]",
		Short: "Report imports nested below module top level",
		Long: `Check Python files for imports placed inside functions, classes,
conditionals, or exception handlers. Imports guarded by TYPE_CHECKING,
optional-dependency fallbacks, and suppressed lines are exempt. Without
arguments the staged files of the enclosing repository are checked.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			cfg, err := globals.loadConfig()
			if err != nil {
				return err
			}

			cfg.Hooks = []string{config.HookImports}

			if len(skipModules) > 0 {
				cfg.Imports.SkipModules = append(cfg.Imports.SkipModules, skipModules...)
			}

			return runHooks(cobraCmd.Context(), globals, cfg, runner.Options{NoColor: globals.NoColor}, args)
		},
	}

	cmd.Flags().StringSliceVarP(&skipModules, "skip-modules", "s", nil, "module paths whose nested imports are ignored")

	return cmd
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hookfang/internal/config"
	"github.com/Sumatoshi-tech/hookfang/internal/runner"
)

// NewCopyrightCommand creates the copyright-header check command.
func NewCopyrightCommand(globals *Globals) *cobra.Command {
	var (
		owner    string
		noUpdate bool
	)

	cmd := &cobra.Command{
		Use:   "copyright [files...]",
		Short: "Verify and refresh copyright headers",
		Long: `Check the leading bytes of each file for a copyright line naming the
configured owner, with the year taken from the last commit touching the
file. Stale or missing headers are rewritten in place unless --no-update is
set; rewritten files must be restaged.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			cfg, err := globals.loadConfig()
			if err != nil {
				return err
			}

			cfg.Hooks = []string{config.HookCopyright}

			if owner != "" {
				cfg.Copyright.Owner = owner
			}

			if noUpdate {
				cfg.Copyright.Update = false
			}

			return runHooks(cobraCmd.Context(), globals, cfg, runner.Options{NoColor: globals.NoColor}, args)
		},
	}

	cmd.Flags().StringVarP(&owner, "owner", "o", "", "copyright owner named in the header")
	cmd.Flags().BoolVarP(&noUpdate, "no-update", "n", false, "report stale headers without rewriting them")

	return cmd
}

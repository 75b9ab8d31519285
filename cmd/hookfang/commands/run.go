package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hookfang/internal/runner"
)

// NewRunCommand creates the all-hooks runner command.
func NewRunCommand(globals *Globals) *cobra.Command {
	var (
		jobs       int
		reportPath string
		cacheDir   string
	)

	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Run all configured hooks over the files",
		Long: `Run every hook enabled in the configuration. Python files fan out over
a worker pool for the imports check; repository-level hooks run once. The
summary table reports files, clean files, findings, parse failures, and
duration, with an optional HTML report and result cache.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			cfg, err := globals.loadConfig()
			if err != nil {
				return err
			}

			opts := runner.Options{
				Jobs:       jobs,
				ReportPath: reportPath,
				CacheDir:   cacheDir,
				NoColor:    globals.NoColor,
			}

			return runHooks(cobraCmd.Context(), globals, cfg, opts, args)
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "worker count for the imports pool (default NumCPU)")
	cmd.Flags().StringVar(&reportPath, "report", "", "write an HTML report to the given path")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "enable the result cache rooted at the given directory")

	return cmd
}

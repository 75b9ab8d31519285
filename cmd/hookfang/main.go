// Package main provides the entry point for the hookfang CLI tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hookfang/cmd/hookfang/commands"
	"github.com/Sumatoshi-tech/hookfang/pkg/version"
)

func main() {
	globals := &commands.Globals{}

	rootCmd := &cobra.Command{
		Use:   "hookfang",
		Short: "Hookfang - pre-commit hooks for Python projects",
		Long: `Hookfang runs pre-commit checks over a repository.

Commands:
  imports       Report imports nested below module top level
  version-bump  Verify the project version was bumped alongside code changes
  copyright     Verify and refresh copyright headers
  run           All configured hooks through the worker-pool runner`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&globals.ConfigPath, "config", "", "config file (default .hookfang.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&globals.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&globals.Quiet, "quiet", "q", false, "suppress output")
	rootCmd.PersistentFlags().BoolVar(&globals.NoColor, "no-color", false, "disable colored diagnostics")

	rootCmd.AddCommand(commands.NewImportsCommand(globals))
	rootCmd.AddCommand(commands.NewVersionBumpCommand(globals))
	rootCmd.AddCommand(commands.NewCopyrightCommand(globals))
	rootCmd.AddCommand(commands.NewRunCommand(globals))
	rootCmd.AddCommand(commands.NewLSPCommand(globals))
	rootCmd.AddCommand(commands.NewMCPCommand(globals))
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		// Hook findings were already rendered as diagnostics; only
		// operational failures deserve an error line.
		if !errors.Is(err, commands.ErrChecksFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "hookfang %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}

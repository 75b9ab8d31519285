// Package commands implements CLI command handlers for hookfang.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Sumatoshi-tech/hookfang/internal/config"
	"github.com/Sumatoshi-tech/hookfang/internal/runner"
	"github.com/Sumatoshi-tech/hookfang/pkg/gitlib"
)

// ErrChecksFailed signals a non-zero exit after hook findings were already
// rendered. The top level suppresses the error line for it.
var ErrChecksFailed = errors.New("checks failed")

// Globals holds the persistent root flags shared by every subcommand.
type Globals struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
	NoColor    bool
}

// logger builds the one-shot CLI logger on stderr. Long-running modes build
// theirs through internal/observability instead.
func (g *Globals) logger() *slog.Logger {
	level := slog.LevelInfo

	switch {
	case g.Quiet:
		level = slog.LevelError
	case g.Verbose:
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// output returns the diagnostics writer; quiet mode discards it.
func (g *Globals) output() io.Writer {
	if g.Quiet {
		return io.Discard
	}

	return os.Stdout
}

// loadConfig loads the configuration honoring the persistent flags.
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return nil, err
	}

	if g.NoColor {
		cfg.NoColor = true
	}

	return cfg, nil
}

// resolveInputs maps positional arguments to a run directory and a relative
// file list. Without arguments the staged files of the enclosing repository
// are used, the way pre-commit frameworks invoke hooks.
func resolveInputs(args []string) (string, []string, error) {
	if len(args) > 0 {
		return ".", args, nil
	}

	repo, err := gitlib.OpenRepositoryAt(".")
	if err != nil {
		return "", nil, fmt.Errorf("resolve staged files: %w", err)
	}
	defer repo.Free()

	staged, err := repo.StagedFiles()
	if err != nil {
		return "", nil, fmt.Errorf("resolve staged files: %w", err)
	}

	return repo.Path(), staged, nil
}

// runHooks executes the configured hooks and maps the summary onto the exit
// contract.
func runHooks(ctx context.Context, g *Globals, cfg *config.Config, opts runner.Options, args []string) error {
	dir, files, err := resolveInputs(args)
	if err != nil {
		return err
	}

	run, err := runner.New(cfg, g.logger(), g.output(), opts)
	if err != nil {
		return err
	}

	summary, err := run.Run(ctx, dir, files)
	if err != nil {
		return err
	}

	if !summary.Passed() {
		return ErrChecksFailed
	}

	return nil
}

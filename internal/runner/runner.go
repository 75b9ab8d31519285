// Package runner executes the configured hooks over a file set: the
// per-file imports check through a worker pool with an optional result
// cache, the repository-level checks in one pass each, and renders
// diagnostics, a summary table, and an optional HTML report.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sumatoshi-tech/hookfang/internal/config"
	"github.com/Sumatoshi-tech/hookfang/internal/hooks"
	"github.com/Sumatoshi-tech/hookfang/internal/resultcache"
)

// Options adjust one run beyond the loaded configuration.
type Options struct {
	// Jobs overrides the worker count. Zero selects runtime.NumCPU().
	Jobs int

	// ReportPath, when set, writes an HTML report next to the terminal
	// output.
	ReportPath string

	// CacheDir enables the result cache rooted there.
	CacheDir string

	// NoColor disables diagnostic coloring.
	NoColor bool
}

// Summary aggregates one run for rendering and the exit contract.
type Summary struct {
	Reports       []hooks.Report
	Files         int
	Clean         int
	Findings      int
	ParseFailures int
	Duration      time.Duration
}

// Passed reports whether every hook passed.
func (s Summary) Passed() bool {
	for _, report := range s.Reports {
		if !report.Passed {
			return false
		}
	}

	return true
}

// Runner executes hooks and renders their results.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	opts   Options
	cache  *resultcache.Cache
}

// New builds a runner. The logger and output writer are required.
func New(cfg *config.Config, logger *slog.Logger, out io.Writer, opts Options) (*Runner, error) {
	runner := &Runner{
		cfg:    cfg,
		logger: logger,
		out:    out,
		opts:   opts,
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		cacheDir = cfg.CacheDir
	}

	if cacheDir != "" {
		cache, err := resultcache.New(cacheDir)
		if err != nil {
			return nil, err
		}

		runner.cache = cache
	}

	return runner, nil
}

// Run executes every enabled hook over the files, renders diagnostics and
// the summary, and returns the aggregate. Files are worktree-relative to
// dir.
func (r *Runner) Run(ctx context.Context, dir string, files []string) (Summary, error) {
	started := time.Now()

	summary := Summary{Files: len(files)}

	for _, name := range r.cfg.EnabledHooks() {
		report, err := r.runHook(ctx, name, dir, files)
		if err != nil {
			return Summary{}, err
		}

		summary.Reports = append(summary.Reports, report)
	}

	summary.Duration = time.Since(started)
	r.tally(&summary)

	r.printDiagnostics(summary)
	r.printSummary(summary)

	if r.opts.ReportPath != "" {
		if err := r.writeReport(summary); err != nil {
			return Summary{}, err
		}
	}

	return summary, nil
}

func (r *Runner) runHook(ctx context.Context, name, dir string, files []string) (hooks.Report, error) {
	selected := files
	if name == config.HookImports {
		selected = PythonFiles(dir, files, r.cfg.Imports.IncludeGlobs)

		return r.runImportsPool(ctx, dir, selected)
	}

	hook, err := hooks.New(name, r.cfg)
	if err != nil {
		return hooks.Report{}, err
	}

	r.logger.Debug("running hook", "hook", name, "files", len(selected))

	report, err := hook.Run(ctx, hooks.Request{Dir: dir, Files: selected})
	if err != nil {
		return hooks.Report{}, fmt.Errorf("run hook %s: %w", name, err)
	}

	return report, nil
}

// runImportsPool fans the Python files out over a worker pool. Each worker
// builds its own hook instance; tree-sitter parser state is not shared.
// Findings are re-ordered to input order before rendering.
func (r *Runner) runImportsPool(ctx context.Context, dir string, files []string) (hooks.Report, error) {
	workers := r.opts.Jobs
	if workers <= 0 {
		workers = r.cfg.Jobs
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if workers > len(files) {
		workers = len(files)
	}

	if len(files) == 0 {
		return hooks.Report{Hook: config.HookImports, Passed: true}, nil
	}

	fileCh := make(chan indexedFile, workers)
	perFile := make([][]hooks.Finding, len(files))

	var (
		firstErr atomic.Value
		wg       sync.WaitGroup
	)

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			hook, err := hooks.New(config.HookImports, r.cfg)
			if err != nil {
				firstErr.CompareAndSwap(nil, err)

				return
			}

			for item := range fileCh {
				if firstErr.Load() != nil {
					return
				}

				findings, err := r.checkFile(ctx, hook, dir, item.path)
				if err != nil {
					firstErr.CompareAndSwap(nil, err)

					return
				}

				perFile[item.index] = findings
			}
		}()
	}

	for idx, file := range files {
		if firstErr.Load() != nil {
			break
		}

		fileCh <- indexedFile{index: idx, path: file}
	}

	close(fileCh)
	wg.Wait()

	if errVal := firstErr.Load(); errVal != nil {
		if err, ok := errVal.(error); ok {
			return hooks.Report{}, err
		}
	}

	var findings []hooks.Finding
	for _, fs := range perFile {
		findings = append(findings, fs...)
	}

	return hooks.Report{
		Hook:     config.HookImports,
		Findings: findings,
		Passed:   len(findings) == 0,
	}, nil
}

type indexedFile struct {
	index int
	path  string
}

// checkFile runs the imports hook for one file, consulting the result
// cache when enabled.
func (r *Runner) checkFile(ctx context.Context, hook hooks.Hook, dir, rel string) ([]hooks.Finding, error) {
	var (
		key     string
		content []byte
	)

	if r.cache != nil {
		var err error

		content, err = os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if err == nil {
			key = resultcache.Key(config.HookImports, resultcache.Fingerprint(r.cfg.Imports), content)

			if findings, ok := r.cache.Get(key); ok {
				r.logger.Debug("cache hit", "file", rel)

				return findings, nil
			}
		}
	}

	report, err := hook.Run(ctx, hooks.Request{Dir: dir, Files: []string{rel}})
	if err != nil {
		return nil, err
	}

	if key != "" {
		if putErr := r.cache.Put(key, report.Findings); putErr != nil {
			r.logger.Warn("cache write failed", "file", rel, "error", putErr)
		}
	}

	return report.Findings, nil
}

func (r *Runner) tally(summary *Summary) {
	dirty := make(map[string]struct{})

	for _, report := range summary.Reports {
		for _, finding := range report.Findings {
			summary.Findings++

			if finding.Code == "parse-failure" {
				summary.ParseFailures++
			}

			dirty[finding.Path] = struct{}{}
		}
	}

	summary.Clean = summary.Files - len(dirty)
	if summary.Clean < 0 {
		summary.Clean = 0
	}
}

package runner_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hookfang/internal/config"
	"github.com/Sumatoshi-tech/hookfang/internal/runner"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func importsOnlyConfig() *config.Config {
	return &config.Config{Hooks: []string{config.HookImports}}
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()

	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	}

	return dir
}

func TestRunImportsOnly(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"clean.py":  "import os\n",
		"nested.py": "def f():\n    import json\n",
		"notes.txt": "import looking text\n",
	})

	var out bytes.Buffer

	r, err := runner.New(importsOnlyConfig(), discardLogger(), &out, runner.Options{NoColor: true})
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), dir, []string{"clean.py", "nested.py", "notes.txt"})
	require.NoError(t, err)

	assert.False(t, summary.Passed())
	assert.Equal(t, 3, summary.Files)
	assert.Equal(t, 1, summary.Findings)
	assert.Equal(t, 2, summary.Clean)
	assert.Zero(t, summary.ParseFailures)

	assert.Contains(t, out.String(), "nested.py:2:")
	assert.Contains(t, out.String(), "imports: failed")
	assert.NotContains(t, out.String(), "notes.txt")
}

func TestRunCountsParseFailures(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"broken.py": "def f(:\n",
	})

	var out bytes.Buffer

	r, err := runner.New(importsOnlyConfig(), discardLogger(), &out, runner.Options{NoColor: true})
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), dir, []string{"broken.py"})
	require.NoError(t, err)

	assert.False(t, summary.Passed())
	assert.Equal(t, 1, summary.ParseFailures)
}

func TestRunCleanPasses(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"a.py": "import os\n",
		"b.py": "from typing import TYPE_CHECKING\n\nif TYPE_CHECKING:\n    import json\n",
	})

	var out bytes.Buffer

	r, err := runner.New(importsOnlyConfig(), discardLogger(), &out, runner.Options{NoColor: true, Jobs: 2})
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), dir, []string{"a.py", "b.py"})
	require.NoError(t, err)

	assert.True(t, summary.Passed())
	assert.Contains(t, out.String(), "imports: passed")
}

func TestRunUsesResultCache(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"nested.py": "def f():\n    import json\n",
	})
	cacheDir := filepath.Join(t.TempDir(), "cache")

	run := func() runner.Summary {
		var out bytes.Buffer

		r, err := runner.New(importsOnlyConfig(), discardLogger(), &out, runner.Options{
			NoColor:  true,
			CacheDir: cacheDir,
		})
		require.NoError(t, err)

		summary, err := r.Run(context.Background(), dir, []string{"nested.py"})
		require.NoError(t, err)

		return summary
	}

	first := run()
	second := run()

	assert.Equal(t, first.Findings, second.Findings)
	assert.False(t, second.Passed())

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestRunWritesReport(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"nested.py": "def f():\n    import json\n",
	})
	reportPath := filepath.Join(t.TempDir(), "report.html")

	var out bytes.Buffer

	r, err := runner.New(importsOnlyConfig(), discardLogger(), &out, runner.Options{
		NoColor:    true,
		ReportPath: reportPath,
	})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), dir, []string{"nested.py"})
	require.NoError(t, err)

	report, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "Findings per hook")
}

func TestPythonFiles(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"mod.py":    "import os\n",
		"tool":      "#!/usr/bin/env python\nimport sys\n",
		"script.sh": "#!/bin/sh\n",
		"plain":     "just text\n",
	})

	selected := runner.PythonFiles(dir, []string{"mod.py", "tool", "script.sh", "plain"}, nil)

	assert.Contains(t, selected, "mod.py")
	assert.Contains(t, selected, "tool")
	assert.NotContains(t, selected, "script.sh")
	assert.NotContains(t, selected, "plain")
}

func TestPythonFilesIncludeGlobs(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"test_mod.py": "import os\n",
		"mod.py":      "import os\n",
	})

	selected := runner.PythonFiles(dir, []string{"test_mod.py", "mod.py"}, []string{"test_*.py"})

	assert.Equal(t, []string{"test_mod.py"}, selected)
}

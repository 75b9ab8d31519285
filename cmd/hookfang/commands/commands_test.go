package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/hookfang/internal/config"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestImportsCommand_CleanFiles(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(path, []byte("import json\n"), 0o644))

	globals := &Globals{Quiet: true}

	_, err := execute(t, NewImportsCommand(globals), "app.py")
	require.NoError(t, err)
}

func TestImportsCommand_NestedImportFails(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(path, []byte("def f():\n    import json\n"), 0o644))

	globals := &Globals{Quiet: true}

	_, err := execute(t, NewImportsCommand(globals), "app.py")
	require.ErrorIs(t, err, ErrChecksFailed)
}

func TestImportsCommand_SkipModulesFlag(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(path, []byte("def f():\n    import json\n"), 0o644))

	globals := &Globals{Quiet: true}

	_, err := execute(t, NewImportsCommand(globals), "-s", "json", "app.py")
	require.NoError(t, err)
}

func TestRunCommand_ReportAndCache(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("import json\n"), 0o644))

	cfgDoc := "hooks: [imports]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hookfang.yaml"), []byte(cfgDoc), 0o644))

	reportPath := filepath.Join(dir, "report.html")
	cacheDir := filepath.Join(dir, "cache")

	globals := &Globals{Quiet: true}

	_, err := execute(t, NewRunCommand(globals),
		"--report", reportPath, "--cache-dir", cacheDir, "app.py")
	require.NoError(t, err)

	report, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "Findings per hook")

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestRunCommand_BadConfigFails(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfgDoc := "hooks: [imports]\nbogus_key: 1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hookfang.yaml"), []byte(cfgDoc), 0o644))

	globals := &Globals{Quiet: true}

	_, err := execute(t, NewRunCommand(globals), "app.py")
	require.ErrorIs(t, err, config.ErrSchema)
}

func TestInitCommand_WritesLoadableConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, err := execute(t, NewInitCommand())
	require.NoError(t, err)
	assert.Contains(t, out, ".hookfang.yaml")

	document, err := os.ReadFile(filepath.Join(dir, ".hookfang.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(document), "# Nested-import checker.")

	var settings map[string]any

	require.NoError(t, yaml.Unmarshal(document, &settings))
	assert.Contains(t, settings, "hooks")
	assert.Contains(t, settings, "imports")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.KnownHooks(), cfg.Hooks)
}

func TestInitCommand_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hookfang.yaml"), []byte("hooks: [imports]\n"), 0o644))

	_, err := execute(t, NewInitCommand())
	require.ErrorIs(t, err, ErrConfigExists)

	_, err = execute(t, NewInitCommand(), "--force")
	require.NoError(t, err)
}

func TestCopyrightCommand_OwnerFlag(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	globals := &Globals{Quiet: true}
	cmd := NewCopyrightCommand(globals)

	require.NoError(t, cmd.Flags().Set("owner", "Acme Corp"))
	assert.Equal(t, "Acme Corp", cmd.Flags().Lookup("owner").Value.String())
}

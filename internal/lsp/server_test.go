package lsp

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Sumatoshi-tech/hookfang/internal/config"
)

func newTestServer() *Server {
	return NewServer(
		&config.Config{Hooks: config.KnownHooks()},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestDocumentStore(t *testing.T) {
	t.Parallel()

	store := NewDocumentStore()

	store.Set("file:///a.py", "import os\n")

	content, ok := store.Get("file:///a.py")
	require.True(t, ok)
	assert.Equal(t, "import os\n", content)

	store.Delete("file:///a.py")

	_, ok = store.Get("file:///a.py")
	assert.False(t, ok)
}

func TestDiagnosticsForViolations(t *testing.T) {
	t.Parallel()

	srv := newTestServer()
	srv.store.Set("file:///mod.py", "def f():\n    import json\n")

	diagnostics := srv.diagnosticsFor("file:///mod.py")

	require.Len(t, diagnostics, 1)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *diagnostics[0].Severity)
	assert.Equal(t, "nested-in-function", diagnostics[0].Code.Value)
	assert.Equal(t, uint32(1), diagnostics[0].Range.Start.Line)
}

func TestDiagnosticsForParseFailure(t *testing.T) {
	t.Parallel()

	srv := newTestServer()
	srv.store.Set("file:///broken.py", "def f(:\n")

	diagnostics := srv.diagnosticsFor("file:///broken.py")

	require.Len(t, diagnostics, 1)
	assert.Equal(t, protocol.DiagnosticSeverityError, *diagnostics[0].Severity)
	assert.Equal(t, "parse-failure", diagnostics[0].Code.Value)
}

func TestDiagnosticsForCleanDocument(t *testing.T) {
	t.Parallel()

	srv := newTestServer()
	srv.store.Set("file:///clean.py", "import os\n")

	assert.Empty(t, srv.diagnosticsFor("file:///clean.py"))
}

func TestDiagnosticsForNonPythonDocument(t *testing.T) {
	t.Parallel()

	srv := newTestServer()
	srv.store.Set("file:///notes.md", "def f():\n    import json\n")

	assert.Empty(t, srv.diagnosticsFor("file:///notes.md"))
}

func TestDiagnosticsCacheHitSkipsReanalysis(t *testing.T) {
	t.Parallel()

	srv := newTestServer()
	srv.store.Set("file:///mod.py", "def f():\n    import json\n")

	first := srv.diagnosticsFor("file:///mod.py")
	second := srv.diagnosticsFor("file:///mod.py")

	require.Len(t, second, 1)
	assert.Equal(t, first, second)

	// Same content under another URI hits the same cache entry.
	srv.store.Set("file:///copy.py", "def f():\n    import json\n")
	assert.Equal(t, first, srv.diagnosticsFor("file:///copy.py"))
}

func TestDiagnosticsCacheEvictsOldEntries(t *testing.T) {
	t.Parallel()

	cache := newDiagnosticsCache(2)

	keyA := keyFor("a")
	keyB := keyFor("b")
	keyC := keyFor("c")

	cache.put(keyA, nil)
	cache.put(keyB, nil)

	// Touch A so B becomes the eviction victim.
	_, ok := cache.get(keyA)
	require.True(t, ok)

	cache.put(keyC, nil)

	_, ok = cache.get(keyB)
	assert.False(t, ok)

	_, ok = cache.get(keyA)
	assert.True(t, ok)

	_, ok = cache.get(keyC)
	assert.True(t, ok)
}

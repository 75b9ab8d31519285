// Package lsp provides a stdio Language Server Protocol server that runs
// the import-location analysis on open Python documents and publishes the
// results as diagnostics.
package lsp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/Sumatoshi-tech/hookfang/internal/config"
	"github.com/Sumatoshi-tech/hookfang/pkg/importcheck"
	"github.com/Sumatoshi-tech/hookfang/pkg/version"
)

const (
	serverName = "hookfang"

	// diagnosticSource labels published diagnostics in the editor.
	diagnosticSource = "hookfang"

	// defaultCacheSize bounds the diagnostics LRU.
	defaultCacheSize = 128
)

// DocumentStore is a thread-safe store for document contents keyed by URI.
type DocumentStore struct {
	documents map[string]string
	mu        sync.RWMutex
}

// NewDocumentStore creates a new empty DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]string),
	}
}

// Set stores document content for the given URI.
func (ds *DocumentStore) Set(uri, content string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[uri] = content
}

// Get retrieves document content by URI.
func (ds *DocumentStore) Get(uri string) (string, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	content, ok := ds.documents[uri]

	return content, ok
}

// Delete removes document content by URI.
func (ds *DocumentStore) Delete(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// Server analyzes open documents and publishes diagnostics. Documents sync
// with full content on every change.
type Server struct {
	store    *DocumentStore
	analyzer *importcheck.Analyzer
	cache    *diagnosticsCache
	logger   *slog.Logger
	handler  protocol.Handler
}

// NewServer creates the LSP server with the configured analyzer.
func NewServer(cfg *config.Config, logger *slog.Logger) *Server {
	srv := &Server{
		store: NewDocumentStore(),
		analyzer: importcheck.New(importcheck.Config{
			TypeCheckingSentinels: cfg.Imports.TypeCheckingSentinels,
			SuppressionToken:      cfg.Imports.SuppressionToken,
			MaxFallbackStatements: cfg.Imports.MaxFallbackStatements,
			SkipModules:           cfg.Imports.SkipModules,
		}),
		cache:  newDiagnosticsCache(defaultCacheSize),
		logger: logger,
	}

	srv.handler = protocol.Handler{
		Initialize:            srv.initialize,
		Initialized:           srv.initialized,
		Shutdown:              srv.shutdown,
		SetTrace:              srv.setTrace,
		TextDocumentDidOpen:   srv.didOpen,
		TextDocumentDidChange: srv.didChange,
		TextDocumentDidSave:   srv.didSave,
		TextDocumentDidClose:  srv.didClose,
	}

	return srv
}

// Run starts the LSP server on stdio and blocks until the client
// disconnects.
func (srv *Server) Run() error {
	lspServer := server.NewServer(&srv.handler, serverName, false)

	if err := lspServer.RunStdio(); err != nil {
		return fmt.Errorf("lsp server: %w", err)
	}

	return nil
}

func (srv *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := srv.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = protocol.TextDocumentSyncOptions{
		OpenClose: ptr(true),
		Change:    &syncKind,
	}

	serverVersion := version.Version

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &serverVersion,
		},
	}, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	srv.store.Set(params.TextDocument.URI, params.TextDocument.Text)
	srv.publishDiagnostics(ctx, params.TextDocument.URI)

	return nil
}

func (srv *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	if len(params.ContentChanges) > 0 {
		if change, changeOK := params.ContentChanges[0].(map[string]any); changeOK {
			if text, textOK := change["text"].(string); textOK {
				srv.store.Set(uri, text)
				srv.publishDiagnostics(ctx, uri)
			}
		}
	}

	return nil
}

func (srv *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if _, ok := srv.store.Get(params.TextDocument.URI); ok {
		srv.publishDiagnostics(ctx, params.TextDocument.URI)
	}

	return nil
}

func (srv *Server) didClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	srv.store.Delete(params.TextDocument.URI)

	return nil
}

func (srv *Server) publishDiagnostics(ctx *glsp.Context, uri string) {
	ctx.Notify("textDocument/publishDiagnostics", &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: srv.diagnosticsFor(uri),
	})
}

// diagnosticsFor computes the diagnostics for one open document. Non-Python
// documents get an empty set, which also clears earlier diagnostics.
func (srv *Server) diagnosticsFor(uri string) []protocol.Diagnostic {
	content, ok := srv.store.Get(uri)
	if !ok || !isPythonURI(uri) {
		return []protocol.Diagnostic{}
	}

	key := keyFor(content)
	if cached, hit := srv.cache.get(key); hit {
		return cached
	}

	outcome := srv.analyzer.AnalyzeSource(context.Background(), uri, []byte(content))
	diagnostics := outcomeDiagnostics(outcome)

	srv.cache.put(key, diagnostics)
	srv.logger.Debug("analyzed document", "uri", uri, "kind", outcome.Kind.String(), "diagnostics", len(diagnostics))

	return diagnostics
}

func isPythonURI(uri string) bool {
	return strings.HasSuffix(uri, ".py")
}

// outcomeDiagnostics maps one analysis outcome to LSP diagnostics:
// violations become warnings carrying the reason as code, a parse failure
// becomes a single error at its position.
func outcomeDiagnostics(outcome importcheck.Outcome) []protocol.Diagnostic {
	switch outcome.Kind {
	case importcheck.OutcomeClean:
		return []protocol.Diagnostic{}
	case importcheck.OutcomeViolations:
		diagnostics := make([]protocol.Diagnostic, 0, len(outcome.Violations))
		for _, violation := range outcome.Violations {
			diagnostics = append(diagnostics, diagnostic(
				violation.Line, violation.Column,
				protocol.DiagnosticSeverityWarning,
				violation.Reason.String(),
				violation.Message(),
			))
		}

		return diagnostics
	default:
		return []protocol.Diagnostic{diagnostic(
			outcome.Failure.Line, outcome.Failure.Column,
			protocol.DiagnosticSeverityError,
			outcome.Kind.String(),
			outcome.Failure.Message,
		)}
	}
}

// diagnostic builds one LSP diagnostic from a 1-based line and column.
func diagnostic(line, column int, severity protocol.DiagnosticSeverity, code, message string) protocol.Diagnostic {
	pos := protocol.Position{
		Line:      uint32(max(line-1, 0)),
		Character: uint32(max(column-1, 0)),
	}
	source := diagnosticSource

	return protocol.Diagnostic{
		Range:    protocol.Range{Start: pos, End: pos},
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: code},
		Source:   &source,
		Message:  message,
	}
}

func ptr[T any](v T) *T {
	return &v
}

// Package mcp implements a Model Context Protocol server exposing the
// hookfang checks as MCP tools over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/hookfang/internal/config"
	"github.com/Sumatoshi-tech/hookfang/internal/observability"
	"github.com/Sumatoshi-tech/hookfang/pkg/importcheck"
	"github.com/Sumatoshi-tech/hookfang/pkg/version"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "hookfang"

	// toolCount is the expected number of registered tools.
	toolCount = 3
)

// ServerDeps holds injectable dependencies for the MCP server. Zero-value
// fields use production defaults.
type ServerDeps struct {
	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder. Nil disables per-tool
	// metrics.
	Metrics *observability.REDMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil
	// disables tracing.
	Tracer trace.Tracer
}

// Server wraps the MCP SDK server with the hookfang tool registrations.
type Server struct {
	inner    *mcpsdk.Server
	cfg      *config.Config
	analyzer *importcheck.Analyzer
	mu       sync.RWMutex
	tools    []string
	metrics  *observability.REDMetrics
	tracer   trace.Tracer
}

// NewServer creates a new MCP server with all hookfang tools registered.
func NewServer(cfg *config.Config, deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		opts,
	)

	srv := &Server{
		inner: inner,
		cfg:   cfg,
		analyzer: importcheck.New(importcheck.Config{
			TypeCheckingSentinels: cfg.Imports.TypeCheckingSentinels,
			SuppressionToken:      cfg.Imports.SuppressionToken,
			MaxFallbackStatements: cfg.Imports.MaxFallbackStatements,
			SkipModules:           cfg.Imports.SkipModules,
		}),
		tools:   make([]string, 0, toolCount),
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the
// context is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	err := s.inner.Run(ctx, &mcpsdk.StdioTransport{})
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// RunWithTransport starts the MCP server on the given transport.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	s.registerImportsTool()
	s.registerVersionBumpTool()
	s.registerCopyrightTool()
}

func (s *Server) registerImportsTool() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameImports,
		Description: importsToolDescription,
	}, withMetrics(s.metrics, ToolNameImports, withTracing(s.tracer, ToolNameImports, s.handleImportsCheck)))

	s.trackTool(ToolNameImports)
}

func (s *Server) registerVersionBumpTool() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameVersionBump,
		Description: versionBumpToolDescription,
	}, withMetrics(s.metrics, ToolNameVersionBump, withTracing(s.tracer, ToolNameVersionBump, s.handleVersionBumpCheck)))

	s.trackTool(ToolNameVersionBump)
}

func (s *Server) registerCopyrightTool() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameCopyright,
		Description: copyrightToolDescription,
	}, withMetrics(s.metrics, ToolNameCopyright, withTracing(s.tracer, ToolNameCopyright, s.handleCopyrightCheck)))

	s.trackTool(ToolNameCopyright)
}

// mcpSpanPrefix is the prefix for MCP tool span names.
const mcpSpanPrefix = "mcp."

// traceIDMetaKey is the metadata key for trace_id in MCP tool responses.
const traceIDMetaKey = "trace_id"

// withTracing wraps an MCP tool handler to create an OTel span per
// invocation and include trace_id in the response content when sampled.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			traceContent := &mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())}
			result.Content = append(result.Content, traceContent)
		}

		return result, output, err
	}
}

// withMetrics wraps an MCP tool handler to record RED metrics per
// invocation.
func withMetrics[Input any](
	metrics *observability.REDMetrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()

		decInflight := metrics.TrackInflight(ctx, mcpSpanPrefix+toolName)
		defer decInflight()

		result, output, err := handler(ctx, req, input)

		status := "ok"
		if err != nil || (result != nil && result.IsError) {
			status = "error"
		}

		metrics.RecordRequest(ctx, mcpSpanPrefix+toolName, status, time.Since(start))

		return result, output, err
	}
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

// Tool description constants.
const (
	importsToolDescription = "Check Python source for import statements nested inside " +
		"functions, classes, conditionals, or exception handlers. " +
		"Accepts a file path or inline content."

	versionBumpToolDescription = "Check that changed files in a Git repository come with " +
		"a version bump in the owning project's version file."

	copyrightToolDescription = "Check one file for a current copyright header for the " +
		"given owner. Returns the verdict and the expected header."
)

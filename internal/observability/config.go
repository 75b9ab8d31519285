// Package observability provides OpenTelemetry-based tracing, metrics, and
// structured logging for all hookfang execution modes (CLI, LSP, MCP).
package observability

import (
	"log/slog"
	"os"
)

// AppMode identifies the application execution mode.
type AppMode string

const (
	// ModeCLI is the one-shot hook execution mode.
	ModeCLI AppMode = "cli"
	// ModeLSP is the stdio language server mode.
	ModeLSP AppMode = "lsp"
	// ModeMCP is the stdio MCP server mode.
	ModeMCP AppMode = "mcp"
)

const (
	// defaultServiceName is the default OTel service name.
	defaultServiceName = "hookfang"

	// defaultShutdownTimeoutSec is the default shutdown timeout in seconds.
	defaultShutdownTimeoutSec = 5

	// envOTLPEndpoint is the standard OTel exporter endpoint variable.
	envOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the semantic version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment (e.g. "dev", "ci").
	Environment string

	// Mode identifies how the binary was launched.
	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address. Empty disables
	// export; providers become no-op.
	OTLPEndpoint string

	// OTLPHeaders are additional gRPC metadata headers for the OTLP
	// exporter.
	OTLPHeaders map[string]string

	// OTLPInsecure disables TLS for the OTLP gRPC connection.
	OTLPInsecure bool

	// LogLevel controls the minimum slog severity.
	LogLevel slog.Level

	// LogJSON enables JSON-formatted log output.
	LogJSON bool

	// ShutdownTimeoutSec is the maximum seconds to wait for flush on
	// shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config for zero-configuration startup. The OTLP
// endpoint comes from the standard environment variable, so a plain hook
// run exports nothing.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		OTLPEndpoint:       os.Getenv(envOTLPEndpoint),
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

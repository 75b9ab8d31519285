package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/hookfang/internal/mcp"
	"github.com/Sumatoshi-tech/hookfang/internal/observability"
	"github.com/Sumatoshi-tech/hookfang/pkg/version"
)

const (
	metricsReadTimeout  = 5 * time.Second
	metricsWriteTimeout = 10 * time.Second
	metricsIdleTimeout  = 60 * time.Second
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(globals *Globals) *cobra.Command {
	var (
		debug       bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes the hooks as tools that AI agents can discover and
invoke:
  - imports_check: report imports nested below module top level
  - version_bump_check: verify the project version was bumped
  - copyright_check: verify a file's copyright header`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := globals.loadConfig()
			if err != nil {
				return err
			}

			providers, err := initMCPObservability(debug)
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			meter := providers.Meter

			if metricsAddr != "" {
				promMeter, serveErr := serveMetrics(metricsAddr, providers.Logger)
				if serveErr != nil {
					return serveErr
				}

				meter = promMeter
			}

			red, redErr := observability.NewREDMetrics(meter)
			if redErr != nil {
				return redErr
			}

			deps := mcp.ServerDeps{Logger: providers.Logger, Metrics: red, Tracer: providers.Tracer}

			srv := mcp.NewServer(cfg, deps)

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on the given address (e.g. :9464)")

	return cmd
}

func initMCPObservability(debug bool) (observability.Providers, error) {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	cfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	cfg.Mode = observability.ModeMCP
	cfg.LogJSON = true

	if debug {
		cfg.LogLevel = slog.LevelDebug
	}

	return observability.Init(cfg)
}

// serveMetrics starts a Prometheus scrape endpoint in the background and
// returns the meter the server instruments must register on.
func serveMetrics(addr string, logger *slog.Logger) (metric.Meter, error) {
	handler, provider, err := observability.PrometheusHandler()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  metricsReadTimeout,
		WriteTimeout: metricsWriteTimeout,
		IdleTimeout:  metricsIdleTimeout,
	}

	go func() {
		serveErr := server.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", serveErr)
		}
	}()

	logger.Info("serving metrics", "addr", addr)

	return provider.Meter("hookfang"), nil
}

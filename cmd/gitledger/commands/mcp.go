package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitledger/pkg/callgraph"
	"github.com/Sumatoshi-tech/gitledger/pkg/mcp"
	"github.com/Sumatoshi-tech/gitledger/pkg/observability"
	"github.com/Sumatoshi-tech/gitledger/pkg/version"
)

// metricsReadHeaderTimeout bounds header reads on the metrics listener.
const metricsReadHeaderTimeout = 5 * time.Second

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var debug bool

	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes the gitledger pipeline as tools that AI agents
can discover and invoke:
  - ledger_flatten: Reconcile a numstat history log into change records
  - ledger_summary: Export and aggregate a repository's change history
  - ledger_recursion: Detect recursive database calls in a Neo4j code graph`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cobraCmd)
			if err != nil {
				return err
			}

			providers, err := initMCPObservability(debug, metricsAddr != "")
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			red, redErr := observability.NewREDMetrics(providers.Meter)
			if redErr != nil {
				return redErr
			}

			if metricsAddr != "" {
				stopMetrics := serveMetrics(metricsAddr, providers.MetricsHandler, providers.Logger)

				defer stopMetrics()
			}

			deps := mcp.ServerDeps{
				Logger:  providers.Logger,
				Metrics: red,
				Tracer:  providers.Tracer,
				Graph: callgraph.Options{
					URI:           cfg.Graph.URI,
					Username:      cfg.Graph.Username,
					Password:      cfg.Graph.Password,
					Database:      cfg.Graph.Database,
					DatabaseClass: cfg.Graph.DatabaseClass,
					Timeout:       cfg.Graph.Timeout,
				},
			}

			srv := mcp.NewServer(deps)

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics and health probes on this address (e.g. :9090)")

	return cmd
}

func initMCPObservability(debug, wantMetrics bool) (observability.Providers, error) {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	cfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	cfg.PrometheusEnabled = wantMetrics
	cfg.Mode = observability.ModeMCP
	cfg.LogJSON = true

	if debug {
		cfg.LogLevel = slog.LevelDebug
		cfg.DebugTrace = true
	}

	return observability.Init(cfg)
}

// serveMetrics starts the metrics and health listener in the background and
// returns its stop function.
func serveMetrics(addr string, scrape http.Handler, logger *slog.Logger) func() {
	srv := &http.Server{
		Addr:              addr,
		Handler:           observability.NewMetricsMux(scrape),
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		serveErr := srv.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", "error", serveErr)
		}
	}()

	logger.Info("metrics server listening", "addr", addr)

	return func() { _ = srv.Close() }
}

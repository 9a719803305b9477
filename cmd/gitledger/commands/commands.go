// Package commands implements CLI command handlers for gitledger.
package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitledger/pkg/config"
	"github.com/Sumatoshi-tech/gitledger/pkg/export"
	"github.com/Sumatoshi-tech/gitledger/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitledger/pkg/histlog"
	"github.com/Sumatoshi-tech/gitledger/pkg/observability"
	"github.com/Sumatoshi-tech/gitledger/pkg/reconcile"
	"github.com/Sumatoshi-tech/gitledger/pkg/version"
)

// stdioPath selects the process's standard stream: stdin for inputs,
// stdout for outputs.
const stdioPath = "-"

// loadConfig reads the configuration, honoring the persistent --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.LoadConfig(flagString(cmd, "config"))
}

// initObservability builds CLI providers from the configuration and the
// persistent verbosity flags. Without an OTLP endpoint in the environment
// the tracer and meter are no-ops and only the logger is live.
func initObservability(cmd *cobra.Command, cfg *config.Config) (observability.Providers, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = observability.ModeCLI
	obsCfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	obsCfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	obsCfg.LogJSON = cfg.Logging.Format == config.LogFormatJSON

	level, levelErr := cfg.Logging.SlogLevel()
	if levelErr == nil {
		obsCfg.LogLevel = level
	}

	if flagBool(cmd, "verbose") {
		obsCfg.LogLevel = slog.LevelDebug
	}

	if flagBool(cmd, "quiet") {
		obsCfg.LogLevel = slog.LevelError
	}

	return observability.Init(obsCfg)
}

// shutdownProviders flushes telemetry on command exit.
func shutdownProviders(providers observability.Providers) {
	err := providers.Shutdown(context.Background())
	if err != nil {
		providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

func flagBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}

	return v
}

func flagString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}

	return v
}

// openLogInput resolves the history log reader for a command: the file
// argument, or the command's stdin when the argument is "-" or absent.
// Files named with the .lz4 extension are decompressed transparently.
func openLogInput(cmd *cobra.Command, args []string) (io.ReadCloser, string, error) {
	path := stdioPath
	if len(args) > 0 {
		path = args[0]
	}

	if path == stdioPath {
		return io.NopCloser(cmd.InOrStdin()), "stdin", nil
	}

	rc, err := histlog.OpenFile(path)
	if err != nil {
		return nil, "", err
	}

	return rc, path, nil
}

// exportRecords exports a repository's history through the wire format and
// reconciles it, so direct repository runs see exactly what a written log
// would produce.
func exportRecords(
	ctx context.Context,
	repoPath string,
	opts export.Options,
	parseOpts *histlog.ParseOptions,
) ([]histlog.ChangeRecord, histlog.Stats, error) {
	repository, err := gitlib.LoadRepository(repoPath)
	if err != nil {
		return nil, histlog.Stats{}, fmt.Errorf("load repository: %w", err)
	}
	defer repository.Free()

	var buf bytes.Buffer

	err = export.New(opts).Export(ctx, repository, &buf)
	if err != nil {
		return nil, histlog.Stats{}, fmt.Errorf("export history: %w", err)
	}

	return reconcile.Flatten(&buf, parseOpts)
}

// logReconcileStats reports reconciliation counters at debug, escalating to
// a warning when the input produced nothing but malformed lines.
func logReconcileStats(logger *slog.Logger, source string, stats histlog.Stats, records int) {
	if records == 0 && stats.Malformed > 0 {
		logger.Warn("no records reconciled",
			"source", source,
			"malformed_lines", stats.Malformed,
			"total_lines", stats.Lines(),
		)

		return
	}

	logger.Debug("log reconciled",
		"source", source,
		"records", records,
		"metadata_lines", stats.Meta,
		"stat_lines", stats.Stat,
		"malformed_lines", stats.Malformed,
	)
}

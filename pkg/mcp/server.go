// Package mcp implements a Model Context Protocol server exposing gitledger
// history flattening, summary aggregation and call-graph queries as MCP tools
// over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/gitledger/pkg/callgraph"
	"github.com/Sumatoshi-tech/gitledger/pkg/observability"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "gitledger"
	// serverVersion is the MCP server implementation version.
	serverVersion = "1.0.0"
)

// mcpSpanPrefix prefixes tool names in span names and metric operation labels.
const mcpSpanPrefix = "mcp."

// traceIDMetaKey is the metadata key for trace_id in MCP tool responses.
const traceIDMetaKey = "trace_id"

// Request status labels for RED metrics.
const (
	statusOK    = "ok"
	statusError = "error"
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder. Nil disables per-tool metrics.
	Metrics *observability.REDMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer

	// Graph supplies connection defaults for the ledger_recursion tool.
	// Tool inputs may override the URI, database and database class.
	Graph callgraph.Options
}

// Server wraps the MCP SDK server with gitledger tool registrations.
// All tools are registered at construction time; the tool list is immutable
// afterwards.
type Server struct {
	inner   *mcpsdk.Server
	tools   []string
	metrics *observability.REDMetrics
	tracer  trace.Tracer
	graph   callgraph.Options
}

// toolHandler is the typed handler signature the SDK's AddTool accepts.
type toolHandler[Input any] func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error)

// NewServer creates a new MCP server with all gitledger tools registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	srv := &Server{
		inner: mcpsdk.NewServer(
			&mcpsdk.Implementation{
				Name:    serverName,
				Version: serverVersion,
			},
			opts,
		),
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
		graph:   deps.Graph,
	}

	srv.registerTools()

	return srv
}

// registerTools adds all gitledger MCP tools to the server.
func (s *Server) registerTools() {
	addTool(s, ToolNameFlatten, flattenToolDescription, s.handleFlatten)
	addTool(s, ToolNameSummary, summaryToolDescription, s.handleSummary)
	addTool(s, ToolNameRecursion, recursionToolDescription, s.handleRecursion)
}

// addTool registers one instrumented tool and records its name.
func addTool[Input any](srv *Server, name, description string, handler toolHandler[Input]) {
	mcpsdk.AddTool(srv.inner, &mcpsdk.Tool{
		Name:        name,
		Description: description,
	}, instrument(srv, name, handler))

	srv.tools = append(srv.tools, name)
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport starts the MCP server on the given transport. It blocks
// until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// instrument wraps a tool handler with one OTel span and RED metrics per
// invocation. A nil tracer or metrics recorder disables that layer. When the
// span is sampled the trace id is appended to the response content.
func instrument[Input any](srv *Server, toolName string, handler toolHandler[Input]) toolHandler[Input] {
	if srv.tracer == nil && srv.metrics == nil {
		return handler
	}

	operation := mcpSpanPrefix + toolName

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		var span trace.Span

		if srv.tracer != nil {
			ctx, span = srv.tracer.Start(ctx, operation,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attribute.String("mcp.tool", toolName)),
			)
			defer span.End()
		}

		if srv.metrics != nil {
			decInflight := srv.metrics.TrackInflight(ctx, operation)
			defer decInflight()
		}

		start := time.Now()
		result, output, err := handler(ctx, req, input)

		if srv.metrics != nil {
			status := statusOK
			if err != nil || (result != nil && result.IsError) {
				status = statusError
			}

			srv.metrics.RecordRequest(ctx, operation, status, time.Since(start))
		}

		if span != nil && result != nil && span.SpanContext().IsSampled() {
			result.Content = append(result.Content, &mcpsdk.TextContent{
				Text: fmt.Sprintf("%s=%s", traceIDMetaKey, span.SpanContext().TraceID().String()),
			})
		}

		return result, output, err
	}
}

// Tool description constants.
const (
	flattenToolDescription = "Flatten an interleaved git numstat history log into per-file " +
		"change records. Each record joins a file's added and deleted line counts with the " +
		"hash, timestamp, author and message of the commit that changed it."

	summaryToolDescription = "Summarize a Git repository's change history per author, " +
		"per language and per file. Accepts an absolute repository path and optional " +
		"commit range parameters."

	recursionToolDescription = "Find methods that call themselves directly or transitively " +
		"and also call a database class's methods, using a Neo4j call graph. " +
		"Returns (caller, database method) pairs."
)

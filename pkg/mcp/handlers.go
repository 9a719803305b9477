package mcp

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/gitledger/pkg/callgraph"
	"github.com/Sumatoshi-tech/gitledger/pkg/export"
	"github.com/Sumatoshi-tech/gitledger/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitledger/pkg/histlog"
	"github.com/Sumatoshi-tech/gitledger/pkg/reconcile"
	"github.com/Sumatoshi-tech/gitledger/pkg/summary"
)

// defaultSummaryCommitLimit is the default commit limit for the summary tool.
const defaultSummaryCommitLimit = 1000

// flattenPayload is the JSON payload returned by the ledger_flatten tool.
type flattenPayload struct {
	Records []histlog.ChangeRecord `json:"records"`
	Stats   histlog.Stats          `json:"stats"`
}

// recursionPayload is the JSON payload returned by the ledger_recursion tool.
type recursionPayload struct {
	Calls []callgraph.RecursiveCall `json:"calls"`
	Count int                       `json:"count"`
}

// handleFlatten processes ledger_flatten tool calls.
func (s *Server) handleFlatten(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input FlattenInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateLogInput(input.Log)
	if err != nil {
		return errorResult(err)
	}

	records, stats, err := reconcile.Flatten(strings.NewReader(input.Log), nil)
	if err != nil {
		return errorResult(fmt.Errorf("flatten log: %w", err))
	}

	if records == nil {
		records = []histlog.ChangeRecord{}
	}

	return jsonResult(flattenPayload{Records: records, Stats: stats})
}

// handleSummary processes ledger_summary tool calls. It exports the
// repository history through the same wire format the CLI pipeline uses,
// then flattens and aggregates it.
func (s *Server) handleSummary(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input SummaryInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateRepoInput(input.RepoPath)
	if err != nil {
		return errorResult(err)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultSummaryCommitLimit
	}

	repository, err := gitlib.LoadRepository(input.RepoPath)
	if err != nil {
		return errorResult(fmt.Errorf("load repository: %w", err))
	}
	defer repository.Free()

	exporter := export.New(export.Options{
		Since:       input.Since,
		FirstParent: input.FirstParent,
		Limit:       limit,
	})

	var buf bytes.Buffer

	err = exporter.Export(ctx, repository, &buf)
	if err != nil {
		return errorResult(fmt.Errorf("export history: %w", err))
	}

	records, _, err := reconcile.Flatten(&buf, nil)
	if err != nil {
		return errorResult(fmt.Errorf("flatten history: %w", err))
	}

	return jsonResult(summary.Summarize(records))
}

// handleRecursion processes ledger_recursion tool calls.
func (s *Server) handleRecursion(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input RecursionInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	opts := s.graph

	if input.URI != "" {
		opts.URI = input.URI
	}

	if input.Database != "" {
		opts.Database = input.Database
	}

	if input.DatabaseClass != "" {
		opts.DatabaseClass = input.DatabaseClass
	}

	if opts.URI == "" {
		return errorResult(ErrMissingGraphURI)
	}

	client, err := callgraph.NewClient(opts)
	if err != nil {
		return errorResult(fmt.Errorf("connect call graph: %w", err))
	}

	defer func() { _ = client.Close(ctx) }()

	calls, err := client.FindRecursiveCalls(ctx)
	if err != nil {
		return errorResult(fmt.Errorf("query call graph: %w", err))
	}

	if calls == nil {
		calls = []callgraph.RecursiveCall{}
	}

	return jsonResult(recursionPayload{Calls: calls, Count: len(calls)})
}

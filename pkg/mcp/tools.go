package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool name constants.
const (
	ToolNameFlatten   = "ledger_flatten"
	ToolNameSummary   = "ledger_summary"
	ToolNameRecursion = "ledger_recursion"
)

// Input size limits.
const (
	// MaxLogInputBytes is the maximum allowed size for inline log input (4 MiB).
	MaxLogInputBytes = 4 << 20
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyLog indicates the log parameter is empty.
	ErrEmptyLog = errors.New("log parameter is required and must not be empty")
	// ErrLogTooLarge indicates the log input exceeds the size limit.
	ErrLogTooLarge = errors.New("log input exceeds maximum size")
	// ErrEmptyRepoPath indicates the repo_path parameter is empty.
	ErrEmptyRepoPath = errors.New("repo_path parameter is required and must not be empty")
	// ErrRepoPathNotAbsolute indicates the repo_path is not an absolute path.
	ErrRepoPathNotAbsolute = errors.New("repo_path must be an absolute path")
	// ErrRepoNotFound indicates the repository path does not exist.
	ErrRepoNotFound = errors.New("repository path does not exist")
	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("path is not a git repository")
	// ErrMissingGraphURI indicates no graph database URI is configured or supplied.
	ErrMissingGraphURI = errors.New("graph database uri is not configured")
)

// Input types (auto-generate JSON schemas via struct tags).

// FlattenInput is the input schema for the ledger_flatten tool.
type FlattenInput struct {
	Log string `json:"log" jsonschema:"interleaved numstat history log text to flatten"`
}

// SummaryInput is the input schema for the ledger_summary tool.
type SummaryInput struct {
	FirstParent bool   `json:"first_parent,omitempty" jsonschema:"follow only the first parent of merge commits"`
	Limit       int    `json:"limit,omitempty"        jsonschema:"maximum number of commits to summarize (default: 1000)"`
	RepoPath    string `json:"repo_path"              jsonschema:"absolute path to a Git repository"`
	Since       string `json:"since,omitempty"        jsonschema:"only include commits after this time (e.g. 24h or 2024-01-01)"`
}

// RecursionInput is the input schema for the ledger_recursion tool.
type RecursionInput struct {
	Database      string `json:"database,omitempty"       jsonschema:"Neo4j database name (empty uses the server default)"`
	DatabaseClass string `json:"database_class,omitempty" jsonschema:"class whose methods count as database access (default: Database)"`
	URI           string `json:"uri,omitempty"            jsonschema:"bolt URI of the call graph database (empty uses the server default)"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// validateLogInput checks inline log input constraints.
func validateLogInput(logText string) error {
	if logText == "" {
		return ErrEmptyLog
	}

	if len(logText) > MaxLogInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrLogTooLarge, len(logText), MaxLogInputBytes)
	}

	return nil
}

// validateRepoInput checks that repoPath points at a local git repository.
func validateRepoInput(repoPath string) error {
	switch {
	case repoPath == "":
		return ErrEmptyRepoPath
	case !filepath.IsAbs(repoPath):
		return ErrRepoPathNotAbsolute
	}

	info, err := os.Stat(repoPath)

	switch {
	case err != nil:
		return fmt.Errorf("%w: %s", ErrRepoNotFound, repoPath)
	case !info.IsDir():
		return fmt.Errorf("%w: %s is not a directory", ErrRepoNotFound, repoPath)
	}

	_, err = os.Stat(filepath.Join(repoPath, ".git"))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotGitRepo, repoPath)
	}

	return nil
}

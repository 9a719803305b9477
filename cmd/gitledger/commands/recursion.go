package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/gitledger/pkg/callgraph"
	"github.com/Sumatoshi-tech/gitledger/pkg/config"
	"github.com/Sumatoshi-tech/gitledger/pkg/render"
)

// formatText is the default human-readable recursion output.
const formatText = "text"

// recursionFormats lists the supported recursion output format names.
var recursionFormats = []string{formatText, render.FormatYAML, render.FormatJSON}

// RecursionCommand holds configuration for the recursion command.
type RecursionCommand struct {
	uri           string
	username      string
	password      string
	database      string
	databaseClass string
	timeout       time.Duration
	format        string
	colorize      bool
	nocolor       bool
}

// NewRecursionCommand creates the recursion command.
func NewRecursionCommand() *cobra.Command {
	rc := &RecursionCommand{}

	cmd := &cobra.Command{
		Use:   "recursion",
		Short: "Detect recursive database calls in a Neo4j code graph",
		Long: `Query a Neo4j code graph for methods that call themselves, directly or
through a call chain, and also call a method declared by the database
class. The graph is expected to model Method nodes joined by CALLS
edges and Class nodes joined to their methods by DECLARES edges.

Connection settings come from the graph section of the configuration;
flags override individual values.`,
		Args: cobra.NoArgs,
		RunE: rc.run,
	}

	cmd.Flags().StringVar(&rc.uri, "uri", "", "Neo4j endpoint, e.g. bolt://localhost:7687 (empty = config value)")
	cmd.Flags().StringVar(&rc.username, "username", "", "Neo4j username (empty = config value)")
	cmd.Flags().StringVar(&rc.password, "password", "", "Neo4j password (empty = config value)")
	cmd.Flags().StringVar(&rc.database, "database", "", "Neo4j database name (empty = config value or server default)")
	cmd.Flags().StringVar(&rc.databaseClass, "database-class", "", "Class whose methods count as database calls (empty = config value)")
	cmd.Flags().DurationVar(&rc.timeout, "timeout", 0, "Query timeout (0 = config value)")
	cmd.Flags().StringVarP(&rc.format, "format", "f", formatText, "Output format: text, yaml, json")
	cmd.Flags().BoolVar(&rc.colorize, "color", false, "force colored output")
	cmd.Flags().BoolVar(&rc.nocolor, "no-color", false, "disable colored output")

	return cmd
}

func (rc *RecursionCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	providers, err := initObservability(cmd, cfg)
	if err != nil {
		return err
	}
	defer shutdownProviders(providers)

	opts := rc.graphOptions(cfg)

	client, err := callgraph.NewClient(opts)
	if err != nil {
		return err
	}

	defer func() { _ = client.Close(cmd.Context()) }()

	startedAt := time.Now()

	calls, err := client.FindRecursiveCalls(cmd.Context())
	if err != nil {
		return err
	}

	providers.Logger.Debug("recursive calls detected",
		"count", len(calls),
		"database_class", opts.DatabaseClass,
		"elapsed", time.Since(startedAt).Round(time.Millisecond),
	)

	return rc.render(calls, opts.DatabaseClass, cmd.OutOrStdout())
}

// graphOptions merges configured graph settings with flag overrides.
func (rc *RecursionCommand) graphOptions(cfg *config.Config) callgraph.Options {
	opts := callgraph.Options{
		URI:           cfg.Graph.URI,
		Username:      cfg.Graph.Username,
		Password:      cfg.Graph.Password,
		Database:      cfg.Graph.Database,
		DatabaseClass: cfg.Graph.DatabaseClass,
		Timeout:       cfg.Graph.Timeout,
	}

	if rc.uri != "" {
		opts.URI = rc.uri
	}

	if rc.username != "" {
		opts.Username = rc.username
	}

	if rc.password != "" {
		opts.Password = rc.password
	}

	if rc.database != "" {
		opts.Database = rc.database
	}

	if rc.databaseClass != "" {
		opts.DatabaseClass = rc.databaseClass
	}

	if rc.timeout > 0 {
		opts.Timeout = rc.timeout
	}

	return opts
}

func (rc *RecursionCommand) render(calls []callgraph.RecursiveCall, databaseClass string, w io.Writer) error {
	if calls == nil {
		calls = []callgraph.RecursiveCall{}
	}

	switch rc.format {
	case formatText:
		rc.renderText(calls, databaseClass, w)

		return nil
	case render.FormatYAML:
		data, err := yaml.Marshal(calls)
		if err != nil {
			return fmt.Errorf("yaml marshal: %w", err)
		}

		_, err = w.Write(data)
		if err != nil {
			return fmt.Errorf("yaml write: %w", err)
		}

		return nil
	case render.FormatJSON:
		err := json.NewEncoder(w).Encode(calls)
		if err != nil {
			return fmt.Errorf("json encode: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q (expected one of: %s)",
			render.ErrUnknownFormat, rc.format, strings.Join(recursionFormats, ", "))
	}
}

func (rc *RecursionCommand) renderText(calls []callgraph.RecursiveCall, databaseClass string, w io.Writer) {
	// Color setup.
	if rc.nocolor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	} else if rc.colorize {
		color.NoColor = false //nolint:reassign // intentional override of library global
	}

	if len(calls) == 0 {
		color.New(color.FgGreen).Fprintf(w, "No recursive calls into %s methods found\n", databaseClass)

		return
	}

	color.New(color.FgRed).Fprintf(w, "Recursive callers of %s methods (%d):\n", databaseClass, len(calls))

	for _, call := range calls {
		fmt.Fprintf(w, "  - ")
		color.New(color.FgCyan).Fprintf(w, "%s", call.Caller)
		fmt.Fprintf(w, " calls ")
		color.New(color.FgYellow).Fprintf(w, "%s\n", call.DBMethod)
	}
}

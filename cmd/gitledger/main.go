// Package main provides the entry point for the gitledger CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitledger/cmd/gitledger/commands"
	"github.com/Sumatoshi-tech/gitledger/pkg/version"
)

var (
	verbose bool
	quiet   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gitledger",
		Short: "Gitledger - reconciled change ledgers from git history",
		Long: `Gitledger turns interleaved git history exports into flat per-file
change records and aggregates.

Commands:
  export    Write the numstat history log of a repository
  flatten   Reconcile a history log into per-file change records
  summary   Aggregate change records by author, language and file
  recursion Detect recursive database calls in a Neo4j code graph
  mcp       Start MCP server for AI agent integration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")
	rootCmd.PersistentFlags().String("config", "", "config file path (default: gitledger.yaml in ., ./config, /etc/gitledger)")

	// Add commands.
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewFlattenCommand())
	rootCmd.AddCommand(commands.NewSummaryCommand())
	rootCmd.AddCommand(commands.NewRecursionCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "gitledger %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}

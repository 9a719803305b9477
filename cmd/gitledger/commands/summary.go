package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitledger/pkg/export"
	"github.com/Sumatoshi-tech/gitledger/pkg/histlog"
	"github.com/Sumatoshi-tech/gitledger/pkg/reconcile"
	"github.com/Sumatoshi-tech/gitledger/pkg/render"
	"github.com/Sumatoshi-tech/gitledger/pkg/summary"
)

// SummaryCommand holds configuration for the summary command.
type SummaryCommand struct {
	format      string
	repo        string
	top         int
	since       string
	firstParent bool
	limit       int
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand() *cobra.Command {
	sc := &SummaryCommand{}

	cmd := &cobra.Command{
		Use:   "summary [log-file]",
		Short: "Aggregate change records by author, language and file",
		Long: `Reconcile a history log and aggregate the change records into per-author,
per-language and per-file statistics. Reads the log file argument, stdin
when the argument is - or absent, or exports a repository directly with
--repo.`,
		Args: cobra.MaximumNArgs(1),
		RunE: sc.run,
	}

	cmd.Flags().StringVarP(&sc.format, "format", "f", render.FormatTable, "Output format: yaml, json, table, plot")
	cmd.Flags().StringVar(&sc.repo, "repo", "", "Export and summarize a repository path instead of reading a log")
	cmd.Flags().IntVar(&sc.top, "top", 0, "Rows per table section (0 = config value, negative = unlimited)")
	cmd.Flags().StringVar(&sc.since, "since", "", "Only export commits after this time (with --repo)")
	cmd.Flags().BoolVar(&sc.firstParent, "first-parent", false, "Follow only first parent of merge commits (with --repo)")
	cmd.Flags().IntVar(&sc.limit, "limit", 0, "Limit number of commits to export (with --repo; 0 = no limit)")

	return cmd
}

func (sc *SummaryCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	providers, err := initObservability(cmd, cfg)
	if err != nil {
		return err
	}
	defer shutdownProviders(providers)

	maxBytes, err := cfg.Parse.MaxLineSizeBytes()
	if err != nil {
		return err
	}

	records, stats, source, err := sc.load(cmd, args, &histlog.ParseOptions{MaxLineSize: maxBytes})
	if err != nil {
		return err
	}

	logReconcileStats(providers.Logger, source, stats, len(records))

	top := cfg.Summary.Top
	if cmd.Flags().Changed("top") {
		top = sc.top
	}

	serializer := &summary.Serializer{Top: top}

	return serializer.Serialize(summary.Summarize(records), sc.format, cmd.OutOrStdout())
}

func (sc *SummaryCommand) load(
	cmd *cobra.Command,
	args []string,
	parseOpts *histlog.ParseOptions,
) ([]histlog.ChangeRecord, histlog.Stats, string, error) {
	if sc.repo != "" {
		records, stats, err := exportRecords(cmd.Context(), sc.repo, export.Options{
			Since:       sc.since,
			FirstParent: sc.firstParent,
			Limit:       sc.limit,
		}, parseOpts)

		return records, stats, sc.repo, err
	}

	in, source, err := openLogInput(cmd, args)
	if err != nil {
		return nil, histlog.Stats{}, "", err
	}

	defer func() { _ = in.Close() }()

	records, stats, err := reconcile.Flatten(in, parseOpts)

	return records, stats, source, err
}

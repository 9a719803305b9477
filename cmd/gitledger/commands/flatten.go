package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitledger/pkg/config"
	"github.com/Sumatoshi-tech/gitledger/pkg/export"
	"github.com/Sumatoshi-tech/gitledger/pkg/histlog"
	"github.com/Sumatoshi-tech/gitledger/pkg/reconcile"
	"github.com/Sumatoshi-tech/gitledger/pkg/render"
)

// FlattenCommand holds configuration for the flatten command.
type FlattenCommand struct {
	format      string
	repo        string
	maxLineSize string
	since       string
	firstParent bool
	limit       int
}

// NewFlattenCommand creates the flatten command.
func NewFlattenCommand() *cobra.Command {
	fc := &FlattenCommand{}

	cmd := &cobra.Command{
		Use:   "flatten [log-file]",
		Short: "Reconcile a history log into per-file change records",
		Long: `Reconcile an interleaved numstat history log into flat per-file change
records. Reads the log file argument, stdin when the argument is - or
absent, or exports a repository directly with --repo.

The expected input is the output of the export command, equivalently:

  ` + export.GitCommand,
		Args: cobra.MaximumNArgs(1),
		RunE: fc.run,
	}

	cmd.Flags().StringVarP(&fc.format, "format", "f", render.FormatYAML, "Output format: yaml, json, csv, table, plot")
	cmd.Flags().StringVar(&fc.repo, "repo", "", "Export and reconcile a repository path instead of reading a log")
	cmd.Flags().StringVar(&fc.maxLineSize, "max-line-size", "", "Maximum log line size (e.g., '1MiB'; empty = config value)")
	cmd.Flags().StringVar(&fc.since, "since", "", "Only export commits after this time (with --repo)")
	cmd.Flags().BoolVar(&fc.firstParent, "first-parent", false, "Follow only first parent of merge commits (with --repo)")
	cmd.Flags().IntVar(&fc.limit, "limit", 0, "Limit number of commits to export (with --repo; 0 = no limit)")

	return cmd
}

func (fc *FlattenCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	providers, err := initObservability(cmd, cfg)
	if err != nil {
		return err
	}
	defer shutdownProviders(providers)

	parseOpts, err := fc.parseOptions(cfg)
	if err != nil {
		return err
	}

	records, stats, source, err := fc.load(cmd, args, parseOpts)
	if err != nil {
		return err
	}

	logReconcileStats(providers.Logger, source, stats, len(records))

	return render.Records(records, fc.format, cmd.OutOrStdout())
}

// parseOptions resolves the line size limit, letting the flag override the
// configured value.
func (fc *FlattenCommand) parseOptions(cfg *config.Config) (*histlog.ParseOptions, error) {
	parseCfg := cfg.Parse
	if fc.maxLineSize != "" {
		parseCfg.MaxLineSize = fc.maxLineSize
	}

	maxBytes, err := parseCfg.MaxLineSizeBytes()
	if err != nil {
		return nil, err
	}

	return &histlog.ParseOptions{MaxLineSize: maxBytes}, nil
}

func (fc *FlattenCommand) load(
	cmd *cobra.Command,
	args []string,
	parseOpts *histlog.ParseOptions,
) ([]histlog.ChangeRecord, histlog.Stats, string, error) {
	if fc.repo != "" {
		records, stats, err := exportRecords(cmd.Context(), fc.repo, export.Options{
			Since:       fc.since,
			FirstParent: fc.firstParent,
			Limit:       fc.limit,
		}, parseOpts)

		return records, stats, fc.repo, err
	}

	in, source, err := openLogInput(cmd, args)
	if err != nil {
		return nil, histlog.Stats{}, "", err
	}

	defer func() { _ = in.Close() }()

	records, stats, err := reconcile.Flatten(in, parseOpts)

	return records, stats, source, err
}

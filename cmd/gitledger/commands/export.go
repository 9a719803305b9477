package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/pierrec/lz4/v4"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitledger/pkg/export"
	"github.com/Sumatoshi-tech/gitledger/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitledger/pkg/histlog"
)

// ExportCommand holds configuration for the export command.
type ExportCommand struct {
	output      string
	since       string
	firstParent bool
	limit       int
	compress    bool
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	ec := &ExportCommand{}

	cmd := &cobra.Command{
		Use:   "export [repository]",
		Short: "Write the numstat history log of a repository",
		Long: `Write the tab-delimited numstat history log of a local repository,
oldest commit first. The output matches:

  ` + export.GitCommand + `

and is the input format of the flatten and summary commands.`,
		Args: cobra.MaximumNArgs(1),
		RunE: ec.run,
	}

	cmd.Flags().StringVarP(&ec.output, "output", "o", stdioPath, "Output file path (- = stdout)")
	cmd.Flags().StringVar(&ec.since, "since", "", "Only export commits after this time (e.g., '24h', '2024-01-01', RFC3339)")
	cmd.Flags().BoolVar(&ec.firstParent, "first-parent", false, "Follow only first parent of merge commits")
	cmd.Flags().IntVar(&ec.limit, "limit", 0, "Limit number of commits to export (0 = no limit)")
	cmd.Flags().BoolVar(&ec.compress, "compress", false, "Compress the output with LZ4 (implied by a .lz4 output path)")

	return cmd
}

func (ec *ExportCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	providers, err := initObservability(cmd, cfg)
	if err != nil {
		return err
	}
	defer shutdownProviders(providers)

	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	repository, err := gitlib.LoadRepository(path)
	if err != nil {
		return fmt.Errorf("load repository: %w", err)
	}
	defer repository.Free()

	out, closeOut, err := ec.openOutput(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	exporter := export.New(export.Options{
		Since:       ec.since,
		FirstParent: ec.firstParent,
		Limit:       ec.limit,
	})

	startedAt := time.Now()

	err = exporter.Export(cmd.Context(), repository, out)
	if err != nil {
		_ = closeOut()

		return err
	}

	err = closeOut()
	if err != nil {
		return err
	}

	providers.Logger.Debug("history exported",
		"repository", path,
		"output", ec.output,
		"elapsed", time.Since(startedAt).Round(time.Millisecond),
	)

	return nil
}

// openOutput resolves the export destination and its close function. File
// destinations are closed on completion; the stdout writer is flushed but
// left open.
func (ec *ExportCommand) openOutput(stdout io.Writer) (io.Writer, func() error, error) {
	if ec.output == "" || ec.output == stdioPath {
		if !ec.compress {
			return stdout, func() error { return nil }, nil
		}

		zw := lz4.NewWriter(stdout)

		return zw, func() error {
			err := zw.Close()
			if err != nil {
				return fmt.Errorf("flush lz4 frame: %w", err)
			}

			return nil
		}, nil
	}

	f, err := histlog.CreateFile(ec.output, ec.compress)
	if err != nil {
		return nil, nil, err
	}

	return f, f.Close, nil
}

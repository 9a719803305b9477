package render

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/gitledger/pkg/histlog"
)

// maxMessageWidth truncates commit messages in table output so wide subjects
// do not wrap the whole table.
const maxMessageWidth = 48

func renderTable(records []histlog.ChangeRecord, w io.Writer) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false

	header := make(table.Row, len(csvHeader))
	for i, col := range csvHeader {
		header[i] = col
	}

	tbl.AppendHeader(header)

	for _, rec := range records {
		tbl.AppendRow(table.Row{
			countField(rec.Additions, rec.Binary),
			countField(rec.Deletions, rec.Binary),
			rec.Path,
			rec.Hash,
			time.Unix(rec.Timestamp, 0).UTC().Format(time.RFC3339),
			rec.Author,
			truncate(rec.Message, maxMessageWidth),
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("%s changes", humanize.Comma(int64(len(records))))})

	_, err := fmt.Fprintln(w, tbl.Render())
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	return nil
}

// truncate shortens s to at most width runes, appending an ellipsis.
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}

	return string(runes[:width-1]) + "…"
}

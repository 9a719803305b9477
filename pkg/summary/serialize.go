package summary

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/gitledger/pkg/render"
)

// DefaultTop caps the rows shown per table section when Top is zero.
const DefaultTop = 20

// Serializer writes summaries in the supported output formats.
type Serializer struct {
	// Top caps the rows per table section. Zero means DefaultTop, negative
	// means unlimited. yaml, json and plot output is never capped.
	Top int
}

// Formats lists the supported summary format names.
func Formats() []string {
	return []string{render.FormatYAML, render.FormatJSON, render.FormatTable, render.FormatPlot}
}

// Serialize writes the summary to the writer in the given format.
func (sz *Serializer) Serialize(s *Summary, format string, w io.Writer) error {
	if s == nil {
		s = &Summary{}
	}

	switch format {
	case render.FormatYAML:
		return serializeYAML(s, w)
	case render.FormatJSON:
		return serializeJSON(s, w)
	case render.FormatTable:
		return sz.serializeTable(s, w)
	case render.FormatPlot:
		return serializePlot(s, w)
	default:
		return fmt.Errorf("%w: %q (expected one of: %s)", render.ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}
}

func serializeYAML(s *Summary, w io.Writer) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("yaml write: %w", err)
	}

	return nil
}

func serializeJSON(s *Summary, w io.Writer) error {
	err := json.NewEncoder(w).Encode(s)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

func (sz *Serializer) serializeTable(s *Summary, w io.Writer) error {
	limit := sz.limit()

	sections := []string{
		authorsTable(s.Authors, limit),
		languagesTable(s.Languages, limit),
		filesTable(s.Files, limit),
		totalsBlock(s.Totals),
	}

	_, err := fmt.Fprintln(w, strings.Join(sections, "\n\n"))
	if err != nil {
		return fmt.Errorf("render summary tables: %w", err)
	}

	return nil
}

// limit resolves Top to a row cap; zero means unlimited.
func (sz *Serializer) limit() int {
	switch {
	case sz.Top < 0:
		return 0
	case sz.Top == 0:
		return DefaultTop
	default:
		return sz.Top
	}
}

func newSectionTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false

	return tbl
}

// sectionFooter reports how many of the aggregated rows made the cut.
func sectionFooter(shown, total int) string {
	if shown == total {
		return fmt.Sprintf("%s total", humanize.Comma(int64(total)))
	}

	return fmt.Sprintf("top %s of %s", humanize.Comma(int64(shown)), humanize.Comma(int64(total)))
}

func authorsTable(authors []AuthorStats, limit int) string {
	total := len(authors)
	if limit > 0 && total > limit {
		authors = authors[:limit]
	}

	tbl := newSectionTable()
	tbl.AppendHeader(table.Row{"author", "commits", "files", "additions", "deletions"})

	for _, a := range authors {
		tbl.AppendRow(table.Row{a.Name, a.Commits, a.Files, a.Additions, a.Deletions})
	}

	tbl.AppendFooter(table.Row{sectionFooter(len(authors), total)})

	return "Authors:\n" + tbl.Render()
}

func languagesTable(languages []LanguageStats, limit int) string {
	total := len(languages)
	if limit > 0 && total > limit {
		languages = languages[:limit]
	}

	tbl := newSectionTable()
	tbl.AppendHeader(table.Row{"language", "files", "additions", "deletions"})

	for _, l := range languages {
		tbl.AppendRow(table.Row{l.Language, l.Files, l.Additions, l.Deletions})
	}

	tbl.AppendFooter(table.Row{sectionFooter(len(languages), total)})

	return "Languages:\n" + tbl.Render()
}

func filesTable(files []FileStats, limit int) string {
	total := len(files)
	if limit > 0 && total > limit {
		files = files[:limit]
	}

	tbl := newSectionTable()
	tbl.AppendHeader(table.Row{"path", "changes", "additions", "deletions", "last touched"})

	for _, f := range files {
		tbl.AppendRow(table.Row{
			f.Path,
			f.Changes,
			f.Additions,
			f.Deletions,
			time.Unix(f.LastTouch, 0).UTC().Format(time.RFC3339),
		})
	}

	tbl.AppendFooter(table.Row{sectionFooter(len(files), total)})

	return "Files:\n" + tbl.Render()
}

func totalsBlock(t Totals) string {
	span := "n/a"
	if t.Records > 0 {
		span = fmt.Sprintf("%s to %s",
			time.Unix(t.FirstCommit, 0).UTC().Format(time.RFC3339),
			time.Unix(t.LastCommit, 0).UTC().Format(time.RFC3339),
		)
	}

	lines := []string{
		fmt.Sprintf("records: %s", humanize.Comma(int64(t.Records))),
		fmt.Sprintf("commits: %s", humanize.Comma(int64(t.Commits))),
		fmt.Sprintf("authors: %s", humanize.Comma(int64(t.Authors))),
		fmt.Sprintf("files: %s", humanize.Comma(int64(t.Files))),
		fmt.Sprintf("additions: %s", humanize.Comma(int64(t.Additions))),
		fmt.Sprintf("deletions: %s", humanize.Comma(int64(t.Deletions))),
		fmt.Sprintf("binary changes: %s", humanize.Comma(int64(t.BinaryChanges))),
		fmt.Sprintf("span: %s", span),
	}

	return "Totals:\n" + strings.Join(lines, "\n")
}

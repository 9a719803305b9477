package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/gitledger/pkg/histlog"
)

const (
	shortHashLen = 8
	fullZoomPct  = 100
)

// commitTotals is the per-commit additions/deletions rollup behind the plot.
type commitTotals struct {
	hash      string
	timestamp int64
	additions int
	deletions int
}

func renderPlot(records []histlog.ChangeRecord, w io.Writer) error {
	chart, err := GenerateChart(records)
	if err != nil {
		return fmt.Errorf("generate chart: %w", err)
	}

	r, ok := chart.(interface{ Render(io.Writer) error })
	if !ok {
		return fmt.Errorf("%w: chart does not support Render", ErrUnknownFormat)
	}

	err = r.Render(w)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	return nil
}

// GenerateChart builds an interactive bar chart of lines added and deleted
// per commit, ordered by commit time.
func GenerateChart(records []histlog.ChangeRecord) (components.Charter, error) {
	totals := aggregateByCommit(records)
	if len(totals) == 0 {
		return createEmptyChart(), nil
	}

	xLabels := make([]string, len(totals))
	added := make([]opts.BarData, len(totals))
	deleted := make([]opts.BarData, len(totals))

	for i, ct := range totals {
		xLabels[i] = shortHash(ct.hash)
		added[i] = opts.BarData{Value: ct.additions}
		deleted[i] = opts.BarData{Value: ct.deletions}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Change Volume History",
			Subtitle: "Lines added and deleted per commit",
			Left:     "2%",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "5px",
			Left: "40%",
		}),
		charts.WithGridOpts(opts.Grid{
			Top:    "15%",
			Bottom: "10%",
			Left:   "5%",
			Right:  "5%",
		}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: fullZoomPct}, opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Commit"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Lines"}),
	)
	bar.SetXAxis(xLabels)
	bar.AddSeries("added", added)
	bar.AddSeries("deleted", deleted)

	return bar, nil
}

// aggregateByCommit sums counts per commit hash, ordered by commit time with
// input order breaking ties.
func aggregateByCommit(records []histlog.ChangeRecord) []commitTotals {
	idx := make(map[string]int)
	totals := make([]commitTotals, 0)

	for _, rec := range records {
		i, ok := idx[rec.Hash]
		if !ok {
			i = len(totals)
			idx[rec.Hash] = i

			totals = append(totals, commitTotals{hash: rec.Hash, timestamp: rec.Timestamp})
		}

		totals[i].additions += rec.Additions
		totals[i].deletions += rec.Deletions
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].timestamp < totals[j].timestamp
	})

	return totals
}

func shortHash(hash string) string {
	if len(hash) <= shortHashLen {
		return hash
	}

	return hash[:shortHashLen]
}

func createEmptyChart() *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Change Volume History",
			Subtitle: "No data (empty history log)",
		}),
	)
	bar.SetXAxis([]string{})

	return bar
}

package summary

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	pieRadius = "60%"

	// chartMaxBars keeps the bar charts legible for histories with many
	// authors or files; tables and structured formats stay uncapped.
	chartMaxBars = 30
)

func serializePlot(s *Summary, w io.Writer) error {
	err := BuildPage(s).Render(w)
	if err != nil {
		return fmt.Errorf("render summary page: %w", err)
	}

	return nil
}

// BuildPage assembles the author, language and churn charts into one HTML page.
func BuildPage(s *Summary) *components.Page {
	page := components.NewPage()
	page.PageTitle = "gitledger summary"
	page.SetLayout(components.PageFlexLayout)

	page.AddCharts(
		authorsChart(s.Authors),
		languagesChart(s.Languages),
		churnChart(s.Files),
	)

	return page
}

func authorsChart(authors []AuthorStats) *charts.Bar {
	if len(authors) > chartMaxBars {
		authors = authors[:chartMaxBars]
	}

	subtitle := "Lines added and deleted per author"
	if len(authors) == 0 {
		subtitle = "No data"
	}

	names := make([]string, len(authors))
	added := make([]opts.BarData, len(authors))
	deleted := make([]opts.BarData, len(authors))

	for i, a := range authors {
		names[i] = a.Name
		added[i] = opts.BarData{Value: a.Additions}
		deleted[i] = opts.BarData{Value: a.Deletions}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Authors",
			Subtitle: subtitle,
			Left:     "2%",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "5px",
			Left: "40%",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Author"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Lines"}),
	)
	bar.SetXAxis(names)
	bar.AddSeries("added", added)
	bar.AddSeries("deleted", deleted)

	return bar
}

func languagesChart(languages []LanguageStats) *charts.Pie {
	subtitle := "Files per detected language"
	if len(languages) == 0 {
		subtitle = "No data"
	}

	data := make([]opts.PieData, len(languages))
	for i, l := range languages {
		data[i] = opts.PieData{Name: l.Language, Value: l.Files}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Languages",
			Subtitle: subtitle,
			Left:     "2%",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
	)

	pie.AddSeries("languages", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c} ({d}%)",
			}),
			charts.WithPieChartOpts(opts.PieChart{
				Radius: pieRadius,
			}),
		)

	return pie
}

func churnChart(files []FileStats) *charts.Bar {
	if len(files) > chartMaxBars {
		files = files[:chartMaxBars]
	}

	subtitle := "Most frequently changed files"
	if len(files) == 0 {
		subtitle = "No data"
	}

	paths := make([]string, len(files))
	changes := make([]opts.BarData, len(files))

	for i, f := range files {
		paths[i] = f.Path
		changes[i] = opts.BarData{Value: f.Changes}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Churn",
			Subtitle: subtitle,
			Left:     "2%",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "File"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Changes"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}, opts.DataZoom{Type: "inside"}),
	)
	bar.SetXAxis(paths)
	bar.AddSeries("changes", changes)

	return bar
}

// Package charts renders collection progress as interactive HTML charts.
package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/zjoart/kenshicollection/internal/progress"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title    string // Chart title
	Subtitle string // Chart subtitle
	Width    string // Chart width (e.g., "900px")
	Height   string // Chart height (e.g., "500px")
	Theme    string // Chart theme
	Color    string // Bar colour
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:  "Collection progress",
		Width:  "900px",
		Height: "500px",
		Theme:  "light",
		Color:  "#182558",
	}
}

// RenderProgressChart writes a bar chart of per-category completion (0-100)
// as a standalone HTML page.
func RenderProgressChart(w io.Writer, cats []progress.Category, total progress.Summary, config ChartConfig) error {
	bar := charts.NewBar()

	subtitle := config.Subtitle
	if subtitle == "" {
		subtitle = "TOTAL: " + total.Text()
	}

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "%",
			Min:  0,
			Max:  100,
		}),
		charts.WithColorsOpts(opts.Colors{config.Color}),
	)

	labels := make([]string, len(cats))
	data := make([]opts.BarData, len(cats))
	for i, c := range cats {
		labels[i] = c.Category
		data[i] = opts.BarData{Name: c.Text(), Value: c.Percent}
	}

	bar.SetXAxis(labels).
		AddSeries("Owned", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Position:  "top",
				Formatter: "{c}%",
			}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

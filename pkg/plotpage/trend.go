package plotpage

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/trendmerge/pkg/align"
)

// Chart size.
const (
	chartWidth  = "100%"
	chartHeight = "600px"
)

// TrendChartOptions configures BuildTrendChart.
type TrendChartOptions struct {
	Title      string
	XAxisLabel string
	YAxisLabel string
	Theme      Theme
	// TimeLayout formats x-axis labels. Empty uses YYYY-MM-DD.
	TimeLayout string
}

// BuildTrendChart draws one line per metric of t over its timestamps, with
// a legend, axis labels and the chart title. Missing values leave gaps.
func BuildTrendChart(t *align.Table, o TrendChartOptions) *charts.Line {
	cOpts := NewChartOpts(o.Theme)

	layout := o.TimeLayout
	if layout == "" {
		layout = time.DateOnly
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(cOpts.Init(o.Title, chartWidth, chartHeight)),
		charts.WithTitleOpts(cOpts.Title(o.Title)),
		charts.WithTooltipOpts(cOpts.Tooltip()),
		charts.WithLegendOpts(cOpts.Legend()),
		charts.WithDataZoomOpts(cOpts.DataZoom()...),
		charts.WithGridOpts(cOpts.Grid()),
		charts.WithXAxisOpts(cOpts.XAxis(o.XAxisLabel)),
		charts.WithYAxisOpts(cOpts.YAxis(o.YAxisLabel)),
	)

	labels := make([]string, len(t.Times))
	for i, ts := range t.Times {
		labels[i] = ts.Format(layout)
	}

	line.SetXAxis(labels)

	for m, metric := range t.Metrics {
		data := make([]opts.LineData, len(t.Values[m]))

		for i, v := range t.Values[m] {
			if math.IsNaN(v) {
				data[i] = opts.LineData{Value: nil}

				continue
			}

			data[i] = opts.LineData{Value: v}
		}

		color := cOpts.SeriesColor(m)
		line.AddSeries(metric, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: color}),
		)
	}

	return line
}

// WriteChart renders chart as a standalone HTML page.
func WriteChart(w io.Writer, chart *charts.Line) error {
	err := chart.Render(w)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	return nil
}

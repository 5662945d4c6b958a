package plotpage_test

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/trendmerge/pkg/align"
	"github.com/Sumatoshi-tech/trendmerge/pkg/plotpage"
)

func sampleTable() *align.Table {
	return &align.Table{
		Times: []time.Time{
			time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		Metrics: []string{"Cargo Pants", "Maxi Skirt"},
		Values:  [][]float64{{10, math.NaN()}, {3, 4}},
	}
}

func TestBuildTrendChart(t *testing.T) {
	t.Parallel()

	chart := plotpage.BuildTrendChart(sampleTable(), plotpage.TrendChartOptions{
		Title:      "Popularity",
		XAxisLabel: "Time",
		YAxisLabel: "Search Interest (0-100)",
		Theme:      plotpage.ThemeDark,
	})
	require.NotNil(t, chart)
	require.Len(t, chart.MultiSeries, 2)
	assert.Equal(t, "Cargo Pants", chart.MultiSeries[0].Name)
	assert.Equal(t, "Maxi Skirt", chart.MultiSeries[1].Name)
}

func TestWriteChart(t *testing.T) {
	t.Parallel()

	chart := plotpage.BuildTrendChart(sampleTable(), plotpage.TrendChartOptions{Title: "Popularity UK"})

	var buf bytes.Buffer
	require.NoError(t, plotpage.WriteChart(&buf, chart))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Popularity UK")
	assert.Contains(t, html, "Cargo Pants")
	assert.Contains(t, html, "2020-02-01")
}

func TestBuildTrendChart_EmptyTable(t *testing.T) {
	t.Parallel()

	table := &align.Table{Metrics: []string{"A"}, Values: [][]float64{{}}}
	chart := plotpage.BuildTrendChart(table, plotpage.TrendChartOptions{})

	require.Len(t, chart.MultiSeries, 1)

	var buf bytes.Buffer
	require.NoError(t, plotpage.WriteChart(&buf, chart))
}

func TestParseTheme(t *testing.T) {
	t.Parallel()

	theme, err := plotpage.ParseTheme(" Dark ")
	require.NoError(t, err)
	assert.Equal(t, plotpage.ThemeDark, theme)

	_, err = plotpage.ParseTheme("neon")
	require.ErrorIs(t, err, plotpage.ErrUnknownTheme)
}

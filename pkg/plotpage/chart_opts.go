package plotpage

import (
	"github.com/go-echarts/go-echarts/v2/opts"
)

const dataZoomEndPercent = 100

// ChartOpts provides themed chart options.
type ChartOpts struct {
	theme ThemeConfig
}

// NewChartOpts creates ChartOpts for the given theme.
func NewChartOpts(theme Theme) *ChartOpts {
	return &ChartOpts{theme: GetThemeConfig(theme)}
}

// Init returns initialization options. pageTitle becomes the HTML title.
func (c *ChartOpts) Init(pageTitle, width, height string) opts.Initialization {
	return opts.Initialization{
		PageTitle:       pageTitle,
		Width:           width,
		Height:          height,
		BackgroundColor: c.theme.Background,
	}
}

// Title returns a centered title.
func (c *ChartOpts) Title(title string) opts.Title {
	return opts.Title{
		Title:      title,
		Left:       "center",
		TitleStyle: &opts.TextStyle{Color: c.theme.Text},
	}
}

// Legend returns a scrollable legend centered below the title.
func (c *ChartOpts) Legend() opts.Legend {
	return opts.Legend{
		Show:      opts.Bool(true),
		Type:      "scroll",
		Top:       "8%",
		Left:      "center",
		TextStyle: &opts.TextStyle{Color: c.theme.TextMuted},
	}
}

// XAxis returns x-axis options with name centered under the axis.
func (c *ChartOpts) XAxis(name string) opts.XAxis {
	return opts.XAxis{
		Name:         name,
		NameLocation: "middle",
		NameGap:      30,
		AxisLabel:    &opts.AxisLabel{Color: c.theme.TextMuted},
		AxisLine:     &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.Axis}},
	}
}

// YAxis returns y-axis options with themed split lines.
func (c *ChartOpts) YAxis(name string) opts.YAxis {
	return opts.YAxis{
		Name:      name,
		AxisLabel: &opts.AxisLabel{Color: c.theme.TextMuted},
		AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.Axis}},
		SplitLine: &opts.SplitLine{
			Show:      opts.Bool(true),
			LineStyle: &opts.LineStyle{Color: c.theme.Grid},
		},
	}
}

// Grid returns grid options leaving room for the title and legend.
func (c *ChartOpts) Grid() opts.Grid {
	return opts.Grid{
		Top:          "18%",
		Bottom:       "18%",
		Left:         "5%",
		Right:        "5%",
		ContainLabel: opts.Bool(true),
	}
}

// DataZoom returns slider and inside zoom options over the full range.
func (c *ChartOpts) DataZoom() []opts.DataZoom {
	return []opts.DataZoom{
		{Type: "slider", Start: 0, End: dataZoomEndPercent},
		{Type: "inside"},
	}
}

// Tooltip returns an axis-triggered tooltip.
func (c *ChartOpts) Tooltip() opts.Tooltip {
	return opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}
}

// SeriesColor returns the palette color of the i-th series.
func (c *ChartOpts) SeriesColor(i int) string {
	return c.theme.Palette[i%len(c.theme.Palette)]
}

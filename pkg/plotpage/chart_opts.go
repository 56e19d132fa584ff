package plotpage

import (
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Chart sizes.
const (
	overviewHeight   = "500px"
	comparisonWidth  = "400px"
	comparisonHeight = "400px"
)

// ChartOpts provides themed chart options based on the current theme.
type ChartOpts struct {
	theme   ThemeConfig
	palette ChartPalette
}

// NewChartOpts creates a new ChartOpts with the given theme.
func NewChartOpts(theme Theme) *ChartOpts {
	return &ChartOpts{theme: GetThemeConfig(theme), palette: GetChartPalette(theme)}
}

// DefaultChartOpts returns chart options for the default light theme.
func DefaultChartOpts() *ChartOpts {
	return NewChartOpts(ThemeLight)
}

// Init returns initialization options with themed background.
func (c *ChartOpts) Init(width, height string) opts.Initialization {
	return opts.Initialization{
		Width:           width,
		Height:          height,
		BackgroundColor: c.theme.ChartBackground,
	}
}

// Title returns title options with themed text colors.
func (c *ChartOpts) Title(title string) opts.Title {
	return opts.Title{
		Title:      title,
		Left:       "center",
		TitleStyle: &opts.TextStyle{Color: c.theme.ChartText, FontSize: 14},
	}
}

// XAxis returns x-axis options with themed colors.
func (c *ChartOpts) XAxis(name string) opts.XAxis {
	return opts.XAxis{
		Name:      name,
		AxisLabel: &opts.AxisLabel{Color: c.theme.ChartTextMuted},
		AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.ChartAxis}},
	}
}

// YAxis returns y-axis options with themed colors.
func (c *ChartOpts) YAxis(name string) opts.YAxis {
	return opts.YAxis{
		Name:      name,
		AxisLabel: &opts.AxisLabel{Color: c.theme.ChartTextMuted},
		AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.ChartAxis}},
		SplitLine: &opts.SplitLine{
			Show:      opts.Bool(true),
			LineStyle: &opts.LineStyle{Color: c.theme.ChartGrid},
		},
	}
}

// Grid returns grid options with standard margins.
func (c *ChartOpts) Grid() opts.Grid {
	return opts.Grid{
		Top:          "15%",
		Bottom:       "12%",
		Left:         "5%",
		Right:        "5%",
		ContainLabel: opts.Bool(true),
	}
}

// Tooltip returns tooltip options.
func (c *ChartOpts) Tooltip(trigger string) opts.Tooltip {
	return opts.Tooltip{Show: opts.Bool(true), Trigger: trigger}
}

// MarkerLabel returns the label style for annotation markers.
func (c *ChartOpts) MarkerLabel() *opts.Label {
	return &opts.Label{
		Show:      opts.Bool(true),
		Color:     c.theme.ChartMarker,
		Position:  "top",
		Formatter: "{b}",
	}
}

// LineColor returns the overview series color.
func (c *ChartOpts) LineColor() string {
	return c.palette.Line
}

// PairColor returns the bar color for the i-th year of a comparison.
func (c *ChartOpts) PairColor(i int) string {
	return c.palette.Pair[i%len(c.palette.Pair)]
}

package plotpage

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Mark is a labelled marker pinned to one point of a line series.
type Mark struct {
	Label string
	Index int // Position in the x-axis labels.
	Value int
}

// LineSeries defines the properties and data for a single line chart series.
type LineSeries struct {
	Name  string
	Data  []int
	Color string // Optional, uses theme if empty.
	Marks []Mark
}

// BarPoint is one bar with its own color.
type BarPoint struct {
	Label string
	Value int
	Color string // Optional, uses the palette pair color if empty.
}

// Axes names the two chart axes.
type Axes struct {
	X string
	Y string
}

// BuildLineChart constructs a fully configured go-echarts Line chart using ChartOpts.
// If cOpts is nil, DefaultChartOpts() is used.
func BuildLineChart(cOpts *ChartOpts, title string, labels []string, series []LineSeries, axes Axes) *charts.Line {
	if cOpts == nil {
		cOpts = DefaultChartOpts()
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(cOpts.Init("100%", overviewHeight)),
		charts.WithTitleOpts(cOpts.Title(title)),
		charts.WithTooltipOpts(cOpts.Tooltip("axis")),
		charts.WithGridOpts(cOpts.Grid()),
		charts.WithXAxisOpts(cOpts.XAxis(axes.X)),
		charts.WithYAxisOpts(cOpts.YAxis(axes.Y)),
	)

	line.SetXAxis(labels)

	for _, s := range series {
		lineData := make([]opts.LineData, len(s.Data))
		for i, v := range s.Data {
			lineData[i] = opts.LineData{Value: v}
		}

		color := s.Color
		if color == "" {
			color = cOpts.LineColor()
		}

		seriesOpts := []charts.SeriesOpts{
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 2}),
		}

		if len(s.Marks) > 0 {
			seriesOpts = append(seriesOpts,
				charts.WithMarkPointNameCoordItemOpts(markPoints(labels, s.Marks)...),
				charts.WithMarkPointStyleOpts(opts.MarkPointStyle{Label: cOpts.MarkerLabel()}),
			)
		}

		line.AddSeries(s.Name, lineData, seriesOpts...)
	}

	return line
}

func markPoints(labels []string, marks []Mark) []opts.MarkPointNameCoordItem {
	items := make([]opts.MarkPointNameCoordItem, 0, len(marks))

	for _, m := range marks {
		if m.Index < 0 || m.Index >= len(labels) {
			continue
		}

		items = append(items, opts.MarkPointNameCoordItem{
			Name:       m.Label,
			Coordinate: []any{labels[m.Index], m.Value},
		})
	}

	return items
}

// BuildBarChart constructs a single-series bar chart where every bar carries
// its own color. If cOpts is nil, DefaultChartOpts() is used.
func BuildBarChart(cOpts *ChartOpts, title string, points []BarPoint, axes Axes) *charts.Bar {
	if cOpts == nil {
		cOpts = DefaultChartOpts()
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(cOpts.Init(comparisonWidth, comparisonHeight)),
		charts.WithTitleOpts(cOpts.Title(title)),
		charts.WithTooltipOpts(cOpts.Tooltip("item")),
		charts.WithGridOpts(cOpts.Grid()),
		charts.WithXAxisOpts(cOpts.XAxis(axes.X)),
		charts.WithYAxisOpts(cOpts.YAxis(axes.Y)),
	)

	labels := make([]string, len(points))
	barData := make([]opts.BarData, len(points))

	for i, p := range points {
		color := p.Color
		if color == "" {
			color = cOpts.PairColor(i)
		}

		labels[i] = p.Label
		barData[i] = opts.BarData{
			Name:      p.Label,
			Value:     p.Value,
			ItemStyle: &opts.ItemStyle{Color: color},
		}
	}

	bar.SetXAxis(labels)
	bar.AddSeries(title, barData)

	return bar
}

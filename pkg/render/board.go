// Package render is the rendering adapter of the story: a Board that owns the
// chart, annotation and narrative surfaces a scene entry resets and draws, and
// composes them into a plotpage.Page.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/Sumatoshi-tech/gamestory/pkg/aggregate"
	"github.com/Sumatoshi-tech/gamestory/pkg/plotpage"
	"github.com/Sumatoshi-tech/gamestory/pkg/scene"
	"github.com/Sumatoshi-tech/gamestory/pkg/story"
)

// ErrSeriesShape is returned when a comparison series does not hold exactly
// one value per year of the window.
var ErrSeriesShape = errors.New("comparison series must hold two values in window order")

// Surface names a chart container on the page.
type Surface string

// Chart surfaces.
const (
	SurfaceMain       Surface = "main"
	SurfaceDevelopers Surface = "developers"
	SurfacePublishers Surface = "publishers"
)

// Axis names of the overview chart.
const (
	OverviewXAxis = "Release Year"
	OverviewYAxis = "Number of Games Released"
)

// Board implements scene.Stage and scene.Renderer on in-memory surfaces.
// It is not safe for concurrent use; drive it through a scene.Navigator.
type Board struct {
	chartOpts *plotpage.ChartOpts
	theme     plotpage.Theme
	story     *story.Story
	links     Links
	logger    *slog.Logger

	charts      map[Surface]plotpage.Renderable
	annotations []scene.Annotation
	narrative   scene.Scene
}

// Option configures a Board.
type Option func(*Board)

// WithTheme sets the chart and page theme.
func WithTheme(theme plotpage.Theme) Option {
	return func(b *Board) {
		b.theme = theme
		b.chartOpts = plotpage.NewChartOpts(theme)
	}
}

// WithLinks sets how navigation targets are addressed.
func WithLinks(links Links) Option {
	return func(b *Board) {
		if links != nil {
			b.links = links
		}
	}
}

// WithLogger sets the board logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Board) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBoard creates an empty board narrating st.
func NewBoard(st *story.Story, opts ...Option) *Board {
	b := &Board{
		chartOpts: plotpage.DefaultChartOpts(),
		theme:     plotpage.ThemeLight,
		story:     st,
		links:     FileLinks{},
		logger:    slog.Default().With(slog.String("module", "render")),
		charts:    make(map[Surface]plotpage.Renderable),
		narrative: scene.Overview,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// ClearCharts removes content from every chart surface.
func (b *Board) ClearCharts() {
	clear(b.charts)
}

// ClearAnnotations removes the overview markers.
func (b *Board) ClearAnnotations() {
	b.annotations = nil
}

// ShowNarrative makes the text block of s the only visible one.
func (b *Board) ShowNarrative(s scene.Scene) {
	b.narrative = s
}

// DrawOverview draws the year-count line on the main surface with its markers.
func (b *Board) DrawOverview(ctx context.Context, counts []aggregate.YearCount, marks []scene.Annotation) error {
	labels := make([]string, len(counts))
	values := make([]int, len(counts))
	index := make(map[int]int, len(counts))

	for i, yc := range counts {
		labels[i] = strconv.Itoa(yc.Year)
		values[i] = yc.Count
		index[yc.Year] = i
	}

	chartMarks := make([]plotpage.Mark, 0, len(marks))

	for _, m := range marks {
		i, ok := index[m.Year]
		if !ok {
			continue
		}

		chartMarks = append(chartMarks, plotpage.Mark{Label: m.Label, Index: i, Value: m.Count})
	}

	line := plotpage.BuildLineChart(b.chartOpts, "", labels, []plotpage.LineSeries{{
		Name:  "Games",
		Data:  values,
		Marks: chartMarks,
	}}, plotpage.Axes{X: OverviewXAxis, Y: OverviewYAxis})

	b.charts[SurfaceMain] = plotpage.WrapChart(line)
	b.annotations = slices.Clone(marks)

	b.logger.DebugContext(ctx, "overview drawn",
		slog.Int("years", len(counts)),
		slog.Int("annotations", len(marks)),
	)

	return nil
}

// DrawComparison draws the developer and publisher bars for window.
func (b *Board) DrawComparison(ctx context.Context, window scene.Window, developers, publishers []aggregate.YearValue) error {
	err := checkSeries(window, developers)
	if err != nil {
		return fmt.Errorf("developers: %w", err)
	}

	err = checkSeries(window, publishers)
	if err != nil {
		return fmt.Errorf("publishers: %w", err)
	}

	b.charts[SurfaceDevelopers] = plotpage.WrapChart(b.bars("Developers", window, developers))
	b.charts[SurfacePublishers] = plotpage.WrapChart(b.bars("Publishers", window, publishers))

	b.logger.DebugContext(ctx, "comparison drawn", slog.String("window", window.String()))

	return nil
}

func checkSeries(window scene.Window, series []aggregate.YearValue) error {
	if len(series) != 2 || series[0].Year != window.A || series[1].Year != window.B {
		return fmt.Errorf("%w: got %v for %s", ErrSeriesShape, series, window)
	}

	return nil
}

func (b *Board) bars(subject string, window scene.Window, series []aggregate.YearValue) plotpage.Renderable {
	points := make([]plotpage.BarPoint, len(series))

	for i, yv := range series {
		points[i] = plotpage.BarPoint{
			Label: strconv.Itoa(yv.Year),
			Value: yv.Value,
			Color: b.chartOpts.PairColor(i),
		}
	}

	return plotpage.BuildBarChart(b.chartOpts, fmt.Sprintf("%s (%s)", subject, window), points, plotpage.Axes{})
}

// Snapshot describes what the board currently shows.
type Snapshot struct {
	Narrative   scene.Scene        `json:"narrative"`
	Surfaces    []Surface          `json:"surfaces"`
	Annotations []scene.Annotation `json:"annotations,omitempty"`
}

// Snapshot returns the visible narrative, the non-empty chart surfaces in page
// order, and the current markers.
func (b *Board) Snapshot() Snapshot {
	surfaces := make([]Surface, 0, len(b.charts))

	for _, s := range []Surface{SurfaceMain, SurfaceDevelopers, SurfacePublishers} {
		if _, ok := b.charts[s]; ok {
			surfaces = append(surfaces, s)
		}
	}

	return Snapshot{
		Narrative:   b.narrative,
		Surfaces:    surfaces,
		Annotations: slices.Clone(b.annotations),
	}
}

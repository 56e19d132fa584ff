package scene_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gamestory/pkg/aggregate"
	"github.com/Sumatoshi-tech/gamestory/pkg/dataset"
	"github.com/Sumatoshi-tech/gamestory/pkg/scene"
)

// recorder implements Stage and Renderer and logs every call in order.
type recorder struct {
	calls      []string
	charts     int
	marks      int
	narrative  scene.Scene
	drawErr    error
	lastCounts []aggregate.YearCount
	lastDevs   []aggregate.YearValue
	lastPubs   []aggregate.YearValue
}

func (r *recorder) ClearCharts() {
	r.calls = append(r.calls, "clear-charts")
	r.charts = 0
}

func (r *recorder) ClearAnnotations() {
	r.calls = append(r.calls, "clear-annotations")
	r.marks = 0
}

func (r *recorder) ShowNarrative(s scene.Scene) {
	r.calls = append(r.calls, "narrative:"+s.ID())
	r.narrative = s
}

func (r *recorder) DrawOverview(_ context.Context, counts []aggregate.YearCount, marks []scene.Annotation) error {
	r.calls = append(r.calls, "draw-overview")

	if r.drawErr != nil {
		return r.drawErr
	}

	r.charts = 1
	r.marks = len(marks)
	r.lastCounts = counts

	return nil
}

func (r *recorder) DrawComparison(_ context.Context, window scene.Window, devs, pubs []aggregate.YearValue) error {
	r.calls = append(r.calls, fmt.Sprintf("draw-comparison:%d-%d", window.A, window.B))

	if r.drawErr != nil {
		return r.drawErr
	}

	r.charts = 2
	r.lastDevs = devs
	r.lastPubs = pubs

	return nil
}

func storyRecords() []dataset.GameRecord {
	return []dataset.GameRecord{
		{ReleaseDateRaw: "Oct 21, 2003", Developer: "Valve", Publisher: "Valve"},
		{ReleaseDateRaw: "Mar 3, 2013", Developer: "A", Publisher: "P"},
		{ReleaseDateRaw: "Mar 3, 2014", Developer: "A", Publisher: "P"},
		{ReleaseDateRaw: "Mar 4, 2014", Developer: "B", Publisher: "Q"},
		{ReleaseDateRaw: "Jan 1, 2019", Developer: "C", Publisher: "R"},
		{ReleaseDateRaw: "Jan 1, 2024", Developer: "D", Publisher: "S"},
		{ReleaseDateRaw: "TBA", Developer: "E", Publisher: "T"},
	}
}

func startedNavigator(t *testing.T, opts ...scene.NavigatorOption) (*scene.Navigator, *recorder) {
	t.Helper()

	rec := &recorder{}
	nav := scene.NewNavigator(storyRecords(), rec, rec, opts...)

	_, err := nav.Start(context.Background())
	require.NoError(t, err)

	return nav, rec
}

func TestNavigator_StartEntersOverview(t *testing.T) {
	t.Parallel()

	nav, rec := startedNavigator(t)

	assert.Equal(t, scene.Overview, nav.Current())
	assert.Equal(t, []string{"clear-charts", "clear-annotations", "narrative:overview", "draw-overview"}, rec.calls)
	assert.Equal(t, []aggregate.YearCount{
		{Year: 2003, Count: 1},
		{Year: 2013, Count: 1},
		{Year: 2014, Count: 2},
		{Year: 2019, Count: 1},
		{Year: 2024, Count: 1},
	}, rec.lastCounts)
	assert.Equal(t, 4, rec.marks)
}

func TestNavigator_DispatchBeforeStart(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	nav := scene.NewNavigator(storyRecords(), rec, rec)

	_, err := nav.Dispatch(context.Background(), scene.Select(scene.Cmp2013_2014))
	require.ErrorIs(t, err, scene.ErrNotStarted)
	assert.Empty(t, rec.calls)
	assert.Equal(t, scene.Overview, nav.Current())
}

func TestNavigator_AnnotationEntersComparison(t *testing.T) {
	t.Parallel()

	nav, rec := startedNavigator(t)
	rec.calls = nil

	frame, err := nav.Dispatch(context.Background(), scene.AnnotationClick(2019))
	require.NoError(t, err)

	assert.Equal(t, scene.Cmp2018_2019, nav.Current())
	assert.Equal(t, scene.Cmp2018_2019, frame.Scene)
	assert.Equal(t, []string{"clear-charts", "clear-annotations", "narrative:2018-2019", "draw-comparison:2018-2019"}, rec.calls)
	assert.Equal(t, []aggregate.YearValue{{Year: 2018, Value: 0}, {Year: 2019, Value: 1}}, rec.lastDevs)
	assert.Equal(t, rec.lastDevs, frame.Developers)
	assert.Equal(t, rec.lastPubs, frame.Publishers)
}

func TestNavigator_ReenteringOverviewClearsComparison(t *testing.T) {
	t.Parallel()

	nav, rec := startedNavigator(t)

	_, err := nav.Dispatch(context.Background(), scene.Select(scene.Cmp2013_2014))
	require.NoError(t, err)
	assert.Equal(t, 2, rec.charts)

	rec.calls = nil

	frame, err := nav.Dispatch(context.Background(), scene.Select(scene.Overview))
	require.NoError(t, err)

	assert.Equal(t, []string{"clear-charts", "clear-annotations", "narrative:overview", "draw-overview"}, rec.calls)
	assert.Equal(t, 1, rec.charts)
	assert.Nil(t, frame.Window)
	assert.Empty(t, frame.Developers)
	assert.NotEmpty(t, frame.Counts)
}

func TestNavigator_UnknownActionKeepsState(t *testing.T) {
	t.Parallel()

	nav, rec := startedNavigator(t)

	_, err := nav.Dispatch(context.Background(), scene.Select(scene.Cmp2023_2024))
	require.NoError(t, err)

	rec.calls = nil

	_, err = nav.Dispatch(context.Background(), scene.AnnotationClick(2003))
	require.ErrorIs(t, err, scene.ErrUnknownAction)
	assert.Equal(t, scene.Cmp2023_2024, nav.Current())
	assert.Empty(t, rec.calls)
}

func TestNavigator_DrawFailure(t *testing.T) {
	t.Parallel()

	nav, rec := startedNavigator(t)
	rec.drawErr = errors.New("canvas gone")

	_, err := nav.Dispatch(context.Background(), scene.Select(scene.Cmp2013_2014))
	require.ErrorContains(t, err, "canvas gone")
	assert.Equal(t, scene.Cmp2013_2014, nav.Current())
	assert.Equal(t, 0, rec.charts)
}

func TestNavigator_RecomputesOnEveryEntry(t *testing.T) {
	t.Parallel()

	nav, _ := startedNavigator(t)
	ctx := context.Background()

	first, err := nav.Dispatch(ctx, scene.Select(scene.Cmp2013_2014))
	require.NoError(t, err)

	_, err = nav.Dispatch(ctx, scene.Select(scene.Overview))
	require.NoError(t, err)

	second, err := nav.Dispatch(ctx, scene.AnnotationClick(2014))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []aggregate.YearValue{{Year: 2013, Value: 1}, {Year: 2014, Value: 2}}, second.Developers)
}

func TestNavigator_ObserverAndLabels(t *testing.T) {
	t.Parallel()

	var entries []string

	observer := func(_ context.Context, from, to scene.Scene) {
		entries = append(entries, from.ID()+">"+to.ID())
	}

	nav, rec := startedNavigator(t,
		scene.WithEntryObserver(observer),
		scene.WithAnnotationLabels(map[int]string{2014: "Surge"}),
	)
	assert.Equal(t, 1, rec.marks)

	_, err := nav.Dispatch(context.Background(), scene.AnnotationClick(2024))
	require.NoError(t, err)

	assert.Equal(t, []string{"overview>overview", "overview>2023-2024"}, entries)
}

func TestNavigator_Do(t *testing.T) {
	t.Parallel()

	nav, rec := startedNavigator(t)

	var seen scene.Scene

	err := nav.Do(context.Background(), scene.Select(scene.Cmp2018_2019), func(frame scene.Frame) error {
		seen = rec.narrative
		assert.Equal(t, scene.Cmp2018_2019, frame.Scene)

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, scene.Cmp2018_2019, seen)
}

func TestCompute(t *testing.T) {
	t.Parallel()

	frame, err := scene.Compute(context.Background(), storyRecords(), scene.Cmp2023_2024, nil)
	require.NoError(t, err)
	require.NotNil(t, frame.Window)
	assert.Equal(t, scene.Window{A: 2023, B: 2024}, *frame.Window)
	assert.Len(t, frame.Developers, 2)
	assert.Len(t, frame.Publishers, 2)
	assert.Empty(t, frame.Counts)

	_, err = scene.Compute(context.Background(), storyRecords(), scene.Scene(7), nil)
	require.ErrorIs(t, err, scene.ErrUnknownScene)
}

func TestNavigator_View(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	nav := scene.NewNavigator(storyRecords(), rec, rec)

	err := nav.View(func(scene.Scene) error { return nil })
	require.ErrorIs(t, err, scene.ErrNotStarted)

	_, err = nav.Start(context.Background())
	require.NoError(t, err)

	var seen scene.Scene

	err = nav.View(func(current scene.Scene) error {
		seen = current
		assert.Equal(t, scene.Overview, rec.narrative)

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, scene.Overview, seen)
}

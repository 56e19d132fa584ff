package scene

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/gamestory/pkg/aggregate"
	"github.com/Sumatoshi-tech/gamestory/pkg/dataset"
)

const tracerName = "gamestory/scene"

// ErrNotStarted is returned when navigation is attempted before Start.
var ErrNotStarted = errors.New("navigator not started")

// Stage owns the page surfaces that every scene entry resets.
type Stage interface {
	// ClearCharts removes content from every chart surface.
	ClearCharts()
	// ClearAnnotations removes annotation content.
	ClearAnnotations()
	// ShowNarrative shows the narrative block of s and hides all others.
	ShowNarrative(s Scene)
}

// Renderer draws the derived series. It never sees raw records.
type Renderer interface {
	DrawOverview(ctx context.Context, counts []aggregate.YearCount, marks []Annotation) error
	DrawComparison(ctx context.Context, window Window, developers, publishers []aggregate.YearValue) error
}

// EntryObserver is notified after each completed scene entry.
type EntryObserver func(ctx context.Context, from, to Scene)

// Navigator holds the single scene state for a session and applies
// navigation actions one at a time.
type Navigator struct {
	mu       sync.Mutex
	records  []dataset.GameRecord
	stage    Stage
	renderer Renderer
	labels   map[int]string
	logger   *slog.Logger
	tracer   trace.Tracer
	observer EntryObserver
	current  Scene
	started  bool
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithLogger sets the navigation logger.
func WithLogger(logger *slog.Logger) NavigatorOption {
	return func(n *Navigator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithTracer sets the tracer used for scene entry spans.
func WithTracer(tracer trace.Tracer) NavigatorOption {
	return func(n *Navigator) {
		if tracer != nil {
			n.tracer = tracer
		}
	}
}

// WithAnnotationLabels replaces the overview marker labels.
func WithAnnotationLabels(labels map[int]string) NavigatorOption {
	return func(n *Navigator) {
		if labels != nil {
			n.labels = labels
		}
	}
}

// WithEntryObserver registers a callback run after every scene entry.
func WithEntryObserver(observer EntryObserver) NavigatorOption {
	return func(n *Navigator) {
		n.observer = observer
	}
}

// NewNavigator creates a navigator over a fully loaded record set. Records
// must not change afterwards.
func NewNavigator(records []dataset.GameRecord, stage Stage, renderer Renderer, opts ...NavigatorOption) *Navigator {
	n := &Navigator{
		records:  records,
		stage:    stage,
		renderer: renderer,
		labels:   DefaultAnnotationLabels(),
		logger:   slog.Default().With(slog.String("module", "scene")),
		tracer:   otel.Tracer(tracerName),
		current:  Overview,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Current returns the active scene.
func (n *Navigator) Current() Scene {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.current
}

// Start enters the initial Overview scene. Call it once the dataset is loaded.
func (n *Navigator) Start(ctx context.Context) (Frame, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.started = true

	return n.enter(ctx, n.current, Overview, Select(Overview))
}

// Dispatch applies action and enters the resulting scene. Invalid actions
// leave the state untouched. When drawing fails the new scene is still
// active, with its surfaces cleared.
func (n *Navigator) Dispatch(ctx context.Context, action Action) (Frame, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.dispatch(ctx, action)
}

// Do dispatches action and runs fn before releasing the navigator, so fn
// observes the stage exactly as the entry left it.
func (n *Navigator) Do(ctx context.Context, action Action, fn func(Frame) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	frame, err := n.dispatch(ctx, action)
	if err != nil {
		return err
	}

	return fn(frame)
}

// View runs fn with the active scene while holding the navigator, so fn can
// read the stage without racing a concurrent entry.
func (n *Navigator) View(fn func(current Scene) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.started {
		return ErrNotStarted
	}

	return fn(n.current)
}

func (n *Navigator) dispatch(ctx context.Context, action Action) (Frame, error) {
	if !n.started {
		return Frame{}, ErrNotStarted
	}

	next, err := Next(n.current, action)
	if err != nil {
		return Frame{}, err
	}

	return n.enter(ctx, n.current, next, action)
}

func (n *Navigator) enter(ctx context.Context, from, to Scene, action Action) (Frame, error) {
	ctx, span := n.tracer.Start(ctx, "scene.enter", trace.WithAttributes(
		attribute.String("scene.from", from.ID()),
		attribute.String("scene.to", to.ID()),
		attribute.String("scene.action", action.String()),
	))
	defer span.End()

	n.stage.ClearCharts()
	n.stage.ClearAnnotations()
	n.stage.ShowNarrative(to)
	n.current = to

	frame, err := Compute(ctx, n.records, to, n.labels)
	if err != nil {
		return Frame{}, n.fail(span, err)
	}

	if frame.Window != nil {
		err = n.renderer.DrawComparison(ctx, *frame.Window, frame.Developers, frame.Publishers)
	} else {
		err = n.renderer.DrawOverview(ctx, frame.Counts, frame.Annotations)
	}

	if err != nil {
		return Frame{}, n.fail(span, fmt.Errorf("draw %s: %w", to, err))
	}

	n.logger.DebugContext(ctx, "scene entered",
		slog.String("from", from.ID()),
		slog.String("to", to.ID()),
		slog.String("action", action.String()),
	)

	if n.observer != nil {
		n.observer(ctx, from, to)
	}

	return frame, nil
}

func (n *Navigator) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return err
}

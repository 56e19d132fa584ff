// Package server exposes the story over HTTP. Every navigation request is
// applied through one scene.Navigator, so entries are serialized the way a
// browser event loop would serialize clicks.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/gamestory/internal/observability"
	"github.com/Sumatoshi-tech/gamestory/pkg/dataset"
	"github.com/Sumatoshi-tech/gamestory/pkg/render"
	"github.com/Sumatoshi-tech/gamestory/pkg/scene"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"

	shutdownGrace = 5 * time.Second
)

// Server serves the story pages and the JSON API.
type Server struct {
	nav     *scene.Navigator
	board   *render.Board
	records []dataset.GameRecord
	labels  map[int]string

	logger  *slog.Logger
	tracer  trace.Tracer
	red     *observability.REDMetrics
	metrics http.Handler

	router *chi.Mux
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracer sets the tracer for request spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Server) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithREDMetrics records request rate, errors and duration.
func WithREDMetrics(red *observability.REDMetrics) Option {
	return func(s *Server) {
		s.red = red
	}
}

// WithMetricsHandler mounts handler at /metrics.
func WithMetricsHandler(handler http.Handler) Option {
	return func(s *Server) {
		s.metrics = handler
	}
}

// WithAnnotationLabels sets the marker labels used by /api/scenes.
func WithAnnotationLabels(labels map[int]string) Option {
	return func(s *Server) {
		if labels != nil {
			s.labels = labels
		}
	}
}

// New builds a server over a started navigator driving board. records must
// be the set the navigator was built with.
func New(nav *scene.Navigator, board *render.Board, records []dataset.GameRecord, opts ...Option) *Server {
	s := &Server{
		nav:     nav,
		board:   board,
		records: records,
		labels:  scene.DefaultAnnotationLabels(),
		logger:  slog.Default().With(slog.String("module", "server")),
		tracer:  otel.Tracer("gamestory/server"),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.router = s.routes()

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(observability.HTTPMiddleware(s.tracer, s.red))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleOverview)
	r.Get("/scene/{id}", s.handleScene)
	r.Get("/annotation/{year}", s.handleAnnotation)

	r.Route("/api", func(api chi.Router) {
		api.Get("/state", s.handleState)
		api.Get("/scenes/{id}", s.handleSceneData)
	})

	r.Method(http.MethodGet, "/healthz", observability.HealthHandler())
	r.Method(http.MethodGet, "/readyz", observability.ReadyHandler(s.started))

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return r
}

func (s *Server) started(context.Context) error {
	return s.nav.View(func(scene.Scene) error { return nil })
}

func (s *Server) handleOverview(rw http.ResponseWriter, hr *http.Request) {
	s.navigate(rw, hr, scene.Select(scene.Overview))
}

func (s *Server) handleScene(rw http.ResponseWriter, hr *http.Request) {
	sc, err := scene.Parse(chi.URLParam(hr, "id"))
	if err != nil {
		s.fail(rw, hr, http.StatusNotFound, err)

		return
	}

	s.navigate(rw, hr, scene.Select(sc))
}

func (s *Server) handleAnnotation(rw http.ResponseWriter, hr *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(hr, "year"))
	if err != nil {
		s.fail(rw, hr, http.StatusBadRequest, fmt.Errorf("bad year: %w", err))

		return
	}

	s.navigate(rw, hr, scene.AnnotationClick(year))
}

// navigate applies action and renders the resulting page while the
// navigator is held.
func (s *Server) navigate(rw http.ResponseWriter, hr *http.Request, action scene.Action) {
	var buf bytes.Buffer

	err := s.nav.Do(hr.Context(), action, func(scene.Frame) error {
		return s.board.Page().Render(&buf)
	})

	switch {
	case errors.Is(err, scene.ErrUnknownAction):
		s.fail(rw, hr, http.StatusNotFound, err)
	case errors.Is(err, scene.ErrNotStarted):
		s.fail(rw, hr, http.StatusServiceUnavailable, err)
	case err != nil:
		s.fail(rw, hr, http.StatusInternalServerError, err)
	default:
		rw.Header().Set("Content-Type", contentTypeHTML)
		_, _ = buf.WriteTo(rw)
	}
}

// stateResponse is the body of GET /api/state.
type stateResponse struct {
	Scene scene.Scene     `json:"scene"`
	Board render.Snapshot `json:"board"`
}

func (s *Server) handleState(rw http.ResponseWriter, hr *http.Request) {
	var resp stateResponse

	err := s.nav.View(func(current scene.Scene) error {
		resp = stateResponse{Scene: current, Board: s.board.Snapshot()}

		return nil
	})
	if err != nil {
		s.fail(rw, hr, http.StatusServiceUnavailable, err)

		return
	}

	s.writeJSON(rw, hr, resp)
}

func (s *Server) handleSceneData(rw http.ResponseWriter, hr *http.Request) {
	sc, err := scene.Parse(chi.URLParam(hr, "id"))
	if err != nil {
		s.fail(rw, hr, http.StatusNotFound, err)

		return
	}

	frame, err := scene.Compute(hr.Context(), s.records, sc, s.labels)
	if err != nil {
		s.fail(rw, hr, http.StatusInternalServerError, err)

		return
	}

	s.writeJSON(rw, hr, frame)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) fail(rw http.ResponseWriter, hr *http.Request, code int, err error) {
	level := slog.LevelWarn
	if code >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	s.logger.Log(hr.Context(), level, "request failed",
		slog.String("path", hr.URL.Path),
		slog.Int("status", code),
		slog.String("request_id", middleware.GetReqID(hr.Context())),
		slog.Any("error", err),
	)

	rw.Header().Set("Content-Type", contentTypeJSON)
	rw.WriteHeader(code)

	//nolint:errchkjson // response already committed.
	_ = json.NewEncoder(rw).Encode(errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(rw http.ResponseWriter, hr *http.Request, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.fail(rw, hr, http.StatusInternalServerError, fmt.Errorf("encode response: %w", err))

		return
	}

	rw.Header().Set("Content-Type", contentTypeJSON)
	_, _ = rw.Write(data)
}

// Timeouts bounds the phases of an HTTP connection.
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, timeouts Timeouts) error {
	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	return s.Serve(ctx, listener, timeouts)
}

// Serve serves on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener, timeouts Timeouts) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadTimeout:       timeouts.Read,
		ReadHeaderTimeout: timeouts.Read,
		WriteTimeout:      timeouts.Write,
		IdleTimeout:       timeouts.Idle,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- httpServer.Serve(listener)
	}()

	s.logger.InfoContext(ctx, "serving story", slog.String("addr", listener.Addr().String()))

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
	defer cancel()

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	s.logger.InfoContext(ctx, "server stopped")

	return nil
}

package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gamestory/internal/server"
	"github.com/Sumatoshi-tech/gamestory/pkg/aggregate"
	"github.com/Sumatoshi-tech/gamestory/pkg/dataset"
	"github.com/Sumatoshi-tech/gamestory/pkg/render"
	"github.com/Sumatoshi-tech/gamestory/pkg/scene"
	"github.com/Sumatoshi-tech/gamestory/pkg/story"
)

func records() []dataset.GameRecord {
	return []dataset.GameRecord{
		{ReleaseDateRaw: "Oct 21, 2003", Developer: "Valve", Publisher: "Valve"},
		{ReleaseDateRaw: "Mar 3, 2013", Developer: "A", Publisher: "P"},
		{ReleaseDateRaw: "Mar 3, 2014", Developer: "A", Publisher: "P"},
		{ReleaseDateRaw: "Mar 4, 2014", Developer: "B", Publisher: "Q"},
		{ReleaseDateRaw: "Jan 1, 2019", Developer: "C", Publisher: "R"},
		{ReleaseDateRaw: "Jan 1, 2024", Developer: "D", Publisher: "S"},
	}
}

func newServer(t *testing.T, start bool, opts ...server.Option) *server.Server {
	t.Helper()

	st, err := story.Default()
	require.NoError(t, err)

	recs := records()
	board := render.NewBoard(st, render.WithLinks(render.RouteLinks{}))
	nav := scene.NewNavigator(recs, board, board, scene.WithAnnotationLabels(st.AnnotationLabels()))

	if start {
		_, err = nav.Start(context.Background())
		require.NoError(t, err)
	}

	opts = append(opts, server.WithAnnotationLabels(st.AnnotationLabels()))

	return server.New(nav, board, recs, opts...)
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))

	return rec
}

type state struct {
	Scene string `json:"scene"`
	Board struct {
		Narrative string   `json:"narrative"`
		Surfaces  []string `json:"surfaces"`
	} `json:"board"`
}

func getState(t *testing.T, handler http.Handler) state {
	t.Helper()

	rec := get(t, handler, "/api/state")
	require.Equal(t, http.StatusOK, rec.Code)

	var st state
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))

	return st
}

func TestServer_Overview(t *testing.T) {
	t.Parallel()

	h := newServer(t, true).Handler()

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Number of Games Released")
	assert.Contains(t, rec.Body.String(), `href="/annotation/2014"`)

	st := getState(t, h)
	assert.Equal(t, "overview", st.Scene)
	assert.Equal(t, []string{"main"}, st.Board.Surfaces)
}

func TestServer_AnnotationNavigates(t *testing.T) {
	t.Parallel()

	h := newServer(t, true).Handler()

	rec := get(t, h, "/annotation/2019")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Developers (2018 vs 2019)")
	assert.Contains(t, rec.Body.String(), "Publishers (2018 vs 2019)")

	st := getState(t, h)
	assert.Equal(t, "2018-2019", st.Scene)
	assert.Equal(t, "2018-2019", st.Board.Narrative)
	assert.Equal(t, []string{"developers", "publishers"}, st.Board.Surfaces)

	rec = get(t, h, "/scene/overview")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Developers (2018 vs 2019)")
	assert.Equal(t, []string{"main"}, getState(t, h).Board.Surfaces)
}

func TestServer_Errors(t *testing.T) {
	t.Parallel()

	h := newServer(t, true).Handler()

	tests := []struct {
		path string
		code int
	}{
		{path: "/annotation/2003", code: http.StatusNotFound},
		{path: "/annotation/twenty", code: http.StatusBadRequest},
		{path: "/scene/1999-2000", code: http.StatusNotFound},
		{path: "/api/scenes/nope", code: http.StatusNotFound},
		{path: "/missing", code: http.StatusNotFound},
	}

	for _, tc := range tests {
		rec := get(t, h, tc.path)
		assert.Equal(t, tc.code, rec.Code, tc.path)
	}

	// Rejected actions leave the scene untouched.
	assert.Equal(t, "overview", getState(t, h).Scene)
}

func TestServer_SceneData(t *testing.T) {
	t.Parallel()

	h := newServer(t, true).Handler()

	rec := get(t, h, "/api/scenes/2013-2014")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var frame scene.Frame
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &frame))
	assert.Equal(t, scene.Cmp2013_2014, frame.Scene)
	assert.Equal(t, []aggregate.YearValue{{Year: 2013, Value: 1}, {Year: 2014, Value: 2}}, frame.Developers)

	rec = get(t, h, "/api/scenes/overview")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &frame))
	assert.Len(t, frame.Counts, 5)
	assert.Len(t, frame.Annotations, 4)

	// Reading scene data does not navigate.
	assert.Equal(t, "overview", getState(t, h).Scene)
}

func TestServer_NotStarted(t *testing.T) {
	t.Parallel()

	h := newServer(t, false).Handler()

	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/readyz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/api/state").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	t.Parallel()

	metrics := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(rw, "gamestory_requests_total 1\n")
	})

	h := newServer(t, true, server.WithMetricsHandler(metrics)).Handler()

	assert.Equal(t, http.StatusOK, get(t, h, "/readyz").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gamestory_requests_total")

	assert.Equal(t, http.StatusNotFound, get(t, newServer(t, true).Handler(), "/metrics").Code)
}

func TestServer_ConcurrentNavigationStaysConsistent(t *testing.T) {
	t.Parallel()

	h := newServer(t, true).Handler()
	paths := []string{"/", "/scene/2013-2014", "/annotation/2019", "/scene/2023-2024"}

	var wg sync.WaitGroup

	for i := range 40 {
		wg.Add(1)

		go func(path string) {
			defer wg.Done()

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			assert.Equal(t, http.StatusOK, rec.Code)
		}(paths[i%len(paths)])
	}

	wg.Wait()

	st := getState(t, h)
	assert.Equal(t, st.Scene, st.Board.Narrative)
}

func TestServer_Serve(t *testing.T) {
	t.Parallel()

	srv := newServer(t, true)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- srv.Serve(ctx, listener, server.Timeouts{Read: time.Second, Write: time.Second, Idle: time.Second})
	}()

	url := fmt.Sprintf("http://%s/healthz", listener.Addr())

	require.Eventually(t, func() bool {
		resp, getErr := http.Get(url) //nolint:noctx // test probe.
		if getErr != nil {
			return false
		}

		_ = resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

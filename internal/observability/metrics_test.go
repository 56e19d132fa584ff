package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/gamestory/internal/observability"
	"github.com/Sumatoshi-tech/gamestory/pkg/scene"
)

func newManualMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	t.Cleanup(func() { require.NoError(t, mp.Shutdown(context.Background())) })

	return reader, mp
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}

	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestREDMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	reader, mp := newManualMeter(t)

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	red.RecordRequest(ctx, "GET /", observability.StatusOK, 5*time.Millisecond)
	red.RecordRequest(ctx, "GET /", observability.StatusError, time.Millisecond)

	done := red.TrackInflight(ctx, "GET")

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, metrics["gamestory.requests.total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["gamestory.errors.total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["gamestory.inflight.requests"]))
	assert.Contains(t, metrics, "gamestory.request.duration.seconds")

	done()

	metrics = collect(t, reader)
	assert.Equal(t, int64(0), sumOf(t, metrics["gamestory.inflight.requests"]))
}

func TestSceneMetrics_Observe(t *testing.T) {
	t.Parallel()

	reader, mp := newManualMeter(t)

	sm, err := observability.NewSceneMetrics(mp.Meter("test"))
	require.NoError(t, err)

	var observer scene.EntryObserver = sm.Observe

	ctx := context.Background()
	observer(ctx, scene.Overview, scene.Overview)
	observer(ctx, scene.Overview, scene.Cmp2013_2014)
	observer(ctx, scene.Cmp2013_2014, scene.Overview)

	m := collect(t, reader)["gamestory.scene.entries.total"]
	assert.Equal(t, int64(3), sumOf(t, m))

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Len(t, sum.DataPoints, 3)
}

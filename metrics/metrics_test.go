package metrics_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/zeusorch/zeus/metrics"
)

func TestRecorderWithNoopMeter(t *testing.T) {
	t.Parallel()

	recorder, err := metrics.NewRecorder(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	ctx := t.Context()
	recorder.RequestStarted(ctx, "GET")
	recorder.RequestFinished(ctx, "GET", "/health", 200, 1.5)
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var data metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &data))

	found := make(map[string]metricdata.Metrics)

	for _, scope := range data.ScopeMetrics {
		for _, m := range scope.Metrics {
			found[m.Name] = m
		}
	}

	return found
}

func TestRecorderRecordsRequests(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	recorder, err := metrics.NewRecorder(provider.Meter("test"))
	require.NoError(t, err)

	ctx := t.Context()

	for range 3 {
		recorder.RequestStarted(ctx, "GET")
		recorder.RequestFinished(ctx, "GET", "/", 200, 2)
	}

	recorder.RequestStarted(ctx, "GET")

	found := collect(t, reader)

	requests, ok := found["http.server.requests"].Data.(metricdata.Sum[int64])
	require.True(t, ok, "requests counter missing")
	require.Len(t, requests.DataPoints, 1)
	assert.Equal(t, int64(3), requests.DataPoints[0].Value)

	route, _ := requests.DataPoints[0].Attributes.Value(attribute.Key("http.route"))
	assert.Equal(t, "/", route.AsString())

	duration, ok := found["http.server.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok, "duration histogram missing")
	require.Len(t, duration.DataPoints, 1)
	assert.Equal(t, uint64(3), duration.DataPoints[0].Count)

	active, ok := found["http.server.active_requests"].Data.(metricdata.Sum[int64])
	require.True(t, ok, "active requests gauge missing")
	require.Len(t, active.DataPoints, 1)
	assert.Equal(t, int64(1), active.DataPoints[0].Value)
}

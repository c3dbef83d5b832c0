package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument names exported to Prometheus.
const (
	requestsName       = "http.server.requests"
	durationName       = "http.server.duration"
	activeRequestsName = "http.server.active_requests"
)

// Recorder holds the HTTP server instruments. Instruments are created once
// and shared by all requests.
type Recorder struct {
	requests       metric.Int64Counter
	duration       metric.Float64Histogram
	activeRequests metric.Int64UpDownCounter
}

// NewRecorder creates the HTTP server instruments on meter.
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	requests, err := meter.Int64Counter(requestsName,
		metric.WithDescription("Number of HTTP requests served."),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", requestsName, err)
	}

	duration, err := meter.Float64Histogram(durationName,
		metric.WithDescription("Duration of HTTP requests."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s histogram: %w", durationName, err)
	}

	activeRequests, err := meter.Int64UpDownCounter(activeRequestsName,
		metric.WithDescription("Number of HTTP requests in flight."),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s gauge: %w", activeRequestsName, err)
	}

	return &Recorder{
		requests:       requests,
		duration:       duration,
		activeRequests: activeRequests,
	}, nil
}

// RequestStarted marks a request as in flight.
func (r *Recorder) RequestStarted(ctx context.Context, method string) {
	r.activeRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("http.request.method", method)))
}

// RequestFinished records the outcome of a request and clears its in-flight mark.
func (r *Recorder) RequestFinished(
	ctx context.Context,
	method string,
	route string,
	statusCode int,
	durationMs float64,
) {
	methodAttr := attribute.String("http.request.method", method)
	attrs := metric.WithAttributes(
		methodAttr,
		attribute.String("http.route", route),
		attribute.Int("http.response.status_code", statusCode),
	)

	r.activeRequests.Add(ctx, -1, metric.WithAttributes(methodAttr))
	r.requests.Add(ctx, 1, attrs)
	r.duration.Record(ctx, durationMs, attrs)
}

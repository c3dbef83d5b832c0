package tracing

import (
	"context"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// tracerKey is the context key for storing the tracer.
	tracerKey contextKey = "tracer"
)

var (
	// defaultTracer is the fallback tracer when none is found in context.
	defaultTracer atomic.Pointer[trace.Tracer] //nolint:gochecknoglobals // Thread-safe: atomic

	// tracerOnce ensures we only initialize the default tracer once.
	tracerOnce sync.Once //nolint:gochecknoglobals // Thread-safe: sync.Once is inherently safe

	noopTracer = noop.NewTracerProvider().Tracer("noop") //nolint:gochecknoglobals // stateless
)

// InitializeTracer sets up the global default tracer.
func InitializeTracer(serviceName string) {
	tracerOnce.Do(func() {
		tracer := otel.Tracer(serviceName)
		defaultTracer.Store(&tracer)
	})
}

// WithTracer adds a tracer to the context.
func WithTracer(ctx context.Context, tracer trace.Tracer) context.Context {
	return context.WithValue(ctx, tracerKey, tracer)
}

// FromContext retrieves the tracer from context or returns the default.
func FromContext(ctx context.Context) trace.Tracer {
	if ctxTracer, ok := ctx.Value(tracerKey).(trace.Tracer); ok {
		return ctxTracer
	}

	if tracer := defaultTracer.Load(); tracer != nil {
		return *tracer
	}

	return noopTracer
}

// StartSpan starts a new span with the given name.
func StartSpan(
	ctx context.Context,
	spanName string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	return FromContext(ctx).Start(ctx, spanName, opts...)
}

// SetAttributes sets attributes on the current span.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attrs...)
	}
}

// SetError records an error on the current span.
func SetError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetOK sets the span status to OK.
func SetOK(ctx context.Context) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetStatus(codes.Ok, "")
	}
}

package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/zeusorch/zeus/config"
	"github.com/zeusorch/zeus/log"
	appmetrics "github.com/zeusorch/zeus/metrics"
	"github.com/zeusorch/zeus/tracing"
	"github.com/zeusorch/zeus/version"
)

// ErrOTelShutdownFailed is returned when OTel shutdown encounters errors.
var ErrOTelShutdownFailed = errors.New("errors during OTel shutdown")

// OTelProviders holds the initialized OpenTelemetry providers.
type OTelProviders struct {
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider

	// PrometheusHTTP serves the metrics registry. Nil when metrics are disabled.
	PrometheusHTTP http.Handler

	// Recorder is always usable; it records into a no-op meter when metrics
	// are disabled.
	Recorder *appmetrics.Recorder
}

// InitializeOTel sets up OpenTelemetry providers based on configuration and
// installs them as the global providers.
func InitializeOTel(ctx context.Context, cfg *config.Config) (*OTelProviders, error) {
	providers := &OTelProviders{}

	log.Info(ctx, "Initializing OpenTelemetry",
		"service_name", cfg.ServiceName,
		"metrics_enabled", cfg.MetricsEnabled,
		"tracing_enabled", cfg.TracingEnabled,
	)

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if cfg.MetricsEnabled {
		meterProvider, prometheusHandler, err := initializeMetrics(ctx, res)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}

		providers.MeterProvider = meterProvider
		providers.PrometheusHTTP = prometheusHandler

		otel.SetMeterProvider(meterProvider)

		providers.Recorder, err = appmetrics.NewRecorder(meterProvider.Meter(cfg.ServiceName))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}

		log.Info(ctx, "Metrics initialized successfully")
	} else {
		providers.Recorder, err = appmetrics.NewRecorder(noop.NewMeterProvider().Meter(cfg.ServiceName))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize no-op metrics: %w", err)
		}
	}

	if cfg.TracingEnabled {
		tracerProvider := initializeTracing(ctx, res)
		providers.TracerProvider = tracerProvider

		otel.SetTracerProvider(tracerProvider)
		tracing.InitializeTracer(cfg.ServiceName)

		log.Info(ctx, "Tracing initialized successfully")
	}

	return providers, nil
}

func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", version.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build OTel resource: %w", err)
	}

	return res, nil
}

// initializeMetrics sets up a meter provider exporting into a dedicated
// Prometheus registry, so repeated initialization never collides on the
// default registerer.
func initializeMetrics(
	ctx context.Context,
	res *resource.Resource,
) (*sdkmetric.MeterProvider, http.Handler, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		Registry: registry,
	})

	log.Debug(ctx, "Metrics provider configured with Prometheus exporter")

	return meterProvider, handler, nil
}

// initializeTracing sets up an always-sampling tracer provider. Spans feed
// the request context and logs; no exporter is attached.
func initializeTracing(ctx context.Context, res *resource.Resource) *sdktrace.TracerProvider {
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
	)

	log.Debug(ctx, "Tracing provider configured")

	return tracerProvider
}

// Shutdown flushes and stops the OpenTelemetry providers.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
		}
	}

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrOTelShutdownFailed, errors.Join(errs...))
	}

	return nil
}

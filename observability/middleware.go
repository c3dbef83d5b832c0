package observability

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/zeusorch/zeus/metrics"
	"github.com/zeusorch/zeus/middleware"
	"github.com/zeusorch/zeus/tracing"
)

// UnmatchedRoute labels requests that no route handled.
const UnmatchedRoute = "unmatched"

// statusCodeServerError is the first status code treated as a span error.
const statusCodeServerError = 500

// OtherMethod labels requests whose method is not a standard HTTP method.
const OtherMethod = "_OTHER"

// knownMethods are reported as-is; anything else collapses to OtherMethod.
var knownMethods = map[string]struct{}{ //nolint:gochecknoglobals // read-only lookup table
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodDelete:  {},
	http.MethodPatch:   {},
	http.MethodOptions: {},
	http.MethodConnect: {},
	http.MethodTrace:   {},
}

// NormalizeMethod returns method if it is a standard HTTP method and
// OtherMethod otherwise.
func NormalizeMethod(method string) string {
	if _, ok := knownMethods[method]; ok {
		return method
	}

	return OtherMethod
}

// RouteFunc resolves the route pattern serving a request, or "" when none matches.
type RouteFunc func(*http.Request) string

func routeOf(route RouteFunc, request *http.Request) string {
	if route == nil {
		return UnmatchedRoute
	}

	if pattern := route(request); pattern != "" {
		return pattern
	}

	return UnmatchedRoute
}

// MetricsMiddleware instruments HTTP requests with metrics. Requests are
// labeled by route pattern rather than raw path to keep cardinality bounded.
func MetricsMiddleware(next http.Handler, recorder *metrics.Recorder, route RouteFunc) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		start := time.Now()
		method := NormalizeMethod(request.Method)

		recorder.RequestStarted(ctx, method)

		wrapped := middleware.NewResponseWriter(writer)

		next.ServeHTTP(wrapped, request)

		recorder.RequestFinished(ctx,
			method,
			routeOf(route, request),
			wrapped.StatusCode(),
			float64(time.Since(start))/float64(time.Millisecond),
		)
	})
}

// TracingMiddleware starts a server span per request, continuing any trace
// context propagated by the caller.
func TracingMiddleware(next http.Handler, route RouteFunc) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(
			request.Context(),
			propagation.HeaderCarrier(request.Header),
		)

		pattern := routeOf(route, request)
		method := NormalizeMethod(request.Method)

		ctx, span := tracing.StartSpan(ctx, method+" "+pattern,
			trace.WithSpanKind(trace.SpanKindServer),
		)
		defer span.End()

		if method != request.Method {
			tracing.SetAttributes(ctx, attribute.String("http.request.method_original", request.Method))
		}

		tracing.SetAttributes(ctx,
			attribute.String("http.request.method", method),
			attribute.String("http.route", pattern),
			attribute.String("url.path", request.URL.Path),
			attribute.String("user_agent.original", request.UserAgent()),
			attribute.String("client.address", middleware.ClientIP(request)),
		)

		wrapped := middleware.NewResponseWriter(writer)

		next.ServeHTTP(wrapped, request.WithContext(ctx))

		tracing.SetAttributes(ctx,
			attribute.Int("http.response.status_code", wrapped.StatusCode()),
			attribute.Int64("http.response.body.size", wrapped.BytesWritten()),
		)

		if wrapped.StatusCode() >= statusCodeServerError {
			tracing.SetError(ctx, &httpError{statusCode: wrapped.StatusCode()})
		} else {
			tracing.SetOK(ctx)
		}
	})
}

// httpError represents an HTTP error for tracing.
type httpError struct {
	statusCode int
}

func (e *httpError) Error() string {
	return http.StatusText(e.statusCode)
}

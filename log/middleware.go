package log

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zeusorch/zeus/middleware"
)

const (
	// CorrelationIDHeader is the HTTP header name for correlation IDs.
	CorrelationIDHeader = "X-Correlation-ID"

	// maxCorrelationIDLength caps client supplied IDs before they reach the logs.
	maxCorrelationIDLength = 128

	healthPath = "/health"
)

// LoggingOptions configures LoggingMiddleware.
type LoggingOptions struct {
	// DebugHealthChecks logs health probes at info level instead of debug.
	DebugHealthChecks bool
}

// WithDebugHealthChecks enables or disables info level logging for health probes.
func WithDebugHealthChecks(enabled bool) func(*LoggingOptions) {
	return func(opts *LoggingOptions) {
		opts.DebugHealthChecks = enabled
	}
}

// WithCorrelationID adds a correlation ID to the logging context.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return WithValues(ctx, "correlation_id", correlationID)
}

// CorrelationIDMiddleware tags every request with a correlation ID, reusing
// the caller's X-Correlation-ID when present.
func CorrelationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		correlationID := request.Header.Get(CorrelationIDHeader)
		if correlationID == "" || len(correlationID) > maxCorrelationIDLength {
			correlationID = uuid.NewString()
		}

		writer.Header().Set(CorrelationIDHeader, correlationID)

		ctx := WithCorrelationID(request.Context(), correlationID)

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// LoggingMiddleware logs HTTP requests with structured logging.
func LoggingMiddleware(next http.Handler, opts ...func(*LoggingOptions)) http.Handler {
	options := &LoggingOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		start := time.Now()

		level := LevelInfo
		if !options.DebugHealthChecks && isHealthPath(request.URL.Path) {
			level = LevelDebug
		}

		Log(ctx, level, "HTTP request started",
			"method", request.Method,
			"path", request.URL.Path,
			"remote_addr", middleware.ClientIP(request),
			"user_agent", request.UserAgent(),
		)

		wrapped := middleware.NewResponseWriter(writer)

		next.ServeHTTP(wrapped, request)

		Log(ctx, level, "HTTP request completed",
			"method", request.Method,
			"path", request.URL.Path,
			"status_code", wrapped.StatusCode(),
			"bytes", wrapped.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func isHealthPath(path string) bool {
	return path == healthPath || strings.HasPrefix(path, healthPath+"/")
}

package log

import (
	"context"
	"io"
	stdlog "log"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// loggerKey is the context key for storing the logger.
	loggerKey contextKey = "logger"
)

// Log levels re-exported so callers do not need to import log/slog.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	// defaultLogger is the process-wide logger installed by InitializeLogger.
	defaultLogger atomic.Pointer[slog.Logger] //nolint:gochecknoglobals // Thread-safe: atomic

	// loggerOnce ensures we only initialize the default logger once.
	loggerOnce sync.Once //nolint:gochecknoglobals // Thread-safe: sync.Once is inherently safe

	// fallbackLogger is used before InitializeLogger has run.
	fallbackLogger *slog.Logger //nolint:gochecknoglobals // Thread-safe: protected by sync.Once

	// fallbackOnce ensures we only create the fallback logger once.
	fallbackOnce sync.Once //nolint:gochecknoglobals // Thread-safe: sync.Once is inherently safe
)

// InitializeLogger sets up the global default logger writing JSON to stdout.
// Only the first call has any effect.
func InitializeLogger(debugLogging bool) {
	initialize(os.Stdout, debugLogging)
}

func initialize(out io.Writer, debugLogging bool) {
	loggerOnce.Do(func() {
		level := LevelInfo
		if debugLogging {
			level = LevelDebug
		}

		defaultLogger.Store(NewLogger(out, level))
	})
}

// NewLogger returns a JSON logger writing to out. It does not touch the
// process-wide logger and is meant to be scoped with WithLogger.
func NewLogger(out io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithValues returns a context with a logger that includes additional key-value pairs.
func WithValues(ctx context.Context, keysAndValues ...any) context.Context {
	return WithLogger(ctx, fromContext(ctx).With(keysAndValues...))
}

// fromContext retrieves the logger from context or returns default.
func fromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}

	if logger := defaultLogger.Load(); logger != nil {
		return logger
	}

	fallbackOnce.Do(func() {
		fallbackLogger = NewLogger(os.Stdout, LevelInfo)
	})

	return fallbackLogger
}

// Log logs a message at the given level.
func Log(ctx context.Context, level slog.Level, msg string, keysAndValues ...any) {
	fromContext(ctx).Log(ctx, level, msg, keysAndValues...)
}

// Info logs an info message with key-value pairs.
func Info(ctx context.Context, msg string, keysAndValues ...any) {
	fromContext(ctx).InfoContext(ctx, msg, keysAndValues...)
}

// Error logs an error message with key-value pairs.
func Error(ctx context.Context, err error, msg string, keysAndValues ...any) {
	allArgs := append([]any{"error", err}, keysAndValues...)
	fromContext(ctx).ErrorContext(ctx, msg, allArgs...)
}

// Debug logs a debug message with key-value pairs.
func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	fromContext(ctx).DebugContext(ctx, msg, keysAndValues...)
}

// Warn logs a warning message with key-value pairs.
func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	fromContext(ctx).WarnContext(ctx, msg, keysAndValues...)
}

// NewStdLogger returns a standard library logger that forwards to the
// context logger at the given level, for APIs such as http.Server.ErrorLog.
func NewStdLogger(ctx context.Context, level slog.Level) *stdlog.Logger {
	return slog.NewLogLogger(fromContext(ctx).Handler(), level)
}

package log

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// resetDefaultLogger clears the process-wide logger for the duration of t.
// Tests using it must not run in parallel.
func resetDefaultLogger(t *testing.T) {
	t.Helper()

	previous := defaultLogger.Load()

	loggerOnce = sync.Once{}
	defaultLogger.Store(nil)

	t.Cleanup(func() {
		loggerOnce = sync.Once{}
		if previous != nil {
			loggerOnce.Do(func() {})
		}

		defaultLogger.Store(previous)
	})
}

func TestInitializeOnlyFirstCallTakesEffect(t *testing.T) {
	resetDefaultLogger(t)

	var first, second bytes.Buffer

	initialize(&first, false)
	initialize(&second, true)

	ctx := context.Background()
	Debug(ctx, "debug message")
	Info(ctx, "info message")

	assert.Contains(t, first.String(), "info message")
	assert.NotContains(t, first.String(), "debug message", "second call must not raise the level")
	assert.Empty(t, second.String(), "second call must not replace the output")
}

func TestInitializeDebugEnablesDebugLevel(t *testing.T) {
	resetDefaultLogger(t)

	var buf bytes.Buffer

	initialize(&buf, true)
	Debug(context.Background(), "debug message")

	assert.Contains(t, buf.String(), "debug message")
}

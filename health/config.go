package health

import "time"

// Config holds health check configuration options.
type Config struct {
	// Clock returns the current time. Timestamps are always reported in UTC.
	Clock func() time.Time

	// DebugHealthChecks logs each probe at debug level.
	DebugHealthChecks bool
}

// DefaultConfig returns health check configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Clock:             time.Now,
		DebugHealthChecks: false,
	}
}

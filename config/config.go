package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment variable read by the service.
const EnvPrefix = "ZEUS_"

// ErrInvalidConfig is returned when the environment holds a malformed value.
var ErrInvalidConfig = errors.New("invalid configuration")

// requiredIfSet lists variables that fall back to their default only when
// unset. A present but empty value is rejected rather than defaulted.
var requiredIfSet = []string{ //nolint:gochecknoglobals // read-only lookup table
	"BIND_ADDR",
	"HTTP_PORT",
}

// Config holds the application configuration.
type Config struct {
	// Server configuration
	BindAddr string `env:"BIND_ADDR" envDefault:"0.0.0.0"`
	Port     uint16 `env:"HTTP_PORT" envDefault:"8080"`

	// Debug options
	DebugLogging      bool `env:"DEBUG_LOGGING"       envDefault:"false"`
	DebugHealthChecks bool `env:"DEBUG_HEALTH_CHECKS" envDefault:"false"`

	// Observability settings
	ServiceName    string `env:"SERVICE_NAME"    envDefault:"zeus-orchestrator"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	TracingEnabled bool   `env:"TRACING_ENABLED" envDefault:"true"`

	// MetricsAddr is the host:port of the Prometheus listener. Empty disables it.
	MetricsAddr string `env:"METRICS_ADDR"`
}

// Address returns the host:port the HTTP listener binds to.
func (c *Config) Address() string {
	return net.JoinHostPort(c.BindAddr, strconv.FormatUint(uint64(c.Port), 10))
}

// Parse builds a Config from the given environment without touching the
// process environment.
func Parse(environ map[string]string) (*Config, error) {
	for _, key := range requiredIfSet {
		if value, ok := environ[EnvPrefix+key]; ok && value == "" {
			return nil, fmt.Errorf("%w: %s%s is set but empty", ErrInvalidConfig, EnvPrefix, key)
		}
	}

	config := &Config{}

	opts := env.Options{
		Environment: environ,
		Prefix:      EnvPrefix,
	}

	if err := env.ParseWithOptions(config, opts); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return config, nil
}

// Load creates a Config from the process environment.
func Load() (*Config, error) {
	return Parse(environMap(os.Environ()))
}

func environMap(environ []string) map[string]string {
	vars := make(map[string]string, len(environ))

	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}

		vars[key] = value
	}

	return vars
}

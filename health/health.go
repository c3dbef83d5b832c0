package health

import (
	"context"
	"net/http"
	"time"

	"github.com/zeusorch/zeus/api"
	"github.com/zeusorch/zeus/log"
)

// Status represents the health status of the service.
type Status string

// StatusHealthy is the only status the liveness probe reports: answering at
// all means the process is alive.
const StatusHealthy Status = "healthy"

// Info is the payload of the health endpoint.
type Info struct {
	Status    Status `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Manager produces health reports.
type Manager struct {
	config *Config
}

// NewManager creates a health manager with the default configuration.
func NewManager() *Manager {
	return NewManagerWithConfig(DefaultConfig())
}

// NewManagerWithConfig creates a health manager with custom config. A nil
// config selects DefaultConfig.
func NewManagerWithConfig(config *Config) *Manager {
	if config == nil {
		config = DefaultConfig()
	}

	cfg := *config
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Manager{config: &cfg}
}

// CheckLiveness reports the service as healthy, stamped with the current UTC time.
func (m *Manager) CheckLiveness(_ context.Context) Info {
	return Info{
		Status:    StatusHealthy,
		Timestamp: m.config.Clock().UTC().Format(time.RFC3339Nano),
	}
}

// HTTPHandler serves the health endpoint.
type HTTPHandler struct {
	manager *Manager
}

// NewHTTPHandler creates a new HTTP handler for health checks.
func NewHTTPHandler(manager *Manager) *HTTPHandler {
	return &HTTPHandler{manager: manager}
}

// LivenessHandler handles liveness probe requests.
func (h *HTTPHandler) LivenessHandler(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	response := h.manager.CheckLiveness(ctx)

	api.WriteJSON(writer, request, http.StatusOK, response)

	if h.manager.config.DebugHealthChecks {
		log.Debug(ctx, "Liveness check completed",
			"status", string(response.Status),
			"timestamp", response.Timestamp,
		)
	}
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/zeusorch/zeus/log"
	"github.com/zeusorch/zeus/version"
)

// StatusRunning is reported while the process is serving requests.
const StatusRunning = "running"

// StatusInfo is the payload of the root endpoint.
type StatusInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// CurrentStatus returns the status payload.
func CurrentStatus() StatusInfo {
	return StatusInfo{
		Service: version.ServiceName,
		Version: version.Version,
		Status:  StatusRunning,
	}
}

// StatusHandler serves the root status endpoint.
func StatusHandler(writer http.ResponseWriter, request *http.Request) {
	WriteJSON(writer, request, http.StatusOK, CurrentStatus())
}

// WriteJSON encodes body as the JSON response with the given status code.
func WriteJSON(writer http.ResponseWriter, request *http.Request, statusCode int, body any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(statusCode)

	// Headers are already sent; an encoding failure can only be logged.
	if err := json.NewEncoder(writer).Encode(body); err != nil {
		log.Error(request.Context(), err, "Failed to encode response", "path", request.URL.Path)
	}
}

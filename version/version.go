package version

const (
	// ServiceName is the human readable service name reported by the root endpoint.
	ServiceName = "Zeus Orchestrator"

	// Version is the API version reported by the root endpoint.
	Version = "0.1.0"
)

// Filled with -ldflags on release builds.
var (
	Commit    = "none"
	BuildTime = "" // RFC3339
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time,omitempty"`
}

// Info returns the build information of the running binary.
func Info() BuildInfo {
	return BuildInfo{
		Service:   ServiceName,
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
	}
}

package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/zeusorch/zeus/api"
	"github.com/zeusorch/zeus/config"
	"github.com/zeusorch/zeus/health"
	"github.com/zeusorch/zeus/log"
	"github.com/zeusorch/zeus/metrics"
	"github.com/zeusorch/zeus/observability"
)

// Server serves the public routes of the service.
type Server struct {
	cfg     *config.Config
	mux     *http.ServeMux
	handler http.Handler

	healthHandler *health.HTTPHandler
}

// Option customizes a Server.
type Option func(*serverOptions)

type serverOptions struct {
	health   *health.Manager
	recorder *metrics.Recorder
}

// WithHealthManager overrides the health manager, e.g. to inject a clock.
func WithHealthManager(manager *health.Manager) Option {
	return func(opts *serverOptions) {
		opts.health = manager
	}
}

// WithRecorder records request metrics into recorder.
func WithRecorder(recorder *metrics.Recorder) Option {
	return func(opts *serverOptions) {
		opts.recorder = recorder
	}
}

// New creates a Server with its route table and middleware stack.
func New(cfg *config.Config, opts ...Option) *Server {
	options := &serverOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.health == nil {
		options.health = health.NewManagerWithConfig(&health.Config{
			DebugHealthChecks: cfg.DebugHealthChecks,
		})
	}

	server := &Server{
		cfg:           cfg,
		mux:           http.NewServeMux(),
		healthHandler: health.NewHTTPHandler(options.health),
	}

	server.setupRoutes()

	handler := http.Handler(server.mux)
	handler = observability.TracingMiddleware(handler, server.route)

	if options.recorder != nil {
		handler = observability.MetricsMiddleware(handler, options.recorder, server.route)
	}

	// Order: CorrelationID -> Logging -> Metrics -> Tracing -> mux
	server.handler = log.CorrelationIDMiddleware(
		log.LoggingMiddleware(handler, log.WithDebugHealthChecks(cfg.DebugHealthChecks)),
	)

	return server
}

// setupRoutes configures the public routes.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /{$}", api.StatusHandler)
	s.mux.HandleFunc("GET /health", s.healthHandler.LivenessHandler)
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// route returns the path part of the mux pattern matching r, or "" when no
// route matches.
func (s *Server) route(r *http.Request) string {
	_, pattern := s.mux.Handler(r)
	if _, path, found := strings.Cut(pattern, " "); found {
		pattern = path
	}

	return strings.TrimSuffix(pattern, "{$}")
}

// Run binds the configured address and serves until ctx is cancelled or the
// transport fails.
func (s *Server) Run(ctx context.Context) error {
	listener, err := Listen(ctx, s.cfg.Address())
	if err != nil {
		return err
	}

	return s.Serve(ctx, listener)
}

// Serve serves the public routes on an already bound listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	log.Info(ctx, "Zeus Orchestrator listening", "address", listener.Addr().String())

	if err := Serve(ctx, listener, s); err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	return nil
}

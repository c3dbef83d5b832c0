package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/zeusorch/zeus/log"
)

// MetricsHandler exposes promHandler at GET /metrics.
func MetricsHandler(promHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promHandler)

	return mux
}

// ServeMetrics serves the Prometheus endpoint on an already bound listener.
func ServeMetrics(ctx context.Context, listener net.Listener, promHandler http.Handler) error {
	log.Info(ctx, "Metrics listener started", "address", listener.Addr().String())

	if err := Serve(ctx, listener, MetricsHandler(promHandler)); err != nil {
		return fmt.Errorf("metrics server: %w", err)
	}

	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/zeusorch/zeus/config"
	"github.com/zeusorch/zeus/log"
	"github.com/zeusorch/zeus/observability"
	"github.com/zeusorch/zeus/server"
	"github.com/zeusorch/zeus/version"
)

const (
	// otelShutdownTimeout is the timeout for shutting down OpenTelemetry providers.
	otelShutdownTimeout = 5 * time.Second
)

func main() {
	if err := run(context.Background(), os.Args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	return rootCommand(out).Run(ctx, args)
}

func rootCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "zeus",
		Usage:       "Zeus Orchestrator HTTP service",
		Description: "Serves the status and health endpoints. Configuration is read from ZEUS_* environment variables.",
		Version:     version.Version,
		Writer:      out,
		Action:      serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP service (default)",
				Action: serve,
			},
			{
				Name:   "version",
				Usage:  "Print build information",
				Action: printVersion,
			},
		},
	}
}

func printVersion(_ context.Context, cmd *cli.Command) error {
	info := version.Info()

	line := fmt.Sprintf("%s %s (commit %s)", info.Service, info.Version, info.Commit)
	if info.BuildTime != "" {
		line = fmt.Sprintf("%s %s (commit %s, built %s)", info.Service, info.Version, info.Commit, info.BuildTime)
	}

	if _, err := fmt.Fprintln(cmd.Root().Writer, line); err != nil {
		return fmt.Errorf("failed to print version: %w", err)
	}

	return nil
}

func serve(ctx context.Context, _ *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.InitializeLogger(cfg.DebugLogging)

	otelProviders, err := initializeOTel(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownOTel(otelProviders)

	srv := server.New(cfg, server.WithRecorder(otelProviders.Recorder))

	if !metricsListenerEnabled(ctx, cfg, otelProviders) {
		if err := srv.Run(ctx); err != nil {
			log.Error(ctx, err, "Server failed", "address", cfg.Address())

			return err
		}

		return nil
	}

	return serveWithMetrics(ctx, cfg, srv, otelProviders)
}

// serveWithMetrics runs the HTTP listener alongside the Prometheus listener.
// The HTTP address is bound first so a bind failure there never leaves the
// metrics listener running.
func serveWithMetrics(
	ctx context.Context,
	cfg *config.Config,
	srv *server.Server,
	otelProviders *observability.OTelProviders,
) error {
	listener, err := server.Listen(ctx, cfg.Address())
	if err != nil {
		log.Error(ctx, err, "Failed to bind HTTP listener", "address", cfg.Address())

		return err
	}

	metricsListener, err := server.Listen(ctx, cfg.MetricsAddr)
	if err != nil {
		_ = listener.Close()

		log.Error(ctx, err, "Failed to bind metrics listener", "address", cfg.MetricsAddr)

		return err
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return server.ServeMetrics(ctx, metricsListener, otelProviders.PrometheusHTTP)
	})

	group.Go(func() error {
		return srv.Serve(ctx, listener)
	})

	if err := group.Wait(); err != nil {
		log.Error(ctx, err, "Server failed")

		return err
	}

	return nil
}

// initializeOTel initializes OpenTelemetry and returns providers.
func initializeOTel(ctx context.Context, cfg *config.Config) (*observability.OTelProviders, error) {
	otelProviders, err := observability.InitializeOTel(ctx, cfg)
	if err != nil {
		log.Error(ctx, err, "Failed to initialize OpenTelemetry")

		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	return otelProviders, nil
}

// shutdownOTel shuts down OpenTelemetry providers.
func shutdownOTel(otelProviders *observability.OTelProviders) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer cancel()

	if err := otelProviders.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, err, "Failed to shutdown OpenTelemetry providers")
	}
}

// metricsListenerEnabled reports whether a separate Prometheus listener
// should be started.
func metricsListenerEnabled(
	ctx context.Context,
	cfg *config.Config,
	otelProviders *observability.OTelProviders,
) bool {
	if cfg.MetricsAddr == "" {
		return false
	}

	if otelProviders.PrometheusHTTP == nil {
		log.Warn(ctx, "Metrics listener configured but metrics are disabled", "address", cfg.MetricsAddr)

		return false
	}

	return true
}

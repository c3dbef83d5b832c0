package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/zeusorch/zeus/log"
)

const (
	// serverReadTimeout is the timeout for reading HTTP requests.
	serverReadTimeout = 15 * time.Second
	// serverReadHeaderTimeout is the timeout for reading request headers.
	serverReadHeaderTimeout = 5 * time.Second
	// serverWriteTimeout is the timeout for writing HTTP responses.
	serverWriteTimeout = 15 * time.Second
	// serverIdleTimeout is the timeout for idle connections.
	serverIdleTimeout = 30 * time.Second
)

// ErrBind is returned when a listener cannot be bound.
var ErrBind = errors.New("failed to bind listener")

// Listen binds a TCP listener on addr.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w on %s: %w", ErrBind, addr, err)
	}

	return listener, nil
}

// Serve serves handler on listener, one goroutine per connection, until ctx
// is cancelled or the accept loop fails. Cancellation closes the server
// immediately and is not an error. The listener is closed on return.
func Serve(ctx context.Context, listener net.Listener, handler http.Handler) error {
	server := &http.Server{
		Handler:           handler,
		ReadTimeout:       serverReadTimeout,
		ReadHeaderTimeout: serverReadHeaderTimeout,
		WriteTimeout:      serverWriteTimeout,
		IdleTimeout:       serverIdleTimeout,
		ErrorLog:          log.NewStdLogger(ctx, log.LevelWarn),
	}

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- server.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve %s: %w", listener.Addr(), err)
	case <-ctx.Done():
		if err := server.Close(); err != nil {
			log.Warn(ctx, "Error closing server", "address", listener.Addr().String(), "error", err.Error())
		}

		<-serveErr

		return nil
	}
}

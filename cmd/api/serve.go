package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// serve runs srv on ln until ctx is cancelled, then drains in-flight
// requests. afterShutdown runs once the server has stopped, whether it
// drained cleanly or failed.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, drain time.Duration, afterShutdown ...func()) error {
	defer func() {
		for _, fn := range afterShutdown {
			fn()
		}
	}()

	errCh := make(chan error, 1)

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

const defaultAddress = ":8080"

// newServer returns an http.Server for h with the default timeouts applied.
func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}
}

// serve runs the app until the base context is cancelled, the process gets
// SIGINT or SIGTERM, or the listener fails. Shutdown hooks run in every case
// once the listener was opened.
func (a *App) serve(addr string, cfg *runConfig) error {
	logger := cfg.logger
	if logger == nil {
		logger = a.logger
	}
	if addr == "" {
		addr = cfg.address
	}
	if addr == "" {
		addr = defaultAddress
	}

	base := cfg.baseCtx
	if base == nil {
		base = context.Background()
	}
	ctx, stop := signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for i, hook := range cfg.startupHooks {
		if err := hook(ctx); err != nil {
			return fmt.Errorf("startup hook %d: %w", i, err)
		}
	}

	// Listen first so ":0" logs the real port.
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := newServer(addr, a)
	serveErr := make(chan error, 1)
	go func() {
		defer close(serveErr)
		logger.Info("server starting",
			slog.String("address", ln.Addr().String()),
			slog.String("base_path", a.basePath),
			slog.Int("routes", len(a.Routes())),
		)
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return errors.Join(err, a.shutdown(srv, cfg, logger))
	case <-ctx.Done():
		return a.shutdown(srv, cfg, logger)
	}
}

// shutdown drains in-flight requests, then calls every shutdown hook in
// registration order, all within cfg.shutdownTimeout.
func (a *App) shutdown(srv *http.Server, cfg *runConfig, logger *slog.Logger) error {
	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	for _, hook := range cfg.shutdownHooks {
		if err := hook(ctx); err != nil {
			logger.Error("shutdown hook failed", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		logger.Error("shutdown completed with errors")
		return err
	}
	logger.Info("shutdown completed")
	return nil
}

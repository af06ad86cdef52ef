// server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dalemusser/fhurl/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ShutdownTimeout bounds how long in-flight form submissions get to finish
// once shutdown starts.
const ShutdownTimeout = 15 * time.Second

// WithShutdownSignals returns a context that is canceled when the process
// receives SIGINT or SIGTERM, for use as the parent context of the server.
// The returned cancel function also cleans up the signal handler.
func WithShutdownSignals(parent context.Context, logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			if logger != nil {
				logger.Info("shutdown signal received", zap.Any("signal", sig))
			}
			cancel()
		case <-ctx.Done():
		}
		// sigCh is left open; nothing reads it after Stop.
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// NewHTTPServer builds an http.Server with the configured timeouts and the
// stdlib error log routed into zap at Warn level.
func NewHTTPServer(cfg *config.Config, handler http.Handler, logger *zap.Logger) *http.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTP.HTTPPort),
		Handler:           handler,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
	if stdlog, err := zap.NewStdLogAt(logger, zapcore.WarnLevel); err == nil {
		srv.ErrorLog = stdlog
	} else {
		logger.Warn("failed to attach stdlib error logger", zap.Error(err))
	}
	return srv
}

// ListenAndServeWithContext listens on the configured HTTP port and serves
// until ctx is canceled or the server fails.
//
// It does NOT wire any routes itself; callers must provide a fully
// configured http.Handler (e.g., chi.Router).
func ListenAndServeWithContext(ctx context.Context, cfg *config.Config, handler http.Handler, logger *zap.Logger) error {
	if cfg == nil {
		return fmt.Errorf("ListenAndServeWithContext: cfg is nil")
	}
	if handler == nil {
		return fmt.Errorf("ListenAndServeWithContext: handler is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := NewHTTPServer(cfg, handler, logger)
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", srv.Addr, err)
	}
	return Serve(ctx, srv, ln, logger)
}

// Serve runs srv on ln and blocks until ctx is canceled (graceful shutdown
// within ShutdownTimeout) or the server stops on its own.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	serveErr := make(chan error, 1)
	logger.Info("HTTP server listening", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down server…")
		// ctx is already canceled, so the shutdown window starts fresh.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = ln.Close()
			return fmt.Errorf("server shutdown: %w", err)
		}
		logger.Info("server stopped gracefully")
		return nil

	case err := <-serveErr:
		_ = ln.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}

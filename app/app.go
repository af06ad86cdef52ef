// app/app.go
package app

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/dalemusser/fhurl/config"
	"github.com/dalemusser/fhurl/httputil"
	"github.com/dalemusser/fhurl/logging"
	"github.com/dalemusser/fhurl/metrics"
	"github.com/dalemusser/fhurl/server"
	"go.uber.org/zap"
)

// readyTimeout bounds the backend readiness check at startup.
const readyTimeout = 10 * time.Second

// Hooks defines the integration points a form service provides to Run.
// C is any service-specific config; B is the bundle of backends (session
// store, account store, ...) the handlers need.
type Hooks[C any, B any] struct {
	// Name is used only for logging/diagnostics.
	Name string

	// LoadConfig returns the shared config plus the service-specific one.
	// It typically calls config.Load.
	LoadConfig func(logger *zap.Logger) (*config.Config, C, error)

	// Connect opens the backends the service needs (e.g. the Redis session store).
	Connect func(ctx context.Context, cfg *config.Config, svcCfg C, logger *zap.Logger) (B, error)

	// Ready optionally verifies the backends respond before serving. May be nil.
	Ready func(ctx context.Context, cfg *config.Config, svcCfg C, backends B, logger *zap.Logger) error

	// BuildHandler constructs the router with all form routes mounted.
	BuildHandler func(cfg *config.Config, svcCfg C, backends B, logger *zap.Logger) (http.Handler, error)
}

// Run executes the standard startup sequence:
//
//  1. Bootstrap logger
//  2. Load config (Hooks.LoadConfig)
//  3. Build final logger based on config
//  4. Register default metrics
//  5. Connect backends (Hooks.Connect)
//  6. Readiness check (Hooks.Ready, if provided)
//  7. Wire shutdown signals to a context
//  8. Build the HTTP handler (Hooks.BuildHandler); a form route
//     configuration error stops startup here
//  9. Start the HTTP server and block until shutdown
func Run[C any, B any](ctx context.Context, hooks Hooks[C, B]) error {
	// 1) Bootstrap logger for early startup
	bootstrap := logging.BootstrapLogger()
	defer bootstrap.Sync()
	bootstrap.Info("bootstrap logger initialized", zap.String("app", hooks.Name))

	// 2) Load config
	cfg, svcCfg, err := hooks.LoadConfig(bootstrap)
	if err != nil {
		bootstrap.Error("config load failed", zap.Error(err))
		os.Exit(1)
	}
	bootstrap.Info("config loaded",
		zap.String("env", cfg.Env),
		zap.String("log_level", cfg.LogLevel),
	)

	// 3) Build final logger
	logger := logging.MustBuildLogger(hooks.Name, cfg.LogLevel, cfg.Env)
	defer logger.Sync()
	logger.Info("logger initialized")
	logger.Debug("effective config", zap.String("config", cfg.Dump()))
	httputil.SetJSONLogger(logger)

	// 4) Register default metrics (Go, process, HTTP histogram, dispatch counter)
	metrics.RegisterDefault(logger)

	// 5) Connect backends
	backends, err := hooks.Connect(ctx, cfg, svcCfg, logger)
	if err != nil {
		logger.Error("backend connect failed", zap.Error(err))
		os.Exit(1)
	}

	// 6) Readiness (optional)
	if hooks.Ready != nil {
		readyCtx, cancel := context.WithTimeout(ctx, readyTimeout)
		err := hooks.Ready(readyCtx, cfg, svcCfg, backends, logger)
		cancel()
		if err != nil {
			logger.Error("backend readiness check failed", zap.Error(err))
			os.Exit(1)
		}
	}

	// 7) Wire shutdown signals → context
	ctx, cancel := server.WithShutdownSignals(ctx, logger)
	defer cancel()

	// 8) Build HTTP handler (router + middleware + form routes)
	handler, err := hooks.BuildHandler(cfg, svcCfg, backends, logger)
	if err != nil {
		logger.Error("handler build failed", zap.Error(err))
		os.Exit(1)
	}

	// 9) Start HTTP server
	if err := server.ListenAndServeWithContext(ctx, cfg, handler, logger); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

// router/router.go
package router

import (
	"github.com/dalemusser/fhurl/config"
	"github.com/dalemusser/fhurl/logging"
	"github.com/dalemusser/fhurl/metrics"
	"github.com/dalemusser/fhurl/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// New creates a chi.Router pre-wired with the standard middleware stack:
// - RequestID
// - RealIP
// - Recoverer (panic → 500)
// - body size limit (MaxRequestBodyBytes)
// - metrics HTTP middleware
// - request logging
// - CORS, compression, and form-page security headers from config
// - NotFound / MethodNotAllowed JSON handlers
// Form routes are mounted on the returned router by the caller.
func New(cfg *config.Config, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Request context & safety
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.Recoverer(logger))

	r.Use(middleware.LimitBodySize(cfg.HTTP.MaxRequestBodyBytes))

	r.Use(metrics.HTTPMetrics)
	r.Use(logging.RequestLogger(logger))

	r.Use(middleware.CORSFromConfig(cfg))
	r.Use(middleware.CompressFromConfig(cfg))
	r.Use(middleware.SecurityHeadersFromConfig(cfg))

	r.NotFound(middleware.NotFoundHandler(logger))
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler(logger))

	return r
}

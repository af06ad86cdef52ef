// middleware/cors.go
package middleware

import (
	"net/http"

	"github.com/dalemusser/fhurl/config"
	"github.com/go-chi/cors"
)

// ajaxHeaders are always allowed when CORS is on, since AJAX form clients
// announce themselves with X-Requested-With.
var ajaxHeaders = []string{"Accept", "Content-Type", "X-Requested-With"}

// CORSFromConfig returns a middleware that applies CORS behavior based on the
// given Config's CORS section.
//
// If cfg.CORS.EnableCORS is false, it returns an identity middleware that
// does nothing. This makes it safe to unconditionally call:
//
//	r.Use(middleware.CORSFromConfig(cfg))
func CORSFromConfig(cfg *config.Config) func(next http.Handler) http.Handler {
	if cfg == nil || !cfg.CORS.EnableCORS {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.CORSAllowedOrigins,
		AllowedMethods:   cfg.CORS.CORSAllowedMethods,
		AllowedHeaders:   mergeHeaders(cfg.CORS.CORSAllowedHeaders, ajaxHeaders),
		ExposedHeaders:   cfg.CORS.CORSExposedHeaders,
		AllowCredentials: cfg.CORS.CORSAllowCredentials,
		MaxAge:           cfg.CORS.CORSMaxAge,
	})
}

func mergeHeaders(configured, required []string) []string {
	seen := make(map[string]bool, len(configured)+len(required))
	out := make([]string, 0, len(configured)+len(required))
	for _, h := range append(append([]string{}, configured...), required...) {
		key := http.CanonicalHeaderKey(h)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}

// Package health serves the service's /health probe and runs the same
// checks once at startup.
package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dalemusser/fhurl/httputil"
)

// Path is where Mount attaches the probe.
const Path = "/health"

// DefaultTimeout bounds each individual check.
const DefaultTimeout = 3 * time.Second

// Check probes one backend and returns nil when it is usable.
type Check func(ctx context.Context) error

// Checks maps a backend name to its probe.
type Checks map[string]Check

// Report is the JSON body of the probe.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// OK reports whether every check passed.
func (r Report) OK() bool { return r.Status == "ok" }

// Run executes the checks in name order, each bounded by timeout (zero
// means DefaultTimeout). A nil Check counts as passing.
func (c Checks) Run(ctx context.Context, timeout time.Duration, logger *zap.Logger) Report {
	rep := Report{Status: "ok"}
	if len(c) == 0 {
		return rep
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	rep.Checks = make(map[string]string, len(c))
	for _, name := range names {
		check := c[name]
		if check == nil {
			rep.Checks[name] = "ok"
			continue
		}
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		err := check(checkCtx)
		cancel()
		if err == nil {
			rep.Checks[name] = "ok"
			continue
		}
		rep.Status = "error"
		rep.Checks[name] = "error: " + err.Error()
		logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
	}
	return rep
}

// Handler runs the checks per request: 200 when all pass, 503 otherwise.
func Handler(checks Checks, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rep := checks.Run(r.Context(), 0, logger)
		status := http.StatusOK
		if !rep.OK() {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Cache-Control", "no-store")
		httputil.WriteJSON(w, status, rep)
	})
}

// Mount attaches Handler at Path.
func Mount(r chi.Router, checks Checks, logger *zap.Logger) {
	r.Method(http.MethodGet, Path, Handler(checks, logger))
}

// metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// reqDuration is a histogram of HTTP request durations in seconds, labeled
// by route pattern, method, and status code.
var reqDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: []float64{0.01, 0.1, 0.3, 1.2, 5},
	},
	[]string{"path", "method", "status"},
)

// dispatchTotal counts form dispatches by route name and the branch taken.
var dispatchTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fhurl_dispatch_total",
		Help: "Form handler dispatches by route and outcome.",
	},
	[]string{"route", "outcome"},
)

// RegisterDefault registers the Go runtime and process collectors, the HTTP
// request histogram, and the form dispatch counter. Call it once at startup.
//
// Registration failures other than AlreadyRegisteredError are fatal.
func RegisterDefault(logger *zap.Logger) {
	mustRegister(logger, "Go collector", collectors.NewGoCollector())
	mustRegister(logger, "process collector", collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mustRegister(logger, "HTTP request histogram", reqDuration)
	mustRegister(logger, "dispatch counter", dispatchTotal)
}

func mustRegister(logger *zap.Logger, name string, c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return
		}
		if logger != nil {
			logger.Fatal("failed to register "+name, zap.Error(err))
		}
		panic("metrics: failed to register " + name + ": " + err.Error())
	}
}

// RecordDispatch increments fhurl_dispatch_total for one handled form request.
// Unnamed routes are recorded under "unnamed".
func RecordDispatch(route, outcome string) {
	if route == "" {
		route = "unnamed"
	}
	dispatchTotal.WithLabelValues(truncateLabel(route), outcome).Inc()
}

// maxPathLabelLength bounds label values to keep registry memory in check.
const maxPathLabelLength = 256

// HTTPMetrics is a middleware that records request duration into the
// http_request_duration_seconds histogram.
//
// It labels by chi route pattern (e.g. "/with/data/{username}/") rather than
// the raw path so URL parameters don't explode label cardinality.
// It belongs after logging.Recoverer so recovered panics are recorded as 500.
func HTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		protoMajor := r.ProtoMajor
		if protoMajor < 1 {
			protoMajor = 1
		}
		ww := middleware.NewWrapResponseWriter(w, protoMajor)

		next.ServeHTTP(ww, r)

		statusCode := ww.Status()
		if statusCode == 0 {
			statusCode = http.StatusOK
		}
		if statusCode < 100 || statusCode > 599 {
			statusCode = http.StatusInternalServerError
		}

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		reqDuration.WithLabelValues(
			truncateLabel(path),
			r.Method,
			strconv.Itoa(statusCode),
		).Observe(time.Since(start).Seconds())
	})
}

// Handler returns an http.Handler that exposes the Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

func truncateLabel(s string) string {
	if len(s) <= maxPathLabelLength {
		return s
	}
	return truncateUTF8(s, maxPathLabelLength-3) + "..."
}

// truncateUTF8 truncates s to at most maxBytes bytes without splitting
// multi-byte UTF-8 characters. If maxBytes <= 0, returns an empty string.
func truncateUTF8(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}

package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Metrics middleware records HTTP metrics.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := routeLabel(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// routeLabel prefers the matched chi pattern and falls back to normalizePath
// for requests that did not reach a route.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return normalizePath(r.URL.Path)
}

// idSegments lists path prefixes whose next segment is an identifier.
var idSegments = []struct {
	prefix      string
	placeholder string
	depth       int
}{
	{"/api/v1/items/", ":id", 1},
	{"/api/v1/accounts/", ":client/:account", 2},
}

// normalizePath normalizes URL paths to avoid high cardinality.
// /api/v1/items/01ABC/lines/2026-01-31 -> /api/v1/items/:id/lines/:month
func normalizePath(path string) string {
	for _, s := range idSegments {
		if !strings.HasPrefix(path, s.prefix) || len(path) == len(s.prefix) {
			continue
		}

		parts := strings.Split(strings.TrimPrefix(path, s.prefix), "/")
		if len(parts) < s.depth {
			return s.prefix + s.placeholder
		}
		rest := parts[s.depth:]
		// Dated segments follow a fixed noun: lines/{month}, ledger-balances/{period}.
		if len(rest) == 2 {
			rest[1] = ":date"
		}
		out := s.prefix + s.placeholder
		if len(rest) > 0 {
			out += "/" + strings.Join(rest, "/")
		}
		return out
	}

	return path
}

// Package metrics provides Prometheus instrumentation for the hedge engine.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CalculationsTotal counts successful calculations by policy.
	CalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hedge_calculations_total",
		Help: "Total number of successful hedge calculations",
	}, []string{"cost_model", "rounding"})

	// CalculationFailures counts rejected calculations by kind
	// ("validation", "invalid_input", "internal").
	CalculationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hedge_calculation_failures_total",
		Help: "Calculations rejected before producing a result",
	}, []string{"kind"})

	// CalculationLatency tracks end-to-end engine time per calculation.
	CalculationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hedge_calculation_latency_seconds",
		Help:    "Hedge calculation latency in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	// LotsRequired observes hedge sizes.
	LotsRequired = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hedge_lots_required",
		Help:    "Futures lots required per calculation",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500, 1000},
	})

	ScenarioSweeps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hedge_scenario_sweeps_total",
		Help: "Total number of scenario sweeps evaluated",
	})

	// ScenarioRows counts sweep rows by outcome ("ok", "error").
	ScenarioRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hedge_scenario_rows_total",
		Help: "Scenario rows evaluated, by outcome",
	}, []string{"status"})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hedge_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hedge_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hedge_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// ObserveCalculation records a successful calculation.
func ObserveCalculation(costModel, rounding string, lots int64, elapsed time.Duration) {
	CalculationsTotal.WithLabelValues(costModel, rounding).Inc()
	CalculationLatency.Observe(elapsed.Seconds())
	LotsRequired.Observe(float64(lots))
}

// ObserveSweep records a sweep and the outcome of each of its rows.
func ObserveSweep(ok, failed int) {
	ScenarioSweeps.Inc()
	ScenarioRows.WithLabelValues("ok").Add(float64(ok))
	ScenarioRows.WithLabelValues("error").Add(float64(failed))
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the route pattern for path label to avoid high cardinality.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets WebSocket upgrades pass through the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	return h.Hijack()
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

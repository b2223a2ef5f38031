// Package metrics provides Prometheus instrumentation for the basket service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elys-network/basket/internal/fpdecimal"
)

// Quote outcomes.
const (
	OutcomePreviewed = "previewed"
	OutcomeExecuted  = "executed"
	OutcomeRejected  = "rejected"
)

var (
	// QuotesTotal counts quotes by kind and outcome.
	QuotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "basket_quotes_total",
		Help: "Total number of mint and redeem quotes",
	}, []string{"kind", "outcome"})

	// QuotePenalty tracks the signed penalty of priced quotes. Rebates are negative.
	QuotePenalty = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "basket_quote_penalty",
		Help:    "Signed penalty fraction applied to quotes",
		Buckets: []float64{-0.05, -0.01, -0.001, 0, 0.001, 0.01, 0.05, 0.1, 0.25},
	}, []string{"kind"})

	// BasketNAV is the last observed net asset value.
	BasketNAV = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "basket_nav",
		Help: "Basket net asset value at the last observation",
	})

	// BasketDrift is the last observed imbalance over the smoothed scale.
	BasketDrift = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "basket_drift",
		Help: "Basket drift from target weights at the last observation",
	})

	// LoopCyclesTotal counts heartbeat cycles by result.
	LoopCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "basket_loop_cycles_total",
		Help: "Engine heartbeat cycles",
	}, []string{"result"})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "basket_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "basket_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// ObserveQuote records a priced quote.
func ObserveQuote(kind, outcome string, pen fpdecimal.FPDecimal) {
	QuotesTotal.WithLabelValues(kind, outcome).Inc()
	QuotePenalty.WithLabelValues(kind).Observe(Float(pen))
}

// RejectQuote records a quote that could not be priced.
func RejectQuote(kind string) {
	QuotesTotal.WithLabelValues(kind, OutcomeRejected).Inc()
}

// Float converts for export only; it is lossy and never fed back into pricing.
func Float(d fpdecimal.FPDecimal) float64 {
	f, err := d.LegacyDec().Float64()
	if err != nil {
		return 0
	}
	return f
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := routeTemplate(r)
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routeTemplate labels by the matched route pattern to keep cardinality bounded.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
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

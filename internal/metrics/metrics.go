package metrics

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ErlanBelekov/account-recovery/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Reset protocol metrics

	ResetRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recovery",
		Name:      "reset_requests_total",
		Help:      "Reset-link requests, by outcome.",
	}, []string{"outcome"})

	ResetConfirmsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recovery",
		Name:      "reset_confirms_total",
		Help:      "Reset submissions, by outcome.",
	}, []string{"outcome"})

	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "recovery",
		Name:      "rate_limited_total",
		Help:      "Reset requests rejected by the rate guard.",
	})

	EmailDispatchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recovery",
		Name:      "email_dispatch_duration_seconds",
		Help:      "Time from dispatch to transport acknowledgment.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"outcome"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recovery",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recovery",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		ResetRequestsTotal,
		ResetConfirmsTotal,
		RateLimitedTotal,
		EmailDispatchDuration,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// Checker is implemented by health.Checker.
type Checker interface {
	Liveness(ctx context.Context) health.Result
	Readiness(ctx context.Context) health.Result
}

func NewServer(addr string, checker Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		result := checker.Readiness(r.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, result)
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// PaymasterBalanceUsd tracks the last-refreshed balance of every
	// provisioned paymaster, labeled by project and chain (§4.6).
	PaymasterBalanceUsd = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nexuspay_paymaster_balance_usd",
			Help: "Last-refreshed paymaster balance in USD",
		},
		[]string{"project_id", "chain"},
	)

	// WebhookDeliveriesTotal counts outbound webhook attempts by event type
	// and outcome (§4.1, §4.6).
	WebhookDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexuspay_webhook_deliveries_total",
			Help: "Total outbound webhook delivery attempts",
		},
		[]string{"event", "outcome"},
	)

	// APIKeyUsageQueueDropped counts usage rows dropped because the bounded
	// async writer queue was full (§4.1).
	APIKeyUsageQueueDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nexuspay_apikey_usage_queue_dropped_total",
			Help: "Total APIKeyUsage rows dropped due to a full async write queue",
		},
	)

	// WalletDeploysTotal counts deploy outcomes by chain (§4.5).
	WalletDeploysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexuspay_wallet_deploys_total",
			Help: "Total wallet deploy outcomes",
		},
		[]string{"chain", "outcome"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records per-request count/duration/in-flight gauges. /metrics
// itself is excluded so scraping doesn't inflate its own counters.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		start := time.Now()
		wrapped := newResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(wrapped.statusCode)
		path := normalizePath(r.URL.Path)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

func normalizePath(path string) string {
	if len(path) > 50 {
		return path[:50]
	}
	return path
}

func Handler() http.Handler {
	return promhttp.Handler()
}

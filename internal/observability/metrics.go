package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "resilience_api"

// Metrics holds the Prometheus counters and histograms for the API.
type Metrics struct {
	// HTTP surface.
	HTTPRequests        *prometheus.CounterVec   // labels: route, method, status
	HTTPRequestDuration *prometheus.HistogramVec // labels: route
	ValidationFailures  *prometheus.CounterVec   // labels: route

	// Upstream calls.
	UpstreamRequests *prometheus.CounterVec   // labels: upstream={store,news}, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: upstream

	// User-submitted records.
	RecordsCreated *prometheus.CounterVec // labels: kind
	PublishErrors  *prometheus.CounterVec // labels: backend

	NewsCache *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all API metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.ValidationFailures,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.RecordsCreated,
		m.PublishErrors,
		m.NewsCache,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method, and status code.",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"route"}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Requests rejected with 400 by route.",
		}, []string{"route"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Calls to the table store and the news API by outcome.",
		}, []string{"upstream", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Upstream call duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"upstream"}),
		RecordsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_created_total",
			Help:      "Aid requests and SOS alerts stored.",
		}, []string{"kind"}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Record events that could not be published.",
		}, []string{"backend"}),
		NewsCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "news_cache_total",
			Help:      "News cache lookups by result.",
		}, []string{"result"}),
	}
}

// ObserveUpstream records one upstream call started at start.
func (m *Metrics) ObserveUpstream(upstream string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamRequests.WithLabelValues(upstream, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(upstream).Observe(time.Since(start).Seconds())
}

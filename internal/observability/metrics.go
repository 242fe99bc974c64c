package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	httpRequestsTotal       *prometheus.CounterVec
	httpLatencySeconds      *prometheus.HistogramVec
	httpErrorsTotal         *prometheus.CounterVec
	ingestRowsTotal         prometheus.Counter
	ingestRejectedTotal     *prometheus.CounterVec
	analyticsRecomputes     prometheus.Counter
	analyticsComputeSecs    prometheus.Histogram
	analyticsCacheHitsTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pantau_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pantau_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pantau_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		ingestRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pantau_ingest_rows_total",
			Help: "Total number of raw report rows ingested.",
		})

		ingestRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pantau_ingest_rejected_total",
			Help: "Total number of rejected report uploads by reason.",
		}, []string{"reason"})

		analyticsRecomputes = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pantau_analytics_recomputes_total",
			Help: "Total number of full analytics recomputations.",
		})

		analyticsComputeSecs = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pantau_analytics_compute_seconds",
			Help:    "Duration of full analytics recomputations.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		})

		analyticsCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pantau_analytics_cache_hits_total",
			Help: "Total number of analytics reads served from cache.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			ingestRowsTotal,
			ingestRejectedTotal,
			analyticsRecomputes,
			analyticsComputeSecs,
			analyticsCacheHitsTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// IngestRows exposes the counter for ingested report rows.
func IngestRows() prometheus.Counter {
	RegisterMetrics()
	return ingestRowsTotal
}

// IngestRejected exposes the counter for rejected uploads.
func IngestRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return ingestRejectedTotal
}

// AnalyticsRecomputes exposes the counter for full recomputations.
func AnalyticsRecomputes() prometheus.Counter {
	RegisterMetrics()
	return analyticsRecomputes
}

// AnalyticsComputeDuration exposes the recomputation duration histogram.
func AnalyticsComputeDuration() prometheus.Histogram {
	RegisterMetrics()
	return analyticsComputeSecs
}

// AnalyticsCacheHits exposes the counter for cache-served analytics reads.
func AnalyticsCacheHits() prometheus.Counter {
	RegisterMetrics()
	return analyticsCacheHitsTotal
}

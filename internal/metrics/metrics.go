// Package metrics exposes Prometheus collectors for the sentiment service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sentiment"

// Metrics holds all service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests         *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	Predictions       *prometheus.CounterVec
	InferenceDuration *prometheus.HistogramVec
	InferenceErrors   *prometheus.CounterVec

	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

// New creates and registers all collectors, including Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		HTTPRequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),

		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Predictions served by model and sentiment.",
		}, []string{"model", "sentiment"}),

		InferenceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Latency of pipeline classification calls.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"model"}),

		InferenceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inference_errors_total",
			Help:      "Failed pipeline classification calls.",
		}, []string{"model"}),

		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "label_cache_hits_total",
			Help:      "Raw-label cache hits.",
		}, []string{"model"}),

		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "label_cache_misses_total",
			Help:      "Raw-label cache misses.",
		}, []string{"model"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.Predictions,
		m.InferenceDuration,
		m.InferenceErrors,
		m.CacheHits,
		m.CacheMisses,
	)

	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTP records a completed HTTP request.
func (m *Metrics) RecordHTTP(method, route string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordPrediction counts a served prediction.
func (m *Metrics) RecordPrediction(model, sentiment string) {
	m.Predictions.WithLabelValues(model, sentiment).Inc()
}

// ObserveInference records one pipeline call.
func (m *Metrics) ObserveInference(model string, duration time.Duration, err error) {
	m.InferenceDuration.WithLabelValues(model).Observe(duration.Seconds())
	if err != nil {
		m.InferenceErrors.WithLabelValues(model).Inc()
	}
}

// RecordCacheHit counts a raw-label cache hit.
func (m *Metrics) RecordCacheHit(model string) {
	m.CacheHits.WithLabelValues(model).Inc()
}

// RecordCacheMiss counts a raw-label cache miss.
func (m *Metrics) RecordCacheMiss(model string) {
	m.CacheMisses.WithLabelValues(model).Inc()
}

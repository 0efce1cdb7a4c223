// Package metrics exposes Prometheus metrics for the calculation store and
// the HTTP adapter.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nebenkosten/internal/domain/calculation"
)

const namespace = "nebenkosten"

const (
	resultSuccess = "success"
	resultError   = "error"
)

// Compile-time check that Metrics implements calculation.Recorder.
var _ calculation.Recorder = (*Metrics)(nil)

// Metrics holds all collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Mutations       *prometheus.CounterVec
	Persists        *prometheus.CounterVec
	Rehydrations    *prometheus.CounterVec
	Validations     *prometheus.CounterVec
	PlausibilityHit *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors. Go runtime and process
// collectors are registered as well.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.Mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_mutations_total",
			Help:      "Store operations by name",
		},
		[]string{"op"},
	)
	m.Persists = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_persist_total",
			Help:      "Snapshot writes by result",
		},
		[]string{"result"},
	)
	m.Rehydrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_rehydrations_total",
			Help:      "Startup restores by outcome",
		},
		[]string{"outcome"},
	)
	m.Validations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Schema validations by entity and result",
		},
		[]string{"entity", "result"},
	)
	m.PlausibilityHit = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plausibility_warnings_total",
			Help:      "Plausibility warnings by rule",
		},
		[]string{"rule"},
	)
	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(
		m.Mutations,
		m.Persists,
		m.Rehydrations,
		m.Validations,
		m.PlausibilityHit,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Handler returns the scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Mutation implements calculation.Recorder.
func (m *Metrics) Mutation(op string) {
	m.Mutations.WithLabelValues(op).Inc()
}

// Persisted implements calculation.Recorder.
func (m *Metrics) Persisted(err error) {
	m.Persists.WithLabelValues(result(err)).Inc()
}

// Rehydrated implements calculation.Recorder.
func (m *Metrics) Rehydrated(outcome string) {
	m.Rehydrations.WithLabelValues(outcome).Inc()
}

// RecordValidation counts one schema run for entity.
func (m *Metrics) RecordValidation(entity string, err error) {
	m.Validations.WithLabelValues(entity, result(err)).Inc()
}

// RecordWarning counts one plausibility warning.
func (m *Metrics) RecordWarning(rule string) {
	m.PlausibilityHit.WithLabelValues(rule).Inc()
}

// RecordHTTPRequest records a finished request. path is the route template.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}

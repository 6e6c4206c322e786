package metrics

import (
	"net/http"

	"cyber-dashboard/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	// Dataset metrics
	DatasetRecords      prometheus.Gauge
	DatasetLoads        *prometheus.CounterVec
	DatasetLoadDuration prometheus.Histogram
	AttacksBySeverity   *prometheus.GaugeVec
	AffectedUsers       prometheus.Gauge

	// Filter metrics
	FilterEvaluations *prometheus.CounterVec
	FilterMatched     prometheus.Histogram

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Stream metrics
	StreamClients prometheus.Gauge
}

// New creates the dashboard metrics on a private registry that also carries
// the Go and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		DatasetRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_dataset_records",
			Help: "Number of attack records in the current dataset",
		}),
		DatasetLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_dataset_loads_total",
				Help: "Total number of dataset loads by result",
			},
			[]string{"result"},
		),
		DatasetLoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_dataset_load_duration_seconds",
			Help:    "Time spent loading and summarizing a dataset",
			Buckets: prometheus.DefBuckets,
		}),
		AttacksBySeverity: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dashboard_attacks_by_severity",
				Help: "Attack records per severity tier in the current dataset",
			},
			[]string{"severity"},
		),
		AffectedUsers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_affected_users",
			Help: "Sum of affected users across the current dataset",
		}),

		FilterEvaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_filter_evaluations_total",
				Help: "Total number of filter evaluations by caller",
			},
			[]string{"caller"},
		),
		FilterMatched: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_filter_matched_records",
			Help:    "Records matching the criteria before truncation",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_http_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"code", "method"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_http_request_duration_seconds",
				Help:    "API request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"code", "method"},
		),

		StreamClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_stream_clients",
			Help: "Connected view stream clients",
		}),
	}
}

// Registry exposes the registry for the exporter and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordLoad tracks the outcome of one dataset load.
func (m *Metrics) RecordLoad(success bool, seconds float64) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.DatasetLoads.WithLabelValues(result).Inc()
	m.DatasetLoadDuration.Observe(seconds)
}

// ObserveStats replaces the dataset gauges with the values of s.
func (m *Metrics) ObserveStats(s model.AttackStats) {
	m.DatasetRecords.Set(float64(s.TotalAttacks))
	m.AffectedUsers.Set(float64(s.TotalAffectedUsers))

	m.AttacksBySeverity.Reset()
	for severity, count := range s.SeverityDistribution {
		if severity == "" {
			severity = "unknown"
		}
		m.AttacksBySeverity.WithLabelValues(severity).Set(float64(count))
	}
}

// RecordFilter tracks one filter evaluation.
func (m *Metrics) RecordFilter(caller string, matched int) {
	if caller == "" {
		caller = "unknown"
	}
	m.FilterEvaluations.WithLabelValues(caller).Inc()
	m.FilterMatched.Observe(float64(matched))
}

// InstrumentHandler wraps next with request counting and latency tracking.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerDuration(m.HTTPDuration,
		promhttp.InstrumentHandlerCounter(m.HTTPRequests, next))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

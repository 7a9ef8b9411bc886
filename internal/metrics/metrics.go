// Package metrics holds the Prometheus collectors of the acquisition pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the update pipeline collectors
type Metrics struct {
	PagesFetched   prometheus.Counter
	FetchAttempts  *prometheus.CounterVec
	RecordsDropped prometheus.Counter
	Records        prometheus.Gauge
	UpdateDuration prometheus.Histogram

	registry *prometheus.Registry
}

// New creates the collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rustman_pages_fetched_total",
			Help: "Registry pages fetched and parsed successfully",
		}),
		FetchAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rustman_fetch_attempts_total",
				Help: "Page fetch attempts by result",
			},
			[]string{"result"},
		),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rustman_records_dropped_total",
			Help: "Candidates discarded for lacking a version",
		}),
		Records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rustman_records",
			Help: "Crates held by the current snapshot",
		}),
		UpdateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rustman_update_duration_seconds",
			Help:    "Wall time of full database rebuilds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	m.registry.MustRegister(
		m.PagesFetched,
		m.FetchAttempts,
		m.RecordsDropped,
		m.Records,
		m.UpdateDuration,
	)

	return m
}

// ObserveAttempt records the outcome of one fetch attempt
func (m *Metrics) ObserveAttempt(err error) {
	if err != nil {
		m.FetchAttempts.WithLabelValues("error").Inc()
		return
	}
	m.FetchAttempts.WithLabelValues("ok").Inc()
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

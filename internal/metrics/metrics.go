package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rflorenc/databricks-resource-cleaner/internal/models"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	Outcomes *prometheus.CounterVec
	Runs     *prometheus.CounterVec
	Duration prometheus.Histogram
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbcleaner_resource_outcomes_total",
				Help: "Per-item cleanup outcomes by resource category and result.",
			},
			[]string{"category", "result"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbcleaner_runs_total",
				Help: "Cleanup runs by final status.",
			},
			[]string{"status"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dbcleaner_run_duration_seconds",
				Help:    "Wall time of cleanup runs.",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
	}
	m.registry.MustRegister(
		m.Outcomes,
		m.Runs,
		m.Duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordRun records a finished run.
func (m *Metrics) RecordRun(run *models.Run) {
	snap := run.Snapshot()
	m.Runs.WithLabelValues(snap.Status).Inc()
	if snap.FinishedAt != nil {
		m.Duration.Observe(snap.FinishedAt.Sub(snap.StartedAt).Seconds())
	} else {
		m.Duration.Observe(time.Since(snap.StartedAt).Seconds())
	}
	for _, t := range snap.Tallies {
		c := string(t.Category)
		m.Outcomes.WithLabelValues(c, "succeeded").Add(float64(t.Succeeded))
		m.Outcomes.WithLabelValues(c, "failed").Add(float64(t.Failed))
		m.Outcomes.WithLabelValues(c, "skipped").Add(float64(t.Skipped))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

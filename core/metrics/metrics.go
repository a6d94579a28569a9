// Package metrics exposes Prometheus collectors describing sync runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Item outcomes recorded by ObserveItems.
const (
	OutcomeCreated  = "created"
	OutcomeUpdated  = "updated"
	OutcomeEnhanced = "enhanced"
	OutcomeSkipped  = "skipped"
	OutcomeError    = "error"
)

type Metrics struct {
	RunsTotal   *prometheus.CounterVec
	ItemsTotal  *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "judge_sync_runs_total",
			Help: "Total number of sync runs by kind and terminal status",
		}, []string{"kind", "status"}),
		ItemsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "judge_sync_items_total",
			Help: "Total number of reconciled items by outcome",
		}, []string{"outcome"}),
		RunDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "judge_sync_run_duration_seconds",
			Help:    "Wall-clock duration of sync runs",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 1800, 3600},
		}, []string{"kind"}),
	}
}

// ObserveRun records the terminal status and duration of one run.
func (m *Metrics) ObserveRun(kind, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(kind, status).Inc()
	m.RunDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveItems adds n items with the given outcome.
func (m *Metrics) ObserveItems(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ItemsTotal.WithLabelValues(outcome).Add(float64(n))
}

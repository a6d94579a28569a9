package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Observe(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRun("discovery", "completed", 3*time.Second)
	m.ObserveItems(OutcomeCreated, 2)
	m.ObserveItems(OutcomeError, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("discovery", "completed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ItemsTotal.WithLabelValues(OutcomeCreated)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ItemsTotal.WithLabelValues(OutcomeError)))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRun("discovery", "failed", time.Second)
		m.ObserveItems(OutcomeSkipped, 1)
	})
}

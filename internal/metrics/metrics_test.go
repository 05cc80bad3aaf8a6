package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementRender("styled")
	m.IncrementRender("styled")
	m.IncrementRender("basic")
	m.IncrementPhotoDecision("photo_over_budget")
	m.IncrementMark("watermark")
	m.IncrementFailure()
	m.ObserveRender(time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Renders.WithLabelValues("styled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Renders.WithLabelValues("basic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PhotoDecisions.WithLabelValues("photo_over_budget")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Marks.WithLabelValues("watermark")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementRender("styled")
		m.IncrementPhotoDecision("no_photo")
		m.IncrementMark("user_logo")
		m.IncrementFailure()
		m.ObserveRender(time.Now())
	})
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts which degradation paths card renders take.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Renders        *prometheus.CounterVec
	PhotoDecisions *prometheus.CounterVec
	Marks          *prometheus.CounterVec
	Failures       prometheus.Counter
	RenderDuration prometheus.Histogram
}

// New registers the pipeline metrics on reg. A nil reg means the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Renders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cardqr_renders_total",
			Help: "Completed QR renders by tier (styled, basic)",
		}, []string{"tier"}),
		PhotoDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cardqr_photo_decisions_total",
			Help: "Payload selections by budget path",
		}, []string{"path"}),
		Marks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cardqr_marks_total",
			Help: "Composited marks by kind (user_logo, watermark)",
		}, []string{"kind"}),
		Failures: f.NewCounter(prometheus.CounterOpts{
			Name: "cardqr_render_failures_total",
			Help: "Renders where both QR tiers failed",
		}),
		RenderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cardqr_render_duration_seconds",
			Help:    "Duration of a full card render",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementRender records a successful render on tier.
func (m *Metrics) IncrementRender(tier string) {
	if m == nil {
		return
	}
	m.Renders.WithLabelValues(tier).Inc()
}

// IncrementPhotoDecision records the budget path taken for a payload.
func (m *Metrics) IncrementPhotoDecision(path string) {
	if m == nil {
		return
	}
	m.PhotoDecisions.WithLabelValues(path).Inc()
}

// IncrementMark records the kind of mark composited.
func (m *Metrics) IncrementMark(kind string) {
	if m == nil {
		return
	}
	m.Marks.WithLabelValues(kind).Inc()
}

// IncrementFailure records a render that surfaced an error.
func (m *Metrics) IncrementFailure() {
	if m == nil {
		return
	}
	m.Failures.Inc()
}

// ObserveRender records the duration of a render.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRender(start time.Time) {
	if m == nil {
		return
	}
	m.RenderDuration.Observe(time.Since(start).Seconds())
}

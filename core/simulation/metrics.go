package simulation

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"example.com/water-quality/base/metrics"
	"example.com/water-quality/core/engine"
)

type Metrics struct {
	computations prometheus.Counter
	failures     *prometheus.CounterVec
	warnings     prometheus.Counter
	duration     prometheus.Histogram
}

// NewMetrics registers the simulation metrics with reg. Simulations sharing
// one Metrics value report into the same series.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		computations: f.NewCounter(prometheus.CounterOpts{
			Name: metrics.SimComputationsN,
			Help: metrics.SimComputationsH,
		}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.SimFailuresN,
			Help: metrics.SimFailuresH,
		}, []string{"kind"}),
		warnings: f.NewCounter(prometheus.CounterOpts{
			Name: metrics.SimWarningsN,
			Help: metrics.SimWarningsH,
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    metrics.SimComputeSecondsN,
			Help:    metrics.SimComputeSecondsH,
			Buckets: prometheus.ExponentialBuckets(1e-5, 2, 14),
		}),
	}
}

func (m *Metrics) observe(start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.Observe(time.Since(start).Seconds())
	if err == nil {
		m.computations.Inc()
		return
	}
	m.failures.WithLabelValues(failureKind(err)).Inc()
}

func (m *Metrics) warn() {
	if m == nil {
		return
	}
	m.warnings.Inc()
}

func failureKind(err error) string {
	var merr *engine.MissingInputError
	var nerr *engine.NoRuleFiredError
	switch {
	case errors.As(err, &merr):
		return "missing_input"
	case errors.As(err, &nerr):
		return "no_rule_fired"
	default:
		return "other"
	}
}

package report

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aopsample/exectime/internal/observe"
)

const namespace = "exectime"

// Metrics exports measurements as Prometheus series.
// Every sample comes from exactly one Measurement.
type Metrics struct {
	durations  *prometheus.HistogramVec
	operations *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		durations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Execution time of timed operations",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"operation", "outcome"},
		),
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Timed operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
	}
}

// Record implements observe.Sink
func (m *Metrics) Record(_ context.Context, meas observe.Measurement) {
	labels := prometheus.Labels{
		"operation": meas.Operation,
		"outcome":   string(meas.Outcome()),
	}
	m.operations.With(labels).Inc()
	m.durations.With(labels).Observe(meas.Elapsed.Seconds())
}

package openmrs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"hipservice/pkg/platform/circuit"
)

// Metrics provides observability for OpenMRS calls.
type Metrics struct {
	// Request latency by endpoint and outcome
	RequestLatency *prometheus.HistogramVec

	// Breaker position (0 closed, 1 open)
	BreakerState prometheus.Gauge
}

// NewMetrics registers the OpenMRS metrics on reg. A nil reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hip_openmrs_request_duration_seconds",
			Help:    "Duration of OpenMRS requests by endpoint and outcome",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint", "outcome"}), // outcome: "ok", "error", "rejected"

		BreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hip_openmrs_circuit_open",
			Help: "Whether the OpenMRS circuit breaker is open",
		}),
	}
}

func (m *Metrics) ObserveRequest(endpoint, outcome string, d time.Duration) {
	if m != nil {
		m.RequestLatency.WithLabelValues(endpoint, outcome).Observe(d.Seconds())
	}
}

func (m *Metrics) SetBreakerState(state circuit.State) {
	if m == nil {
		return
	}
	if state == circuit.StateOpen {
		m.BreakerState.Set(1)
		return
	}
	m.BreakerState.Set(0)
}

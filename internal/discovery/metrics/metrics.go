package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the discovery module.
type Metrics struct {
	// Discovery outcomes by gateway result code
	Outcome *prometheus.CounterVec

	// Collaborator latencies by source
	CollaboratorLatency *prometheus.HistogramVec

	// Full Discover latency
	DiscoverLatency prometheus.Histogram
}

// New registers the discovery metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Outcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hip_discovery_outcomes_total",
			Help: "Total discovery outcomes by result",
		}, []string{"result"}), // result: "matched", "NoPatientFound", ...

		CollaboratorLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hip_discovery_collaborator_duration_seconds",
			Help:    "Duration of discovery collaborator calls by source",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"source"}), // source: "dedup", "matcher", "linkage"

		DiscoverLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "hip_discovery_discover_duration_seconds",
			Help:    "Duration of a full discovery including collaborator calls",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementOutcome records a discovery outcome.
func (m *Metrics) IncrementOutcome(result string) {
	if m != nil {
		m.Outcome.WithLabelValues(result).Inc()
	}
}

// ObserveCollaboratorLatency records the duration of one collaborator call.
func (m *Metrics) ObserveCollaboratorLatency(source string, d time.Duration) {
	if m != nil {
		m.CollaboratorLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// ObserveDiscoverLatency records the total Discover duration.
func (m *Metrics) ObserveDiscoverLatency(d time.Duration) {
	if m != nil {
		m.DiscoverLatency.Observe(d.Seconds())
	}
}

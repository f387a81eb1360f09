// Package telemetry provides optional Prometheus instrumentation for the
// provider: evaluation counts by reason and error code, configuration
// change notifications, and readiness emissions.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the provider's counters. Create one per registry with New
// and pass it to the provider via its WithMetrics option.
type Metrics struct {
	Evaluations   *prometheus.CounterVec
	ConfigChanges prometheus.Counter
	ReadyEvents   prometheus.Counter
}

// New creates and registers the provider metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flag_evaluations_total",
				Help: "Total flag evaluations by result reason and error code",
			},
			[]string{"reason", "error_code"},
		),
		ConfigChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flag_config_changes_total",
			Help: "Total configuration change notifications received from the engine",
		}),
		ReadyEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "provider_ready_events_total",
			Help: "Total ready events successfully emitted to subscribers",
		}),
	}
	reg.MustRegister(m.Evaluations, m.ConfigChanges, m.ReadyEvents)
	return m
}

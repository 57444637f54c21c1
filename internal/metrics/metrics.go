// Package metrics exposes Prometheus instrumentation for the watch loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors updated by the daemon. Construct one per
// process with New; collectors register against the supplied registerer.
type Metrics struct {
	CheckCycles      prometheus.Counter
	CheckFailures    *prometheus.CounterVec
	NewAnnouncements prometheus.Counter
	StoredTotal      prometheus.Gauge
	LastCheckTime    prometheus.Gauge
}

// New registers and returns the watcher collectors. A nil registerer falls
// back to the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		CheckCycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "annwatch_check_cycles_total",
			Help: "Number of completed check cycles, successful or not.",
		}),
		CheckFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "annwatch_check_failures_total",
			Help: "Number of failed check cycles by failure kind.",
		}, []string{"kind"}),
		NewAnnouncements: factory.NewCounter(prometheus.CounterOpts{
			Name: "annwatch_new_announcements_total",
			Help: "Number of announcements seen for the first time.",
		}),
		StoredTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "annwatch_stored_announcements",
			Help: "Announcements currently retained in the state file.",
		}),
		LastCheckTime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "annwatch_last_check_timestamp_seconds",
			Help: "Unix time of the last completed check cycle.",
		}),
	}
}

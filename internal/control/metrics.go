package control

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for the switch counter.
const (
	outcomeSuccess  = "success"
	outcomeNotFound = "not_found"
	outcomeTimeout  = "start_timeout"
	outcomeError    = "runtime_error"
)

var (
	switchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "switchd",
			Subsystem: "control",
			Name:      "switches_total",
			Help:      "Total model switch operations by outcome",
		},
		[]string{"outcome"},
	)

	keepaliveReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "switchd",
			Subsystem: "control",
			Name:      "keepalive_reloads_total",
			Help:      "Total keep-alive reload attempts by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(switchesTotal, keepaliveReloadsTotal)
}

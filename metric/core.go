package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all engine-level metrics (not leaf-specific)
type Metrics struct {
	// Routing metrics
	SignalsRouted      *prometheus.CounterVec
	RulesExecuted      prometheus.Counter
	RoutingErrors      *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	HandlerFaults      *prometheus.CounterVec
	ManagedNodes       prometheus.Gauge
	ModeSwitches       prometheus.Counter

	// Pool metrics
	PoolSize        *prometheus.GaugeVec
	PoolInUse       *prometheus.GaugeVec
	PoolCheckouts   *prometheus.CounterVec
	PoolReleases    *prometheus.CounterVec
	PoolExhaustions *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all engine metrics
func NewMetrics() *Metrics {
	return &Metrics{
		SignalsRouted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wiregraph",
				Subsystem: "routing",
				Name:      "signals_total",
				Help:      "Total number of signals routed through the active wiring index",
			},
			[]string{"node", "signal"},
		),

		RulesExecuted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "wiregraph",
				Subsystem: "routing",
				Name:      "rules_executed_total",
				Help:      "Total number of wire rules executed",
			},
		),

		RoutingErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wiregraph",
				Subsystem: "routing",
				Name:      "errors_total",
				Help:      "Total routing errors by reason (unresolved node, missing handler)",
			},
			[]string{"reason"},
		),

		ValidationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wiregraph",
				Subsystem: "routing",
				Name:      "validation_failures_total",
				Help:      "Total payload validation failures by schema",
			},
			[]string{"schema"},
		),

		HandlerFaults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wiregraph",
				Subsystem: "routing",
				Name:      "handler_faults_total",
				Help:      "Total faults raised inside downstream handlers",
			},
			[]string{"node", "handler"},
		),

		ManagedNodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "wiregraph",
				Subsystem: "graph",
				Name:      "managed_nodes",
				Help:      "Number of nodes currently owned by the orchestrator",
			},
		),

		ModeSwitches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "wiregraph",
				Subsystem: "graph",
				Name:      "mode_switches_total",
				Help:      "Total number of wiring mode switches",
			},
		),

		PoolSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "wiregraph",
				Subsystem: "pool",
				Name:      "size",
				Help:      "Total nodes managed by each pool",
			},
			[]string{"pool"},
		),

		PoolInUse: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "wiregraph",
				Subsystem: "pool",
				Name:      "in_use",
				Help:      "Nodes currently checked out of each pool",
			},
			[]string{"pool"},
		),

		PoolCheckouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wiregraph",
				Subsystem: "pool",
				Name:      "checkouts_total",
				Help:      "Total successful checkouts per pool",
			},
			[]string{"pool"},
		),

		PoolReleases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wiregraph",
				Subsystem: "pool",
				Name:      "releases_total",
				Help:      "Total releases per pool",
			},
			[]string{"pool"},
		),

		PoolExhaustions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wiregraph",
				Subsystem: "pool",
				Name:      "exhaustions_total",
				Help:      "Total checkout attempts rejected for lack of capacity",
			},
			[]string{"pool"},
		),
	}
}

// collectors returns every core metric for bulk registration
func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.SignalsRouted,
		m.RulesExecuted,
		m.RoutingErrors,
		m.ValidationFailures,
		m.HandlerFaults,
		m.ManagedNodes,
		m.ModeSwitches,
		m.PoolSize,
		m.PoolInUse,
		m.PoolCheckouts,
		m.PoolReleases,
		m.PoolExhaustions,
	}
}

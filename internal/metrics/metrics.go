// Package metrics holds the Prometheus collectors exported by tabsplit.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Mutations counts bill mutations by operation name.
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tabsplit",
		Name:      "mutations_total",
		Help:      "Bill mutations applied, by operation",
	}, []string{"op"})

	// RebalanceFailures counts manual portion assignments that could not be satisfied.
	RebalanceFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tabsplit",
		Name:      "rebalance_failures_total",
		Help:      "Manual portion assignments rejected because no other consumer could be reduced",
	})

	// RecomputeDuration observes the time spent recalculating a bill.
	RecomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tabsplit",
		Name:      "recompute_duration_seconds",
		Help:      "Time spent recomputing a bill allocation",
		Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	})

	// SessionsActive is the number of bill sessions currently held in memory.
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tabsplit",
		Name:      "sessions_active",
		Help:      "Bill sessions currently held in memory",
	})
)

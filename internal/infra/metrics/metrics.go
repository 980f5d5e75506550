// Package metrics provides Prometheus metrics for the daily-problem
// engine: cycle outcomes, remote judge health, and streak gauges.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Cycles ─────────────────────────────────────────────────────────────────

// CyclesRun counts orchestration cycles by trigger and outcome.
var CyclesRun = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cfdaily",
	Name:      "cycles_total",
	Help:      "Total orchestration cycles by trigger and outcome.",
}, []string{"trigger", "outcome"})

// CycleDuration tracks cycle wall time in seconds.
var CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "cfdaily",
	Name:      "cycle_duration_seconds",
	Help:      "Orchestration cycle duration in seconds.",
	Buckets:   prometheus.DefBuckets,
})

// ─── Remote Judge ───────────────────────────────────────────────────────────

// RemoteErrors counts judge API failures by stage.
var RemoteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cfdaily",
	Name:      "remote_errors_total",
	Help:      "Total remote judge failures by stage (catalog, reconcile, verify).",
}, []string{"stage"})

// ─── Streaks ────────────────────────────────────────────────────────────────

// SolvesMarked counts ledger marks by category.
var SolvesMarked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cfdaily",
	Name:      "solves_marked_total",
	Help:      "Total solved flags recorded by category.",
}, []string{"category"})

// CurrentStreak exposes the active identity's derived streaks.
var CurrentStreak = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "cfdaily",
	Name:      "current_streak_days",
	Help:      "Current derived streak length by category.",
}, []string{"category"})

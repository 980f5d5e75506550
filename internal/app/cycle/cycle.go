// Package cycle ties the engine together: selection, reconciliation, and
// ledger updates run as one orchestration pass. Cycles fire on daemon
// startup, on each daily timer firing, and on every user-initiated check;
// redundant or overlapping invocations are harmless because MarkSolved is
// idempotent and the displayed streaks are re-derived, not incremented.
package cycle

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/cfdaily/cfdaily/internal/app/catalog"
	"github.com/cfdaily/cfdaily/internal/app/daykey"
	"github.com/cfdaily/cfdaily/internal/app/reconcile"
	"github.com/cfdaily/cfdaily/internal/app/streak"
	"github.com/cfdaily/cfdaily/internal/domain"
	"github.com/cfdaily/cfdaily/internal/infra/identity"
	"github.com/cfdaily/cfdaily/internal/infra/metrics"
)

// Triggers, recorded on cycle metrics and logs.
const (
	TriggerStartup = "startup"
	TriggerTimer   = "timer"
	TriggerManual  = "manual"
)

// ViewModel is what the presentation layer renders. It is a read-only
// snapshot; the UI never mutates engine state directly.
type ViewModel struct {
	CycleID  string `json:"cycleId"`
	Day      string `json:"day"`
	Identity string `json:"identity"`
	Rating   int    `json:"rating,omitempty"`
	Rank     string `json:"rank,omitempty"`

	Selection domain.DailySelection `json:"selection"`

	SkillMatchedSolved bool `json:"skillMatchedSolved"`
	UniversalSolved    bool `json:"universalSolved"`

	SkillMatchedStreak    int    `json:"skillMatchedStreak"`
	UniversalStreak       int    `json:"universalStreak"`
	MaxSkillMatchedStreak int    `json:"maxSkillMatchedStreak"`
	MaxUniversalStreak    int    `json:"maxUniversalStreak"`
	LastRemoteCheck       string `json:"lastRemoteCheck,omitempty"`

	// RemoteDegraded means reconciliation could not reach the judge this
	// cycle: solved state is last-known, nothing was reset.
	RemoteDegraded bool `json:"remoteDegraded,omitempty"`

	// Error is set when no selection could be produced at all (nothing
	// cached and the catalog fetch failed). The UI shows a retry action.
	Error string `json:"error,omitempty"`

	CountdownSeconds int `json:"countdownSeconds"`
}

// Orchestrator runs the daily cycle.
type Orchestrator struct {
	catalog    *catalog.Cache
	reconciler *reconcile.Reconciler
	ledger     *streak.Ledger
	identities *identity.Manager
}

// New wires an orchestrator.
func New(cat *catalog.Cache, rec *reconcile.Reconciler, led *streak.Ledger, ids *identity.Manager) *Orchestrator {
	return &Orchestrator{catalog: cat, reconciler: rec, ledger: led, identities: ids}
}

// RunCycle executes one orchestration pass for the current identity and
// today's DayKey and returns the view-model. It never returns an error:
// every failure mode degrades to a renderable state.
func (o *Orchestrator) RunCycle(ctx context.Context, trigger string) ViewModel {
	return o.runFor(ctx, trigger, daykey.Today())
}

// runFor is RunCycle with an explicit day, split out for tests that pin
// the calendar day.
func (o *Orchestrator) runFor(ctx context.Context, trigger, day string) ViewModel {
	start := time.Now()
	id := uuid.NewString()[:8]

	identity := o.identities.Current()
	rating := o.identities.Rating(identity)

	vm := ViewModel{
		CycleID:          id,
		Day:              day,
		Identity:         identity,
		Rating:           rating,
		CountdownSeconds: int(daykey.UntilNextBoundary(time.Now()).Seconds()),
	}
	if rating > 0 {
		vm.Rank = domain.RankTitle(rating)
	}

	// (1) Selection. Without one there is nothing to reconcile against.
	sel, err := o.catalog.SelectionsFor(ctx, day, identity, rating)
	if err != nil {
		metrics.RemoteErrors.WithLabelValues("catalog").Inc()
		metrics.CyclesRun.WithLabelValues(trigger, "selection_failed").Inc()
		log.Printf("[cycle %s] %s: selection unavailable: %v", id, identity, err)

		vm.Error = "daily problems unavailable"
		o.fillStreaks(&vm, identity, day)
		return vm
	}
	vm.Selection = sel

	// (2) Reconciliation, verified identities only.
	outcome := "ok"
	if identity != domain.GuestIdentity {
		res, err := o.reconciler.Reconcile(ctx, identity, day, sel)
		switch {
		case errors.Is(err, domain.ErrRemoteUnavailable):
			// Unknown, not "not solved": keep last-known state untouched.
			metrics.RemoteErrors.WithLabelValues("reconcile").Inc()
			log.Printf("[cycle %s] %s: reconcile degraded: %v", id, identity, err)
			vm.RemoteDegraded = true
			outcome = "degraded"
		case err != nil:
			log.Printf("[cycle %s] %s: reconcile failed: %v", id, identity, err)
			vm.RemoteDegraded = true
			outcome = "degraded"
		default:
			// (3) Feed solves into the ledger.
			if res.SkillMatchedSolved || res.UniversalSolved {
				o.ledger.MarkSolved(identity, day, res.SkillMatchedSolved, res.UniversalSolved, res.SolvedIDs)
				if res.SkillMatchedSolved {
					metrics.SolvesMarked.WithLabelValues(domain.CategorySkillMatched).Inc()
				}
				if res.UniversalSolved {
					metrics.SolvesMarked.WithLabelValues(domain.CategoryUniversal).Inc()
				}
			}
			o.ledger.RecordRemoteCheck(identity, day)
		}
	}

	// (4) Always re-derive for display, success or not, so the UI never
	// regresses to stale numbers when the network is merely down today.
	o.fillStreaks(&vm, identity, day)

	metrics.CyclesRun.WithLabelValues(trigger, outcome).Inc()
	metrics.CycleDuration.Observe(time.Since(start).Seconds())
	log.Printf("[cycle %s] %s day=%s trigger=%s outcome=%s skill=%d universal=%d",
		id, identity, day, trigger, outcome, vm.SkillMatchedStreak, vm.UniversalStreak)
	return vm
}

// fillStreaks copies the re-derived ledger state into the view-model.
func (o *Orchestrator) fillStreaks(vm *ViewModel, identity, day string) {
	state := o.ledger.Refresh(identity, day)

	vm.SkillMatchedStreak = state.SkillMatchedStreak
	vm.UniversalStreak = state.UniversalStreak
	vm.MaxSkillMatchedStreak = state.MaxSkillMatchedStreak
	vm.MaxUniversalStreak = state.MaxUniversalStreak
	vm.LastRemoteCheck = state.LastRemoteCheck

	if rec, ok := state.CompletedDays[day]; ok {
		vm.SkillMatchedSolved = rec.SkillMatchedSolved
		vm.UniversalSolved = rec.UniversalSolved
	}

	metrics.CurrentStreak.WithLabelValues(domain.CategorySkillMatched).Set(float64(state.SkillMatchedStreak))
	metrics.CurrentStreak.WithLabelValues(domain.CategoryUniversal).Set(float64(state.UniversalStreak))
}

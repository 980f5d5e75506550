// Package streak owns the per-identity completion history and the two
// streak counters derived from it. This is the self-healing core of the
// engine: the current streak is never trusted as stored — it is re-derived
// from the completion history by backward walk on every reconciliation,
// so drift between counters and history cannot accumulate. There is no
// reset operation; a streak resets implicitly the moment the walk from
// today hits a day whose flag is unset.
package streak

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/cfdaily/cfdaily/internal/app/daykey"
	"github.com/cfdaily/cfdaily/internal/domain"
	"github.com/cfdaily/cfdaily/internal/infra/sqlite"
)

// DefaultWalkCeiling bounds the backward derivation walk so it terminates
// even under pathological or corrupted history.
const DefaultWalkCeiling = 365

// Ledger manages streak state for all identities.
type Ledger struct {
	store       *sqlite.DB
	walkCeiling int

	// Serializes load-mutate-save sequences within this process. Across
	// processes the store is last-write-wins, which is the accepted
	// policy; MarkSolved idempotency is what keeps overlap harmless.
	mu sync.Mutex
}

// NewLedger creates a ledger over the persistent store.
// walkCeiling <= 0 uses DefaultWalkCeiling.
func NewLedger(store *sqlite.DB, walkCeiling int) *Ledger {
	if walkCeiling <= 0 {
		walkCeiling = DefaultWalkCeiling
	}
	return &Ledger{store: store, walkCeiling: walkCeiling}
}

// Load returns the identity's streak state. A missing or unreadable
// ledger is a fresh identity, never a hard failure.
func (l *Ledger) Load(identity string) *domain.StreakState {
	var state domain.StreakState
	err := l.store.GetJSON(sqlite.StreakKey(identity), &state)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Printf("[streak] ledger read failed for %s, starting fresh: %v", identity, err)
		}
		return domain.NewStreakState()
	}
	if state.CompletedDays == nil {
		state.CompletedDays = map[string]domain.CompletionRecord{}
	}
	return &state
}

// save persists the ledger. Best-effort: a failed write is logged, not
// propagated — the next successful cycle re-derives and rewrites.
func (l *Ledger) save(identity string, state *domain.StreakState) {
	state.UpdatedAt = time.Now().Unix()
	if err := l.store.SetJSON(sqlite.StreakKey(identity), state, state.UpdatedAt); err != nil {
		log.Printf("[streak] ledger write failed for %s: %v", identity, err)
	}
}

// MarkSolved records solves for a day. Idempotent and monotone: flags
// only ever flip false→true, and re-running with flags already set leaves
// the record and both counters unchanged. Streaks are re-derived for
// whichever category changed, then the ledger is persisted.
func (l *Ledger) MarkSolved(identity, day string, skillMatched, universal bool, solvedIDs []string) {
	if !skillMatched && !universal {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	state := l.Load(identity)
	rec, exists := state.CompletedDays[day]

	skillChanged := skillMatched && !rec.SkillMatchedSolved
	universalChanged := universal && !rec.UniversalSolved
	if exists && !skillChanged && !universalChanged {
		return
	}

	if !exists {
		rec.RecordedAt = time.Now().Unix()
	}
	rec.SkillMatchedSolved = rec.SkillMatchedSolved || skillMatched
	rec.UniversalSolved = rec.UniversalSolved || universal
	for _, id := range solvedIDs {
		if !rec.HasProblemID(id) {
			rec.SolvedProblemIDs = append(rec.SolvedProblemIDs, id)
		}
	}
	state.CompletedDays[day] = rec

	if skillChanged {
		state.SkillMatchedStreak = l.derive(state, domain.CategorySkillMatched, day)
		if state.SkillMatchedStreak > state.MaxSkillMatchedStreak {
			state.MaxSkillMatchedStreak = state.SkillMatchedStreak
		}
	}
	if universalChanged {
		state.UniversalStreak = l.derive(state, domain.CategoryUniversal, day)
		if state.UniversalStreak > state.MaxUniversalStreak {
			state.MaxUniversalStreak = state.UniversalStreak
		}
	}

	l.save(identity, state)
}

// CurrentStreak derives the category's streak as of asOfDay from the
// stored history. Pure derivation, no mutation.
func (l *Ledger) CurrentStreak(identity, category, asOfDay string) int {
	return l.derive(l.Load(identity), category, asOfDay)
}

// derive walks backward from asOfDay counting consecutive days with the
// category flag set, stopping at the first gap or at the walk ceiling.
func (l *Ledger) derive(state *domain.StreakState, category, asOfDay string) int {
	count := 0
	day := asOfDay
	for count < l.walkCeiling {
		if !state.Solved(category, day) {
			break
		}
		count++
		day = daykey.Previous(day)
	}
	return count
}

// Refresh re-derives both counters as of asOfDay and overwrites the
// stored caches, folding the results into the running maxima. Called by
// every cycle regardless of whether reconciliation succeeded, so the
// displayed numbers always reflect history, never a stale counter.
func (l *Ledger) Refresh(identity, asOfDay string) *domain.StreakState {
	l.mu.Lock()
	defer l.mu.Unlock()

	state := l.Load(identity)
	skill := l.derive(state, domain.CategorySkillMatched, asOfDay)
	universal := l.derive(state, domain.CategoryUniversal, asOfDay)

	changed := skill != state.SkillMatchedStreak || universal != state.UniversalStreak
	state.SkillMatchedStreak = skill
	state.UniversalStreak = universal
	if skill > state.MaxSkillMatchedStreak {
		state.MaxSkillMatchedStreak = skill
		changed = true
	}
	if universal > state.MaxUniversalStreak {
		state.MaxUniversalStreak = universal
		changed = true
	}

	if changed {
		l.save(identity, state)
	}
	return state
}

// RecordRemoteCheck stores the DayKey of the last successful remote
// reconciliation for the identity.
func (l *Ledger) RecordRemoteCheck(identity, day string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state := l.Load(identity)
	if state.LastRemoteCheck == day {
		return
	}
	state.LastRemoteCheck = day
	l.save(identity, state)
}

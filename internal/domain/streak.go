package domain

import "time"

// CompletionRecord marks what was solved on a single day. The two solved
// flags are append-only: they may flip false→true during reconciliation
// but never back. SolvedProblemIDs accumulates the matched problem IDs.
type CompletionRecord struct {
	SkillMatchedSolved bool     `json:"solvedPersonalized"`
	UniversalSolved    bool     `json:"solvedRandom"`
	SolvedProblemIDs   []string `json:"problems,omitempty"`
	RecordedAt         int64    `json:"timestamp"`
}

// HasProblemID reports whether id is already in SolvedProblemIDs.
func (r CompletionRecord) HasProblemID(id string) bool {
	for _, p := range r.SolvedProblemIDs {
		if p == id {
			return true
		}
	}
	return false
}

// StreakState is the persisted per-identity ledger. The current streak
// fields are caches of a pure derivation over CompletedDays — the map is
// the source of truth, the counters are overwritten on every
// recomputation. The max fields are the only genuinely independent
// accumulators: historical maxima are not recoverable from a history that
// may have been pruned.
type StreakState struct {
	SkillMatchedStreak    int                         `json:"personalizedStreak"`
	UniversalStreak       int                         `json:"randomStreak"`
	MaxSkillMatchedStreak int                         `json:"maxPersonalizedStreak"`
	MaxUniversalStreak    int                         `json:"maxRandomStreak"`
	CompletedDays         map[string]CompletionRecord `json:"completedDays"`
	LastRemoteCheck       string                      `json:"lastSuccessfulCheck,omitempty"` // DayKey or ""
	CreatedAt             int64                       `json:"createdAt"`
	UpdatedAt             int64                       `json:"updatedAt"`
}

// NewStreakState returns a fresh zeroed ledger for a first-seen identity.
func NewStreakState() *StreakState {
	now := time.Now().Unix()
	return &StreakState{
		CompletedDays: map[string]CompletionRecord{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Solved reports whether the given category's flag is set for day.
func (s *StreakState) Solved(category, day string) bool {
	rec, ok := s.CompletedDays[day]
	if !ok {
		return false
	}
	switch category {
	case CategorySkillMatched:
		return rec.SkillMatchedSolved
	case CategoryUniversal:
		return rec.UniversalSolved
	}
	return false
}

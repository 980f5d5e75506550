// Package selector deterministically picks one problem per (day,
// category) pair. Every install worldwide must agree on the universal
// pick for a day, so selection is a pure function of the pool contents,
// the DayKey, and the category — no randomness, no clock, no state.
package selector

import "github.com/cfdaily/cfdaily/internal/domain"

// Seed is the fixed namespace constant mixed into every hash input.
// Changing it reshuffles every install's picks, so it is frozen.
const Seed = "cf-daily-2024"

// Select returns the pool element for (day, category), or nil for an
// empty pool. The pool is sorted canonically before indexing so that
// catalog ordering drift between fetches cannot change the pick.
func Select(pool []domain.ProblemRef, day, category string) *domain.ProblemRef {
	if len(pool) == 0 {
		return nil
	}

	sorted := make([]domain.ProblemRef, len(pool))
	copy(sorted, pool)
	domain.SortCanonical(sorted)

	h := hashCode(day + category + Seed)
	idx := int(abs32(h) % int64(len(sorted)))
	pick := sorted[idx]
	return &pick
}

// hashCode is the 32-bit signed string hash (h = 31·h + c with int32
// wraparound) shared with existing installs. Picks must stay bit-for-bit
// compatible across versions, so this exact function is load-bearing.
func hashCode(s string) int32 {
	var h int32
	for _, c := range s {
		h = (h << 5) - h + int32(c)
	}
	return h
}

// abs32 widens before negating so the int32 minimum does not overflow.
func abs32(h int32) int64 {
	v := int64(h)
	if v < 0 {
		return -v
	}
	return v
}

// Package domain holds the pure types of the daily-problem engine.
// Domain types have no infrastructure dependency — they are shared by the
// catalog cache, the reconciler, the streak ledger, and the API layer.
package domain

import (
	"fmt"
	"sort"
)

// GuestIdentity is the sentinel identity used when no verified handle is
// known. All per-identity state is keyed by identity, guest included.
const GuestIdentity = "guest"

// Categories for daily problem selection. The universal pick is shared by
// every identity on a given day; the skill-matched pick depends on the
// identity's rating bracket.
const (
	CategorySkillMatched = "rating"
	CategoryUniversal    = "random"
)

// ProblemRef identifies a single problem in the judge's catalog.
// Identity for matching purposes is the (ContestID, Index) pair —
// Name, Rating and Tags are descriptive only.
type ProblemRef struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Rating    int      `json:"rating,omitempty"` // 0 = unrated
	Tags      []string `json:"tags,omitempty"`
}

// ID returns the canonical problem identity string, e.g. "1850A".
func (p ProblemRef) ID() string {
	return fmt.Sprintf("%d%s", p.ContestID, p.Index)
}

// Same reports whether two refs point at the same problem.
func (p ProblemRef) Same(o ProblemRef) bool {
	return p.ContestID == o.ContestID && p.Index == o.Index
}

// URL returns the problem's page on the judge site.
func (p ProblemRef) URL() string {
	return fmt.Sprintf("https://codeforces.com/problemset/problem/%d/%s", p.ContestID, p.Index)
}

// SortCanonical orders a pool by (ContestID, Index). The selector indexes
// into the pool by hash, so the ordering must be identical on every
// machine or the "same day, same problem" guarantee breaks.
func SortCanonical(pool []ProblemRef) {
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].ContestID != pool[j].ContestID {
			return pool[i].ContestID < pool[j].ContestID
		}
		return pool[i].Index < pool[j].Index
	})
}

// DailySelection is the pair of picks for one day. Either pointer may be
// nil: SkillMatched when the identity has no rating or its bracket pool is
// empty, Universal when the global pool is empty.
type DailySelection struct {
	Day          string      `json:"day"`
	SkillMatched *ProblemRef `json:"skillMatched,omitempty"`
	Universal    *ProblemRef `json:"universal,omitempty"`
}

// UserProfile is the subset of the judge's user.info result the engine
// cares about.
type UserProfile struct {
	Handle string `json:"handle"`
	Rating int    `json:"rating,omitempty"` // 0 = unrated
	Rank   string `json:"rank,omitempty"`
}

// ratingRank maps a rating floor to the judge's rank title.
var ratingRanks = []struct {
	min   int
	title string
}{
	{3000, "Legendary Grandmaster"},
	{2600, "International Grandmaster"},
	{2400, "Grandmaster"},
	{2300, "International Master"},
	{2100, "Master"},
	{1900, "Candidate Master"},
	{1600, "Expert"},
	{1400, "Specialist"},
	{1200, "Pupil"},
	{0, "Newbie"},
}

// RankTitle returns the display title for a rating.
func RankTitle(rating int) string {
	for _, r := range ratingRanks {
		if rating >= r.min {
			return r.title
		}
	}
	return "Newbie"
}

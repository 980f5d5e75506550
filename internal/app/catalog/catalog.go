// Package catalog resolves the daily problem selections, caching them in
// the persistent store so the remote catalog is fetched at most once per
// day per rating bracket. The global per-day entry (the universal pick)
// is write-once: retries reproduce the identical result and never
// overwrite what other cycles already published.
package catalog

import (
	"context"
	"log"
	"time"

	"github.com/cfdaily/cfdaily/internal/app/selector"
	"github.com/cfdaily/cfdaily/internal/domain"
	"github.com/cfdaily/cfdaily/internal/infra/sqlite"
)

// ProblemSource is the slice of the judge client the cache depends on.
type ProblemSource interface {
	Problems(ctx context.Context) ([]domain.ProblemRef, error)
}

// Bounds are the rating-bracket parameters for the two candidate pools.
type Bounds struct {
	MinRating     int // universal pool floor
	MaxRating     int // universal pool ceiling
	BufferLow     int // skill pool: rating - BufferLow
	BufferHigh    int // skill pool: rating + BufferHigh
	DefaultRating int // used for verified identities with no rating yet
}

// DefaultBounds returns the production bracket parameters.
func DefaultBounds() Bounds {
	return Bounds{
		MinRating:     800,
		MaxRating:     3500,
		BufferLow:     100,
		BufferHigh:    300,
		DefaultRating: 1200,
	}
}

// globalEntry is the persisted shape of the per-day global cache.
type globalEntry struct {
	RandomProblem *domain.ProblemRef `json:"randomProblem"`
	CachedAt      int64              `json:"cachedAt"`
}

// userEntry is the persisted shape of the identity-scoped per-day cache.
type userEntry struct {
	RatingProblem *domain.ProblemRef `json:"ratingProblem"`
	Rating        int                `json:"rating"`
	CachedAt      int64              `json:"cachedAt"`
}

// Cache is the per-day problem selection cache.
type Cache struct {
	store  *sqlite.DB
	source ProblemSource
	bounds Bounds
}

// New creates a catalog cache.
func New(store *sqlite.DB, source ProblemSource, bounds Bounds) *Cache {
	return &Cache{store: store, source: source, bounds: bounds}
}

// SelectionsFor returns the day's pair of picks for an identity.
// rating <= 0 for a verified identity falls back to the default bracket;
// the guest identity gets no skill-matched pick at all. Store read
// failures count as cache misses. Returns domain.ErrRemoteUnavailable
// only when nothing usable is cached and the catalog fetch fails.
func (c *Cache) SelectionsFor(ctx context.Context, day, identity string, rating int) (domain.DailySelection, error) {
	sel := domain.DailySelection{Day: day}

	wantSkill := identity != domain.GuestIdentity
	if wantSkill && rating <= 0 {
		rating = c.bounds.DefaultRating
	}

	var global globalEntry
	haveGlobal := c.store.GetJSON(sqlite.GlobalCacheKey(day), &global) == nil

	var user userEntry
	haveUser := false
	if wantSkill {
		haveUser = c.store.GetJSON(sqlite.UserCacheKey(identity, day), &user) == nil
		// A cache entry written under a different rating bracket is stale.
		if haveUser && user.Rating != rating {
			haveUser = false
		}
	}

	if haveGlobal && (!wantSkill || haveUser) {
		sel.Universal = global.RandomProblem
		if wantSkill {
			sel.SkillMatched = user.RatingProblem
		}
		return sel, nil
	}

	pool, err := c.source.Problems(ctx)
	if err != nil {
		return sel, err
	}

	universalPool, skillPool := c.partition(pool, rating)
	sel.Universal = selector.Select(universalPool, day, domain.CategoryUniversal)
	if wantSkill {
		sel.SkillMatched = selector.Select(skillPool, day, domain.CategorySkillMatched)
	}

	now := time.Now().Unix()
	written, err := c.store.SetJSONIfAbsent(sqlite.GlobalCacheKey(day), globalEntry{
		RandomProblem: sel.Universal,
		CachedAt:      now,
	}, now)
	if err != nil {
		log.Printf("[catalog] global cache write failed for %s: %v", day, err)
	}
	if err == nil && !written {
		// Another cycle published the day's entry first; the catalog may
		// have shifted between fetches, so the stored pick wins.
		var existing globalEntry
		if c.store.GetJSON(sqlite.GlobalCacheKey(day), &existing) == nil {
			sel.Universal = existing.RandomProblem
		}
	}

	if wantSkill {
		if err := c.store.SetJSON(sqlite.UserCacheKey(identity, day), userEntry{
			RatingProblem: sel.SkillMatched,
			Rating:        rating,
			CachedAt:      now,
		}, now); err != nil {
			log.Printf("[catalog] user cache write failed for %s/%s: %v", identity, day, err)
		}
	}

	return sel, nil
}

// partition splits the catalog into the universal and skill-matched
// candidate pools. Unrated problems are excluded from both.
func (c *Cache) partition(pool []domain.ProblemRef, rating int) (universal, skill []domain.ProblemRef) {
	for _, p := range pool {
		if p.Rating == 0 {
			continue
		}
		if p.Rating >= c.bounds.MinRating && p.Rating <= c.bounds.MaxRating {
			universal = append(universal, p)
		}
		if p.Rating >= rating-c.bounds.BufferLow && p.Rating <= rating+c.bounds.BufferHigh {
			skill = append(skill, p)
		}
	}
	return universal, skill
}

// SweepStale removes per-day cache entries older than maxAge. Run on
// daemon startup; the ledger namespace is never touched.
func (c *Cache) SweepStale(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge).Unix()
	for _, prefix := range []string{sqlite.KeyGlobalCachePrefix, sqlite.KeyUserCachePrefix} {
		n, err := c.store.RemoveOlderThan(prefix, cutoff)
		if err != nil {
			log.Printf("[catalog] stale sweep failed for %s: %v", prefix, err)
			continue
		}
		if n > 0 {
			log.Printf("[catalog] swept %d stale entries under %s", n, prefix)
		}
	}
}

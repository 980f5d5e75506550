// Package identity tracks the current identity and verifies handles
// against the remote judge. The DOM-scraping detection lives in the
// browser extension; it pushes a detected handle into the daemon, which
// verifies it and owns the current-identity marker. Switching identity
// evicts the outgoing identity's per-day caches and rating cache — its
// streak ledger is preserved indefinitely.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cfdaily/cfdaily/internal/domain"
	"github.com/cfdaily/cfdaily/internal/infra/sqlite"
)

// Verifier is the slice of the judge client used for verification.
type Verifier interface {
	UserInfo(ctx context.Context, handle string) (domain.UserProfile, error)
}

// ratingEntry is the persisted shape of the per-handle rating cache.
type ratingEntry struct {
	Rating     int    `json:"rating"`
	Rank       string `json:"rank,omitempty"`
	VerifiedAt int64  `json:"verifiedAt"`
}

// Manager owns the current-identity marker and the rating cache.
type Manager struct {
	store    *sqlite.DB
	verifier Verifier
}

// NewManager creates an identity manager.
func NewManager(store *sqlite.DB, verifier Verifier) *Manager {
	return &Manager{store: store, verifier: verifier}
}

// Current returns the active identity. A missing or unreadable marker
// means guest.
func (m *Manager) Current() string {
	cur, err := m.store.Get(sqlite.KeyCurrentUser)
	if err != nil || cur == "" {
		return domain.GuestIdentity
	}
	return cur
}

// Rating returns the cached verified rating for an identity, 0 when none
// is known (guest, unrated, or never verified).
func (m *Manager) Rating(identity string) int {
	if identity == domain.GuestIdentity {
		return 0
	}
	var entry ratingEntry
	if err := m.store.GetJSON(sqlite.RatingKey(identity), &entry); err != nil {
		return 0
	}
	return entry.Rating
}

// Profile returns the cached profile view for an identity.
func (m *Manager) Profile(identity string) domain.UserProfile {
	p := domain.UserProfile{Handle: identity}
	if identity == domain.GuestIdentity {
		return p
	}
	var entry ratingEntry
	if err := m.store.GetJSON(sqlite.RatingKey(identity), &entry); err == nil {
		p.Rating = entry.Rating
		p.Rank = entry.Rank
	}
	return p
}

// SetCurrent verifies handle against the judge and makes it the active
// identity. An empty handle switches to guest. An unknown handle falls
// back to guest (not fatal); an unreachable judge keeps the previous
// identity and returns domain.ErrRemoteUnavailable. Returns the identity
// that is now active.
func (m *Manager) SetCurrent(ctx context.Context, handle string) (string, error) {
	if handle == "" {
		m.switchTo(domain.GuestIdentity)
		return domain.GuestIdentity, nil
	}

	profile, err := m.verifier.UserInfo(ctx, handle)
	if errors.Is(err, domain.ErrUnknownIdentity) {
		log.Printf("[identity] handle %q failed verification, using guest", handle)
		m.switchTo(domain.GuestIdentity)
		return domain.GuestIdentity, nil
	}
	if err != nil {
		return m.Current(), fmt.Errorf("verify %s: %w", handle, err)
	}

	now := time.Now().Unix()
	if err := m.store.SetJSON(sqlite.RatingKey(profile.Handle), ratingEntry{
		Rating:     profile.Rating,
		Rank:       profile.Rank,
		VerifiedAt: now,
	}, now); err != nil {
		log.Printf("[identity] rating cache write failed for %s: %v", profile.Handle, err)
	}

	m.switchTo(profile.Handle)
	return profile.Handle, nil
}

// switchTo updates the marker and, on an actual change, evicts the
// outgoing identity's transient caches. The ledger is never touched:
// streak history survives an identity round-trip.
func (m *Manager) switchTo(identity string) {
	previous := m.Current()
	if previous == identity {
		return
	}

	if err := m.store.Set(sqlite.KeyCurrentUser, identity, time.Now().Unix()); err != nil {
		log.Printf("[identity] current-user marker write failed: %v", err)
		return
	}
	log.Printf("[identity] switched %s → %s", previous, identity)

	if previous == domain.GuestIdentity {
		return
	}
	m.evictTransient(previous)
}

// evictTransient removes the identity's per-day problem caches and its
// rating cache.
func (m *Manager) evictTransient(identity string) {
	keys, err := m.store.ListKeys(sqlite.KeyUserCachePrefix + identity + "-")
	if err != nil {
		log.Printf("[identity] eviction scan failed for %s: %v", identity, err)
		keys = nil
	}
	keys = append(keys, sqlite.RatingKey(identity))
	if err := m.store.Remove(keys...); err != nil {
		log.Printf("[identity] eviction failed for %s: %v", identity, err)
		return
	}
	log.Printf("[identity] evicted %d cached entries for %s", len(keys), identity)
}

package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. The orchestrator
// is the only layer that translates these into user-visible view-models.

var (
	// ErrRemoteUnavailable covers transport failure, timeout, and non-OK
	// API status after retries are exhausted. Recoverable: callers degrade
	// to last-known state, they never treat it as "not solved".
	ErrRemoteUnavailable = errors.New("remote judge unavailable")

	// ErrUnknownIdentity means verification returned no profile.
	// Treated as guest, not fatal.
	ErrUnknownIdentity = errors.New("unknown identity")

	// ErrStoreUnavailable means a persistent store operation failed.
	// Reads degrade to empty/default state; writes are best-effort.
	ErrStoreUnavailable = errors.New("persistent store unavailable")

	// ErrNotFound is returned by store lookups for absent keys.
	ErrNotFound = errors.New("key not found")
)

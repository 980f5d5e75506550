package sqlite

// Persisted key namespace. These prefixes are shared with existing
// installs of the browser extension, so they must not change.
const (
	// KeyGlobalCachePrefix + DayKey → the day's universal pick.
	KeyGlobalCachePrefix = "cf-global-cache-"

	// KeyUserCachePrefix + handle + "-" + DayKey → the identity's
	// skill-matched pick for the day.
	KeyUserCachePrefix = "cf-user-cache-"

	// KeyStreakPrefix + identity → the identity's streak ledger.
	KeyStreakPrefix = "cf-streak-"

	// KeyRatingPrefix + handle → cached verified rating.
	KeyRatingPrefix = "cf-user-rating-"

	// KeyCurrentUser holds the current identity marker, used solely to
	// detect identity changes and trigger cache eviction.
	KeyCurrentUser = "cf-current-user"
)

// GlobalCacheKey returns the global per-day cache key.
func GlobalCacheKey(day string) string {
	return KeyGlobalCachePrefix + day
}

// UserCacheKey returns the identity-scoped per-day cache key.
func UserCacheKey(handle, day string) string {
	return KeyUserCachePrefix + handle + "-" + day
}

// StreakKey returns the identity's ledger key.
func StreakKey(identity string) string {
	return KeyStreakPrefix + identity
}

// RatingKey returns the identity's cached-rating key.
func RatingKey(handle string) string {
	return KeyRatingPrefix + handle
}

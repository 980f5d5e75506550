// Package daykey converts points in time to UTC calendar-day identifiers
// and does day arithmetic on them. A DayKey is the canonical ISO
// "YYYY-MM-DD" string; all streak logic is keyed by it. Pure functions,
// no state.
package daykey

import "time"

// Layout is the canonical DayKey format.
const Layout = "2006-01-02"

// Today returns the DayKey for the current instant in UTC.
func Today() string {
	return Of(time.Now())
}

// Of returns the DayKey for an instant, interpreted in UTC.
func Of(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Time returns the midnight-UTC instant for a DayKey. Malformed keys
// yield the zero time and ok=false.
func Time(key string) (time.Time, bool) {
	t, err := time.Parse(Layout, key)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Distance returns the signed number of calendar days from a to b.
// Two keys are consecutive iff the absolute distance is exactly 1.
// Malformed keys yield 0.
func Distance(a, b string) int {
	ta, okA := Time(a)
	tb, okB := Time(b)
	if !okA || !okB {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}

// Previous returns the DayKey one calendar day before key.
func Previous(key string) string {
	t, ok := Time(key)
	if !ok {
		return key
	}
	return Of(t.AddDate(0, 0, -1))
}

// Next returns the DayKey one calendar day after key.
func Next(key string) string {
	t, ok := Time(key)
	if !ok {
		return key
	}
	return Of(t.AddDate(0, 0, 1))
}

// UntilNextBoundary returns the duration from now until the next UTC day
// boundary. Display-only: countdowns, not correctness.
func UntilNextBoundary(now time.Time) time.Duration {
	utc := now.UTC()
	next := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return next.Sub(utc)
}

// NextFiring returns the next instant at or after now whose UTC wall
// clock reads hour:minute. Used by the daily check timer.
func NextFiring(now time.Time, hour, minute int) time.Time {
	utc := now.UTC()
	target := time.Date(utc.Year(), utc.Month(), utc.Day(), hour, minute, 0, 0, time.UTC)
	if !target.After(utc) {
		target = target.AddDate(0, 0, 1)
	}
	return target
}

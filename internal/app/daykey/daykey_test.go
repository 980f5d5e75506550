package daykey_test

import (
	"testing"
	"time"

	"github.com/cfdaily/cfdaily/internal/app/daykey"
)

func TestOf_ConvertsToUTCDay(t *testing.T) {
	// 23:30 in UTC-5 is 04:30 next day UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	instant := time.Date(2024, 3, 9, 23, 30, 0, 0, loc)

	if got := daykey.Of(instant); got != "2024-03-10" {
		t.Errorf("expected 2024-03-10, got %s", got)
	}
}

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"2024-03-10", "2024-03-10", 0},
		{"2024-03-10", "2024-03-11", 1},
		{"2024-03-11", "2024-03-10", -1},
		{"2024-02-28", "2024-03-01", 2}, // leap year
		{"2023-12-31", "2024-01-01", 1},
		{"2024-03-01", "2024-03-10", 9},
	}
	for _, c := range cases {
		if got := daykey.Distance(c.a, c.b); got != c.want {
			t.Errorf("Distance(%s, %s) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestPreviousNext(t *testing.T) {
	if got := daykey.Previous("2024-03-01"); got != "2024-02-29" {
		t.Errorf("expected 2024-02-29, got %s", got)
	}
	if got := daykey.Next("2024-02-29"); got != "2024-03-01" {
		t.Errorf("expected 2024-03-01, got %s", got)
	}
	if got := daykey.Next("2023-12-31"); got != "2024-01-01" {
		t.Errorf("expected 2024-01-01, got %s", got)
	}
}

func TestUntilNextBoundary(t *testing.T) {
	now := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)
	if got := daykey.UntilNextBoundary(now); got != time.Hour {
		t.Errorf("expected 1h, got %v", got)
	}

	midnight := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	if got := daykey.UntilNextBoundary(midnight); got != 24*time.Hour {
		t.Errorf("expected 24h, got %v", got)
	}
}

func TestNextFiring(t *testing.T) {
	now := time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC)

	// Noon today is still ahead.
	got := daykey.NextFiring(now, 12, 0)
	want := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// Midnight has passed, so tomorrow's.
	got = daykey.NextFiring(now, 0, 0)
	want = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

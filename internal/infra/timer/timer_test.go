package timer_test

import (
	"context"
	"testing"
	"time"

	"github.com/cfdaily/cfdaily/internal/infra/timer"
)

func TestParseTimes(t *testing.T) {
	times, err := timer.ParseTimes([]string{"00:00", "12:00"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(times) != 2 || times[0].String() != "00:00" || times[1].String() != "12:00" {
		t.Errorf("unexpected times: %v", times)
	}

	for _, bad := range []string{"24:00", "12:60", "noon", "12", ""} {
		if _, err := timer.ParseTimes([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestNextFiring_PicksSoonest(t *testing.T) {
	times, _ := timer.ParseTimes([]string{"00:00", "12:00"})
	s := timer.New(times, func(ctx context.Context) {})

	// At 09:00 UTC, noon today beats midnight tomorrow.
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	want := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	if got := s.NextFiring(now); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// At 13:00 UTC, midnight tomorrow is next.
	now = time.Date(2024, 3, 10, 13, 0, 0, 0, time.UTC)
	want = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	if got := s.NextFiring(now); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	times, _ := timer.ParseTimes([]string{"00:00"})
	s := timer.New(times, func(ctx context.Context) {
		t.Error("callback should not fire in this test window")
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

// Package timer fires the daily streak checks at fixed UTC wall-clock
// times. Delivery is best-effort — the host may be asleep across a
// firing — so the orchestrator also runs on startup and on user actions
// rather than relying on the timer alone.
package timer

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/cfdaily/cfdaily/internal/app/daykey"
)

// FiringTime is a UTC wall-clock time of day.
type FiringTime struct {
	Hour   int
	Minute int
}

func (f FiringTime) String() string {
	return fmt.Sprintf("%02d:%02d", f.Hour, f.Minute)
}

// ParseTimes parses "HH:MM" strings into firing times.
func ParseTimes(specs []string) ([]FiringTime, error) {
	var times []FiringTime
	for _, s := range specs {
		parts := strings.SplitN(s, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("bad firing time %q", s)
		}
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
			return nil, fmt.Errorf("bad firing time %q", s)
		}
		times = append(times, FiringTime{Hour: h, Minute: m})
	}
	return times, nil
}

// Service invokes a callback at each configured UTC time, once per day.
type Service struct {
	times []FiringTime
	fire  func(ctx context.Context)
	now   func() time.Time // test seam
}

// New creates a timer service.
func New(times []FiringTime, fire func(ctx context.Context)) *Service {
	return &Service{times: times, fire: fire, now: time.Now}
}

// NextFiring returns the soonest upcoming firing instant after now.
func (s *Service) NextFiring(now time.Time) time.Time {
	var next time.Time
	for _, ft := range s.times {
		candidate := daykey.NextFiring(now, ft.Hour, ft.Minute)
		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}
	return next
}

// Run blocks, firing the callback at each scheduled time until ctx is
// cancelled. Run in its own goroutine.
func (s *Service) Run(ctx context.Context) {
	if len(s.times) == 0 {
		log.Printf("[timer] no firing times configured, timer disabled")
		return
	}

	for {
		next := s.NextFiring(s.now())
		log.Printf("[timer] next check at %s", next.Format(time.RFC3339))

		t := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
			s.fire(ctx)
		}
	}
}

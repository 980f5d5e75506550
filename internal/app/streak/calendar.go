package streak

import (
	"fmt"
	"time"

	"github.com/cfdaily/cfdaily/internal/app/daykey"
)

// CalendarDay is one cell of the month grid.
type CalendarDay struct {
	Day                string `json:"day"` // DayKey
	DayOfMonth         int    `json:"dayOfMonth"`
	SkillMatchedSolved bool   `json:"skillMatchedSolved"`
	UniversalSolved    bool   `json:"universalSolved"`
	IsToday            bool   `json:"isToday"`
	IsFuture           bool   `json:"isFuture"`
}

// CalendarMonth is the view-model for one month of completion history.
// Weeks run Sunday-first; LeadingEmpty pads the first week.
type CalendarMonth struct {
	Month        string        `json:"month"` // "YYYY-MM"
	Title        string        `json:"title"` // "March 2024"
	LeadingEmpty int           `json:"leadingEmpty"`
	Days         []CalendarDay `json:"days"`
}

// Calendar builds the month grid for an identity. month is "YYYY-MM";
// a malformed month falls back to today's month.
func (l *Ledger) Calendar(identity, month string) CalendarMonth {
	first, err := time.Parse("2006-01", month)
	if err != nil {
		now := time.Now().UTC()
		first = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	state := l.Load(identity)
	today := daykey.Today()

	cm := CalendarMonth{
		Month:        first.Format("2006-01"),
		Title:        fmt.Sprintf("%s %d", first.Month(), first.Year()),
		LeadingEmpty: int(first.Weekday()),
	}

	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		key := daykey.Of(d)
		rec := state.CompletedDays[key]
		cm.Days = append(cm.Days, CalendarDay{
			Day:                key,
			DayOfMonth:         d.Day(),
			SkillMatchedSolved: rec.SkillMatchedSolved,
			UniversalSolved:    rec.UniversalSolved,
			IsToday:            key == today,
			IsFuture:           key > today,
		})
	}
	return cm
}

package stats

import (
	"time"

	"ecom/internal/core"
)

// MonthWindow is an inclusive creation-time range aligned to calendar months.
type MonthWindow struct {
	Start time.Time
	End   time.Time
}

func (w MonthWindow) Range() *core.TimeRange {
	return &core.TimeRange{From: w.Start, To: w.End}
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// ThisMonth runs from day 1 of now's month up to now.
func ThisMonth(now time.Time) MonthWindow {
	return MonthWindow{Start: startOfMonth(now), End: now}
}

// LastMonth covers the whole previous calendar month, last day included.
func LastMonth(now time.Time) MonthWindow {
	start := startOfMonth(now)
	return MonthWindow{Start: start.AddDate(0, -1, 0), End: start.Add(-time.Nanosecond)}
}

// Trailing covers the current month and the n-1 months before it.
func Trailing(now time.Time, n int) MonthWindow {
	if n < 1 {
		n = 1
	}
	return MonthWindow{Start: startOfMonth(now).AddDate(0, -(n - 1), 0), End: now}
}

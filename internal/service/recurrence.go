package service

import (
	"time"

	"taskboard/internal/model"
)

// NextDate computes the next occurrence of a repeat rule from an anchor
// date. It is pure and deterministic, and is shared by the task creation
// path and the repeat-instance generator so a chain's cadence never
// drifts between the two.
//
// Month and year arithmetic clamps the day-of-month to the last valid day
// of the target month (Jan 31 + 1 month = Feb 28/29) instead of letting
// the date normalize into the following month. Unknown kinds, including
// custom, advance by interval days.
func NextDate(kind string, anchor time.Time, interval int) time.Time {
	if interval < 1 {
		interval = 1
	}

	switch kind {
	case model.RepeatDaily:
		return anchor.AddDate(0, 0, interval)
	case model.RepeatWeekly:
		return anchor.AddDate(0, 0, interval*7)
	case model.RepeatMonthly:
		return addMonthsClamped(anchor, interval)
	case model.RepeatYearly:
		return addMonthsClamped(anchor, interval*12)
	default:
		return anchor.AddDate(0, 0, interval)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	total := int(month) - 1 + months
	year += total / 12
	target := time.Month(total%12 + 1)

	if last := daysInMonth(target, year); day > last {
		day = last
	}
	return time.Date(year, target, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(month time.Month, year int) int {
	// Move to next month, roll back a day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)
	return lastOfMonth.Day()
}

// Package hours holds the small amount of clock arithmetic the rest of the
// application agrees on: prices are hourly, instants are UTC, and a "day"
// is a UTC calendar date.
package hours

import "time"

const dateLayout = "2006-01-02"

// Start truncates t to the beginning of its hour in UTC.
func Start(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

// End is the last second of the hour that starts at t.
func End(t time.Time) time.Time {
	return Start(t).Add(59*time.Minute + 59*time.Second)
}

// DayKey is the UTC calendar date of t, e.g. "2024-01-01".
func DayKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// SameDay reports whether a and b fall on the same UTC calendar date.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

// StartOfDay is midnight UTC of the day t falls on.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay is the last second (23:59:59) of the day t falls on, in UTC.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Second)
}

// Package streak holds the calendar-day rules behind a user's study streak.
//
// Dates are calendar days represented as midnight UTC. Callers derive them
// from an instant with DateOf, using the user's location, so that two
// instants on the same local day always map to the same value.
package streak

import "time"

const dateLayout = "2006-01-02"

// DateOf returns the calendar day of t in loc.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
// Time of day is ignored.
func DaysBetween(a, b time.Time) int {
	a = truncate(a)
	b = truncate(b)
	return int(b.Sub(a).Hours() / 24)
}

// IsStale reports whether a streak last credited on last has lapsed by today.
func IsStale(last *time.Time, today time.Time) bool {
	if last == nil {
		return false
	}
	return DaysBetween(*last, today) > 1
}

// IsSameDay reports whether last falls on today.
func IsSameDay(last *time.Time, today time.Time) bool {
	return last != nil && DaysBetween(*last, today) == 0
}

// Next returns the streak after crediting today. A credit on the day right
// after last extends the streak; any other gap starts a new one.
func Next(current int, last *time.Time, today time.Time) int {
	if last != nil && DaysBetween(*last, today) == 1 {
		return current + 1
	}
	return 1
}

// FormatDate renders a calendar day as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(dateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

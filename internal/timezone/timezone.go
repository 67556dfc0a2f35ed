// Package timezone resolves user timezones and builds local wall-clock
// instants from them.
package timezone

import (
	"fmt"
	"time"

	// Embedded so zone lookups do not depend on the host's zoneinfo.
	_ "time/tzdata"
)

// DefaultZone is used when neither the user nor the configuration names a
// valid zone.
const DefaultZone = "America/Bogota"

// Parse loads an IANA timezone identifier.
func Parse(tz string) (*time.Location, error) {
	if tz == "" {
		return nil, fmt.Errorf("empty timezone")
	}
	if tz == "UTC" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// IsValid reports whether tz is a known IANA timezone identifier.
func IsValid(tz string) bool {
	_, err := Parse(tz)
	return err == nil
}

// Resolve returns the location for tz, falling back to fallback and then to
// DefaultZone when tz is absent or invalid.
func Resolve(tz, fallback string) *time.Location {
	for _, candidate := range []string{tz, fallback, DefaultZone} {
		if loc, err := Parse(candidate); err == nil {
			return loc
		}
	}
	return time.UTC
}

// DateIn returns the instant that is daysToAdd calendar days after now's
// local date in loc, at hour:minute local wall-clock time.
func DateIn(now time.Time, loc *time.Location, daysToAdd, hour, minute int) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+daysToAdd, hour, minute, 0, 0, loc)
}

// DayBounds returns the start of now's local day in loc and the start of the
// following day, as UTC instants.
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	start := DateIn(now, loc, 0, 0, 0)
	end := DateIn(now, loc, 1, 0, 0)
	return start.UTC(), end.UTC()
}

package timeutil

import (
	"fmt"
	"time"
)

// DateLayout defines the canonical date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// DefaultZone is the league's reference timezone; injury reports and game days are Eastern.
const DefaultZone = "America/New_York"

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// FormatDate formats a time as YYYY-MM-DD in its current location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ResolveLocation loads the named zone, falling back to Eastern and then to a fixed EST offset.
func ResolveLocation(name string) *time.Location {
	if name == "" {
		name = DefaultZone
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	if loc, err := time.LoadLocation(DefaultZone); err == nil {
		return loc
	}
	return time.FixedZone("EST", -5*60*60)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Season returns the NBA season string (e.g. "2025-26") containing t.
// Seasons roll over in October.
func Season(t time.Time) string {
	start := t.Year()
	if t.Month() < time.October {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

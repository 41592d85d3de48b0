package model

import (
	"strings"
	"time"
)

// The backend emits ISO-8601 timestamps, sometimes without a zone.
// Zoneless values are wall-clock times in the viewer's location.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999Z07:00",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// ParseTime parses a backend timestamp. Zoneless values are read in loc
// (time.Local when loc is nil).
func ParseTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc), true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// LocaleTimeLayout mirrors the en-US browser rendering of a date-time ("1/2/2006, 3:04:05 PM").
const LocaleTimeLayout = "1/2/2006, 3:04:05 PM"

// FormatLocal renders s for display, falling back to the raw value when it cannot be parsed.
func FormatLocal(s string, loc *time.Location) string {
	t, ok := ParseTime(s, loc)
	if !ok {
		return strings.TrimSpace(s)
	}
	return t.Format(LocaleTimeLayout)
}

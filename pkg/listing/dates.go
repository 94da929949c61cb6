package listing

import (
	"fmt"
	"strings"
	"time"
)

const dateOnlyLayout = "2006-01-02"

// ISOWeek returns the ISO 8601 week number of t in UTC. Week 1 is the week
// containing the year's first Thursday.
func ISOWeek(t time.Time) int {
	_, week := t.UTC().ISOWeek()
	return week
}

// ParseDate accepts RFC 3339 timestamps and YYYY-MM-DD dates (UTC midnight).
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateOnlyLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return t, nil
}

// ParseBound parses a date-range bound. A date-only upper bound covers the whole day.
func ParseBound(raw string, end bool) (time.Time, error) {
	t, err := ParseDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	if end && isDateOnly(raw) {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func isDateOnly(raw string) bool {
	_, err := time.Parse(dateOnlyLayout, strings.TrimSpace(raw))
	return err == nil
}

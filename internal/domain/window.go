package domain

import (
	"fmt"
	"time"
)

// DateWindow bounds an aggregation to commits authored between Since and
// Until, both inclusive. Callers validate Since <= Until before handing the
// window to the aggregation engine; an inverted window simply yields zero
// matches upstream.
type DateWindow struct {
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`
}

// ParseWindow builds a DateWindow from RFC 3339 instants or plain
// YYYY-MM-DD dates. A date-only "until" is widened to the end of that day so
// the bound stays inclusive.
func ParseWindow(since, until string) (DateWindow, error) {
	s, err := parseInstant(since, false)
	if err != nil {
		return DateWindow{}, fmt.Errorf("invalid since value %q: %w", since, err)
	}
	u, err := parseInstant(until, true)
	if err != nil {
		return DateWindow{}, fmt.Errorf("invalid until value %q: %w", until, err)
	}
	if u.Before(s) {
		return DateWindow{}, fmt.Errorf("until %s precedes since %s", until, since)
	}
	return DateWindow{Since: s, Until: u}, nil
}

func parseInstant(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

package utils

import (
	"strings"
	"time"
)

// ParseFilterDate parses a query date given as YYYY-MM-DD or
// YYYY-MM-DD HH:MM:SS. The second return value is false when the input
// matches neither layout.
func ParseFilterDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{DATE_LAYOUT, DATE_TIME_LAYOUT} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TruncateToDay returns midnight UTC of the calendar day t falls on.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a nullable date as YYYY-MM-DD, or "" when nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DATE_LAYOUT)
}

// DateKey is the map key used when grouping records by flight date.
// A missing date maps to the empty key.
func DateKey(t *time.Time) string {
	return FormatDate(t)
}

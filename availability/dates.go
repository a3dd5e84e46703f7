package availability

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// NormalizeDate drops the time-of-day component, keeping t's own calendar date.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts "2006-01-02" or RFC3339 and returns the normalized date.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidDateRange)
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return NormalizeDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: cannot parse %q", ErrInvalidDateRange, raw)
	}
	return NormalizeDate(t), nil
}

// Nights counts the calendar days in [checkIn, checkOut).
func Nights(checkIn, checkOut time.Time) int {
	n := 0
	for d := NormalizeDate(checkIn); d.Before(NormalizeDate(checkOut)); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

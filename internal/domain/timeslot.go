package domain

import (
	"regexp"
	"time"
)

// DateLayout is the wire and storage format for calendar dates
const DateLayout = "2006-01-02"

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// IsClockTime reports whether s is a zero-padded 24h HH:MM value.
// Zero padding keeps lexical and chronological order identical.
func IsClockTime(s string) bool {
	return clockPattern.MatchString(s)
}

// IsDate reports whether s is a valid YYYY-MM-DD calendar date
func IsDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Overlaps tests the half-open intervals [aStart, aEnd) and [bStart, bEnd).
// Back-to-back slots (one ends when the other starts) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && aEnd > bStart
}

package models

import "time"

// DateLayout is the wire format for calendar dates (due dates).
const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar date, read in t's own location, and
// returns it as midnight UTC so dates from any zone compare by day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timestamp is a decomposed syslog timestamp. Syslog omits the year.
type Timestamp struct {
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int
}

// Bucket returns the zero-padded "HH:MM" minute the timestamp falls in
func (t Timestamp) Bucket() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

var monthAbbrev = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// refYear is used to validate day-of-month. It is not a leap year, so
// "Feb 29" is rejected.
const refYear = 1900

// ParseTimestamp decomposes "<Mon> <day> <H:M:S>". Runs of whitespace between
// fields are accepted and the month abbreviation is case-insensitive.
func ParseTimestamp(raw string) (Timestamp, error) {
	var ts Timestamp

	fields := strings.Fields(raw)
	if len(fields) != 3 {
		return ts, fmt.Errorf("timestamp %q: expected 3 fields, got %d", raw, len(fields))
	}

	month, ok := monthAbbrev[strings.ToLower(fields[0])]
	if !ok {
		return ts, fmt.Errorf("timestamp %q: unknown month %q", raw, fields[0])
	}
	ts.Month = month

	day, err := parseRange(fields[1], 1, daysIn(month))
	if err != nil {
		return ts, fmt.Errorf("timestamp %q: day: %w", raw, err)
	}
	ts.Day = day

	clock := strings.Split(fields[2], ":")
	if len(clock) != 3 {
		return ts, fmt.Errorf("timestamp %q: malformed time %q", raw, fields[2])
	}
	if ts.Hour, err = parseRange(clock[0], 0, 23); err != nil {
		return ts, fmt.Errorf("timestamp %q: hour: %w", raw, err)
	}
	if ts.Minute, err = parseRange(clock[1], 0, 59); err != nil {
		return ts, fmt.Errorf("timestamp %q: minute: %w", raw, err)
	}
	// 60 and 61 allow for leap seconds
	if ts.Second, err = parseRange(clock[2], 0, 61); err != nil {
		return ts, fmt.Errorf("timestamp %q: second: %w", raw, err)
	}

	return ts, nil
}

// parseRange accepts one or two ASCII digits within [lo, hi]
func parseRange(s string, lo, hi int) (int, error) {
	if len(s) == 0 || len(s) > 2 {
		return 0, fmt.Errorf("%q is not a 1-2 digit number", s)
	}
	n, err := strconv.Atoi(s)
	if err != nil || s[0] == '+' || s[0] == '-' {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%d out of range [%d, %d]", n, lo, hi)
	}
	return n, nil
}

func daysIn(m time.Month) int {
	// Day 0 of the next month is the last day of m.
	return time.Date(refYear, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

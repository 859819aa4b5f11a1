// Package utils provides shared helpers for date handling and performance measurement.
package utils

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the canonical YYYY-MM-DD date format used in APIs and the ledger.
	DateLayout = "2006-01-02"
	// CompactDateLayout is the 8-digit date format used by export directory names.
	CompactDateLayout = "20060102"
)

// DateToUnix converts a YYYY-MM-DD date string to a Unix timestamp at midnight UTC.
func DateToUnix(date string) (int64, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t.Unix(), nil
}

// UnixToDate converts a Unix timestamp to a YYYY-MM-DD date string in UTC.
func UnixToDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(DateLayout)
}

// ParseCompactDate parses an 8-digit YYYYMMDD date string.
func ParseCompactDate(s string) (time.Time, error) {
	t, err := time.Parse(CompactDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid compact date %q: %w", s, err)
	}
	return t, nil
}

// FormatCompactDate formats a time as an 8-digit YYYYMMDD string.
func FormatCompactDate(t time.Time) string {
	return t.Format(CompactDateLayout)
}

// IsCompactDate reports whether s is a valid 8-digit YYYYMMDD date.
func IsCompactDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	_, err := time.Parse(CompactDateLayout, s)
	return err == nil
}

// CompactToDate converts YYYYMMDD to YYYY-MM-DD.
func CompactToDate(s string) (string, error) {
	t, err := ParseCompactDate(s)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// WeekBounds returns the Monday and Friday of the week containing t.
func WeekBounds(t time.Time) (monday, friday time.Time) {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	monday = t.AddDate(0, 0, -(weekday - 1))
	monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
	friday = monday.AddDate(0, 0, 4)
	return monday, friday
}

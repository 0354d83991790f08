package core

import (
	"fmt"
	"time"
)

// MonthID is a calendar month key in "YYYY-MM" form. The textual form sorts
// chronologically, so string comparison is the month ordering.
type MonthID string

// ParseMonthID validates a "YYYY-MM" string.
func ParseMonthID(s string) (MonthID, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return "", fmt.Errorf("invalid month key %q: %w", s, err)
	}
	// time.Parse is lenient about some shapes; round-trip to pin the format.
	if t.Format("2006-01") != s {
		return "", fmt.Errorf("invalid month key %q", s)
	}
	return MonthID(s), nil
}

// MonthOf returns the month key of a date.
func MonthOf(t time.Time) MonthID {
	return MonthID(t.Format("2006-01"))
}

func (m MonthID) String() string { return string(m) }

// IsZero reports whether the key is unset.
func (m MonthID) IsZero() bool { return m == "" }

// Year returns the calendar year.
func (m MonthID) Year() int {
	t, _ := time.Parse("2006-01", string(m))
	return t.Year()
}

// Month returns the calendar month (1-12).
func (m MonthID) Month() int {
	t, _ := time.Parse("2006-01", string(m))
	return int(t.Month())
}

// Next returns the following month.
func (m MonthID) Next() MonthID {
	t, _ := time.Parse("2006-01", string(m))
	return MonthOf(t.AddDate(0, 1, 0))
}

// Prev returns the preceding month.
func (m MonthID) Prev() MonthID {
	t, _ := time.Parse("2006-01", string(m))
	return MonthOf(t.AddDate(0, -1, 0))
}

// Before reports whether m is strictly earlier than other.
func (m MonthID) Before(other MonthID) bool { return m < other }

// LastDay returns the number of days in the month.
func (m MonthID) LastDay() int {
	t, _ := time.Parse("2006-01", string(m))
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateIn returns the given day within the month, clamped to its last day, so
// day 31 in February yields the 28th (or 29th in a leap year).
func (m MonthID) DateIn(day int) time.Time {
	t, _ := time.Parse("2006-01", string(m))
	return time.Date(t.Year(), t.Month(), ClampDay(t.Year(), int(t.Month()), day), 0, 0, 0, 0, time.UTC)
}

// ClampDay limits day to the length of the given calendar month.
func ClampDay(year, month, day int) int {
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	if day < 1 {
		return 1
	}
	return day
}

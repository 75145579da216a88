package util

import (
	"strconv"
	"time"
)

// ParseTime tries RFC3339, a plain date and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// PeriodStart returns the first date covered by a download period such as
// "6mo" or "ytd", counted back from now. "max" yields the zero time.
func PeriodStart(period string, now time.Time) (time.Time, bool) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case "1d":
		return day.AddDate(0, 0, -1), true
	case "5d":
		return day.AddDate(0, 0, -5), true
	case "1mo":
		return day.AddDate(0, -1, 0), true
	case "3mo":
		return day.AddDate(0, -3, 0), true
	case "6mo":
		return day.AddDate(0, -6, 0), true
	case "1y":
		return day.AddDate(-1, 0, 0), true
	case "2y":
		return day.AddDate(-2, 0, 0), true
	case "5y":
		return day.AddDate(-5, 0, 0), true
	case "10y":
		return day.AddDate(-10, 0, 0), true
	case "ytd":
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), true
	case "max":
		return time.Time{}, true
	default:
		return time.Time{}, false
	}
}

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDateAndUnix(t *testing.T) {
	got, ok := ParseTime("2024-03-01")
	if !ok || got.Month() != time.March || got.Day() != 1 {
		t.Fatalf("unexpected date %v %v", got, ok)
	}

	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok = ParseTime(strconv.FormatInt(ts, 10))
	if !ok || got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}

	if _, ok := ParseTime("yesterday"); ok {
		t.Fatalf("expected failure")
	}
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2024, 8, 15, 16, 30, 0, 0, time.UTC)
	cases := map[string]time.Time{
		"5d":  time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC),
		"6mo": time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		"5y":  time.Date(2019, 8, 15, 0, 0, 0, 0, time.UTC),
		"ytd": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"max": {},
	}
	for period, want := range cases {
		got, ok := PeriodStart(period, now)
		if !ok || !got.Equal(want) {
			t.Fatalf("%s: expected %v, got %v (%v)", period, want, got, ok)
		}
	}
	if _, ok := PeriodStart("7y", now); ok {
		t.Fatalf("expected unknown period to fail")
	}
}

func TestParseIntDefault(t *testing.T) {
	if ParseIntDefault("", 7) != 7 || ParseIntDefault("x", 7) != 7 || ParseIntDefault("12", 7) != 12 {
		t.Fatalf("unexpected ParseIntDefault results")
	}
}

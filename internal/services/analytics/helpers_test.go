package analytics

import (
	"errors"
	"math"
	"testing"
	"time"

	"MonteSim/internal/domain/models"
)

// weekdays returns n consecutive weekdays starting at start.
func weekdays(start time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	for d := start; len(out) < n; d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		out = append(out, d)
	}
	return out
}

func mustSeries(t *testing.T, symbol string, dates []time.Time, values []float64) *models.PriceSeries {
	t.Helper()
	s, err := models.SeriesFromCloses(symbol, dates, values)
	if err != nil {
		t.Fatalf("build series: %v", err)
	}
	return s
}

// growthSeries compounds p0 by g every trading day.
func growthSeries(t *testing.T, n int, p0, g float64) *models.PriceSeries {
	t.Helper()
	dates := weekdays(time.Date(2015, 1, 5, 0, 0, 0, 0, time.UTC), n)
	values := make([]float64, n)
	for i := range values {
		values[i] = p0 * math.Pow(1+g, float64(i))
	}
	return mustSeries(t, "GROW", dates, values)
}

// wavySeries is a deterministic series with non-trivial monthly variance.
func wavySeries(t *testing.T, symbol string, n int, p0, drift, amp, freq float64) *models.PriceSeries {
	t.Helper()
	dates := weekdays(time.Date(2015, 1, 5, 0, 0, 0, 0, time.UTC), n)
	values := make([]float64, n)
	for i := range values {
		x := float64(i)
		values[i] = p0 * math.Exp(drift*x+amp*math.Sin(x/freq))
	}
	return mustSeries(t, symbol, dates, values)
}

func assertKind(t *testing.T, err error, want *models.Error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want.Kind)
	}
	if !errors.Is(err, want) {
		t.Fatalf("expected %s error, got %v", want.Kind, err)
	}
}

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

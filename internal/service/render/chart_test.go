package render

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"MonteSim/internal/domain/models"
	"MonteSim/internal/services/montecarlo"
)

var pngMagic = []byte("\x89PNG")

func simulate(t *testing.T, horizon float64) *models.SimulationResult {
	t.Helper()
	res, err := montecarlo.Simulate(montecarlo.NewSource(1), montecarlo.Input{
		InitialPrice: 100, ExpectedReturn: 0.08, Volatility: 0.2, HorizonMonths: horizon, Simulations: 40,
	})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	return res
}

func TestRenderForecast(t *testing.T) {
	v := New(WithSize(640, 400), WithSamplePaths(5))
	fig, err := v.RenderForecast(simulate(t, 3), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fig.ContentType != "image/png" || !bytes.HasPrefix(fig.Data, pngMagic) {
		t.Fatalf("expected a PNG figure, got %s with %d bytes", fig.ContentType, len(fig.Data))
	}
}

func TestRenderBacktest(t *testing.T) {
	res := simulate(t, 1)
	steps, _ := res.Dims()
	dates := make([]time.Time, steps)
	closes := make([]float64, steps)
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = d.AddDate(0, 0, i)
		closes[i] = 100 + float64(i)/4
	}
	actual, err := models.SeriesFromCloses("AAPL", dates, closes)
	if err != nil {
		t.Fatalf("series: %v", err)
	}

	fig, err := New().RenderBacktest(res, actual, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(fig.Data, pngMagic) {
		t.Fatalf("expected PNG output")
	}
}

func TestRenderRejectsMissingResult(t *testing.T) {
	if _, err := New().RenderForecast(nil, 12); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestBounds(t *testing.T) {
	lo, hi := bounds([][]float64{{10, 20}, {15}})
	if lo >= 10 || hi <= 20 {
		t.Fatalf("expected padded range around [10, 20], got [%v, %v]", lo, hi)
	}
	lo, hi = bounds(nil)
	if lo != 0 || hi != 1 {
		t.Fatalf("expected default range, got [%v, %v]", lo, hi)
	}
}

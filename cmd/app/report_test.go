package main

import (
	"strings"
	"testing"

	"MonteSim/internal/domain/models"
	"MonteSim/pkg/config"
)

func TestFormatReport(t *testing.T) {
	beta, rm, rf := 1.2, 0.09, 0.04
	actual := 110.0
	snap := models.RunSnapshot{
		Kind:           models.RunBacktest,
		Symbol:         "AAPL",
		Period:         "5y",
		Method:         models.MethodCAPM,
		ExpectedReturn: 0.1,
		Volatility:     0.25,
		Beta:           &beta,
		MarketReturn:   &rm,
		RiskFreeRate:   &rf,
		Summary: &models.Summary{
			Steps:        252,
			Runs:         1000,
			InitialPrice: 100,
			Mean:         110,
			StdDev:       27.5,
			Quantiles:    []float64{62, 84, 107, 135, 1680},
			Actual:       &actual,
		},
	}

	out := formatReport(snap)
	for _, want := range []string{
		"AAPL",
		"10.00%",
		"25.00%",
		"1.2000",
		"$100.00",
		"$1,680.00",
		"Actual vs mean",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Dividend growth") {
		t.Fatalf("unexpected growth line for a CAPM run:\n%s", out)
	}
}

func TestRunRequestFallsBackToConfig(t *testing.T) {
	cfg := config.Default()
	c := &runCmd{kind: "forecast", seed: 7}
	c.req.Symbol = "msft"
	c.req.Simulations = 50

	req := c.request(cfg)
	if req.Simulations != 50 {
		t.Fatalf("expected the flag to win, got %d", req.Simulations)
	}
	if req.Period != cfg.Simulation.Period || req.Method != cfg.Simulation.Method {
		t.Fatalf("expected config fallbacks, got %+v", req)
	}
	if req.VolatilityWindow != int(cfg.Simulation.VolatilityWindow) {
		t.Fatalf("expected volatility window %v, got %d", cfg.Simulation.VolatilityWindow, req.VolatilityWindow)
	}
	if req.Seed == nil || *req.Seed != 7 {
		t.Fatalf("expected seed 7, got %v", req.Seed)
	}

	c.seed = -1
	if req := c.request(cfg); req.Seed != nil {
		t.Fatalf("expected no seed for a negative flag")
	}
}

package montecarlo

import (
	"sort"

	"MonteSim/internal/domain/models"

	"gonum.org/v1/gonum/stat"
)

// Band percentiles: one and two standard deviations of a normal distribution.
const (
	Lower2Sigma = 0.02275
	Lower1Sigma = 0.158665
	Upper1Sigma = 0.84134
	Upper2Sigma = 0.97725
)

// Bands are per-step statistics across all runs.
type Bands struct {
	Mean   []float64
	Lower1 []float64
	Upper1 []float64
	Lower2 []float64
	Upper2 []float64
}

// ComputeBands returns the mean and the ±1σ/±2σ percentile envelopes per step.
func ComputeBands(r *models.SimulationResult) Bands {
	steps, _ := r.Dims()
	b := Bands{
		Mean:   make([]float64, steps),
		Lower1: make([]float64, steps),
		Upper1: make([]float64, steps),
		Lower2: make([]float64, steps),
		Upper2: make([]float64, steps),
	}
	for t := 0; t < steps; t++ {
		row := r.Step(t)
		sort.Float64s(row)
		b.Mean[t] = stat.Mean(row, nil)
		b.Lower1[t] = stat.Quantile(Lower1Sigma, stat.LinInterp, row, nil)
		b.Upper1[t] = stat.Quantile(Upper1Sigma, stat.LinInterp, row, nil)
		b.Lower2[t] = stat.Quantile(Lower2Sigma, stat.LinInterp, row, nil)
		b.Upper2[t] = stat.Quantile(Upper2Sigma, stat.LinInterp, row, nil)
	}
	return b
}

// Summarize describes the distribution of final-step prices.
// actual, when non-nil, is the realized price at the end of a backtest window.
func Summarize(r *models.SimulationResult, actual *float64) models.Summary {
	steps, runs := r.Dims()
	s := models.Summary{Steps: steps, Runs: runs, InitialPrice: r.InitialPrice, Actual: actual}
	if steps == 0 {
		return s
	}
	final := r.Step(steps - 1)
	sort.Float64s(final)
	s.Mean = stat.Mean(final, nil)
	if runs > 1 {
		s.StdDev = stat.StdDev(final, nil)
	}
	s.Quantiles = make([]float64, len(models.SummaryProbabilities))
	for i, p := range models.SummaryProbabilities {
		s.Quantiles[i] = stat.Quantile(p, stat.LinInterp, final, nil)
	}
	return s
}

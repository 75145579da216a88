package models

import (
	"time"

	"gonum.org/v1/gonum/mat"
)

// Estimate is the outcome of one expected-return computation. Optional fields
// are set only by the methods that derive them.
type Estimate struct {
	Method       ReturnMethod
	Value        float64
	Beta         *float64
	MarketReturn *float64
	RiskFreeRate *float64
	GrowthRate   *float64
}

// SimulationResult holds simulated prices: rows are trading-day steps,
// columns are independent runs.
type SimulationResult struct {
	Paths          *mat.Dense
	InitialPrice   float64
	ExpectedReturn float64
	Volatility     float64
	HorizonMonths  float64
}

// Dims returns (steps, runs).
func (r *SimulationResult) Dims() (int, int) {
	if r == nil || r.Paths == nil {
		return 0, 0
	}
	return r.Paths.Dims()
}

// Step returns a copy of the prices of every run at step i.
func (r *SimulationResult) Step(i int) []float64 {
	return mat.Row(nil, i, r.Paths)
}

// Run returns a copy of one simulated path.
func (r *SimulationResult) Run(j int) []float64 {
	return mat.Col(nil, j, r.Paths)
}

// Figure is an opaque rendering handed to listeners.
type Figure struct {
	ContentType string
	Data        []byte
}

// RunKind distinguishes forecasts from backtests.
type RunKind string

const (
	RunForecast RunKind = "forecast"
	RunBacktest RunKind = "backtest"
)

// RunState is the orchestrator state machine.
type RunState int

const (
	StateIdle RunState = iota
	StatePopulating
	StateEstimating
	StateSimulating
	StatePublished
	StateErrored
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePopulating:
		return "populating"
	case StateEstimating:
		return "estimating"
	case StateSimulating:
		return "simulating"
	case StatePublished:
		return "published"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Summary condenses the final step of a simulation.
type Summary struct {
	Steps        int       `json:"steps"`
	Runs         int       `json:"runs"`
	InitialPrice float64   `json:"initial_price"`
	Mean         float64   `json:"mean"`
	StdDev       float64   `json:"std_dev"`
	Quantiles    []float64 `json:"quantiles"` // at SummaryProbabilities
	Actual       *float64  `json:"actual,omitempty"`
}

// SummaryProbabilities are the -2σ, -1σ, median, +1σ, +2σ levels of a normal distribution.
var SummaryProbabilities = []float64{0.02275, 0.158665, 0.5, 0.84134, 0.97725}

// RunSnapshot is what listeners receive after each run.
type RunSnapshot struct {
	Kind           RunKind
	State          RunState
	Symbol         string
	Period         string
	Method         ReturnMethod
	ExpectedReturn float64
	Volatility     float64
	Beta           *float64
	MarketReturn   *float64
	RiskFreeRate   *float64
	GrowthRate     *float64
	Result         *SimulationResult
	Actual         *PriceSeries
	Figure         *Figure
	Summary        *Summary
	Err            string
	FinishedAt     time.Time
}

package montecarlo

import (
	"math"
	"math/rand/v2"

	"MonteSim/internal/domain/models"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Input holds the parameters of one geometric Brownian motion simulation.
type Input struct {
	InitialPrice   float64
	ExpectedReturn float64
	Volatility     float64
	HorizonMonths  float64
	Simulations    int
}

type options struct {
	cumulativeDrift bool
	anchorStepZero  bool
}

// Option tweaks the path construction.
type Option func(*options)

// WithCumulativeDrift applies the drift over elapsed time (dt, 2dt, ...)
// instead of a constant dt at every step.
func WithCumulativeDrift() Option {
	return func(o *options) { o.cumulativeDrift = true }
}

// WithStepZeroAnchor pins the first step of every run to the initial price
// instead of pinning the whole first run.
func WithStepZeroAnchor() Option {
	return func(o *options) { o.anchorStepZero = true }
}

func (in Input) validate(src rand.Source) error {
	const op = "simulate"
	named := []struct {
		name string
		v    float64
	}{
		{"initial_price", in.InitialPrice},
		{"expected_return", in.ExpectedReturn},
		{"volatility", in.Volatility},
		{"time_horizon", in.HorizonMonths},
	}
	for _, p := range named {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) {
			return models.InvalidArgument(op, "%s must be a finite number, got %v", p.name, p.v)
		}
	}
	switch {
	case in.InitialPrice < 0:
		return models.InvalidArgument(op, "initial_price must be >= 0, got %v", in.InitialPrice)
	case in.Volatility < 0:
		return models.InvalidArgument(op, "volatility must be >= 0, got %v", in.Volatility)
	case in.HorizonMonths <= 0:
		return models.InvalidArgument(op, "time_horizon must be > 0, got %v", in.HorizonMonths)
	case in.Simulations <= 0:
		return models.InvalidArgument(op, "num_simulations must be > 0, got %d", in.Simulations)
	case models.TradingDays(in.HorizonMonths) < 1:
		return models.InvalidArgument(op, "time_horizon of %v months is shorter than one trading day", in.HorizonMonths)
	case src == nil:
		return models.InvalidArgument(op, "random source is required")
	}
	return nil
}

// Simulate draws in.Simulations price paths of geometric Brownian motion.
// The result has one row per trading day of the horizon and one column per run.
// Normals are drawn run by run, step by step, so a seeded source reproduces
// the same matrix.
func Simulate(src rand.Source, in Input, opts ...Option) (*models.SimulationResult, error) {
	if err := in.validate(src); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	steps := models.TradingDays(in.HorizonMonths)
	dt := 1 / float64(steps)
	drift := in.ExpectedReturn - 0.5*in.Volatility*in.Volatility
	norm := distuv.Normal{Mu: 0, Sigma: math.Sqrt(dt), Src: src}

	elapsed := make([]float64, steps)
	for t := range elapsed {
		if o.cumulativeDrift {
			elapsed[t] = float64(t+1) * dt
		} else {
			elapsed[t] = dt
		}
	}

	paths := mat.NewDense(steps, in.Simulations, nil)
	shocks := make([]float64, steps)
	brownian := make([]float64, steps)
	for j := 0; j < in.Simulations; j++ {
		for t := range shocks {
			shocks[t] = norm.Rand()
		}
		floats.CumSum(brownian, shocks)
		for t := 0; t < steps; t++ {
			paths.Set(t, j, in.InitialPrice*math.Exp(drift*elapsed[t]+in.Volatility*brownian[t]))
		}
	}

	if o.anchorStepZero {
		for j := 0; j < in.Simulations; j++ {
			paths.Set(0, j, in.InitialPrice)
		}
	} else {
		for t := 0; t < steps; t++ {
			paths.Set(t, 0, in.InitialPrice)
		}
	}

	return &models.SimulationResult{
		Paths:          paths,
		InitialPrice:   in.InitialPrice,
		ExpectedReturn: in.ExpectedReturn,
		Volatility:     in.Volatility,
		HorizonMonths:  in.HorizonMonths,
	}, nil
}

// NewSource returns a deterministic source for seed.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

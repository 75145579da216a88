package montecarlo

import (
	"errors"
	"math"
	"testing"

	"MonteSim/internal/domain/models"

	"gonum.org/v1/gonum/mat"
)

func TestSimulateShape(t *testing.T) {
	cases := []struct {
		horizon float64
		steps   int
	}{
		{12, 252},
		{6, 126},
		{1, 21},
		{3, 63},
	}
	for _, c := range cases {
		res, err := Simulate(NewSource(1), Input{InitialPrice: 100, ExpectedReturn: 0.08, Volatility: 0.2, HorizonMonths: c.horizon, Simulations: 7})
		if err != nil {
			t.Fatalf("horizon %v: unexpected error: %v", c.horizon, err)
		}
		r, cols := res.Dims()
		if r != c.steps || cols != 7 {
			t.Fatalf("horizon %v: expected %dx7, got %dx%d", c.horizon, c.steps, r, cols)
		}
	}
}

func TestSimulateFiniteNonNegative(t *testing.T) {
	res, err := Simulate(NewSource(7), Input{InitialPrice: 100, ExpectedReturn: -0.3, Volatility: 0.9, HorizonMonths: 24, Simulations: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	steps, runs := res.Dims()
	for i := 0; i < steps; i++ {
		for j := 0; j < runs; j++ {
			v := res.Paths.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				t.Fatalf("invalid price %v at (%d,%d)", v, i, j)
			}
		}
	}
}

func TestSimulateReproducible(t *testing.T) {
	in := Input{InitialPrice: 100, ExpectedReturn: 0.08, Volatility: 0.2, HorizonMonths: 12, Simulations: 1}
	a, err := Simulate(NewSource(42), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := Simulate(NewSource(42), in)
	if !mat.Equal(a.Paths, b.Paths) {
		t.Fatalf("expected identical paths for the same seed")
	}

	in.Simulations = 3
	c, _ := Simulate(NewSource(42), in)
	d, _ := Simulate(NewSource(43), in)
	if mat.Equal(c.Paths, d.Paths) {
		t.Fatalf("expected different paths for different seeds")
	}
}

func TestSimulateZeroVolatility(t *testing.T) {
	const s0, mu = 100.0, 0.08
	in := Input{InitialPrice: s0, ExpectedReturn: mu, Volatility: 0, HorizonMonths: 12, Simulations: 3}
	dt := 1.0 / 252

	// constant drift step: every simulated price is s0*exp(mu*dt)
	res, err := Simulate(NewSource(3), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 252; i++ {
		if got := res.Paths.At(i, 1); math.Abs(got-s0*math.Exp(mu*dt)) > 1e-9 {
			t.Fatalf("step %d: expected %v, got %v", i, s0*math.Exp(mu*dt), got)
		}
	}

	// cumulative drift: deterministic exponential growth
	res, err = Simulate(NewSource(3), in, WithCumulativeDrift())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 252; i++ {
		want := s0 * math.Exp(mu*float64(i+1)*dt)
		for j := 1; j < 3; j++ {
			if got := res.Paths.At(i, j); math.Abs(got-want) > 1e-9 {
				t.Fatalf("step %d run %d: expected %v, got %v", i, j, want, got)
			}
		}
	}
}

func TestSimulateAnchoring(t *testing.T) {
	in := Input{InitialPrice: 50, ExpectedReturn: 0.1, Volatility: 0.3, HorizonMonths: 3, Simulations: 4}

	res, err := Simulate(NewSource(9), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range res.Run(0) {
		if v != 50 {
			t.Fatalf("expected first run pinned to 50, got %v at step %d", v, i)
		}
	}

	res, err = Simulate(NewSource(9), in, WithStepZeroAnchor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for j, v := range res.Step(0) {
		if v != 50 {
			t.Fatalf("expected step 0 pinned to 50, got %v in run %d", v, j)
		}
	}
	if run := res.Run(0); run[len(run)-1] == 50 {
		t.Fatalf("expected first run to move when only step 0 is anchored")
	}
}

func TestSimulateValidation(t *testing.T) {
	good := Input{InitialPrice: 100, ExpectedReturn: 0.08, Volatility: 0.2, HorizonMonths: 12, Simulations: 10}
	cases := map[string]func(in *Input){
		"negative price":      func(in *Input) { in.InitialPrice = -1 },
		"negative volatility": func(in *Input) { in.Volatility = -0.1 },
		"zero horizon":        func(in *Input) { in.HorizonMonths = 0 },
		"tiny horizon":        func(in *Input) { in.HorizonMonths = 0.01 },
		"zero simulations":    func(in *Input) { in.Simulations = 0 },
		"nan return":          func(in *Input) { in.ExpectedReturn = math.NaN() },
		"inf price":           func(in *Input) { in.InitialPrice = math.Inf(1) },
	}
	for name, mutate := range cases {
		in := good
		mutate(&in)
		_, err := Simulate(NewSource(1), in)
		if !errors.Is(err, models.ErrInvalidArgument) {
			t.Fatalf("%s: expected invalid argument, got %v", name, err)
		}
	}

	if _, err := Simulate(nil, good); !errors.Is(err, models.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for a nil source, got %v", err)
	}
}

func TestSummarizeAndBands(t *testing.T) {
	res, err := Simulate(NewSource(5), Input{InitialPrice: 100, ExpectedReturn: 0.05, Volatility: 0.25, HorizonMonths: 6, Simulations: 400})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	actual := 104.0
	s := Summarize(res, &actual)
	if s.Steps != 126 || s.Runs != 400 {
		t.Fatalf("unexpected dims %dx%d", s.Steps, s.Runs)
	}
	for i := 1; i < len(s.Quantiles); i++ {
		if s.Quantiles[i] < s.Quantiles[i-1] {
			t.Fatalf("quantiles not ordered: %v", s.Quantiles)
		}
	}
	if s.Actual == nil || *s.Actual != 104 {
		t.Fatalf("expected actual price carried through")
	}

	b := ComputeBands(res)
	if len(b.Mean) != 126 {
		t.Fatalf("expected 126 band points, got %d", len(b.Mean))
	}
	last := len(b.Mean) - 1
	if !(b.Lower2[last] <= b.Lower1[last] && b.Lower1[last] <= b.Upper1[last] && b.Upper1[last] <= b.Upper2[last]) {
		t.Fatalf("bands out of order at the last step")
	}
}

package features

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// PctChange computes r_t = x_t / x_{t-1} - 1.
// It returns a slice of length len(xs)-1, or nil if insufficient data.
func PctChange(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	out := make([]float64, 0, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out = append(out, xs[i]/xs[i-1]-1)
	}
	return out
}

// ComputeLogReturns computes log returns ln(1 + pct_change).
func ComputeLogReturns(xs []float64) []float64 {
	pct := PctChange(xs)
	for i, r := range pct {
		pct[i] = math.Log(1 + r)
	}
	return pct
}

// Mean is the arithmetic mean of the finite values of xs, NaN when there are none.
func Mean(xs []float64) float64 {
	finite := Finite(xs)
	if len(finite) == 0 {
		return math.NaN()
	}
	return stat.Mean(finite, nil)
}

// Finite drops NaN and ±Inf.
func Finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}

// RealizedVolatility is the sample standard deviation of the most recent
// window returns, scaled by sqrt(window). Returns NaN for window < 2.
func RealizedVolatility(logReturns []float64, window int) float64 {
	if window < 2 || len(logReturns) < window {
		return math.NaN()
	}
	return stat.StdDev(logReturns[len(logReturns)-window:], nil) * math.Sqrt(float64(window))
}

// EWMLast is the last value of an exponentially weighted moving average
// with alpha = 2/(span+1) and no bias adjustment.
func EWMLast(xs []float64, span float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	alpha := 2 / (span + 1)
	y := xs[0]
	for _, x := range xs[1:] {
		y = (1-alpha)*y + alpha*x
	}
	return y
}

// Period is one resampling bucket.
type Period struct {
	Year  int
	Month time.Month // zero for yearly buckets
}

func yearOf(t time.Time) Period { return Period{Year: t.Year()} }

func monthOf(t time.Time) Period {
	y, m, _ := t.Date()
	return Period{Year: y, Month: m}
}

// Resampled is a bucketed series in ascending bucket order.
type Resampled struct {
	Periods []Period
	Values  []float64
}

// Index returns the position of p, or -1.
func (r Resampled) Index(p Period) int {
	for i, q := range r.Periods {
		if q == p {
			return i
		}
	}
	return -1
}

func resampleLast(dates []time.Time, values []float64, bucket func(time.Time) Period) Resampled {
	var out Resampled
	for i, t := range dates {
		p := bucket(t)
		if n := len(out.Periods); n > 0 && out.Periods[n-1] == p {
			out.Values[n-1] = values[i]
			continue
		}
		out.Periods = append(out.Periods, p)
		out.Values = append(out.Values, values[i])
	}
	return out
}

// YearEndLast keeps the last observation of each calendar year.
// Dates must be ascending.
func YearEndLast(dates []time.Time, values []float64) Resampled {
	return resampleLast(dates, values, yearOf)
}

// MonthEndLast keeps the last observation of each calendar month.
// Dates must be ascending.
func MonthEndLast(dates []time.Time, values []float64) Resampled {
	return resampleLast(dates, values, monthOf)
}

// YearlySum sums values per calendar year from the first to the last year,
// years without observations contributing zero.
func YearlySum(dates []time.Time, values []float64) Resampled {
	var out Resampled
	if len(dates) == 0 {
		return out
	}
	first, last := dates[0].Year(), dates[len(dates)-1].Year()
	for y := first; y <= last; y++ {
		out.Periods = append(out.Periods, Period{Year: y})
		out.Values = append(out.Values, 0)
	}
	for i, t := range dates {
		out.Values[t.Year()-first] += values[i]
	}
	return out
}

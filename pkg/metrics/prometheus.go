package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal      *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	expectedReturn *prometheus.GaugeVec
	volatility     *prometheus.GaugeVec
	fetchesTotal   *prometheus.CounterVec
	latency        *prometheus.HistogramVec
}

// New creates a recorder registered on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "montesim_runs_total",
				Help: "Simulation runs by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "montesim_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		expectedReturn: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "montesim_expected_return",
				Help: "Last annualized expected return estimated for a symbol",
			},
			[]string{"symbol"},
		),
		volatility: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "montesim_volatility",
				Help: "Last historical volatility estimated for a symbol",
			},
			[]string{"symbol"},
		),
		fetchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "montesim_fetches_total",
				Help: "Market data lookups by source and cache outcome",
			},
			[]string{"source", "cached"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "montesim_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRun counts a finished forecast or backtest.
func (r *Recorder) RecordRun(kind, outcome string) {
	r.runsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordEstimate stores the last assumptions used for a symbol.
func (r *Recorder) RecordEstimate(symbol string, expectedReturn, volatility float64) {
	r.expectedReturn.WithLabelValues(symbol).Set(expectedReturn)
	r.volatility.WithLabelValues(symbol).Set(volatility)
}

// RecordFetch counts a market data lookup.
func (r *Recorder) RecordFetch(source string, cached bool) {
	r.fetchesTotal.WithLabelValues(source, strconv.FormatBool(cached)).Inc()
}

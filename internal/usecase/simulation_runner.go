package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"MonteSim/internal/domain/models"
	domrepo "MonteSim/internal/domain/repository"
	"MonteSim/internal/services/analytics"
	"MonteSim/internal/services/montecarlo"
	xlogger "MonteSim/pkg/logger"
)

// ErrorPrefix starts every stored message that did not come from the fetcher.
const ErrorPrefix = "An exception occurred: "

// Listener is notified after every run. Implementations must be comparable
// (pointer receivers) because attach and detach match by identity.
type Listener interface {
	OnUpdate(snap models.RunSnapshot)
}

// RunParams configures one forecast or backtest.
type RunParams struct {
	Symbol           string
	Period           string
	Method           models.ReturnMethod
	MarketSymbol     string
	RiskFreeSymbol   string
	HorizonMonths    float64
	Simulations      int
	ReturnsWindow    int
	VolatilityWindow float64
	Seed             *uint64
}

func (p RunParams) validate() error {
	const op = "run_params"
	switch {
	case !models.ValidSymbol(p.Symbol):
		return models.InvalidArgument(op, "asset symbol must not be blank")
	case !models.ValidPeriod(p.Period):
		return models.InvalidArgument(op, "unknown period %q", p.Period)
	case !p.Method.Valid():
		return models.InvalidArgument(op, "unknown return method %d", int(p.Method))
	case p.Method == models.MethodCAPM && !models.ValidSymbol(p.MarketSymbol):
		return models.InvalidArgument(op, "market symbol must not be blank")
	case p.Method == models.MethodCAPM && !models.ValidSymbol(p.RiskFreeSymbol):
		return models.InvalidArgument(op, "risk-free symbol must not be blank")
	}
	return nil
}

type RunnerOption func(*SimulationRunner)

func WithLogger(l *xlogger.Logger) RunnerOption {
	return func(r *SimulationRunner) { r.logger = l }
}

func WithMetrics(m domrepo.Metrics) RunnerOption {
	return func(r *SimulationRunner) { r.metrics = m }
}

// WithSimulationOptions forwards path construction options to every run.
func WithSimulationOptions(opts ...montecarlo.Option) RunnerOption {
	return func(r *SimulationRunner) { r.simOpts = append(r.simOpts, opts...) }
}

// WithSourceFactory replaces the random source used when a run has no seed.
func WithSourceFactory(f func() rand.Source) RunnerOption {
	return func(r *SimulationRunner) { r.newSource = f }
}

// SimulationRunner drives a run through
// idle → populating → estimating → simulating → published,
// landing in errored when any stage fails. Runs are serialized.
type SimulationRunner struct {
	fetcher   domrepo.MarketDataFetcher
	viz       domrepo.Visualizer
	metrics   domrepo.Metrics
	logger    *xlogger.Logger
	simOpts   []montecarlo.Option
	newSource func() rand.Source

	runMu sync.Mutex

	mu        sync.Mutex
	asset     models.FinancialAsset
	market    models.MarketIndex
	riskFree  models.RiskFreeSecurity
	listeners []Listener
	state     models.RunState
	errMsg    string
	last      models.RunSnapshot
}

func NewSimulationRunner(fetcher domrepo.MarketDataFetcher, viz domrepo.Visualizer, opts ...RunnerOption) *SimulationRunner {
	r := &SimulationRunner{
		fetcher: fetcher,
		viz:     viz,
		metrics: noopMetrics{},
		logger:  xlogger.Nop(),
		newSource: func() rand.Source {
			return montecarlo.NewSource(uint64(time.Now().UnixNano()))
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attach adds l unless it is already attached.
func (r *SimulationRunner) Attach(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.listeners {
		if x == l {
			return
		}
	}
	r.listeners = append(r.listeners, l)
}

// Detach removes l. Detaching a listener that is not attached records an
// error and notifies the remaining listeners.
func (r *SimulationRunner) Detach(l Listener) {
	r.mu.Lock()
	for i, x := range r.listeners {
		if x == l {
			r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
			r.mu.Unlock()
			return
		}
	}
	r.errMsg = fmt.Sprintf("%T not in list of listeners.", l)
	snap := r.last
	snap.Err = r.errMsg
	r.mu.Unlock()
	r.Notify(snap)
}

// Notify delivers snap to a snapshot of the listener list, in attach order.
func (r *SimulationRunner) Notify(snap models.RunSnapshot) {
	r.mu.Lock()
	ls := make([]Listener, len(r.listeners))
	copy(ls, r.listeners)
	r.mu.Unlock()
	for _, l := range ls {
		l.OnUpdate(snap)
	}
}

func (r *SimulationRunner) State() models.RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// LastSnapshot returns the outcome of the most recent run.
func (r *SimulationRunner) LastSnapshot() models.RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// ConsumeError returns the pending error message and clears it.
func (r *SimulationRunner) ConsumeError() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg := r.errMsg
	r.errMsg = ""
	return msg, msg != ""
}

// Asset returns a copy of the asset with the assumptions of the last run.
func (r *SimulationRunner) Asset() models.FinancialAsset {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.asset
}

func (r *SimulationRunner) setState(s models.RunState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
	r.logger.Debug("simulation state", xlogger.String("state", s.String()))
}

// RunForecast estimates on the full history and simulates forward from the
// latest price.
func (r *SimulationRunner) RunForecast(ctx context.Context, p RunParams) (models.RunSnapshot, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	start := time.Now()
	snap := models.RunSnapshot{Kind: models.RunForecast, Symbol: p.Symbol, Period: p.Period, Method: p.Method}

	r.setState(models.StatePopulating)
	if err := r.populate(ctx, p); err != nil {
		return r.fail(snap, err, start)
	}

	r.setState(models.StateEstimating)
	prices := r.asset.Prices
	if err := r.estimate(p, prices, 0); err != nil {
		return r.fail(snap, err, start)
	}
	closes, err := models.Prices(prices)
	if err != nil {
		return r.fail(snap, err, start)
	}

	r.setState(models.StateSimulating)
	result, err := r.simulate(p, closes[len(closes)-1])
	if err != nil {
		return r.fail(snap, err, start)
	}

	fig, err := r.viz.RenderForecast(result, p.HorizonMonths)
	if err != nil {
		r.logger.Warn("render forecast failed", xlogger.Error(err))
	}
	summary := montecarlo.Summarize(result, nil)
	snap.Result, snap.Figure, snap.Summary = result, fig, &summary
	return r.publish(snap, start), nil
}

// RunBacktest holds out the last horizon worth of trading days, estimates on
// the rest and simulates from the first held-out price.
func (r *SimulationRunner) RunBacktest(ctx context.Context, p RunParams) (models.RunSnapshot, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	start := time.Now()
	snap := models.RunSnapshot{Kind: models.RunBacktest, Symbol: p.Symbol, Period: p.Period, Method: p.Method}

	r.setState(models.StatePopulating)
	if err := r.populate(ctx, p); err != nil {
		return r.fail(snap, err, start)
	}

	r.setState(models.StateEstimating)
	prices := r.asset.Prices
	testLen := models.TradingDays(p.HorizonMonths)
	if testLen < 1 {
		return r.fail(snap, models.InvalidArgument("backtest", "time_horizon of %v months is shorter than one trading day", p.HorizonMonths), start)
	}
	if testLen >= prices.Len() {
		return r.fail(snap, models.DomainError("Chosen time period must be greater than investment horizon for training data comparison."), start)
	}
	split := prices.Len() - testLen
	train, test := prices.Head(split), prices.From(split)
	if err := r.estimate(p, train, -testLen); err != nil {
		return r.fail(snap, err, start)
	}
	actual, err := models.Prices(test)
	if err != nil {
		return r.fail(snap, err, start)
	}

	r.setState(models.StateSimulating)
	result, err := r.simulate(p, actual[0])
	if err != nil {
		return r.fail(snap, err, start)
	}

	fig, err := r.viz.RenderBacktest(result, test, p.HorizonMonths)
	if err != nil {
		r.logger.Warn("render backtest failed", xlogger.Error(err))
	}
	end := actual[len(actual)-1]
	summary := montecarlo.Summarize(result, &end)
	snap.Result, snap.Actual, snap.Figure, snap.Summary = result, test, fig, &summary
	return r.publish(snap, start), nil
}

// populate fetches only what changed: the asset when symbol or period moved,
// benchmark and rate series for CAPM, dividends for DDM.
func (r *SimulationRunner) populate(ctx context.Context, p RunParams) error {
	if err := p.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.asset.NeedsFetch(p.Symbol, p.Period) {
		prices, err := r.fetcher.FetchAssetSeries(ctx, p.Symbol, p.Period)
		if err != nil {
			return upstream(err)
		}
		r.asset = models.FinancialAsset{Symbol: p.Symbol, Period: p.Period, Prices: prices}
	}
	r.asset.Method = p.Method
	r.asset.Reset()

	switch p.Method {
	case models.MethodCAPM:
		if r.market.NeedsFetch(p.MarketSymbol, p.Period) {
			prices, err := r.fetcher.FetchMarketSeries(ctx, p.MarketSymbol, p.Period)
			if err != nil {
				return upstream(err)
			}
			r.market = models.MarketIndex{Symbol: p.MarketSymbol, Period: p.Period, Prices: prices}
		}
		if r.riskFree.NeedsFetch(p.RiskFreeSymbol, p.Period) {
			rates, err := r.fetcher.FetchRiskFreeSeries(ctx, p.RiskFreeSymbol, p.Period)
			if err != nil {
				return upstream(err)
			}
			r.riskFree = models.RiskFreeSecurity{Symbol: p.RiskFreeSymbol, Period: p.Period, Rates: rates}
		}
	case models.MethodDividendDiscount:
		if r.asset.Dividends == nil {
			divs, err := r.fetcher.FetchDividends(ctx, p.Symbol)
			if err != nil {
				return upstream(err)
			}
			r.asset.Dividends = divs
		}
	}
	return nil
}

// estimate computes volatility on volSeries and the expected return on every
// series cut at endIndex, then applies both to the held entities.
func (r *SimulationRunner) estimate(p RunParams, volSeries *models.PriceSeries, endIndex int) error {
	window := p.VolatilityWindow
	if window == 0 {
		window = analytics.DefaultVolatilityWindow
	}
	vol, err := analytics.HistoricalVolatility(volSeries, window)
	if err != nil {
		return err
	}

	r.mu.Lock()
	in := analytics.EstimateInput{
		Method:        p.Method,
		Asset:         r.asset.Prices,
		Dividends:     r.asset.Dividends,
		EndIndex:      endIndex,
		ReturnsWindow: p.ReturnsWindow,
	}
	if p.Method == models.MethodCAPM {
		in.Market, in.RiskFree = r.market.Prices, r.riskFree.Rates
	}
	r.mu.Unlock()

	est, err := analytics.ComputeExpectedReturn(in)
	if err != nil {
		return err
	}
	return r.apply(est, vol)
}

func (r *SimulationRunner) apply(est models.Estimate, vol float64) error {
	if vol < 0 {
		return models.DomainError("volatility must be non-negative, got %v", vol)
	}
	if est.Beta != nil && *est.Beta < 0 {
		return models.DomainError("beta must be non-negative, got %.4f", *est.Beta)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.asset.Volatility = vol
	r.asset.ExpectedReturn = est.Value
	r.asset.Beta = est.Beta
	r.asset.GrowthRate = est.GrowthRate
	if est.MarketReturn != nil {
		r.market.Return = est.MarketReturn
	}
	if est.RiskFreeRate != nil {
		r.riskFree.Rate = est.RiskFreeRate
	}
	r.metrics.RecordEstimate(r.asset.Symbol, est.Value, vol)
	r.logger.Debug("estimated",
		xlogger.String("symbol", r.asset.Symbol),
		xlogger.String("method", est.Method.Key()),
		xlogger.Float64("expected_return", est.Value),
		xlogger.Float64("volatility", vol),
	)
	return nil
}

func (r *SimulationRunner) simulate(p RunParams, initialPrice float64) (*models.SimulationResult, error) {
	var src rand.Source
	if p.Seed != nil {
		src = montecarlo.NewSource(*p.Seed)
		r.logger.Debug("seeded simulation", xlogger.String("symbol", p.Symbol), xlogger.Uint64("seed", *p.Seed))
	} else {
		src = r.newSource()
	}
	r.mu.Lock()
	in := montecarlo.Input{
		InitialPrice:   initialPrice,
		ExpectedReturn: r.asset.ExpectedReturn,
		Volatility:     r.asset.Volatility,
		HorizonMonths:  p.HorizonMonths,
		Simulations:    p.Simulations,
	}
	r.mu.Unlock()
	return montecarlo.Simulate(src, in, r.simOpts...)
}

// fill copies the assumptions of the current run into snap. Callers hold r.mu.
func (r *SimulationRunner) fill(snap *models.RunSnapshot) {
	snap.ExpectedReturn = r.asset.ExpectedReturn
	snap.Volatility = r.asset.Volatility
	snap.Beta = r.asset.Beta
	snap.GrowthRate = r.asset.GrowthRate
	if snap.Method == models.MethodCAPM {
		snap.MarketReturn = r.market.Return
		snap.RiskFreeRate = r.riskFree.Rate
	}
	snap.FinishedAt = time.Now()
}

func (r *SimulationRunner) publish(snap models.RunSnapshot, start time.Time) models.RunSnapshot {
	r.mu.Lock()
	r.state = models.StatePublished
	snap.State = models.StatePublished
	r.fill(&snap)
	r.last = snap
	r.mu.Unlock()

	r.metrics.RecordRun(string(snap.Kind), "ok")
	r.metrics.RecordLatency(string(snap.Kind), time.Since(start).Seconds())
	r.logger.Info("simulation published",
		xlogger.String("kind", string(snap.Kind)),
		xlogger.String("symbol", snap.Symbol),
		xlogger.Duration("took_ms", time.Since(start)),
	)
	r.Notify(snap)
	return snap
}

// fail records err, moves to errored and still notifies listeners.
func (r *SimulationRunner) fail(snap models.RunSnapshot, err error, start time.Time) (models.RunSnapshot, error) {
	msg := Message(err)
	r.mu.Lock()
	r.state = models.StateErrored
	r.errMsg = msg
	snap.State = models.StateErrored
	snap.Err = msg
	snap.FinishedAt = time.Now()
	r.last = snap
	r.mu.Unlock()

	r.metrics.RecordRun(string(snap.Kind), "error")
	r.metrics.RecordError(models.KindOf(err).String())
	r.metrics.RecordLatency(string(snap.Kind), time.Since(start).Seconds())
	r.logger.Error("simulation failed",
		xlogger.String("kind", string(snap.Kind)),
		xlogger.String("symbol", snap.Symbol),
		xlogger.Error(err),
	)
	r.Notify(snap)
	return snap, err
}

// Message is the user-facing text for err: fetch failures as reported by the
// fetcher, anything else behind ErrorPrefix.
func Message(err error) string {
	if errors.Is(err, models.ErrUpstreamFetch) {
		return err.Error()
	}
	return ErrorPrefix + err.Error()
}

func upstream(err error) error {
	if errors.Is(err, models.ErrUpstreamFetch) {
		return err
	}
	return &models.Error{Kind: models.KindUpstreamFetch, Err: err}
}

type noopMetrics struct{}

func (noopMetrics) RecordRun(string, string)                {}
func (noopMetrics) RecordError(string)                      {}
func (noopMetrics) RecordLatency(string, float64)           {}
func (noopMetrics) RecordEstimate(string, float64, float64) {}
func (noopMetrics) RecordFetch(string, bool)                {}

package repository

import (
	"context"

	"MonteSim/internal/domain/models"
)

// MarketDataFetcher retrieves price and dividend history. Errors it returns are
// shown to users verbatim, so they should read as complete sentences.
type MarketDataFetcher interface {
	FetchAssetSeries(ctx context.Context, symbol, period string) (*models.PriceSeries, error)
	FetchMarketSeries(ctx context.Context, symbol, period string) (*models.PriceSeries, error)
	FetchRiskFreeSeries(ctx context.Context, symbol, period string) (*models.PriceSeries, error)
	FetchDividends(ctx context.Context, ticker string) (*models.DividendSeries, error)
}

// Visualizer turns simulation output into a renderable figure.
type Visualizer interface {
	RenderForecast(result *models.SimulationResult, horizonMonths float64) (*models.Figure, error)
	RenderBacktest(result *models.SimulationResult, actual *models.PriceSeries, horizonMonths float64) (*models.Figure, error)
}

// PriceStore persists daily bars and dividends for offline runs.
type PriceStore interface {
	Init(ctx context.Context) error
	StoreBars(ctx context.Context, series *models.PriceSeries) error
	StoreDividends(ctx context.Context, divs *models.DividendSeries) error
	Health(ctx context.Context) error
	Close() error
}

// RunPublisher ships run snapshots to downstream consumers.
type RunPublisher interface {
	PublishRun(ctx context.Context, snap models.RunSnapshot) error
	Close() error
}

type Metrics interface {
	RecordRun(kind, outcome string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordEstimate(symbol string, expectedReturn, volatility float64)
	RecordFetch(source string, cached bool)
}

package repository

import (
	"context"

	"MonteSim/internal/domain/models"
	domrepo "MonteSim/internal/domain/repository"
	applogger "MonteSim/pkg/logger"
)

// ArchivingFetcher passes downloads through to a PriceStore so that later
// runs can use the archive instead of the network. Archive failures are
// logged and never fail the fetch.
type ArchivingFetcher struct {
	next  domrepo.MarketDataFetcher
	store domrepo.PriceStore
	l     *applogger.Logger
}

func NewArchivingFetcher(next domrepo.MarketDataFetcher, store domrepo.PriceStore, l *applogger.Logger) *ArchivingFetcher {
	if l == nil {
		l = applogger.Nop()
	}
	return &ArchivingFetcher{next: next, store: store, l: l}
}

var _ domrepo.MarketDataFetcher = (*ArchivingFetcher)(nil)

func (f *ArchivingFetcher) FetchAssetSeries(ctx context.Context, symbol, period string) (*models.PriceSeries, error) {
	return f.archive(ctx, f.next.FetchAssetSeries, symbol, period)
}

func (f *ArchivingFetcher) FetchMarketSeries(ctx context.Context, symbol, period string) (*models.PriceSeries, error) {
	return f.archive(ctx, f.next.FetchMarketSeries, symbol, period)
}

func (f *ArchivingFetcher) FetchRiskFreeSeries(ctx context.Context, symbol, period string) (*models.PriceSeries, error) {
	return f.archive(ctx, f.next.FetchRiskFreeSeries, symbol, period)
}

func (f *ArchivingFetcher) FetchDividends(ctx context.Context, ticker string) (*models.DividendSeries, error) {
	divs, err := f.next.FetchDividends(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if err := f.store.StoreDividends(ctx, divs); err != nil {
		f.l.Warn("archive dividends failed", applogger.String("symbol", ticker), applogger.Error(err))
	}
	return divs, nil
}

type seriesFetch func(ctx context.Context, symbol, period string) (*models.PriceSeries, error)

func (f *ArchivingFetcher) archive(ctx context.Context, fetch seriesFetch, symbol, period string) (*models.PriceSeries, error) {
	s, err := fetch(ctx, symbol, period)
	if err != nil {
		return nil, err
	}
	if err := f.store.StoreBars(ctx, s); err != nil {
		f.l.Warn("archive bars failed", applogger.String("symbol", symbol), applogger.Error(err))
	}
	return s, nil
}

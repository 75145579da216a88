package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"MonteSim/internal/domain/models"
)

type stubFetcher struct {
	err error
}

func (s stubFetcher) series(symbol string) (*models.PriceSeries, error) {
	if s.err != nil {
		return nil, s.err
	}
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return models.SeriesFromCloses(symbol, []time.Time{d, d.AddDate(0, 0, 1)}, []float64{10, 11})
}

func (s stubFetcher) FetchAssetSeries(_ context.Context, symbol, _ string) (*models.PriceSeries, error) {
	return s.series(symbol)
}

func (s stubFetcher) FetchMarketSeries(_ context.Context, symbol, _ string) (*models.PriceSeries, error) {
	return s.series(symbol)
}

func (s stubFetcher) FetchRiskFreeSeries(_ context.Context, symbol, _ string) (*models.PriceSeries, error) {
	return s.series(symbol)
}

func (s stubFetcher) FetchDividends(_ context.Context, ticker string) (*models.DividendSeries, error) {
	if s.err != nil {
		return nil, s.err
	}
	return models.NewDividendSeries(ticker, []models.Dividend{{Time: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Amount: 0.5}}), nil
}

type memStore struct {
	bars []string
	divs []string
	err  error
}

func (m *memStore) Init(context.Context) error { return nil }

func (m *memStore) StoreBars(_ context.Context, s *models.PriceSeries) error {
	m.bars = append(m.bars, s.Symbol)
	return m.err
}

func (m *memStore) StoreDividends(_ context.Context, d *models.DividendSeries) error {
	m.divs = append(m.divs, d.Symbol)
	return m.err
}

func (m *memStore) Health(context.Context) error { return nil }

func (m *memStore) Close() error { return nil }

func TestArchivingFetcherStores(t *testing.T) {
	store := &memStore{}
	f := NewArchivingFetcher(stubFetcher{}, store, nil)
	ctx := context.Background()

	if _, err := f.FetchAssetSeries(ctx, "AAPL", "1y"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.FetchMarketSeries(ctx, "^GSPC", "1y"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.FetchDividends(ctx, "AAPL"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.bars) != 2 || store.bars[1] != "^GSPC" || len(store.divs) != 1 {
		t.Fatalf("unexpected archive calls %v %v", store.bars, store.divs)
	}
}

func TestArchivingFetcherIgnoresStoreErrors(t *testing.T) {
	f := NewArchivingFetcher(stubFetcher{}, &memStore{err: errors.New("disk full")}, nil)
	if _, err := f.FetchRiskFreeSeries(context.Background(), "^TNX", "1y"); err != nil {
		t.Fatalf("expected archive failure to be swallowed, got %v", err)
	}

	boom := errors.New("offline")
	f = NewArchivingFetcher(stubFetcher{err: boom}, &memStore{}, nil)
	if _, err := f.FetchAssetSeries(context.Background(), "AAPL", "1y"); !errors.Is(err, boom) {
		t.Fatalf("expected fetch error to pass through, got %v", err)
	}
}

func TestBarRows(t *testing.T) {
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	s, err := models.NewPriceSeries("X", []models.Bar{{Time: d, Close: 1}, {Time: d.AddDate(0, 0, 1), Close: 2}}, true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	values, args := barRows(s, s.Bars)
	if values != "(?, ?, ?, ?, ?, ?, ?, ?),(?, ?, ?, ?, ?, ?, ?, ?)" {
		t.Fatalf("unexpected placeholders %q", values)
	}
	if len(args) != 16 || args[0] != "X" || args[6] != nil {
		t.Fatalf("expected a NULL adj_close without that column, got %v", args[:8])
	}
}

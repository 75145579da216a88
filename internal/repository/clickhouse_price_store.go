package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"MonteSim/internal/domain/models"
	domrepo "MonteSim/internal/domain/repository"
	pkgch "MonteSim/pkg/clickhouse"
	applogger "MonteSim/pkg/logger"
	"MonteSim/pkg/util"
)

// Schema is applied by Init. ReplacingMergeTree keeps the latest copy of a
// bar when the same day is archived twice.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS daily_bars (
		symbol     LowCardinality(String),
		date       Date,
		open       Float64,
		high       Float64,
		low        Float64,
		close      Float64,
		adj_close  Nullable(Float64),
		volume     Int64,
		updated_at DateTime DEFAULT now()
	) ENGINE = ReplacingMergeTree(updated_at)
	ORDER BY (symbol, date)`,
	`CREATE TABLE IF NOT EXISTS dividends (
		symbol     LowCardinality(String),
		date       Date,
		amount     Float64,
		updated_at DateTime DEFAULT now()
	) ENGINE = ReplacingMergeTree(updated_at)
	ORDER BY (symbol, date)`,
}

const insertChunk = 2000

// CHPriceStore archives daily bars and dividends in ClickHouse and serves them
// back as a MarketDataFetcher for offline runs.
type CHPriceStore struct {
	ch  *pkgch.Client
	db  *sql.DB
	l   *applogger.Logger
	now func() time.Time
}

func NewCHPriceStore(ch *pkgch.Client, l *applogger.Logger) *CHPriceStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHPriceStore{ch: ch, db: ch.DB(), l: l, now: time.Now}
}

var (
	_ domrepo.PriceStore        = (*CHPriceStore)(nil)
	_ domrepo.MarketDataFetcher = (*CHPriceStore)(nil)
)

func (s *CHPriceStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, Schema)
}

// barRows flattens bars into placeholders and arguments for a multi-row insert.
func barRows(series *models.PriceSeries, bars []models.Bar) (string, []interface{}) {
	values := make([]string, 0, len(bars))
	args := make([]interface{}, 0, len(bars)*8)
	for _, b := range bars {
		var adj interface{}
		if series.HasAdjClose {
			adj = b.AdjClose
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, series.Symbol, b.Time, b.Open, b.High, b.Low, b.Close, adj, b.Volume)
	}
	return strings.Join(values, ","), args
}

func (s *CHPriceStore) StoreBars(ctx context.Context, series *models.PriceSeries) error {
	if series.Len() == 0 {
		return nil
	}
	for start := 0; start < len(series.Bars); start += insertChunk {
		end := min(start+insertChunk, len(series.Bars))
		values, args := barRows(series, series.Bars[start:end])
		q := "INSERT INTO daily_bars (symbol, date, open, high, low, close, adj_close, volume) VALUES " + values
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse store_bars error",
				applogger.String("symbol", series.Symbol),
				applogger.Int("rows", end-start),
				applogger.Error(err),
			)
			return fmt.Errorf("store bars: %w", err)
		}
	}
	return nil
}

func (s *CHPriceStore) StoreDividends(ctx context.Context, divs *models.DividendSeries) error {
	if divs.Len() == 0 {
		return nil
	}
	values := make([]string, 0, len(divs.Items))
	args := make([]interface{}, 0, len(divs.Items)*3)
	for _, d := range divs.Items {
		values = append(values, "(?, ?, ?)")
		args = append(args, divs.Symbol, d.Time, d.Amount)
	}
	q := "INSERT INTO dividends (symbol, date, amount) VALUES " + strings.Join(values, ",")
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("store dividends: %w", err)
	}
	return nil
}

func (s *CHPriceStore) FetchAssetSeries(ctx context.Context, symbol, period string) (*models.PriceSeries, error) {
	return s.loadBars(ctx, symbol, period)
}

func (s *CHPriceStore) FetchMarketSeries(ctx context.Context, symbol, period string) (*models.PriceSeries, error) {
	return s.loadBars(ctx, symbol, period)
}

func (s *CHPriceStore) FetchRiskFreeSeries(ctx context.Context, symbol, period string) (*models.PriceSeries, error) {
	return s.loadBars(ctx, symbol, period)
}

func (s *CHPriceStore) loadBars(ctx context.Context, symbol, period string) (*models.PriceSeries, error) {
	start := time.Now()
	from, ok := util.PeriodStart(period, s.now().UTC())
	if !ok {
		return nil, models.InvalidArgument("fetch", "unsupported period %q", period)
	}

	const q = `
		SELECT date, open, high, low, close, adj_close, volume
		FROM daily_bars FINAL
		WHERE symbol = ? AND date >= ?
		ORDER BY date ASC
	`
	rows, err := s.db.QueryContext(ctx, q, symbol, from)
	if err != nil {
		s.l.Error("clickhouse load_bars query error", applogger.String("symbol", symbol), applogger.Error(err))
		return nil, models.UpstreamFetch(fmt.Sprintf("Failed to load %s from the archive", symbol), err)
	}
	defer rows.Close()

	bars := make([]models.Bar, 0, 1024)
	hasAdj := true
	for rows.Next() {
		var (
			b   models.Bar
			adj sql.NullFloat64
		)
		if err := rows.Scan(&b.Time, &b.Open, &b.High, &b.Low, &b.Close, &adj, &b.Volume); err != nil {
			return nil, models.UpstreamFetch(fmt.Sprintf("Failed to read archived bars for %s", symbol), err)
		}
		b.Time = b.Time.UTC()
		if adj.Valid {
			b.AdjClose = adj.Float64
		} else {
			hasAdj = false
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, models.UpstreamFetch(fmt.Sprintf("Failed to read archived bars for %s", symbol), err)
	}
	if len(bars) == 0 {
		return nil, models.UpstreamFetch(fmt.Sprintf("No archived data for %s in period %s", symbol, period), nil)
	}

	s.l.Debug("clickhouse load_bars ok",
		applogger.String("symbol", symbol),
		applogger.String("period", period),
		applogger.Int("rows", len(bars)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return models.NewPriceSeries(symbol, bars, true, hasAdj)
}

func (s *CHPriceStore) FetchDividends(ctx context.Context, ticker string) (*models.DividendSeries, error) {
	const q = `SELECT date, amount FROM dividends FINAL WHERE symbol = ? ORDER BY date ASC`
	rows, err := s.db.QueryContext(ctx, q, ticker)
	if err != nil {
		return nil, models.UpstreamFetch(fmt.Sprintf("Failed to load dividends for %s from the archive", ticker), err)
	}
	defer rows.Close()

	var items []models.Dividend
	for rows.Next() {
		var d models.Dividend
		if err := rows.Scan(&d.Time, &d.Amount); err != nil {
			return nil, models.UpstreamFetch(fmt.Sprintf("Failed to read archived dividends for %s", ticker), err)
		}
		d.Time = d.Time.UTC()
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, models.UpstreamFetch(fmt.Sprintf("Failed to read archived dividends for %s", ticker), err)
	}
	return models.NewDividendSeries(ticker, items), nil
}

func (s *CHPriceStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

// Close is a no-op; the connection pool is owned by the caller.
func (s *CHPriceStore) Close() error {
	return nil
}

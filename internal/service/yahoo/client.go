package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"MonteSim/internal/domain/models"
	drepo "MonteSim/internal/domain/repository"
	"MonteSim/internal/service/cache"
	"MonteSim/internal/service/ratelimit"
	xhttp "MonteSim/pkg/http"
	"MonteSim/pkg/logger"
)

const source = "yahoo"

// Client implements MarketDataFetcher against the Yahoo Finance chart API.
// Raw responses are cached so repeated runs with the same symbol and period
// do not hit the rate limit.
type Client struct {
	baseURL string
	http    *xhttp.Client
	cache   cache.BytesCache
	ttl     time.Duration
	limiter *ratelimit.Limiter
	metrics drepo.Metrics
	logger  *logger.Logger
}

type Option func(*Client)

func WithCache(c cache.BytesCache, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.ttl = ttl
	}
}

func WithLimiter(l *ratelimit.Limiter) Option {
	return func(cl *Client) { cl.limiter = l }
}

func WithMetrics(m drepo.Metrics) Option {
	return func(cl *Client) { cl.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New creates a Yahoo fetcher. Without options it neither caches nor limits.
func New(baseURL string, hc *xhttp.Client, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    hc,
		cache:   cache.Nop{},
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ drepo.MarketDataFetcher = (*Client)(nil)

func (c *Client) FetchAssetSeries(ctx context.Context, symbol, period string) (*models.PriceSeries, error) {
	return c.fetchSeries(ctx, symbol, period)
}

func (c *Client) FetchMarketSeries(ctx context.Context, symbol, period string) (*models.PriceSeries, error) {
	return c.fetchSeries(ctx, symbol, period)
}

func (c *Client) FetchRiskFreeSeries(ctx context.Context, symbol, period string) (*models.PriceSeries, error) {
	return c.fetchSeries(ctx, symbol, period)
}

// FetchDividends downloads the full dividend history of ticker.
func (c *Client) FetchDividends(ctx context.Context, ticker string) (*models.DividendSeries, error) {
	raw, err := c.chart(ctx, ticker, "max", true)
	if err != nil {
		return nil, models.UpstreamFetch(fmt.Sprintf("Failed to download dividends for %s", ticker), err)
	}
	divs, err := parseDividends(ticker, raw)
	if err != nil {
		return nil, models.UpstreamFetch(fmt.Sprintf("Failed to read dividends for %s", ticker), err)
	}
	return divs, nil
}

func (c *Client) fetchSeries(ctx context.Context, symbol, period string) (*models.PriceSeries, error) {
	if !models.ValidPeriod(period) {
		return nil, models.InvalidArgument("fetch", "unsupported period %q", period)
	}
	raw, err := c.chart(ctx, symbol, period, false)
	if err != nil {
		return nil, models.UpstreamFetch(fmt.Sprintf("Failed to download %s for period %s", symbol, period), err)
	}
	s, err := parseSeries(symbol, raw)
	if err != nil {
		return nil, models.UpstreamFetch(fmt.Sprintf("Failed to read price data for %s", symbol), err)
	}
	return s, nil
}

// chart returns the raw chart JSON, from cache when possible.
func (c *Client) chart(ctx context.Context, symbol, rng string, dividends bool) ([]byte, error) {
	key := cache.Key("chart", symbol, rng, dividends)
	if b, ok, err := c.cache.GetBytes(ctx, key); err != nil {
		c.logger.Warn("cache read failed", logger.String("key", key), logger.Error(err))
	} else if ok {
		c.recordFetch(true)
		return b, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, source); err != nil {
			return nil, err
		}
	}

	q := map[string][]string{
		"range":    {rng},
		"interval": {"1d"},
	}
	if dividends {
		q["events"] = []string{"div"}
	}

	start := time.Now()
	var raw []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol),
		QueryParams: q,
	}, &raw)
	if c.metrics != nil {
		c.metrics.RecordLatency("yahoo_chart", time.Since(start).Seconds())
	}
	if err != nil {
		return nil, err
	}
	c.recordFetch(false)
	c.logger.Debug("chart downloaded",
		logger.String("symbol", symbol),
		logger.String("range", rng),
		logger.Int("bytes", len(raw)),
	)

	if _, err := decodeChart(raw); err == nil {
		if err := c.cache.SetBytes(ctx, key, raw, c.ttl); err != nil {
			c.logger.Warn("cache write failed", logger.String("key", key), logger.Error(err))
		}
	}
	return raw, nil
}

func (c *Client) recordFetch(cached bool) {
	if c.metrics != nil {
		c.metrics.RecordFetch(source, cached)
	}
}

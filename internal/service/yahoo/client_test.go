package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"MonteSim/internal/domain/models"
	"MonteSim/internal/service/cache"
	xhttp "MonteSim/pkg/http"
)

// 2024-01-02 .. 2024-01-05 14:30 UTC, with a repeated last bar and a null close.
const chartJSON = `{"chart":{"result":[{
	"meta":{"symbol":"AAPL","currency":"USD","gmtoffset":-18000},
	"timestamp":[1704205800,1704292200,1704378600,1704465000,1704465060],
	"events":{"dividends":{
		"1707487200":{"amount":0.24,"date":1707487200},
		"1699626600":{"amount":0.24,"date":1699626600}}},
	"indicators":{
		"quote":[{"open":[1,2,3,4,4],"high":[1,2,3,4,4],"low":[1,2,3,4,4],
		          "close":[185.6,184.25,null,181.18,181.5],"volume":[100,200,300,400,450]}],
		"adjclose":[{"adjclose":[184.9,183.5,null,180.4,180.7]}]}}],
	"error":null}}`

const notFoundJSON = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, xhttp.NewClient(xhttp.WithHTTPClient(srv.Client())), opts...)
}

func TestFetchAssetSeries(t *testing.T) {
	var gotPath, gotRange string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRange = r.URL.Query().Get("range")
		_, _ = w.Write([]byte(chartJSON))
	})

	s, err := c.FetchAssetSeries(context.Background(), "AAPL", "5y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v8/finance/chart/AAPL" || gotRange != "5y" {
		t.Fatalf("unexpected request %s range=%s", gotPath, gotRange)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 bars, got %d", s.Len())
	}
	if !s.HasAdjClose {
		t.Fatalf("expected adjusted close column")
	}
	last, _ := s.Last()
	if last.Close != 181.5 || last.AdjClose != 180.7 {
		t.Fatalf("expected the later duplicate bar to win, got %+v", last)
	}
	if want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC); !last.Time.Equal(want) {
		t.Fatalf("expected date %v, got %v", want, last.Time)
	}
}

func TestFetchDividends(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("events") != "div" || r.URL.Query().Get("range") != "max" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(chartJSON))
	})

	d, err := c.FetchDividends(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Len() != 2 {
		t.Fatalf("expected 2 dividends, got %d", d.Len())
	}
	if !d.Items[0].Time.Before(d.Items[1].Time) {
		t.Fatalf("expected dividends in date order")
	}
}

func TestFetchErrorsAreUpstream(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/BAD") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(notFoundJSON))
			return
		}
		_, _ = w.Write([]byte(notFoundJSON))
	})

	_, err := c.FetchAssetSeries(context.Background(), "BAD", "1y")
	if !errors.Is(err, models.ErrUpstreamFetch) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "Failed to download BAD") {
		t.Fatalf("unexpected message %q", err.Error())
	}

	_, err = c.FetchMarketSeries(context.Background(), "GONE", "1y")
	if !errors.Is(err, models.ErrUpstreamFetch) || !strings.Contains(err.Error(), "No data found") {
		t.Fatalf("expected upstream error carrying the API description, got %v", err)
	}

	_, err = c.FetchAssetSeries(context.Background(), "AAPL", "7y")
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for an unknown period, got %v", err)
	}
}

func TestFetchUsesCache(t *testing.T) {
	var hits int32
	store := cache.NewTTLCache(16)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(chartJSON))
	}, WithCache(store, time.Hour))

	for i := 0; i < 3; i++ {
		if _, err := c.FetchRiskFreeSeries(context.Background(), "^TNX", "1y"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected one download, got %d", n)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one cached response, got %d", store.Len())
	}
}

package yahoo

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"MonteSim/internal/domain/models"
)

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		Currency  string `json:"currency"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp []int64 `json:"timestamp"`
	Events    struct {
		Dividends map[string]struct {
			Amount float64 `json:"amount"`
			Date   int64   `json:"date"`
		} `json:"dividends"`
	} `json:"events"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

func decodeChart(raw []byte) (*chartResult, error) {
	var resp chartResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	if e := resp.Chart.Error; e != nil {
		return nil, fmt.Errorf("%s: %s", e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result")
	}
	return &resp.Chart.Result[0], nil
}

// day maps a bar timestamp to its exchange-local calendar date at midnight UTC.
func day(ts, offset int64) time.Time {
	t := time.Unix(ts+offset, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func at[T any](xs []*T, i int) (T, bool) {
	var zero T
	if i >= len(xs) || xs[i] == nil {
		return zero, false
	}
	return *xs[i], true
}

// parseSeries builds a daily price series. Bars without a close are skipped;
// when the same date appears twice the later bar wins.
func parseSeries(symbol string, raw []byte) (*models.PriceSeries, error) {
	res, err := decodeChart(raw)
	if err != nil {
		return nil, err
	}
	if len(res.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quotes for %s", symbol)
	}
	q := res.Indicators.Quote[0]
	var adj []*float64
	if len(res.Indicators.AdjClose) > 0 {
		adj = res.Indicators.AdjClose[0].AdjClose
	}

	byDay := make(map[time.Time]models.Bar, len(res.Timestamp))
	hasAdj := len(adj) > 0
	for i, ts := range res.Timestamp {
		c, ok := at(q.Close, i)
		if !ok {
			continue
		}
		b := models.Bar{Time: day(ts, res.Meta.GMTOffset), Close: c}
		b.Open, _ = at(q.Open, i)
		b.High, _ = at(q.High, i)
		b.Low, _ = at(q.Low, i)
		b.Volume, _ = at(q.Volume, i)
		if hasAdj {
			if a, ok := at(adj, i); ok {
				b.AdjClose = a
			} else {
				b.AdjClose = c
			}
		}
		byDay[b.Time] = b
	}
	if len(byDay) == 0 {
		return nil, fmt.Errorf("no price data for %s", symbol)
	}

	bars := make([]models.Bar, 0, len(byDay))
	for _, b := range byDay {
		bars = append(bars, b)
	}
	return models.NewPriceSeries(symbol, bars, true, hasAdj)
}

// parseDividends extracts the dividend events of a chart response. A response
// without events is a valid, empty history.
func parseDividends(symbol string, raw []byte) (*models.DividendSeries, error) {
	res, err := decodeChart(raw)
	if err != nil {
		return nil, err
	}
	items := make([]models.Dividend, 0, len(res.Events.Dividends))
	for k, d := range res.Events.Dividends {
		ts := d.Date
		if ts == 0 {
			if ts, err = strconv.ParseInt(k, 10, 64); err != nil {
				continue
			}
		}
		items = append(items, models.Dividend{Time: day(ts, res.Meta.GMTOffset), Amount: d.Amount})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Time.Before(items[j].Time) })
	return models.NewDividendSeries(symbol, items), nil
}

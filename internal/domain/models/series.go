package models

import (
	"sort"
	"time"
)

// Column names a price column of a PriceSeries.
type Column string

const (
	ColumnAdjClose Column = "Adj Close"
	ColumnClose    Column = "Close"
)

// Bar is one daily observation.
type Bar struct {
	Time     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
}

// PriceSeries is an ordered, date-indexed sequence of bars.
// Slicing methods return views sharing the underlying bars; nothing writes to them.
type PriceSeries struct {
	Symbol      string
	Bars        []Bar
	HasClose    bool
	HasAdjClose bool
}

// NewPriceSeries sorts bars by date and rejects duplicate dates or a series
// without any price column.
func NewPriceSeries(symbol string, bars []Bar, hasClose, hasAdjClose bool) (*PriceSeries, error) {
	if !hasClose && !hasAdjClose {
		return nil, MissingData("price_series", "series %q has neither %q nor %q", symbol, ColumnAdjClose, ColumnClose)
	}
	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })
	for i := 1; i < len(sorted); i++ {
		if !sorted[i].Time.After(sorted[i-1].Time) {
			return nil, InvalidInput("price_series", "duplicate date %s in %q", sorted[i].Time.Format(time.DateOnly), symbol)
		}
	}
	return &PriceSeries{Symbol: symbol, Bars: sorted, HasClose: hasClose, HasAdjClose: hasAdjClose}, nil
}

// SeriesFromCloses builds a close-only series, used for rate quotes and fixtures.
func SeriesFromCloses(symbol string, dates []time.Time, closes []float64) (*PriceSeries, error) {
	if len(dates) != len(closes) {
		return nil, InvalidInput("price_series", "%d dates for %d values", len(dates), len(closes))
	}
	bars := make([]Bar, len(dates))
	for i := range dates {
		bars[i] = Bar{Time: dates[i], Open: closes[i], High: closes[i], Low: closes[i], Close: closes[i]}
	}
	return NewPriceSeries(symbol, bars, true, false)
}

func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

func (s *PriceSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Time
	}
	return out
}

// Values returns a copy of one price column.
func (s *PriceSeries) Values(col Column) []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		if col == ColumnAdjClose {
			out[i] = b.AdjClose
		} else {
			out[i] = b.Close
		}
	}
	return out
}

func (s *PriceSeries) view(bars []Bar) *PriceSeries {
	return &PriceSeries{Symbol: s.Symbol, Bars: bars, HasClose: s.HasClose, HasAdjClose: s.HasAdjClose}
}

// Head keeps the first n bars.
func (s *PriceSeries) Head(n int) *PriceSeries {
	n = max(0, min(n, len(s.Bars)))
	return s.view(s.Bars[:n])
}

// From keeps the bars starting at index i.
func (s *PriceSeries) From(i int) *PriceSeries {
	i = max(0, min(i, len(s.Bars)))
	return s.view(s.Bars[i:])
}

// Since keeps the bars dated on or after t.
func (s *PriceSeries) Since(t time.Time) *PriceSeries {
	i := sort.Search(len(s.Bars), func(i int) bool { return !s.Bars[i].Time.Before(t) })
	return s.view(s.Bars[i:])
}

// Truncate applies an end index the way a slice [:endIndex] would:
// zero keeps everything, a negative value drops that many trailing bars,
// a positive value keeps that many leading bars.
func (s *PriceSeries) Truncate(endIndex int) *PriceSeries {
	switch {
	case endIndex == 0:
		return s
	case endIndex < 0:
		return s.Head(len(s.Bars) + endIndex)
	default:
		return s.Head(endIndex)
	}
}

func (s *PriceSeries) First() (Bar, bool) {
	if s.Len() == 0 {
		return Bar{}, false
	}
	return s.Bars[0], true
}

func (s *PriceSeries) Last() (Bar, bool) {
	if s.Len() == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// PriceColumn returns the preferred price column: adjusted close, then close.
func PriceColumn(s *PriceSeries) (Column, error) {
	if s == nil {
		return "", InvalidInput("price_column", "series is nil")
	}
	switch {
	case s.HasAdjClose:
		return ColumnAdjClose, nil
	case s.HasClose:
		return ColumnClose, nil
	default:
		return "", MissingData("price_column", "no price column found in %q; expected %q or %q", s.Symbol, ColumnAdjClose, ColumnClose)
	}
}

// Prices returns the values of the preferred price column.
func Prices(s *PriceSeries) ([]float64, error) {
	col, err := PriceColumn(s)
	if err != nil {
		return nil, err
	}
	return s.Values(col), nil
}

// Dividend is one cash distribution.
type Dividend struct {
	Time   time.Time
	Amount float64
}

// DividendSeries is a date-ordered list of dividends. It may be empty.
type DividendSeries struct {
	Symbol string
	Items  []Dividend
}

func NewDividendSeries(symbol string, items []Dividend) *DividendSeries {
	sorted := make([]Dividend, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })
	return &DividendSeries{Symbol: symbol, Items: sorted}
}

func (d *DividendSeries) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Items)
}

// Until keeps the dividends paid on or before t.
func (d *DividendSeries) Until(t time.Time) *DividendSeries {
	i := sort.Search(len(d.Items), func(i int) bool { return d.Items[i].Time.After(t) })
	return &DividendSeries{Symbol: d.Symbol, Items: d.Items[:i]}
}

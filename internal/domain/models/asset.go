package models

import (
	"math"
	"strings"
)

const (
	AnnualTradingDays = 252
	MonthsPerYear     = 12
	DaysPerYear       = 365
)

// TradingDays converts a horizon in months to a number of trading days,
// rounding half to even.
func TradingDays(months float64) int {
	return int(math.RoundToEven(months / (float64(MonthsPerYear) / AnnualTradingDays)))
}

// Periods is the set of accepted lookback periods, keyed by display label.
var Periods = map[string]string{
	"Last 1 day":             "1d",
	"Last 5 days":            "5d",
	"Last 1 month":           "1mo",
	"Last 3 months":          "3mo",
	"Last 6 months":          "6mo",
	"Last 1 year":            "1y",
	"Last 2 years":           "2y",
	"Last 5 years":           "5y",
	"Last 10 years":          "10y",
	"Year to date":           "ytd",
	"Maximum available data": "max",
}

// ValidPeriod reports whether p is one of the accepted lookback codes.
func ValidPeriod(p string) bool {
	for _, v := range Periods {
		if v == p {
			return true
		}
	}
	return false
}

// RiskFreeSecurities are the treasury yields usable as a risk-free rate.
var RiskFreeSecurities = map[string]string{
	"13-week U.S. Treasuries": "^IRX",
	"5-year U.S. Treasuries":  "^FVX",
	"10-year U.S. Treasuries": "^TNX",
	"30-year U.S. Treasuries": "^TYX",
}

// MarketIndexes are common benchmarks for beta and market return.
var MarketIndexes = map[string]string{
	"S&P 500":                          "^GSPC",
	"Dow Jones":                        "^DJI",
	"Russel 2000":                      "^RUT",
	"NASDAQ 100":                       "^NDQ",
	"NASDAQ Composite":                 "^IXIC",
	"Wilshire 5000":                    "^FTW5000",
	"NYSE Composite":                   "^NYA",
	"S&P Global 1200":                  "^SPG1200",
	"Índice de Precios y Cotizaciones": "^MXX",
	"S&P IPSA":                         "^IPSA",
	"CAC 40":                           "^FCHI",
	"Hang Seng":                        "^HSI",
	"SSE Commposite":                   "000001.SS",
	"CSI 300":                          "000300.SS",
	"Nikkei 225":                       "^N225",
	"KOSPI Composite":                  "^KS11",
	"BSE SENSEX":                       "^BSESN",
	"NIFTY 50":                         "^NSEI",
	"FTSE 100":                         "^FTSE",
	"DAX":                              "^GDAXI",
	"IBEX":                             "IBEX",
	"EGX 30":                           "^CASE 30",
}

// ValidSymbol reports whether s is a usable ticker: non-empty and not only whitespace.
func ValidSymbol(s string) bool {
	return strings.TrimSpace(s) != ""
}

// FinancialAsset is the security being simulated.
type FinancialAsset struct {
	Symbol    string
	Period    string
	Method    ReturnMethod
	Prices    *PriceSeries
	Dividends *DividendSeries

	Volatility     float64
	Beta           *float64
	ExpectedReturn float64
	GrowthRate     *float64
}

// Reset clears the derived scalars ahead of a new run.
func (a *FinancialAsset) Reset() {
	a.Volatility = 0
	a.Beta = nil
	a.ExpectedReturn = 0
	a.GrowthRate = nil
}

// NeedsFetch reports whether the held prices are stale for symbol and period.
func (a *FinancialAsset) NeedsFetch(symbol, period string) bool {
	return a.Prices == nil || a.Symbol != symbol || a.Period != period
}

// MarketIndex is the benchmark used by CAPM.
type MarketIndex struct {
	Symbol string
	Period string
	Prices *PriceSeries
	Return *float64
}

func (m *MarketIndex) NeedsFetch(symbol, period string) bool {
	return m.Prices == nil || m.Symbol != symbol || m.Period != period
}

// RiskFreeSecurity holds treasury yield quotes, in percent.
type RiskFreeSecurity struct {
	Symbol string
	Period string
	Rates  *PriceSeries
	Rate   *float64
}

func (r *RiskFreeSecurity) NeedsFetch(symbol, period string) bool {
	return r.Rates == nil || r.Symbol != symbol || r.Period != period
}

package analytics

import (
	"math"

	"MonteSim/internal/domain/models"
	"MonteSim/internal/services/features"
)

// DefaultVolatilityWindow is the rolling window, in trading days, used for
// historical volatility when none is configured.
const DefaultVolatilityWindow = 30

// AnnualMarketReturn is the mean year-over-year change of year-end prices.
// The first year-end point is replaced by the first observed price so a
// partial first year is measured from where the series starts. A series
// inside a single calendar year has no such change and is MissingData.
func AnnualMarketReturn(s *models.PriceSeries) (float64, error) {
	const op = "annual_market_return"
	prices, err := models.Prices(s)
	if err != nil {
		return 0, err
	}
	if len(prices) == 0 {
		return 0, models.MissingData(op, "series %q is empty", s.Symbol)
	}
	yearly := features.YearEndLast(s.Dates(), prices)
	if len(yearly.Values) < 2 {
		return 0, models.MissingData(op, "need at least two year-end points, got %d", len(yearly.Values))
	}
	yearly.Values[0] = prices[0]
	return features.Mean(features.PctChange(yearly.Values)), nil
}

// DailyMarketReturn is the mean day-over-day change.
func DailyMarketReturn(s *models.PriceSeries) (float64, error) {
	prices, err := models.Prices(s)
	if err != nil {
		return 0, err
	}
	if len(prices) < 2 {
		return 0, models.MissingData("daily_market_return", "need at least 2 prices, got %d", len(prices))
	}
	return features.Mean(features.PctChange(prices)), nil
}

// RiskFreeRate averages the quoted annual yields, which are in percent.
func RiskFreeRate(s *models.PriceSeries) (float64, error) {
	rates, err := models.Prices(s)
	if err != nil {
		return 0, err
	}
	if len(rates) == 0 {
		return 0, models.MissingData("risk_free_rate", "series %q is empty", s.Symbol)
	}
	return features.Mean(rates), nil
}

// DailyRiskFreeRate converts each annual percent yield to a daily compounding
// rate and averages them.
func DailyRiskFreeRate(s *models.PriceSeries) (float64, error) {
	rates, err := models.Prices(s)
	if err != nil {
		return 0, err
	}
	if len(rates) == 0 {
		return 0, models.MissingData("daily_risk_free_rate", "series %q is empty", s.Symbol)
	}
	daily := make([]float64, len(rates))
	for i, x := range rates {
		daily[i] = math.Pow(1+x/100, 1.0/models.DaysPerYear) - 1
	}
	return features.Mean(daily), nil
}

// HistoricalVolatility is the sample standard deviation of the most recent
// window log returns scaled by sqrt(window). A window longer than the
// available returns is clamped to them; fractional windows are truncated.
func HistoricalVolatility(s *models.PriceSeries, window float64) (float64, error) {
	const op = "historical_volatility"
	if math.IsNaN(window) || math.IsInf(window, 0) || window <= 0 {
		return 0, models.InvalidArgument(op, "window must be a positive number, got %v", window)
	}
	w := int(window)
	if w <= 0 {
		return 0, models.InvalidArgument(op, "window must be at least 1, got %v", window)
	}
	prices, err := models.Prices(s)
	if err != nil {
		return 0, err
	}
	returns := features.ComputeLogReturns(prices)
	w = min(w, len(returns))
	if w < 2 {
		return 0, models.MissingData(op, "need at least 3 prices for a volatility estimate, got %d", len(prices))
	}
	return features.RealizedVolatility(returns, w), nil
}

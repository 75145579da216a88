package analytics

import (
	"math"
	"time"

	"MonteSim/internal/domain/models"
	"MonteSim/internal/services/features"

	"gonum.org/v1/gonum/stat"
)

// DividendLookbackYears bounds the dividend history used for growth estimates.
const DividendLookbackYears = 10

// CAPMReturn is Rf + beta*(Rm - Rf).
func CAPMReturn(beta, marketReturn, riskFreeRate float64) float64 {
	return riskFreeRate + beta*(marketReturn-riskFreeRate)
}

// Beta is Cov(asset, market) / Var(market) over month-end returns. The market
// is restricted to the dates the asset covers; covariance uses the months
// present in both series.
func Beta(asset, market *models.PriceSeries) (float64, error) {
	const op = "beta"
	if asset == nil || market == nil {
		return 0, models.InvalidInput(op, "asset and market series are required")
	}
	assetPrices, err := models.Prices(asset)
	if err != nil {
		return 0, err
	}
	start, ok := asset.First()
	if !ok {
		return 0, models.MissingData(op, "asset series %q is empty", asset.Symbol)
	}
	market = market.Since(start.Time)
	marketPrices, err := models.Prices(market)
	if err != nil {
		return 0, err
	}

	ar := monthlyReturns(features.MonthEndLast(asset.Dates(), assetPrices))
	mr := monthlyReturns(features.MonthEndLast(market.Dates(), marketPrices))
	if len(mr.Values) < 2 {
		return 0, models.MissingData(op, "need at least 2 monthly market returns, got %d", len(mr.Values))
	}

	var xs, ys []float64
	for i, p := range mr.Periods {
		if j := ar.Index(p); j >= 0 {
			xs = append(xs, ar.Values[j])
			ys = append(ys, mr.Values[i])
		}
	}
	if len(xs) < 2 {
		return 0, models.MissingData(op, "need at least 2 overlapping months, got %d", len(xs))
	}

	variance := stat.Variance(mr.Values, nil)
	if variance == 0 {
		return 0, models.InvalidInput(op, "market returns have zero variance")
	}
	return stat.Covariance(xs, ys, nil) / variance, nil
}

// monthlyReturns turns month-end prices into month-over-month changes,
// dropping the leading undefined value and any non-finite change.
func monthlyReturns(r features.Resampled) features.Resampled {
	var out features.Resampled
	for i := 1; i < len(r.Values); i++ {
		v := r.Values[i]/r.Values[i-1] - 1
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out.Periods = append(out.Periods, r.Periods[i])
		out.Values = append(out.Values, v)
	}
	return out
}

// DividendGrowthRate is the mean year-over-year change of annual dividend
// totals over the trailing ten years ending at the last payment. Years with no
// payment count as zero; undefined changes are skipped.
func DividendGrowthRate(divs *models.DividendSeries) (float64, error) {
	const op = "dividend_growth_rate"
	if divs.Len() == 0 {
		return 0, models.MissingData(op, "no dividend history")
	}
	last := divs.Items[len(divs.Items)-1].Time
	start := last.AddDate(-DividendLookbackYears, 0, 0)

	var dates []time.Time
	var amounts []float64
	for _, d := range divs.Items {
		if d.Time.Before(start) {
			continue
		}
		dates = append(dates, d.Time)
		amounts = append(amounts, d.Amount)
	}
	changes := features.Finite(features.PctChange(features.YearlySum(dates, amounts).Values))
	if len(changes) == 0 {
		return 0, models.MissingData(op, "need at least 2 years of dividends for %q", divs.Symbol)
	}
	return stat.Mean(changes, nil), nil
}

// DDMReturn is D1/P0 + g, where D1 grows the latest annual dividend total by g.
func DDMReturn(divs *models.DividendSeries, price, growthRate float64) (float64, error) {
	const op = "ddm_return"
	if divs.Len() == 0 {
		return 0, models.MissingData(op, "no dividend history")
	}
	if !(price > 0) || math.IsInf(price, 0) {
		return 0, models.InvalidArgument(op, "price must be positive, got %v", price)
	}
	dates := make([]time.Time, len(divs.Items))
	amounts := make([]float64, len(divs.Items))
	for i, d := range divs.Items {
		dates[i], amounts[i] = d.Time, d.Amount
	}
	annual := features.YearlySum(dates, amounts).Values
	expected := annual[len(annual)-1] * (1 + growthRate)
	return expected/price + growthRate, nil
}

// SimpleAverageReturn is the mean daily change across the last window prices.
func SimpleAverageReturn(s *models.PriceSeries, window int) (float64, error) {
	const op = "simple_average_return"
	if window <= 0 {
		return 0, models.InvalidArgument(op, "returns window must be positive, got %d", window)
	}
	prices, err := models.Prices(s)
	if err != nil {
		return 0, err
	}
	if len(prices) > window {
		prices = prices[len(prices)-window:]
	}
	changes := features.PctChange(prices)
	if len(changes) == 0 {
		return 0, models.MissingData(op, "need at least 2 prices, got %d", len(prices))
	}
	return features.Mean(changes), nil
}

// EWMAReturn is the latest exponentially weighted mean of daily changes with
// span window and no bias adjustment.
func EWMAReturn(s *models.PriceSeries, span int) (float64, error) {
	const op = "ewma_return"
	if span <= 0 {
		return 0, models.InvalidArgument(op, "span must be positive, got %d", span)
	}
	prices, err := models.Prices(s)
	if err != nil {
		return 0, err
	}
	changes := features.PctChange(prices)
	if len(changes) == 0 {
		return 0, models.MissingData(op, "need at least 2 prices, got %d", len(prices))
	}
	return features.EWMLast(changes, float64(span)), nil
}

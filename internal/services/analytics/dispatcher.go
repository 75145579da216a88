package analytics

import (
	"MonteSim/internal/domain/models"
)

// DefaultReturnsWindow is the number of trading days used by the average-based
// estimators when none is configured.
const DefaultReturnsWindow = 150

// EstimateInput carries everything an expected-return computation may need.
// Market and RiskFree are only read by CAPM, Dividends only by DDM.
type EstimateInput struct {
	Method    models.ReturnMethod
	Asset     *models.PriceSeries
	Dividends *models.DividendSeries
	Market    *models.PriceSeries
	RiskFree  *models.PriceSeries

	// EndIndex limits every series as a slice [:EndIndex] would. Zero means the
	// full series; backtests pass the negated test window length.
	EndIndex      int
	ReturnsWindow int
}

// ComputeExpectedReturn runs the estimator selected by in.Method on series
// truncated to in.EndIndex, so nothing past that point reaches the estimate.
func ComputeExpectedReturn(in EstimateInput) (models.Estimate, error) {
	const op = "compute_expected_return"
	if in.Asset == nil {
		return models.Estimate{}, models.InvalidInput(op, "asset series is required")
	}
	window := in.ReturnsWindow
	if window == 0 {
		window = DefaultReturnsWindow
	}
	asset := in.Asset.Truncate(in.EndIndex)
	est := models.Estimate{Method: in.Method}

	switch in.Method {
	case models.MethodDividendDiscount:
		last, ok := asset.Last()
		if !ok {
			return est, models.MissingData(op, "no prices left before end index %d", in.EndIndex)
		}
		prices, err := models.Prices(asset)
		if err != nil {
			return est, err
		}
		if in.Dividends.Len() == 0 {
			return est, models.MissingData(op, "no dividend history for %q", asset.Symbol)
		}
		divs := in.Dividends.Until(last.Time)
		g, err := DividendGrowthRate(divs)
		if err != nil {
			return est, err
		}
		v, err := DDMReturn(divs, prices[len(prices)-1], g)
		if err != nil {
			return est, err
		}
		est.Value, est.GrowthRate = v, &g

	case models.MethodCAPM:
		if in.Market == nil || in.RiskFree == nil {
			return est, models.InvalidInput(op, "CAPM needs market and risk-free series")
		}
		market := in.Market.Truncate(in.EndIndex)
		beta, err := Beta(asset, market)
		if err != nil {
			return est, err
		}
		rm, err := AnnualMarketReturn(market)
		if err != nil {
			return est, err
		}
		rf, err := RiskFreeRate(in.RiskFree.Truncate(in.EndIndex))
		if err != nil {
			return est, err
		}
		est.Value = CAPMReturn(beta, rm, rf)
		est.Beta, est.MarketReturn, est.RiskFreeRate = &beta, &rm, &rf

	case models.MethodSimpleAverage:
		v, err := SimpleAverageReturn(asset, window)
		if err != nil {
			return est, err
		}
		est.Value = v

	case models.MethodExponentialWeightedAverage:
		v, err := EWMAReturn(asset, window)
		if err != nil {
			return est, err
		}
		est.Value = v

	default:
		return est, models.InvalidArgument(op, "unknown return method %d", int(in.Method))
	}
	return est, nil
}

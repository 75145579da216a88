package usecase

import (
	"strings"

	"MonteSim/internal/domain/models"
)

// ParamsFromRequest maps a validated request onto run parameters. Symbols are
// upper-cased the way the data providers list them.
func ParamsFromRequest(req models.SimulationRequest) (RunParams, error) {
	method, err := models.ParseReturnMethod(req.Method)
	if err != nil {
		return RunParams{}, err
	}
	return RunParams{
		Symbol:           strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Period:           req.Period,
		Method:           method,
		MarketSymbol:     strings.ToUpper(strings.TrimSpace(req.MarketSymbol)),
		RiskFreeSymbol:   strings.ToUpper(strings.TrimSpace(req.RiskFreeSymbol)),
		HorizonMonths:    req.HorizonMonths,
		Simulations:      req.Simulations,
		ReturnsWindow:    req.ReturnsWindow,
		VolatilityWindow: float64(req.VolatilityWindow),
		Seed:             req.Seed,
	}, nil
}

package models

// Requests accepted by the simulation HTTP endpoints.

type SimulationRequest struct {
	Symbol           string  `query:"symbol" json:"symbol" validate:"notblank"`
	Period           string  `query:"period" json:"period" default:"5y" validate:"oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max"`
	Method           string  `query:"method" json:"method" default:"sma" validate:"oneof=ddm capm sma ewma"`
	MarketSymbol     string  `query:"market_symbol" json:"market_symbol" default:"^GSPC" validate:"notblank"`
	RiskFreeSymbol   string  `query:"risk_free_symbol" json:"risk_free_symbol" default:"^TNX" validate:"notblank"`
	HorizonMonths    float64 `query:"horizon_months" json:"horizon_months" default:"12" validate:"gt=0,lte=120"`
	Simulations      int     `query:"simulations" json:"simulations" default:"1000" validate:"gte=1,lte=20000"`
	ReturnsWindow    int     `query:"returns_window" json:"returns_window" default:"150" validate:"gte=2,lte=5000"`
	VolatilityWindow int     `query:"volatility_window" json:"volatility_window" default:"30" validate:"gte=2,lte=5000"`
	Seed             *uint64 `query:"seed" json:"seed,omitempty"`
}

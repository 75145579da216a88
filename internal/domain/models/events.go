package models

import "time"

// RunEvent is the wire form of a RunSnapshot, used by the API, the websocket
// feed and the Kafka topic. Paths and figures are left out.
type RunEvent struct {
	Kind           RunKind   `json:"kind"`
	State          string    `json:"state"`
	Symbol         string    `json:"symbol"`
	Period         string    `json:"period"`
	Method         string    `json:"method,omitempty"`
	ExpectedReturn *float64  `json:"expected_return,omitempty"`
	Volatility     *float64  `json:"volatility,omitempty"`
	Beta           *float64  `json:"beta,omitempty"`
	MarketReturn   *float64  `json:"market_return,omitempty"`
	RiskFreeRate   *float64  `json:"risk_free_rate,omitempty"`
	GrowthRate     *float64  `json:"growth_rate,omitempty"`
	HorizonMonths  float64   `json:"horizon_months,omitempty"`
	Summary        *Summary  `json:"summary,omitempty"`
	HasChart       bool      `json:"has_chart"`
	Error          string    `json:"error,omitempty"`
	FinishedAt     time.Time `json:"finished_at"`
}

// NewRunEvent converts a snapshot. Assumptions are only reported for
// published runs.
func NewRunEvent(s RunSnapshot) RunEvent {
	ev := RunEvent{
		Kind:       s.Kind,
		State:      s.State.String(),
		Symbol:     s.Symbol,
		Period:     s.Period,
		Summary:    s.Summary,
		HasChart:   s.Figure != nil,
		Error:      s.Err,
		FinishedAt: s.FinishedAt,
	}
	if s.Method.Valid() {
		ev.Method = s.Method.Key()
	}
	if s.State == StatePublished {
		er, vol := s.ExpectedReturn, s.Volatility
		ev.ExpectedReturn, ev.Volatility = &er, &vol
		ev.Beta, ev.MarketReturn, ev.RiskFreeRate, ev.GrowthRate = s.Beta, s.MarketReturn, s.RiskFreeRate, s.GrowthRate
	}
	if s.Result != nil {
		ev.HorizonMonths = s.Result.HorizonMonths
	}
	return ev
}

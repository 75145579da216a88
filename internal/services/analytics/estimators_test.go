package analytics

import (
	"testing"
	"time"

	"MonteSim/internal/domain/models"
)

func TestCAPMReturn(t *testing.T) {
	if got := CAPMReturn(1.2, 0.1, 0.03); !near(got, 0.03+1.2*0.07, 1e-15) {
		t.Fatalf("unexpected CAPM return %v", got)
	}
}

func TestSimpleAverageReturnScenario(t *testing.T) {
	s := growthSeries(t, 1300, 100, 0.0005)
	got, err := SimpleAverageReturn(s, 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(got, 0.0005, 1e-10) {
		t.Fatalf("expected ~0.0005, got %v", got)
	}
}

func TestSimpleAverageReturnUsesTrailingWindow(t *testing.T) {
	dates := weekdays(time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC), 4)
	s := mustSeries(t, "X", dates, []float64{1, 100, 110, 121})
	got, err := SimpleAverageReturn(s, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(got, 0.1, 1e-12) {
		t.Fatalf("expected 0.1 from the last 3 prices, got %v", got)
	}

	_, err = SimpleAverageReturn(s, 0)
	assertKind(t, err, models.ErrInvalidArgument)
	_, err = SimpleAverageReturn(s, 1)
	assertKind(t, err, models.ErrMissingData)
}

func TestEWMAReturn(t *testing.T) {
	got, err := EWMAReturn(growthSeries(t, 400, 100, 0.0005), 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(got, 0.0005, 1e-10) {
		t.Fatalf("expected ~0.0005, got %v", got)
	}

	dates := weekdays(time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC), 4)
	s := mustSeries(t, "X", dates, []float64{100, 110, 121, 121})
	// changes 0.1, 0.1, 0; span 3 => alpha 0.5
	got, err = EWMAReturn(s, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(got, 0.05, 1e-12) {
		t.Fatalf("expected 0.05, got %v", got)
	}
}

// monthly builds one observation per month so month-end resampling is exact.
func monthly(t *testing.T, symbol string, returns []float64) *models.PriceSeries {
	t.Helper()
	dates := make([]time.Time, len(returns)+1)
	values := make([]float64, len(returns)+1)
	dates[0] = time.Date(2018, 1, 15, 0, 0, 0, 0, time.UTC)
	values[0] = 100
	for i, r := range returns {
		dates[i+1] = dates[0].AddDate(0, i+1, 0)
		values[i+1] = values[i] * (1 + r)
	}
	return mustSeries(t, symbol, dates, values)
}

func TestBeta(t *testing.T) {
	mr := []float64{0.02, -0.01, 0.03, -0.02, 0.015, 0.005, -0.03, 0.04, 0.01, -0.005, 0.02, -0.015}
	ar := make([]float64, len(mr))
	for i, r := range mr {
		ar[i] = 2 * r
	}
	market := monthly(t, "^GSPC", mr)
	asset := monthly(t, "AAPL", ar)

	got, err := Beta(asset, market)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(got, 2, 1e-9) {
		t.Fatalf("expected beta 2, got %v", got)
	}

	self, err := Beta(market, market)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(self, 1, 1e-12) {
		t.Fatalf("expected beta 1 against itself, got %v", self)
	}

	_, err = Beta(nil, market)
	assertKind(t, err, models.ErrInvalidInput)
}

func TestBetaIgnoresMarketBeforeAssetStart(t *testing.T) {
	mr := []float64{0.5, -0.4, 0.02, -0.01, 0.03, -0.02, 0.015, 0.005}
	market := monthly(t, "^GSPC", mr)
	// asset starts two months later and mirrors the market from there
	asset := market.From(2)
	got, err := Beta(asset, market)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(got, 1, 1e-12) {
		t.Fatalf("expected beta 1, got %v", got)
	}
}

func quarterly(year int, amount float64) []models.Dividend {
	out := make([]models.Dividend, 4)
	for q := range out {
		out[q] = models.Dividend{Time: time.Date(year, time.Month(3*q+2), 10, 0, 0, 0, 0, time.UTC), Amount: amount}
	}
	return out
}

func TestDividendGrowthAndDDM(t *testing.T) {
	var items []models.Dividend
	items = append(items, quarterly(2019, 0.25)...)
	items = append(items, quarterly(2020, 0.275)...)
	items = append(items, quarterly(2021, 0.3025)...)
	divs := models.NewDividendSeries("KO", items)

	g, err := DividendGrowthRate(divs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(g, 0.1, 1e-12) {
		t.Fatalf("expected growth 0.1, got %v", g)
	}

	got, err := DDMReturn(divs, 50, g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 1.21*1.1/50 + 0.1
	if !near(got, want, 1e-12) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	_, err = DDMReturn(divs, 0, g)
	assertKind(t, err, models.ErrInvalidArgument)
}

func TestDividendGrowthWindow(t *testing.T) {
	annual := func(year int, amount float64) models.Dividend {
		return models.Dividend{Time: time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC), Amount: amount}
	}
	// a cut long before the trailing ten years must not reach the estimate
	items := []models.Dividend{annual(2005, 10)}
	for y := 2011; y <= 2021; y++ {
		items = append(items, annual(y, 1))
	}
	g, err := DividendGrowthRate(models.NewDividendSeries("KO", items))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(g, 0, 1e-12) {
		t.Fatalf("expected zero growth inside the window, got %v", g)
	}
}

func TestDividendGrowthMissing(t *testing.T) {
	_, err := DividendGrowthRate(models.NewDividendSeries("TSLA", nil))
	assertKind(t, err, models.ErrMissingData)
	_, err = DividendGrowthRate(models.NewDividendSeries("NEW", quarterly(2022, 1)))
	assertKind(t, err, models.ErrMissingData)
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordRun("forecast", "published")
	r.RecordRun("forecast", "published")
	r.RecordRun("backtest", "errored")
	r.RecordFetch("yahoo", true)
	r.RecordEstimate("AAPL", 0.12, 0.3)

	if got := testutil.ToFloat64(r.runsTotal.WithLabelValues("forecast", "published")); got != 2 {
		t.Fatalf("expected 2 published forecasts, got %v", got)
	}
	if got := testutil.ToFloat64(r.fetchesTotal.WithLabelValues("yahoo", "true")); got != 1 {
		t.Fatalf("expected 1 cached fetch, got %v", got)
	}
	if got := testutil.ToFloat64(r.volatility.WithLabelValues("AAPL")); got != 0.3 {
		t.Fatalf("expected volatility gauge 0.3, got %v", got)
	}
}

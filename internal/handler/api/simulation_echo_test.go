package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"MonteSim/internal/domain/models"
	"MonteSim/internal/usecase"

	"github.com/labstack/echo/v4"
)

type fakeRunner struct {
	got  usecase.RunParams
	snap models.RunSnapshot
	err  error
	msg  string
}

func (f *fakeRunner) RunForecast(_ context.Context, p usecase.RunParams) (models.RunSnapshot, error) {
	f.got = p
	return f.snap, f.err
}

func (f *fakeRunner) RunBacktest(_ context.Context, p usecase.RunParams) (models.RunSnapshot, error) {
	f.got = p
	return f.snap, f.err
}

func (f *fakeRunner) State() models.RunState { return f.snap.State }

func (f *fakeRunner) LastSnapshot() models.RunSnapshot { return f.snap }

func (f *fakeRunner) ConsumeError() (string, bool) {
	msg := f.msg
	f.msg = ""
	return msg, msg != ""
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func do(t *testing.T, r *fakeRunner, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	e := echo.New()
	NewSimulationEchoHandler(nil, r).RegisterRoutes(e)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func TestForecastAppliesDefaults(t *testing.T) {
	r := &fakeRunner{snap: models.RunSnapshot{Kind: models.RunForecast, State: models.StatePublished, Symbol: "AAPL", Method: models.MethodSimpleAverage, ExpectedReturn: 0.1}}
	rec, env := do(t, r, http.MethodPost, "/api/forecast", `{"symbol":" aapl "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if r.got.Symbol != "AAPL" || r.got.Period != "5y" || r.got.Method != models.MethodSimpleAverage ||
		r.got.HorizonMonths != 12 || r.got.Simulations != 1000 || r.got.MarketSymbol != "^GSPC" {
		t.Fatalf("unexpected params %+v", r.got)
	}
	var ev models.RunEvent
	if err := json.Unmarshal(env.Data, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.State != "published" || ev.ExpectedReturn == nil || *ev.ExpectedReturn != 0.1 {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestForecastValidation(t *testing.T) {
	r := &fakeRunner{}
	rec, _ := do(t, r, http.MethodPost, "/api/forecast", `{"symbol":"  ","method":"capm"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a blank symbol, got %d", rec.Code)
	}
	rec, _ = do(t, r, http.MethodPost, "/api/backtest", `{"symbol":"AAPL","method":"magic"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown method, got %d", rec.Code)
	}
}

func TestRunErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		prefix string
	}{
		{models.DomainError("Chosen time period must be greater than investment horizon for training data comparison."), http.StatusUnprocessableEntity, usecase.ErrorPrefix},
		{models.UpstreamFetch("Failed to download ZZZZ for period 5y", nil), http.StatusBadGateway, "Failed to download"},
		{models.MissingData("beta", "not enough data"), http.StatusUnprocessableEntity, usecase.ErrorPrefix},
		{errors.New("boom"), http.StatusInternalServerError, usecase.ErrorPrefix},
	}
	for _, c := range cases {
		r := &fakeRunner{err: c.err}
		rec, env := do(t, r, http.MethodPost, "/api/backtest", `{"symbol":"AAPL"}`)
		if rec.Code != c.status {
			t.Fatalf("%v: expected %d, got %d", c.err, c.status, rec.Code)
		}
		var errs []struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(env.Data, &errs); err != nil || len(errs) != 1 {
			t.Fatalf("decode errors %s: %v", env.Data, err)
		}
		if !strings.HasPrefix(errs[0].Message, c.prefix) {
			t.Fatalf("expected message starting with %q, got %q", c.prefix, errs[0].Message)
		}
	}
}

func TestChartAndErrorEndpoints(t *testing.T) {
	r := &fakeRunner{}
	rec, _ := do(t, r, http.MethodGet, "/api/chart", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any chart, got %d", rec.Code)
	}

	r.snap = models.RunSnapshot{Kind: models.RunForecast, State: models.StatePublished, Figure: &models.Figure{ContentType: "image/png", Data: []byte("png")}}
	rec, _ = do(t, r, http.MethodGet, "/api/chart", "")
	if rec.Code != http.StatusOK || rec.Header().Get(echo.HeaderContentType) != "image/png" || rec.Body.String() != "png" {
		t.Fatalf("unexpected chart response %d %s", rec.Code, rec.Header().Get(echo.HeaderContentType))
	}

	r.msg = "An exception occurred: x"
	rec, _ = do(t, r, http.MethodGet, "/api/error", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pending error, got %d", rec.Code)
	}
	rec, _ = do(t, r, http.MethodGet, "/api/error", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected error to be consumed, got %d", rec.Code)
	}
}

func TestCatalog(t *testing.T) {
	rec, env := do(t, &fakeRunner{}, http.MethodGet, "/api/catalog", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var cat catalogResponse
	if err := json.Unmarshal(env.Data, &cat); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cat.Methods["Capital Asset Pricing Model"] != "capm" || cat.Periods["Last 5 years"] != "5y" {
		t.Fatalf("unexpected catalog %+v", cat)
	}
}

package api

import (
	"context"
	"errors"
	"time"

	"MonteSim/internal/domain/models"
	"MonteSim/internal/service/metrics"
	"MonteSim/internal/usecase"
	xhttp "MonteSim/pkg/http"
	xlogger "MonteSim/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Runner is the part of the simulation runner the HTTP layer drives.
type Runner interface {
	RunForecast(ctx context.Context, p usecase.RunParams) (models.RunSnapshot, error)
	RunBacktest(ctx context.Context, p usecase.RunParams) (models.RunSnapshot, error)
	State() models.RunState
	LastSnapshot() models.RunSnapshot
	ConsumeError() (string, bool)
}

// SimulationEchoHandler exposes forecasts and backtests over HTTP.
type SimulationEchoHandler struct {
	logger *xlogger.Logger
	runner Runner
}

func NewSimulationEchoHandler(logger *xlogger.Logger, runner Runner) *SimulationEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &SimulationEchoHandler{logger: logger, runner: runner}
}

func (h *SimulationEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/forecast", h.Forecast)
	g.POST("/backtest", h.Backtest)
	g.GET("/state", h.State)
	g.GET("/error", h.Error)
	g.GET("/chart", h.Chart)
	g.GET("/catalog", h.Catalog)
}

type runFunc func(ctx context.Context, p usecase.RunParams) (models.RunSnapshot, error)

func (h *SimulationEchoHandler) Forecast(c echo.Context) error {
	return h.run(c, "forecast", h.runner.RunForecast)
}

func (h *SimulationEchoHandler) Backtest(c echo.Context) error {
	return h.run(c, "backtest", h.runner.RunBacktest)
}

func (h *SimulationEchoHandler) run(c echo.Context, endpoint string, fn runFunc) error {
	start := time.Now()
	defer func() {
		metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req := &models.SimulationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues(endpoint, "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	params, err := usecase.ParamsFromRequest(*req)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint, "validation").Inc()
		return xhttp.AppErrorResponse(c, toAppError(err))
	}

	snap, err := fn(c.Request().Context(), params)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint, models.KindOf(err).String()).Inc()
		h.logger.Warn(endpoint+" run failed",
			xlogger.String("symbol", params.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, models.NewRunEvent(snap))
}

type stateResponse struct {
	State string           `json:"state"`
	Last  *models.RunEvent `json:"last,omitempty"`
}

func (h *SimulationEchoHandler) State(c echo.Context) error {
	resp := stateResponse{State: h.runner.State().String()}
	if last := h.runner.LastSnapshot(); last.Kind != "" {
		ev := models.NewRunEvent(last)
		resp.Last = &ev
	}
	return xhttp.SuccessResponse(c, resp)
}

// Error returns the pending error message once, then clears it.
func (h *SimulationEchoHandler) Error(c echo.Context) error {
	msg, ok := h.runner.ConsumeError()
	if !ok {
		return xhttp.NoContentResponse(c)
	}
	return xhttp.SuccessResponse(c, map[string]string{"message": msg})
}

func (h *SimulationEchoHandler) Chart(c echo.Context) error {
	last := h.runner.LastSnapshot()
	if last.Figure == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no chart has been rendered yet"))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.BlobResponse(c, last.Figure.ContentType, last.Figure.Data)
}

type catalogResponse struct {
	Periods            map[string]string `json:"periods"`
	Methods            map[string]string `json:"methods"`
	MarketIndexes      map[string]string `json:"market_indexes"`
	RiskFreeSecurities map[string]string `json:"risk_free_securities"`
}

func (h *SimulationEchoHandler) Catalog(c echo.Context) error {
	methods := make(map[string]string, len(models.AllMethods()))
	for _, m := range models.AllMethods() {
		methods[m.String()] = m.Key()
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.SuccessResponse(c, catalogResponse{
		Periods:            models.Periods,
		Methods:            methods,
		MarketIndexes:      models.MarketIndexes,
		RiskFreeSecurities: models.RiskFreeSecurities,
	})
}

// toAppError maps run failures onto HTTP errors carrying the user-facing message.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	msg := usecase.Message(err)
	var ae *xhttp.AppError
	switch models.KindOf(err) {
	case models.KindInvalidArgument, models.KindInvalidInput:
		ae = xhttp.BadRequestError(msg)
	case models.KindMissingData:
		ae = xhttp.UnprocessableError("ERR_MISSING_DATA", msg)
	case models.KindDomain:
		ae = xhttp.UnprocessableError("ERR_DOMAIN", msg)
	case models.KindUpstreamFetch:
		ae = xhttp.BadGatewayError(msg)
	default:
		ae = xhttp.InternalError(msg)
	}
	return ae.WithError(err)
}

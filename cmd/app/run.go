package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"MonteSim/internal/di"
	"MonteSim/internal/domain/models"
	"MonteSim/internal/usecase"
	"MonteSim/pkg/config"
	xhttp "MonteSim/pkg/http"

	"github.com/google/subcommands"
)

// runCmd runs a single forecast or backtest and prints its summary.
type runCmd struct {
	configPath *string
	kind       string

	req  models.SimulationRequest
	seed int64
	out  string
}

func (c *runCmd) Name() string { return c.kind }

func (c *runCmd) Synopsis() string {
	if c.kind == string(models.RunBacktest) {
		return "simulate the held-out tail of the history and compare with the actual price"
	}
	return "simulate price paths from the last close"
}

func (c *runCmd) Usage() string {
	return fmt.Sprintf(`montesim [-config <file>] %s -symbol <ticker> [-method sma|ewma|capm|ddm] [-o chart.png]

  Unset flags fall back to the simulation section of the config.
`, c.kind)
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.req.Symbol, "symbol", "", "asset ticker")
	f.StringVar(&c.req.Period, "period", "", "history period (1y, 5y, max, ...)")
	f.StringVar(&c.req.Method, "method", "", "expected return method")
	f.StringVar(&c.req.MarketSymbol, "market", "", "market index ticker for capm")
	f.StringVar(&c.req.RiskFreeSymbol, "riskfree", "", "risk-free yield ticker for capm")
	f.Float64Var(&c.req.HorizonMonths, "horizon", 0, "horizon in months")
	f.IntVar(&c.req.Simulations, "n", 0, "number of simulated paths")
	f.IntVar(&c.req.ReturnsWindow, "returns-window", 0, "trailing window for sma and ewma")
	f.IntVar(&c.req.VolatilityWindow, "vol-window", 0, "trailing window for volatility")
	f.Int64Var(&c.seed, "seed", -1, "random seed, negative for a fresh one")
	f.StringVar(&c.out, "o", "", "write the chart PNG to this file")
}

func (c *runCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.LoadWithEnv(*c.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	req := c.request(cfg)
	if errs := xhttp.ValidateStruct(ctx, &req); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "Error: %s: %s\n", e.Field, e.Message)
		}
		return subcommands.ExitUsageError
	}
	params, err := usecase.ParamsFromRequest(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	runner, cleanup, err := di.InitializeRunner(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer cleanup()

	var snap models.RunSnapshot
	if c.kind == string(models.RunBacktest) {
		snap, err = runner.RunBacktest(ctx, params)
	} else {
		snap, err = runner.RunForecast(ctx, params)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, usecase.Message(err))
		return subcommands.ExitFailure
	}

	fmt.Print(formatReport(snap))

	if c.out != "" && snap.Figure != nil {
		if err := os.WriteFile(c.out, snap.Figure.Data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: write chart: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("chart written to %s\n", c.out)
	}
	return subcommands.ExitSuccess
}

// request fills unset flags from the config. Anything still unset gets the
// request defaults during validation.
func (c *runCmd) request(cfg *config.Config) models.SimulationRequest {
	req := c.req
	s := cfg.Simulation
	if req.Period == "" {
		req.Period = s.Period
	}
	if req.Method == "" {
		req.Method = s.Method
	}
	if req.MarketSymbol == "" {
		req.MarketSymbol = s.MarketSymbol
	}
	if req.RiskFreeSymbol == "" {
		req.RiskFreeSymbol = s.RiskFreeSymbol
	}
	if req.HorizonMonths == 0 {
		req.HorizonMonths = s.HorizonMonths
	}
	if req.Simulations == 0 {
		req.Simulations = s.Simulations
	}
	if req.ReturnsWindow == 0 {
		req.ReturnsWindow = s.ReturnsWindow
	}
	if req.VolatilityWindow == 0 {
		req.VolatilityWindow = int(s.VolatilityWindow)
	}
	if c.seed >= 0 {
		seed := uint64(c.seed)
		req.Seed = &seed
	}
	return req
}

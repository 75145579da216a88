package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"MonteSim/internal/domain/models"

	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

var (
	money      = accounting.Accounting{Symbol: "$", Precision: 2}
	bandLabels = []string{"-2σ", "-1σ", "median", "+1σ", "+2σ"}
)

func percent(v float64) string {
	return decimal.NewFromFloat(v).Shift(2).StringFixed(2) + "%"
}

func ratio(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(4)
}

// formatReport renders the assumptions and final step of a published run as
// an aligned table.
func formatReport(snap models.RunSnapshot) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Symbol\t%s\n", snap.Symbol)
	fmt.Fprintf(w, "Run\t%s (%s history)\n", snap.Kind, snap.Period)
	fmt.Fprintf(w, "Method\t%s\n", snap.Method)
	fmt.Fprintf(w, "Expected return\t%s\n", percent(snap.ExpectedReturn))
	fmt.Fprintf(w, "Volatility\t%s\n", percent(snap.Volatility))
	if snap.Beta != nil {
		fmt.Fprintf(w, "Beta\t%s\n", ratio(*snap.Beta))
	}
	if snap.MarketReturn != nil {
		fmt.Fprintf(w, "Market return\t%s\n", percent(*snap.MarketReturn))
	}
	if snap.RiskFreeRate != nil {
		fmt.Fprintf(w, "Risk-free rate\t%s\n", percent(*snap.RiskFreeRate))
	}
	if snap.GrowthRate != nil {
		fmt.Fprintf(w, "Dividend growth\t%s\n", percent(*snap.GrowthRate))
	}

	if s := snap.Summary; s != nil {
		fmt.Fprintf(w, "Paths\t%d x %d steps\n", s.Runs, s.Steps)
		fmt.Fprintf(w, "Initial price\t%s\n", money.FormatMoney(s.InitialPrice))
		fmt.Fprintf(w, "Final mean\t%s\n", money.FormatMoney(s.Mean))
		fmt.Fprintf(w, "Final std dev\t%s\n", money.FormatMoney(s.StdDev))
		for i, q := range s.Quantiles {
			if i < len(bandLabels) {
				fmt.Fprintf(w, "Final %s\t%s\n", bandLabels[i], money.FormatMoney(q))
			}
		}
		if s.Actual != nil {
			fmt.Fprintf(w, "Actual price\t%s\n", money.FormatMoney(*s.Actual))
			if s.Mean != 0 {
				fmt.Fprintf(w, "Actual vs mean\t%s\n", percent(*s.Actual/s.Mean-1))
			}
		}
	}

	_ = w.Flush()
	return sb.String()
}

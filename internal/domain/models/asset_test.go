package models

import "testing"

func TestCatalogSymbolsAreUnique(t *testing.T) {
	for name, catalog := range map[string]map[string]string{
		"market indexes":       MarketIndexes,
		"risk-free securities": RiskFreeSecurities,
	} {
		seen := map[string]string{}
		for label, symbol := range catalog {
			if !ValidSymbol(symbol) {
				t.Fatalf("%s: %q has no symbol", name, label)
			}
			if prev, ok := seen[symbol]; ok {
				t.Fatalf("%s: %q and %q share symbol %q", name, prev, label, symbol)
			}
			seen[symbol] = label
		}
	}
	if MarketIndexes["S&P IPSA"] != "^IPSA" || MarketIndexes["Índice de Precios y Cotizaciones"] != "^MXX" {
		t.Fatalf("expected Latin American benchmarks in the market catalog")
	}
}

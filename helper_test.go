package rebal

import "math"

// row builds a holding for tests, with derived columns computed.
func row(account, symbol, name string, quantity, price, averageCost float64) Holding {
	return NewHolding(account, name, symbol, quantity, price, averageCost)
}

// approx compares floats to the cent; trade math is exact well beyond that.
func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// findTrade returns the first trade for (account, identifier), if any.
func findTrade(trades []Trade, account, identifier string) (Trade, bool) {
	for _, t := range trades {
		if t.Account == account && t.Identifier == identifier {
			return t, true
		}
	}
	return Trade{}, false
}

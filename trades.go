package rebal

import (
	"math"

	"github.com/shopspring/decimal"
)

// Trade actions. A zero share delta counts as a buy by convention, but
// zero-delta trades are filtered out before they ever reach the trade list.
const (
	Buy  = "BUY"
	Sell = "SELL"
)

// Trade is one generated order: a signed share delta for a single identifier
// within a single account. Dollars is always SharesDelta * Price, so buys are
// positive flow and sells negative.
type Trade struct {
	Account      string
	TaxStatus    string
	Identifier   string
	Sleeve       string
	Action       string
	SharesDelta  float64
	Price        float64
	AverageCost  float64
	DeltaDollars float64
	CapGain      float64 // realized gain estimate; 0 for buys
}

// actionFor derives the action from a signed share count.
func actionFor(shares float64) string {
	if shares >= 0 {
		return Buy
	}
	return Sell
}

// roundShares converts a dollar delta to a discrete share count. Cash-like
// instruments round to hundredths of a share, everything else to tenths (a
// stand-in for whole/fractional-share trading conventions); ties round half
// to even. Non-finite or non-positive prices yield zero shares.
func roundShares(dollars, price float64, cashLike bool) float64 {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0
	}
	places := int32(1)
	if cashLike {
		places = 2
	}
	sh, _ := decimal.NewFromFloat(dollars / price).RoundBank(places).Float64()
	return sh
}

// noiseFloor is the minimum absolute dollar delta worth trading; anything
// smaller is rounding noise from the allocation math.
const noiseFloor = 1.0

// synthesize turns sleeve deltas into trades, account by account in sorted
// order. Within an account all sleeve trades are generated first (sorted
// sleeve order), then the pass-1 cash balancing trade, which must see every
// prior trade of its account. The per-account net flow is carried as a local
// accumulator rather than re-summed from the growing trade list.
func (s *snapshot) synthesize(targets Weights, tolerance float64, diag *Diagnostics) []Trade {
	var trades []Trade

	for _, account := range s.accounts {
		if s.totals[account] <= 0 {
			diag.skip(account, "", "", s.totals[account], SkipZeroValueAccount)
			continue
		}

		netFlow := 0.0
		for _, d := range s.deltas(account, targets) {
			t, ok := s.sleeveTrade(account, d, diag)
			if !ok {
				continue
			}
			trades = append(trades, t)
			netFlow += t.DeltaDollars
		}

		if t, ok := s.cashBalance(account, netFlow, tolerance, diag); ok {
			trades = append(trades, t)
		}
	}
	return trades
}

// sleeveTrade builds the trade for one sleeve delta, applying the skip rules:
// unresolvable identifier, invalid price, sub-dollar delta, zero rounded
// shares, and the sell clamp against currently held shares.
func (s *snapshot) sleeveTrade(account string, d sleeveDelta, diag *Diagnostics) (Trade, bool) {
	ident := s.identifierFor(account, d.sleeve)
	if ident == "" {
		diag.skip(account, d.sleeve, "", d.dollars, SkipNoIdentifier)
		return Trade{}, false
	}

	px := s.price(ident)
	if px <= 0 || math.IsNaN(px) || math.IsInf(px, 0) {
		diag.skip(account, d.sleeve, ident, d.dollars, SkipInvalidPrice)
		return Trade{}, false
	}

	if math.Abs(d.dollars) < noiseFloor {
		diag.skip(account, d.sleeve, ident, d.dollars, SkipBelowNoise)
		return Trade{}, false
	}

	sh := roundShares(d.dollars, px, s.conv.IsCashLike(ident))
	if sh == 0 {
		diag.skip(account, d.sleeve, ident, d.dollars, SkipZeroShares)
		return Trade{}, false
	}

	// Sells cannot exceed the shares this account actually holds.
	if d.dollars < 0 {
		held := s.heldShares(account, ident)
		sh = -math.Min(math.Abs(sh), math.Abs(held))
		if sh == 0 {
			diag.skip(account, d.sleeve, ident, d.dollars, SkipNoHeldShares)
			return Trade{}, false
		}
	}

	avgCost := s.weightedAverageCost(account, ident)
	action := actionFor(sh)
	capGain := 0.0
	if action == Sell {
		capGain = (px - avgCost) * math.Abs(sh)
	}

	return Trade{
		Account:      account,
		TaxStatus:    s.accountTaxStatus(account),
		Identifier:   ident,
		Sleeve:       d.sleeve,
		Action:       action,
		SharesDelta:  sh,
		Price:        px,
		AverageCost:  avgCost,
		DeltaDollars: sh * px,
		CapGain:      capGain,
	}, true
}

// cashBalance is pass 1 of the cash balancer: if the account's net flow from
// its sleeve trades exceeds the tolerance, offset it with a same-account cash
// trade at the canonical Cash identifier (or the Cash fallback proxy).
func (s *snapshot) cashBalance(account string, netFlow, tolerance float64, diag *Diagnostics) (Trade, bool) {
	if math.Abs(netFlow) <= tolerance {
		return Trade{}, false
	}

	ident := s.identifierFor(account, SleeveCash)
	if ident == "" {
		ident = "BIL"
	}
	px := s.priceOrOne(ident)
	if px <= 0 || math.IsNaN(px) || math.IsInf(px, 0) {
		diag.skip(account, SleeveCash, ident, -netFlow, SkipInvalidPrice)
		return Trade{}, false
	}

	sh := roundShares(-netFlow, px, s.conv.IsCashLike(ident))
	if sh == 0 {
		diag.skip(account, SleeveCash, ident, -netFlow, SkipZeroShares)
		return Trade{}, false
	}

	return Trade{
		Account:      account,
		TaxStatus:    s.accountTaxStatus(account),
		Identifier:   ident,
		Sleeve:       SleeveCash,
		Action:       actionFor(sh),
		SharesDelta:  sh,
		Price:        px,
		AverageCost:  0,
		DeltaDollars: sh * px,
		CapGain:      0,
	}, true
}

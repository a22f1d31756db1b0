package rebal

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// tradeKey identifies the aggregation group of a trade row.
type tradeKey struct {
	account    string
	identifier string
	taxStatus  string
	sleeve     string
}

// aggregate merges all trade rows sharing an (account, identifier, tax status,
// sleeve) key into one net trade: share deltas, dollars and capital gains are
// summed; price and average cost take the last-seen value (they are
// near-identical across duplicates of the same identifier at one point in
// time); the action is recomputed from the sign of the summed shares. Output
// is sorted by key.
func aggregate(trades []Trade) []Trade {
	grouped := make(map[tradeKey]Trade)
	order := make([]tradeKey, 0, len(trades))

	for _, t := range trades {
		key := tradeKey{t.Account, t.Identifier, t.TaxStatus, t.Sleeve}
		agg, ok := grouped[key]
		if !ok {
			order = append(order, key)
			grouped[key] = t
			continue
		}
		agg.SharesDelta += t.SharesDelta
		agg.DeltaDollars += t.DeltaDollars
		agg.CapGain += t.CapGain
		agg.Price = t.Price // last write wins
		agg.AverageCost = t.AverageCost
		grouped[key] = agg
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.account != b.account {
			return a.account < b.account
		}
		if a.identifier != b.identifier {
			return a.identifier < b.identifier
		}
		if a.taxStatus != b.taxStatus {
			return a.taxStatus < b.taxStatus
		}
		return a.sleeve < b.sleeve
	})

	out := make([]Trade, 0, len(order))
	for _, key := range order {
		t := grouped[key]
		t.Action = actionFor(t.SharesDelta)
		out = append(out, t)
	}
	return out
}

// accountFlows sums the net dollar flow per account over a trade list.
func accountFlows(trades []Trade) map[string]float64 {
	flows := make(map[string]float64)
	for _, t := range trades {
		flows[t.Account] += t.DeltaDollars
	}
	return flows
}

// balanceResiduals is pass 2 of the cash balancer. Aggregation can shift an
// account's net flow after the in-loop pass-1 trades (which only saw the
// trades accumulated at that point), so the flow is recomputed from the
// aggregated table and any account still out of tolerance gets one more
// offset: a cash-like identifier the account actually holds when possible,
// else the Cash fallback proxy, always at two-decimal rounding. The returned
// trades must be merged back through aggregate by the caller.
//
// Neither pass drives the flow to exactly zero; the bounded residual that can
// survive both passes is reported through the residual map instead.
func (s *snapshot) balanceResiduals(trades []Trade, tolerance float64, diag *Diagnostics) []Trade {
	flows := accountFlows(trades)

	accounts := make([]string, 0, len(flows))
	for account := range flows {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	var extra []Trade
	for _, account := range accounts {
		flow := flows[account]
		if math.Abs(flow) <= tolerance {
			continue
		}

		ident := s.cashIdentifier(account)
		px := s.priceOrOne(ident)
		if px <= 0 || math.IsNaN(px) || math.IsInf(px, 0) {
			diag.skip(account, SleeveCash, ident, -flow, SkipInvalidPrice)
			continue
		}

		sh, _ := decimal.NewFromFloat(-flow / px).RoundBank(2).Float64()
		if sh == 0 {
			diag.skip(account, SleeveCash, ident, -flow, SkipZeroShares)
			continue
		}

		extra = append(extra, Trade{
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
		})
	}
	return extra
}

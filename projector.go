package rebal

import (
	"math"
	"sort"
)

// closedPositionEpsilon: positions whose post-trade quantity magnitude falls
// under this threshold are considered fully closed and dropped.
const closedPositionEpsilon = 1e-9

// project applies the aggregated trades' net share deltas to the holdings
// snapshot and returns the post-trade table plus the residual map.
//
// Identifiers traded into an account that holds no row for them get a
// synthesized placeholder first: zero quantity and basis, sleeve guessed by
// inverse lookup in the fallback-proxy table (US_Core when unknown), priced at
// the median observed price (1.0 when unobserved). Rows whose resulting
// quantity is (near) zero are dropped, and the derived columns recomputed.
//
// With no trades at all, the classified input rows come back unchanged with an
// empty residual map: an empty rebalance is a valid outcome, not an error.
func (s *snapshot) project(trades []Trade, tolerance float64) ([]Holding, map[string]float64) {
	after := append([]Holding(nil), s.rows...)
	if len(trades) == 0 {
		return after, map[string]float64{}
	}

	deltas := make(map[accountIdent]float64)
	for _, t := range trades {
		deltas[accountIdent{t.Account, t.Identifier}] += t.SharesDelta
	}

	have := make(map[accountIdent]bool, len(after))
	for _, h := range after {
		have[accountIdent{h.Account, h.ident()}] = true
	}

	// Placeholders for brand-new positions, appended in sorted key order.
	missing := make([]accountIdent, 0)
	for key := range deltas {
		if !have[key] {
			missing = append(missing, key)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		if missing[i].account != missing[j].account {
			return missing[i].account < missing[j].account
		}
		return missing[i].ident < missing[j].ident
	})
	for _, key := range missing {
		sleeve, ok := s.conv.sleeveForProxy(key.ident)
		if !ok {
			sleeve = SleeveUSCore
		}
		px := s.price(key.ident)
		if px <= 0 || math.IsNaN(px) || math.IsInf(px, 0) {
			px = 1.0
		}
		after = append(after, Holding{
			Account:   key.account,
			TaxStatus: s.conv.TaxStatus(key.account),
			Name:      key.ident,
			Symbol:    key.ident,
			Sleeve:    sleeve,
			Price:     px,
		})
	}

	// Each row of an (account, identifier) group receives the group's full net
	// delta, matching the grouped table update this projection reproduces.
	out := after[:0]
	for _, h := range after {
		h.Quantity += deltas[accountIdent{h.Account, h.ident()}]
		if math.Abs(h.Quantity) <= closedPositionEpsilon {
			continue
		}
		h.recompute()
		out = append(out, h)
	}

	return out, residuals(trades, tolerance)
}

// residuals reports the accounts whose net trading flow still exceeds the
// tolerance after both balancing passes. This is the sole error-visibility
// channel of the engine: an invariant violation surfaced, not swallowed.
func residuals(trades []Trade, tolerance float64) map[string]float64 {
	out := make(map[string]float64)
	for account, flow := range accountFlows(trades) {
		if math.Abs(flow) > tolerance {
			out[account] = flow
		}
	}
	return out
}

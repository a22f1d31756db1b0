package rebal

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Weights maps a sleeve to its target weight. Weights need not sum to one;
// they are normalized at the point of use.
type Weights map[string]float64

// sleeveDelta is the dollar move needed in one sleeve of one account.
type sleeveDelta struct {
	sleeve  string
	dollars float64
}

// investable returns the target weight vector restricted to tradeable sleeves:
// the illiquid sleeve is dropped and the remainder renormalized to sum to one.
// When the remaining weights sum to zero there is nothing to normalize by, so
// they are used as-is.
func investable(targets Weights) Weights {
	w := make(Weights, len(targets))
	vals := make([]float64, 0, len(targets))
	for sleeve, weight := range targets {
		if sleeve == SleeveIlliquid {
			continue
		}
		w[sleeve] = weight
		vals = append(vals, weight)
	}
	if sum := floats.Sum(vals); sum > 0 {
		for sleeve := range w {
			w[sleeve] /= sum
		}
	}
	return w
}

// deltas computes the per-sleeve dollar moves for one account, in sorted
// sleeve order.
//
// Target sizing is portfolio-wide, but each account rebalances only its own
// investable pool (total value minus illiquid value): this prevents phantom
// inter-account transfers while still tracking a single global target. The
// illiquid sleeve never appears in the result; its target is pinned to its
// current value.
func (s *snapshot) deltas(account string, targets Weights) []sleeveDelta {
	totalValue := s.totals[account]
	pool := totalValue - s.illiquid[account]
	if pool < 0 {
		pool = 0
	}

	w := investable(targets)

	// Union of currently-held sleeves and target sleeves, sorted for a
	// deterministic trade order.
	sleeveSet := make(map[string]bool)
	for sleeve := range w {
		sleeveSet[sleeve] = true
	}
	for key := range s.sleeveValues {
		if key.account == account {
			sleeveSet[key.sleeve] = true
		}
	}
	sleeves := make([]string, 0, len(sleeveSet))
	for sleeve := range sleeveSet {
		if sleeve == SleeveIlliquid {
			continue
		}
		sleeves = append(sleeves, sleeve)
	}
	sort.Strings(sleeves)

	out := make([]sleeveDelta, 0, len(sleeves))
	for _, sleeve := range sleeves {
		target := w[sleeve] * pool
		current := s.sleeveValues[accountSleeve{account, sleeve}]
		out = append(out, sleeveDelta{sleeve: sleeve, dollars: target - current})
	}
	return out
}

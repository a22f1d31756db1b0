package rebal

// DefaultCashTolerance is the per-account net-flow threshold, in dollars,
// under which no corrective cash trade is issued.
const DefaultCashTolerance = 100.0

// Plan is the result of one rebalancing run.
type Plan struct {
	// Trades holds at most one net trade per (account, identifier, sleeve,
	// tax status), in sorted key order.
	Trades []Trade
	// After is the projected holdings table once the trades are applied.
	After []Holding
	// Residuals maps each account whose net trading flow could not be
	// neutralized within tolerance to that leftover flow. Ideally empty.
	Residuals map[string]float64
	// Diagnostics records the candidate trades that were silently skipped.
	Diagnostics Diagnostics
}

// Rebalancer computes trade plans against a fixed set of conventions and a
// cash tolerance. It is stateless across runs and safe for reuse.
//
// A zero CashTolerance is honored: every nonzero net flow gets a corrective
// cash trade. Negative values select DefaultCashTolerance.
type Rebalancer struct {
	Conventions   *Conventions
	CashTolerance float64
}

// NewRebalancer returns a rebalancer with the built-in conventions and the
// default cash tolerance.
func NewRebalancer() *Rebalancer {
	return &Rebalancer{
		Conventions:   DefaultConventions(),
		CashTolerance: DefaultCashTolerance,
	}
}

// BuildTradesAndAfterHoldings computes the trades that move the holdings
// toward the target weights using the default conventions and tolerance. See
// Rebalancer.Build for the full contract.
func BuildTradesAndAfterHoldings(holdings []Holding, targets Weights) *Plan {
	return NewRebalancer().Build(holdings, targets)
}

// Build runs the full pipeline: classification, per-account delta
// computation, trade synthesis with in-loop cash balancing, aggregation, the
// second balancing pass over the aggregated table, and the holdings
// projection.
//
// Build never fails: malformed or degenerate rows cost at most their own
// trade, never the whole computation. The only failure signal is the residual
// map (and, for tests, the diagnostics record).
func (r *Rebalancer) Build(holdings []Holding, targets Weights) *Plan {
	conv := r.Conventions
	if conv == nil {
		conv = DefaultConventions()
	}
	tolerance := r.CashTolerance
	if tolerance < 0 {
		tolerance = DefaultCashTolerance
	}

	plan := &Plan{}
	snap := newSnapshot(holdings, conv)

	trades := snap.synthesize(targets, tolerance, &plan.Diagnostics)
	if len(trades) == 0 {
		plan.Trades = []Trade{}
		plan.After, plan.Residuals = snap.project(nil, tolerance)
		return plan
	}

	trades = aggregate(trades)

	// Aggregation can move an account's net flow away from what pass 1 saw;
	// the extra offsets are merged back so the one-row-per-key invariant holds.
	if extra := snap.balanceResiduals(trades, tolerance, &plan.Diagnostics); len(extra) > 0 {
		trades = aggregate(append(trades, extra...))
	}

	plan.Trades = trades
	plan.After, plan.Residuals = snap.project(trades, tolerance)
	return plan
}

package rebal

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// accountSleeve keys per-account, per-sleeve aggregates.
type accountSleeve struct {
	account string
	sleeve  string
}

// accountIdent keys per-account, per-identifier aggregates.
type accountIdent struct {
	account string
	ident   string
}

// costObs accumulates the per-row observations needed for the quantity
// weighted average cost of an (account, identifier) pair.
type costObs struct {
	costs      []float64
	quantities []float64
}

// snapshot is the grouped, read-only view of a holdings table that the engine
// queries repeatedly. All indexes are built with linear scans in newSnapshot;
// nothing here is recomputed per trade.
type snapshot struct {
	conv *Conventions

	// rows is the classified copy of the input: Sleeve filled in, TaxStatus
	// backfilled when the input column was empty across the whole table.
	rows []Holding

	accounts     []string                  // sorted account names
	totals       map[string]float64        // account -> total value
	illiquid     map[string]float64        // account -> illiquid value
	sleeveValues map[accountSleeve]float64 // current value per account and sleeve
	canonical    map[accountSleeve]string  // canonical identifier per account and sleeve
	held         map[accountIdent]float64  // total shares per account and identifier
	costs        map[accountIdent]*costObs // cost observations per account and identifier
	taxStatus    map[string]string         // account -> first-seen tax status
	cashIdent    map[string]string         // account -> first cash-like identifier held
	prices       map[string]float64        // identifier -> median observed price
}

// newSnapshot classifies the holdings and builds every index the engine needs.
func newSnapshot(holdings []Holding, conv *Conventions) *snapshot {
	s := &snapshot{
		conv:         conv,
		rows:         make([]Holding, len(holdings)),
		totals:       make(map[string]float64),
		illiquid:     make(map[string]float64),
		sleeveValues: make(map[accountSleeve]float64),
		canonical:    make(map[accountSleeve]string),
		held:         make(map[accountIdent]float64),
		costs:        make(map[accountIdent]*costObs),
		taxStatus:    make(map[string]string),
		cashIdent:    make(map[string]string),
		prices:       make(map[string]float64),
	}

	// The tax-status column is backfilled only when it is empty on every row:
	// a partially filled column is taken at face value.
	allEmpty := true
	for _, h := range holdings {
		if h.TaxStatus != "" {
			allEmpty = false
			break
		}
	}

	priceObs := make(map[string][]float64)
	sleeveIdentValue := make(map[accountSleeve]map[string]float64)

	for i, h := range holdings {
		h.Sleeve = conv.Sleeve(h.Symbol, h.Name)
		if allEmpty {
			h.TaxStatus = conv.TaxStatus(h.Account)
		}
		s.rows[i] = h

		acct, ident := h.Account, h.ident()
		s.totals[acct] += h.Value
		if conv.IsIlliquid(h.Symbol, h.Name) {
			s.illiquid[acct] += h.Value
		}
		s.sleeveValues[accountSleeve{acct, h.Sleeve}] += h.Value

		key := accountIdent{acct, ident}
		s.held[key] += h.Quantity
		obs := s.costs[key]
		if obs == nil {
			obs = &costObs{}
			s.costs[key] = obs
		}
		obs.costs = append(obs.costs, h.AverageCost)
		obs.quantities = append(obs.quantities, h.Quantity)

		priceObs[ident] = append(priceObs[ident], h.Price)

		if _, ok := s.taxStatus[acct]; !ok {
			s.taxStatus[acct] = h.TaxStatus
		}
		if _, ok := s.cashIdent[acct]; !ok && conv.IsCashLike(ident) {
			s.cashIdent[acct] = ident
		}

		grp := sleeveIdentValue[accountSleeve{acct, h.Sleeve}]
		if grp == nil {
			grp = make(map[string]float64)
			sleeveIdentValue[accountSleeve{acct, h.Sleeve}] = grp
		}
		grp[ident] += h.Value
	}

	for acct := range s.totals {
		s.accounts = append(s.accounts, acct)
	}
	sort.Strings(s.accounts)

	for key, group := range sleeveIdentValue {
		s.canonical[key] = largestIdent(group)
	}
	for ident, obs := range priceObs {
		s.prices[ident] = median(obs)
	}
	return s
}

// largestIdent picks the identifier with the largest summed value; ties break
// toward the lexicographically smallest identifier so the choice is stable.
func largestIdent(values map[string]float64) string {
	var best string
	bestValue := math.Inf(-1)
	for ident, v := range values {
		if v > bestValue || (v == bestValue && ident < best) {
			best, bestValue = ident, v
		}
	}
	return best
}

// median returns the midpoint of the observed values: the middle element for
// odd counts, the mean of the two middle elements for even counts.
func median(obs []float64) float64 {
	if len(obs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), obs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// identifierFor resolves the identifier used to express a sleeve's trade in an
// account: the canonical (largest-dollar) holding when the account already
// holds the sleeve, else the static fallback proxy. The empty string means the
// sleeve cannot be traded in this account.
func (s *snapshot) identifierFor(account, sleeve string) string {
	if ident, ok := s.canonical[accountSleeve{account, sleeve}]; ok {
		return ident
	}
	return s.conv.FallbackProxy[sleeve]
}

// price returns the median observed price for the identifier, or 0 when the
// identifier was never observed.
func (s *snapshot) price(ident string) float64 { return s.prices[ident] }

// priceOrOne is the lenient variant used for cash balancing and placeholder
// rows: unobserved identifiers are priced at 1.0.
func (s *snapshot) priceOrOne(ident string) float64 {
	if px, ok := s.prices[ident]; ok {
		return px
	}
	return 1.0
}

// heldShares returns the account's total share count for the identifier,
// summed across duplicate rows.
func (s *snapshot) heldShares(account, ident string) float64 {
	return s.held[accountIdent{account, ident}]
}

// weightedAverageCost returns the account-level quantity-weighted average cost
// per share for the identifier, or 0 when the account holds no positive
// quantity of it.
func (s *snapshot) weightedAverageCost(account, ident string) float64 {
	obs := s.costs[accountIdent{account, ident}]
	if obs == nil {
		return 0
	}
	if floats.Sum(obs.quantities) <= 0 {
		return 0
	}
	return stat.Mean(obs.costs, obs.quantities)
}

// accountTaxStatus returns the first-seen tax status of the account's rows,
// falling back to classification for accounts absent from the snapshot.
func (s *snapshot) accountTaxStatus(account string) string {
	if status, ok := s.taxStatus[account]; ok {
		return status
	}
	return s.conv.TaxStatus(account)
}

// cashIdentifier picks the identifier for a pass-2 balancing trade: the first
// cash-like instrument the account actually holds, else the Cash fallback
// proxy.
func (s *snapshot) cashIdentifier(account string) string {
	if ident, ok := s.cashIdent[account]; ok {
		return ident
	}
	if proxy, ok := s.conv.FallbackProxy[SleeveCash]; ok {
		return proxy
	}
	return "BIL"
}

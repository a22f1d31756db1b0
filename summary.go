package rebal

import (
	"sort"
	"strings"
)

// AccountSummary totals one (account, tax status) pair's trading activity.
// Buys and sells are both reported as positive dollar amounts.
type AccountSummary struct {
	Account    string
	TaxStatus  string
	TotalBuys  float64
	TotalSells float64
	NetCapGain float64
	EstTax     float64
}

// TaxStatusSummary totals trading activity across accounts sharing a tax
// status.
type TaxStatusSummary struct {
	TaxStatus  string
	TotalBuys  float64
	TotalSells float64
	NetCapGain float64
	EstTax     float64
}

// TaxRateForStatus estimates the long-term capital-gain rate for a tax status
// label. The matcher is deliberately loose about formatting: any mention of
// roth or hsa means tax-free, trust and taxable get their flat rates, and
// anything unrecognized is treated as tax-free rather than guessed at.
func TaxRateForStatus(status string) float64 {
	s := strings.ToLower(strings.TrimSpace(status))
	switch {
	case strings.Contains(s, "roth"), strings.Contains(s, "hsa"):
		return 0.0
	case strings.Contains(s, "trust"):
		return 0.20
	case strings.Contains(s, "taxable"):
		return 0.15
	}
	return 0.0
}

// SummarizeByAccount aggregates a trade list into per (account, tax status)
// totals, sorted by account then tax status.
func SummarizeByAccount(trades []Trade) []AccountSummary {
	type key struct{ account, status string }
	grouped := make(map[key]*AccountSummary)
	for _, t := range trades {
		k := key{t.Account, t.TaxStatus}
		s := grouped[k]
		if s == nil {
			s = &AccountSummary{Account: t.Account, TaxStatus: t.TaxStatus}
			grouped[k] = s
		}
		addTrade(&s.TotalBuys, &s.TotalSells, &s.NetCapGain, t)
	}

	out := make([]AccountSummary, 0, len(grouped))
	for _, s := range grouped {
		s.EstTax = TaxRateForStatus(s.TaxStatus) * s.NetCapGain
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Account != out[j].Account {
			return out[i].Account < out[j].Account
		}
		return out[i].TaxStatus < out[j].TaxStatus
	})
	return out
}

// SummarizeByTaxStatus aggregates a trade list into per tax-status totals,
// sorted by tax status.
func SummarizeByTaxStatus(trades []Trade) []TaxStatusSummary {
	grouped := make(map[string]*TaxStatusSummary)
	for _, t := range trades {
		s := grouped[t.TaxStatus]
		if s == nil {
			s = &TaxStatusSummary{TaxStatus: t.TaxStatus}
			grouped[t.TaxStatus] = s
		}
		addTrade(&s.TotalBuys, &s.TotalSells, &s.NetCapGain, t)
	}

	out := make([]TaxStatusSummary, 0, len(grouped))
	for _, s := range grouped {
		s.EstTax = TaxRateForStatus(s.TaxStatus) * s.NetCapGain
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaxStatus < out[j].TaxStatus })
	return out
}

func addTrade(buys, sells, capGain *float64, t Trade) {
	switch t.Action {
	case Buy:
		*buys += t.DeltaDollars
	case Sell:
		*sells += -t.DeltaDollars
	}
	*capGain += t.CapGain
}

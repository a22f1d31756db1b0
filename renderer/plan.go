package renderer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quentel/rebal"
)

// Meta carries the report header information that is not part of the plan
// itself.
type Meta struct {
	PlanID        string
	Date          string
	VolPct        int
	CashTolerance float64
}

// PlanMarkdown renders the full rebalancing report: the trade list, the
// per-account and per-tax-status summaries, and any residual-cash warnings.
func PlanMarkdown(plan *rebal.Plan, meta Meta) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Rebalancing Plan — %s\n\n", meta.Date)
	fmt.Fprintf(&b, "Target volatility: %d%% · Cash tolerance: %s · Plan %s\n\n",
		meta.VolPct, usd(meta.CashTolerance), meta.PlanID)

	if len(plan.Trades) == 0 {
		fmt.Fprintln(&b, "No trades required: the portfolio is already on target.")
		return b.String()
	}

	fmt.Fprint(&b, "## Trades\n\n")
	fmt.Fprintln(&b, "| Account | Tax Status | Identifier | Sleeve | Action | Shares | Price | Delta | Cap Gain |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|:---|---:|---:|---:|---:|")
	for _, t := range plan.Trades {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			t.Account, t.TaxStatus, t.Identifier, t.Sleeve, t.Action,
			shares(t.SharesDelta), usd(t.Price), signedUSD(t.DeltaDollars), signedUSD(t.CapGain),
		)
	}
	fmt.Fprintln(&b)

	fmt.Fprint(&b, "## Per-Account Summary\n\n")
	fmt.Fprintln(&b, "| Account | Tax Status | Total Buys | Total Sells | Net Cap Gain | Est. Tax |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|")
	for _, s := range rebal.SummarizeByAccount(plan.Trades) {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			s.Account, s.TaxStatus, usd(s.TotalBuys), usd(s.TotalSells),
			signedUSD(s.NetCapGain), usd(s.EstTax),
		)
	}
	fmt.Fprintln(&b)

	fmt.Fprint(&b, "## By Tax Status\n\n")
	fmt.Fprintln(&b, "| Tax Status | Total Buys | Total Sells | Net Cap Gain | Est. Tax |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")
	for _, s := range rebal.SummarizeByTaxStatus(plan.Trades) {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			s.TaxStatus, usd(s.TotalBuys), usd(s.TotalSells),
			signedUSD(s.NetCapGain), usd(s.EstTax),
		)
	}
	fmt.Fprintln(&b)

	if len(plan.Residuals) > 0 {
		fmt.Fprint(&b, "## Residual Cash Warnings\n\n")
		for _, account := range residualAccounts(plan) {
			fmt.Fprintf(&b, "- **%s**: %s of net flow could not be neutralized within tolerance.\n",
				account, signedUSD(plan.Residuals[account]))
		}
		fmt.Fprintln(&b)
	}

	return b.String()
}

// residualAccounts lists the residual map's accounts in stable order.
func residualAccounts(plan *rebal.Plan) []string {
	accounts := make([]string, 0, len(plan.Residuals))
	for account := range plan.Residuals {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)
	return accounts
}

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/quentel/rebal"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	vol     float64
	cashTol float64
}

func (*summaryCmd) Name() string { return "summary" }
func (*summaryCmd) Synopsis() string {
	return "show per-account and per-tax-status totals for the plan"
}
func (*summaryCmd) Usage() string {
	return `rebal summary [-vol <target>] [-cash-tol <dollars>]

  Computes the plan and prints only the buy/sell/capital-gain totals, per
  account and per tax status.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.vol, "vol", 0.08, "Target volatility (e.g. 0.08 = 8%)")
	f.Float64Var(&c.cashTol, "cash-tol", rebal.DefaultCashTolerance, "Per-account cash tolerance in $")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	plan, err := buildPlan(c.vol, c.cashTol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building plan: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Trading Summary — %s\n\n", today())
	if len(plan.Trades) == 0 {
		fmt.Fprintln(&b, "No trades required: the portfolio is already on target.")
		printMarkdown(b.String())
		return subcommands.ExitSuccess
	}

	fmt.Fprintln(&b, "| Account | Tax Status | Total Buys | Total Sells | Net Cap Gain | Est. Tax |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|")
	for _, s := range rebal.SummarizeByAccount(plan.Trades) {
		fmt.Fprintf(&b, "| %s | %s | $%.2f | $%.2f | $%.2f | $%.2f |\n",
			s.Account, s.TaxStatus, s.TotalBuys, s.TotalSells, s.NetCapGain, s.EstTax)
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "| Tax Status | Total Buys | Total Sells | Net Cap Gain | Est. Tax |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")
	for _, s := range rebal.SummarizeByTaxStatus(plan.Trades) {
		fmt.Fprintf(&b, "| %s | $%.2f | $%.2f | $%.2f | $%.2f |\n",
			s.TaxStatus, s.TotalBuys, s.TotalSells, s.NetCapGain, s.EstTax)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

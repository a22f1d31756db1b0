package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/quentel/rebal"
	"github.com/quentel/rebal/renderer"
)

// holdingsCmd holds the flags for the 'holdings' subcommand.
type holdingsCmd struct {
	vol     float64
	cashTol float64
	input   bool
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "display the projected post-trade holdings" }
func (*holdingsCmd) Usage() string {
	return `rebal holdings [-vol <target>] [-cash-tol <dollars>] [-input]

  Displays the holdings table as it would look after the plan's trades are
  applied. With -input, displays the loaded holdings snapshot instead.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.vol, "vol", 0.08, "Target volatility (e.g. 0.08 = 8%)")
	f.Float64Var(&c.cashTol, "cash-tol", rebal.DefaultCashTolerance, "Per-account cash tolerance in $")
	f.BoolVar(&c.input, "input", false, "Show the input snapshot instead of the projection")
}

func (c *holdingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.input {
		holdings, err := rebal.LoadHoldings(*holdingsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading holdings: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.HoldingsMarkdown("Holdings", holdings))
		return subcommands.ExitSuccess
	}

	plan, err := buildPlan(c.vol, c.cashTol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building plan: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.HoldingsMarkdown("Holdings After Trades", plan.After))
	return subcommands.ExitSuccess
}

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/quentel/rebal"
	"github.com/quentel/rebal/renderer"
)

// tradesCmd holds the flags for the 'trades' subcommand.
type tradesCmd struct {
	vol     float64
	cashTol float64
	noFiles bool
}

func (*tradesCmd) Name() string     { return "trades" }
func (*tradesCmd) Synopsis() string { return "generate per-account trade lists toward the target mix" }
func (*tradesCmd) Usage() string {
	return `rebal trades [-vol <target>] [-cash-tol <dollars>] [-n]

  Computes the trades that move every account toward the portfolio-wide target
  allocation, prints the plan, and writes the trade list and post-trade
  holdings as CSV into the output directory.
`
}

func (c *tradesCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.vol, "vol", 0.08, "Target volatility (e.g. 0.08 = 8%)")
	f.Float64Var(&c.cashTol, "cash-tol", rebal.DefaultCashTolerance, "Per-account cash tolerance in $")
	f.BoolVar(&c.noFiles, "n", false, "Print the plan without writing CSV files")
}

func (c *tradesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	plan, err := buildPlan(c.vol, c.cashTol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building plan: %v\n", err)
		return subcommands.ExitFailure
	}

	meta := renderer.Meta{
		PlanID:        uuid.NewString(),
		Date:          today(),
		VolPct:        volPct(c.vol),
		CashTolerance: c.cashTol,
	}
	printMarkdown(renderer.PlanMarkdown(plan, meta))

	if c.noFiles {
		return subcommands.ExitSuccess
	}

	outdir, err := ensureOutDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	tradesOut := filepath.Join(outdir, fmt.Sprintf("trades_%s.csv", meta.Date))
	if err := writeCSV(tradesOut, func(f *os.File) error {
		return rebal.WriteTradesCSV(f, plan.Trades)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", tradesOut, err)
		return subcommands.ExitFailure
	}
	log.Info().Str("file", tradesOut).Msg("trade list written")

	after := append([]rebal.Holding(nil), plan.After...)
	rebal.SortHoldings(after)
	afterOut := filepath.Join(outdir, fmt.Sprintf("holdings_aftertrades_%s.csv", meta.Date))
	if err := writeCSV(afterOut, func(f *os.File) error {
		return rebal.WriteHoldingsCSV(f, after)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", afterOut, err)
		return subcommands.ExitFailure
	}
	log.Info().Str("file", afterOut).Msg("post-trade holdings written")

	return subcommands.ExitSuccess
}

func writeCSV(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}

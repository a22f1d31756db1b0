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

// publishCmd holds the flags for the 'publish' subcommand.
type publishCmd struct {
	vol     float64
	cashTol float64
	output  string
}

func (*publishCmd) Name() string { return "publish" }
func (*publishCmd) Synopsis() string {
	return "export the rebalancing plan as a standalone HTML report"
}
func (*publishCmd) Usage() string {
	return `rebal publish [-vol <target>] [-cash-tol <dollars>] [-o <file>]

  Computes the plan and writes it as a self-contained HTML report, suitable
  for sharing or archiving next to the CSV outputs.
`
}

func (c *publishCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.vol, "vol", 0.08, "Target volatility (e.g. 0.08 = 8%)")
	f.Float64Var(&c.cashTol, "cash-tol", rebal.DefaultCashTolerance, "Per-account cash tolerance in $")
	f.StringVar(&c.output, "o", "", "Output file (default <out>/plan_<vol>vol_<date>.html)")
}

func (c *publishCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	html, err := renderer.HTML(renderer.PlanMarkdown(plan, meta))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
		return subcommands.ExitFailure
	}

	output := c.output
	if output == "" {
		outdir, err := ensureOutDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		output = filepath.Join(outdir, fmt.Sprintf("plan_%dvol_%s.html", meta.VolPct, meta.Date))
	}
	if err := os.WriteFile(output, html, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", output, err)
		return subcommands.ExitFailure
	}
	log.Info().Str("file", output).Msg("HTML report written")
	return subcommands.ExitSuccess
}

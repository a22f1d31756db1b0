package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/quentel/rebal"
	"github.com/quentel/rebal/agent"
	"github.com/quentel/rebal/renderer"
	"google.golang.org/genai"
)

// assistCmd holds the flags for the 'assist' subcommand.
type assistCmd struct {
	vol     float64
	cashTol float64
}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "discuss the plan with the AI assistant" }
func (*assistCmd) Usage() string {
	return `rebal assist [-vol <target>] [-cash-tol <dollars>] [question...]

  Computes the plan and opens an interactive session with an AI advisor that
  has read it. Requires Gemini credentials in the environment.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.vol, "vol", 0.08, "Target volatility (e.g. 0.08 = 8%)")
	f.Float64Var(&c.cashTol, "cash-tol", rebal.DefaultCashTolerance, "Per-account cash tolerance in $")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	md := renderer.PlanMarkdown(plan, meta)

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	a := agent.New(os.Stdout, os.Stdin, md)
	var initial []string
	if f.NArg() > 0 {
		initial = append(initial, strings.Join(f.Args(), " "))
	}
	if err := a.Run(ctx, client, initial...); err != nil {
		fmt.Fprintln(os.Stderr, "Assistant failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// Package cmd implements the CLI application that generates per-account trade
// lists toward a portfolio-wide target mix.
package cmd

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/quentel/rebal"
	"github.com/rs/zerolog"
)

// As a CLI application with a very short lifecycle, shared state lives in
// package-level flags, defaulted from the environment.

var (
	holdingsFile    = flag.String("holdings", envOr("REBAL_HOLDINGS", "data/holdings.csv"), "Path to the holdings CSV")
	targetsDir      = flag.String("targets-dir", envOr("REBAL_TARGETS_DIR", "portfolio_targets"), "Directory with per-scenario allocation CSVs")
	targetsJSON     = flag.String("targets-json", "", "JSON targets file (used instead of -targets-dir when set)")
	targetsPath     = flag.String("targets-path", "$.weights", "JSONPath expression selecting the weights object in -targets-json")
	conventionsFile = flag.String("conventions", os.Getenv("REBAL_CONVENTIONS"), "Optional YAML file overriding the classification tables")
	outputDir       = flag.String("out", envOr("REBAL_OUT", "outputs"), "Directory for CSV and HTML outputs")
)

// log is the CLI logger; the rebal library itself never logs.
var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Register registers all subcommands on the commander.
func Register(c *subcommands.Commander) {
	c.Register(&tradesCmd{}, "planning")
	c.Register(&summaryCmd{}, "planning")
	c.Register(&holdingsCmd{}, "planning")
	c.Register(&publishCmd{}, "reports")
	c.Register(&assistCmd{}, "reports")
}

// CommandNames lists the registered subcommand names, for shell completion.
func CommandNames() []string {
	return []string{"trades", "summary", "holdings", "publish", "assist"}
}

// loadConventions returns the classification tables, with the optional YAML
// override applied.
func loadConventions() (*rebal.Conventions, error) {
	if *conventionsFile == "" {
		return rebal.DefaultConventions(), nil
	}
	return rebal.LoadConventions(*conventionsFile)
}

// loadTargets loads the target weight vector from the JSON file when given,
// else from the per-scenario CSV directory.
func loadTargets(vol float64) (rebal.Weights, error) {
	if *targetsJSON != "" {
		return rebal.LoadTargetsJSON(*targetsJSON, *targetsPath)
	}
	return rebal.LoadTargets(*targetsDir, volPct(vol))
}

func volPct(vol float64) int { return int(math.Round(vol * 100)) }

// buildPlan runs the loaders and the engine for the given volatility target
// and tolerance; shared by every subcommand.
func buildPlan(vol, cashTol float64) (*rebal.Plan, error) {
	conv, err := loadConventions()
	if err != nil {
		return nil, err
	}
	holdings, err := rebal.LoadHoldings(*holdingsFile)
	if err != nil {
		return nil, err
	}
	targets, err := loadTargets(vol)
	if err != nil {
		return nil, err
	}

	r := &rebal.Rebalancer{Conventions: conv, CashTolerance: cashTol}
	plan := r.Build(holdings, targets)

	for account, amount := range plan.Residuals {
		log.Warn().Str("account", account).Float64("residual", amount).
			Msg("residual cash flow could not be neutralized")
	}
	return plan, nil
}

// printMarkdown renders markdown for the terminal; on rendering trouble the
// raw markdown is still perfectly readable.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

func today() string { return time.Now().Format("2006-01-02") }

func ensureOutDir() (string, error) {
	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create output directory %q: %w", *outputDir, err)
	}
	return *outputDir, nil
}

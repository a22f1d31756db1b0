package rebal

import (
	"regexp"
	"strings"
)

// Well-known sleeve names. Sleeves are open-ended strings (the symbol table
// can introduce new ones), but these three have special meaning to the engine.
const (
	// SleeveIlliquid marks positions that are never rebalanced: their value is
	// held fixed and no trade may ever reference this sleeve.
	SleeveIlliquid = "Illiquid_Automattic"
	// SleeveCash is the sleeve used for cash-balancing trades.
	SleeveCash = "Cash"
	// SleeveUSCore is the default sleeve for anything not otherwise classified.
	SleeveUSCore = "US_Core"

	sleeveTIPS       = "TIPS"
	sleeveTreasuries = "Treasuries"
)

// TaxRule maps an account-name pattern to a tax status. Rules are applied in
// order against the lower-cased account label; the first match wins.
type TaxRule struct {
	Pattern string `yaml:"pattern"`
	Status  string `yaml:"status"`

	re *regexp.Regexp
}

// Conventions groups the static classification tables: symbol to sleeve
// mapping, per-sleeve fallback proxies, account tax-status rules, the
// cash-like symbol set, and flat estimated long-term capital-gain tax rates.
//
// The zero value is not usable; start from DefaultConventions and override
// from a YAML file with LoadConventions if needed.
type Conventions struct {
	// SymbolSleeves maps an exact (upper-cased) symbol to its sleeve.
	SymbolSleeves map[string]string `yaml:"symbol_sleeves"`
	// FallbackProxy names the instrument used to trade into a sleeve when an
	// account holds nothing in it.
	FallbackProxy map[string]string `yaml:"fallback_proxy"`
	// TaxRules are matched, in order, against the lower-cased account label.
	TaxRules []TaxRule `yaml:"tax_rules"`
	// DefaultTaxStatus applies when no rule matches.
	DefaultTaxStatus string `yaml:"default_tax_status"`
	// CashLike lists symbols that trade in hundredth-of-a-share increments
	// (money-market funds and the like).
	CashLike []string `yaml:"cash_like"`
	// EstTaxRates are flat estimated LTCG rates by tax status.
	EstTaxRates map[string]float64 `yaml:"est_tax_rates"`

	cashLike map[string]bool
}

// DefaultConventions returns the built-in classification tables.
func DefaultConventions() *Conventions {
	c := &Conventions{
		SymbolSleeves: map[string]string{
			"IVW": "US_Growth", "VOOG": "US_Growth", "AMZN": "US_Growth",
			"SCHB": "US_Core", "DFAU": "US_Core", "SCHM": "US_Core",
			"SCHA": "US_SmallValue", "VBR": "US_SmallValue",
			"IUSV": "US_Value", "VTV": "US_Value", "VOOV": "US_Value", "MGV": "US_Value",
			"VXUS": "Intl_DM", "VPL": "Intl_DM", "FNDF": "Intl_DM", "FNDC": "Intl_DM",
			"VWO": "EM", "EMXC": "EM", "FNDE": "EM", "TSM": "EM",
			"XLE": "Energy", "VDE": "Energy",
			"AGG": "IG_Core", "SCHZ": "IG_Core",
			"VWOB": "EM_USD", "BNDX": "IG_Intl_Hedged",
			"SPAXX": "Cash", "FDRXX": "Cash", "VMFXX": "Cash", "BIL": "Cash",
		},
		FallbackProxy: map[string]string{
			"US_Core": "SCHB", "US_Value": "VTV", "US_SmallValue": "VBR", "US_Growth": "IVW",
			"Intl_DM": "VXUS", "EM": "VWO", "Energy": "XLE",
			"IG_Core": "AGG", "Treasuries": "IEF", "TIPS": "TIP",
			"EM_USD": "VWOB", "IG_Intl_Hedged": "BNDX", "Cash": "BIL",
		},
		TaxRules: []TaxRule{
			{Pattern: `\broth\b|\broth ira\b|vanguard roth|schwab roth`, Status: "ROTH IRA"},
			{Pattern: `\bhsa\b|fidelity hsa`, Status: "HSA"},
			{Pattern: `\bwing\b.*\btrust\b|\btrust\b`, Status: "Trust"},
		},
		DefaultTaxStatus: "Taxable",
		CashLike:         []string{"SPAXX", "VMFXX", "FDRXX", "BIL", "CASH"},
		EstTaxRates: map[string]float64{
			"HSA": 0.0, "ROTH IRA": 0.0, "Trust": 0.20, "Taxable": 0.15,
		},
	}
	// Built-in patterns are known-good.
	if err := c.compile(); err != nil {
		panic(err)
	}
	return c
}

// compile prepares the derived lookup structures (compiled rule patterns and
// the cash-like set). It must be called after any mutation of the tables.
func (c *Conventions) compile() error {
	for i := range c.TaxRules {
		re, err := regexp.Compile(c.TaxRules[i].Pattern)
		if err != nil {
			return err
		}
		c.TaxRules[i].re = re
	}
	c.cashLike = make(map[string]bool, len(c.CashLike))
	for _, s := range c.CashLike {
		c.cashLike[strings.ToUpper(s)] = true
	}
	return nil
}

// Sleeve classifies a holding into its allocation sleeve. It is a total
// function: every (symbol, name) pair maps to exactly one sleeve.
//
// The checks run in order: illiquid instruments first, then the exact symbol
// table, then name keywords (inflation-protected, then Treasury paper), and
// finally the US_Core default.
func (c *Conventions) Sleeve(symbol, name string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	n := strings.ToUpper(strings.TrimSpace(name))
	if c.IsIlliquid(symbol, name) {
		return SleeveIlliquid
	}
	if sleeve, ok := c.SymbolSleeves[s]; ok {
		return sleeve
	}
	if strings.Contains(n, "INFLATION") {
		return sleeveTIPS
	}
	for _, kw := range []string{"UST", "TREAS", "STRIP"} {
		if strings.Contains(n, kw) {
			return sleeveTreasuries
		}
	}
	return SleeveUSCore
}

// TaxStatus derives an account's tax status from its label. Rule order is part
// of the contract: the first matching rule wins.
func (c *Conventions) TaxStatus(account string) string {
	low := strings.ToLower(account)
	for _, r := range c.TaxRules {
		if r.re.MatchString(low) {
			return r.Status
		}
	}
	return c.DefaultTaxStatus
}

// IsCashLike reports whether the identifier trades in hundredth-of-a-share
// increments.
func (c *Conventions) IsCashLike(symbol string) bool {
	return c.cashLike[strings.ToUpper(symbol)]
}

// IsIlliquid reports whether the instrument is the designated untradeable
// private position.
func (c *Conventions) IsIlliquid(symbol, name string) bool {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	n := strings.ToUpper(strings.TrimSpace(name))
	return strings.Contains(n, "AUTOMATTIC") || s == "AUTOMATTIC"
}

// sleeveForProxy is the inverse of FallbackProxy, built once and consulted by
// the holdings projector to guess the sleeve of a brand-new position. If two
// sleeves share a proxy, the lexicographically smallest sleeve wins so the
// inverse is deterministic.
func (c *Conventions) sleeveForProxy(identifier string) (string, bool) {
	var best string
	found := false
	for sleeve, proxy := range c.FallbackProxy {
		if proxy != identifier {
			continue
		}
		if !found || sleeve < best {
			best = sleeve
			found = true
		}
	}
	return best, found
}

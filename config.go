package rebal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConventions reads a YAML conventions file and merges it over the
// built-in defaults. Every field is optional: an empty file yields
// DefaultConventions. Maps are merged key by key; the tax-rule list and the
// cash-like list replace the defaults wholesale when present, since their
// order (rules) and membership (cash set) are meaningful as a unit.
func LoadConventions(path string) (*Conventions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read conventions file %q: %w", path, err)
	}

	var over Conventions
	if err := yaml.Unmarshal(data, &over); err != nil {
		return nil, fmt.Errorf("cannot parse conventions file %q: %w", path, err)
	}

	c := DefaultConventions()
	for sym, sleeve := range over.SymbolSleeves {
		c.SymbolSleeves[sym] = sleeve
	}
	for sleeve, proxy := range over.FallbackProxy {
		c.FallbackProxy[sleeve] = proxy
	}
	if len(over.TaxRules) > 0 {
		c.TaxRules = over.TaxRules
	}
	if over.DefaultTaxStatus != "" {
		c.DefaultTaxStatus = over.DefaultTaxStatus
	}
	if len(over.CashLike) > 0 {
		c.CashLike = over.CashLike
	}
	for status, rate := range over.EstTaxRates {
		c.EstTaxRates[status] = rate
	}

	if err := c.compile(); err != nil {
		return nil, fmt.Errorf("invalid tax rule in %q: %w", path, err)
	}
	return c, nil
}

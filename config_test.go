package rebal

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConventions(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conventions.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConventions_MergesOverDefaults(t *testing.T) {
	path := writeConventions(t, `
symbol_sleeves:
  QQQ: US_Growth
  SCHB: US_Value
fallback_proxy:
  Energy: VDE
est_tax_rates:
  Trust: 0.25
`)
	conv, err := LoadConventions(path)
	if err != nil {
		t.Fatalf("LoadConventions() error = %v", err)
	}

	// New and overridden entries land; untouched defaults survive.
	if got := conv.Sleeve("QQQ", ""); got != "US_Growth" {
		t.Errorf("Sleeve(QQQ) = %q, want US_Growth", got)
	}
	if got := conv.Sleeve("SCHB", ""); got != "US_Value" {
		t.Errorf("Sleeve(SCHB) = %q, want the override US_Value", got)
	}
	if got := conv.Sleeve("VWO", ""); got != "EM" {
		t.Errorf("Sleeve(VWO) = %q, want the default EM", got)
	}
	if got := conv.FallbackProxy["Energy"]; got != "VDE" {
		t.Errorf("FallbackProxy[Energy] = %q, want VDE", got)
	}
	if got := conv.FallbackProxy["Treasuries"]; got != "IEF" {
		t.Errorf("FallbackProxy[Treasuries] = %q, want the default IEF", got)
	}
	if got := conv.EstTaxRates["Trust"]; got != 0.25 {
		t.Errorf("EstTaxRates[Trust] = %v, want 0.25", got)
	}
	if got := conv.EstTaxRates["Taxable"]; got != 0.15 {
		t.Errorf("EstTaxRates[Taxable] = %v, want the default 0.15", got)
	}

	// Untouched lists keep working: rules compiled, cash set intact.
	if got := conv.TaxStatus("Fidelity HSA"); got != "HSA" {
		t.Errorf("TaxStatus(Fidelity HSA) = %q, want HSA", got)
	}
	if !conv.IsCashLike("SPAXX") {
		t.Error("IsCashLike(SPAXX) = false after merge, want true")
	}
}

func TestLoadConventions_ListsReplaceWholesale(t *testing.T) {
	path := writeConventions(t, `
tax_rules:
  - pattern: ira
    status: IRA
cash_like: [SWVXX]
default_tax_status: Unknown
`)
	conv, err := LoadConventions(path)
	if err != nil {
		t.Fatalf("LoadConventions() error = %v", err)
	}
	if got := conv.TaxStatus("My IRA"); got != "IRA" {
		t.Errorf("TaxStatus(My IRA) = %q, want IRA", got)
	}
	// The default rules are gone, not appended.
	if got := conv.TaxStatus("Fidelity HSA"); got != "Unknown" {
		t.Errorf("TaxStatus(Fidelity HSA) = %q, want the new default Unknown", got)
	}
	if conv.IsCashLike("SPAXX") {
		t.Error("IsCashLike(SPAXX) = true, want the replacement cash set")
	}
	if !conv.IsCashLike("SWVXX") {
		t.Error("IsCashLike(SWVXX) = false, want true")
	}
}

func TestLoadConventions_EmptyFileIsDefaults(t *testing.T) {
	path := writeConventions(t, "")
	conv, err := LoadConventions(path)
	if err != nil {
		t.Fatalf("LoadConventions() error = %v", err)
	}
	if got := conv.Sleeve("SCHB", ""); got != "US_Core" {
		t.Errorf("Sleeve(SCHB) = %q, want US_Core", got)
	}
}

func TestLoadConventions_BadPattern(t *testing.T) {
	path := writeConventions(t, `
tax_rules:
  - pattern: "("
    status: Broken
`)
	if _, err := LoadConventions(path); err == nil {
		t.Error("LoadConventions() error = nil, want a compile error")
	}
}

func TestLoadConventions_MissingFile(t *testing.T) {
	if _, err := LoadConventions(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadConventions() error = nil, want a read error")
	}
}

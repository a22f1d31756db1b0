package rebal

import "testing"

func TestAggregate_MergesDuplicateKeys(t *testing.T) {
	trades := []Trade{
		{Account: "A", TaxStatus: "Taxable", Identifier: "BIL", Sleeve: SleeveCash, Action: Sell, SharesDelta: -50, Price: 100, DeltaDollars: -5000},
		{Account: "A", TaxStatus: "Taxable", Identifier: "SCHB", Sleeve: "US_Core", Action: Sell, SharesDelta: -25, Price: 100, AverageCost: 60, DeltaDollars: -2500, CapGain: 1000},
		{Account: "A", TaxStatus: "Taxable", Identifier: "BIL", Sleeve: SleeveCash, Action: Buy, SharesDelta: 75, Price: 100, DeltaDollars: 7500},
	}
	out := aggregate(trades)

	if len(out) != 2 {
		t.Fatalf("aggregate returned %d trades, want 2", len(out))
	}
	// Sorted by account then identifier: BIL before SCHB.
	bil := out[0]
	if bil.Identifier != "BIL" {
		t.Fatalf("first trade = %+v, want BIL", bil)
	}
	if !approx(bil.SharesDelta, 25) || !approx(bil.DeltaDollars, 2500) {
		t.Errorf("BIL net = %v shares, %v dollars, want 25, 2500", bil.SharesDelta, bil.DeltaDollars)
	}
	// The action is recomputed from the netted shares, not carried over.
	if bil.Action != Buy {
		t.Errorf("BIL action = %q, want BUY after netting", bil.Action)
	}
	schb := out[1]
	if !approx(schb.CapGain, 1000) || schb.Action != Sell {
		t.Errorf("SCHB = %+v, want SELL with cap gain 1000", schb)
	}
}

func TestAggregate_KeyIncludesSleeveAndTaxStatus(t *testing.T) {
	// Same identifier under two sleeves stays two rows.
	trades := []Trade{
		{Account: "A", TaxStatus: "Taxable", Identifier: "BIL", Sleeve: SleeveCash, SharesDelta: 10, DeltaDollars: 1000},
		{Account: "A", TaxStatus: "Taxable", Identifier: "BIL", Sleeve: "Treasuries", SharesDelta: 5, DeltaDollars: 500},
	}
	if out := aggregate(trades); len(out) != 2 {
		t.Errorf("aggregate returned %d trades, want 2 (distinct sleeves)", len(out))
	}
}

func TestAccountFlows(t *testing.T) {
	trades := []Trade{
		{Account: "A", DeltaDollars: -2500},
		{Account: "A", DeltaDollars: 2000},
		{Account: "B", DeltaDollars: 300},
	}
	flows := accountFlows(trades)
	if !approx(flows["A"], -500) || !approx(flows["B"], 300) {
		t.Errorf("accountFlows = %v, want A:-500 B:300", flows)
	}
}

func TestBalanceResiduals(t *testing.T) {
	holdings := []Holding{
		row("A", "SCHB", "", 100, 100, 80),
		row("A", "SPAXX", "FIDELITY GOVT MMKT", 5000, 1, 1),
		row("B", "SCHB", "", 100, 100, 80),
	}
	s := newSnapshot(holdings, DefaultConventions())
	var diag Diagnostics

	trades := []Trade{
		{Account: "A", TaxStatus: "Taxable", Identifier: "SCHB", Sleeve: "US_Core", SharesDelta: -25, Price: 100, DeltaDollars: -2500},
		{Account: "B", TaxStatus: "Taxable", Identifier: "SCHB", Sleeve: "US_Core", SharesDelta: 0.5, Price: 100, DeltaDollars: 50},
	}
	extra := s.balanceResiduals(trades, 100, &diag)

	if len(extra) != 1 {
		t.Fatalf("balanceResiduals returned %d trades, want 1 (B is inside tolerance)", len(extra))
	}
	tr := extra[0]
	if tr.Account != "A" || tr.Identifier != "SPAXX" || tr.Sleeve != SleeveCash {
		t.Errorf("offset = %+v, want SPAXX Cash trade for A", tr)
	}
	if !approx(tr.SharesDelta, 2500) || !approx(tr.DeltaDollars, 2500) {
		t.Errorf("offset = %v shares, %v dollars, want 2500 each at $1", tr.SharesDelta, tr.DeltaDollars)
	}
}

func TestBalanceResiduals_ProxyWithoutCashHolding(t *testing.T) {
	holdings := []Holding{
		row("A", "SCHB", "", 100, 100, 80),
	}
	s := newSnapshot(holdings, DefaultConventions())
	var diag Diagnostics

	trades := []Trade{
		{Account: "A", Identifier: "SCHB", Sleeve: "US_Core", SharesDelta: 3, Price: 100, DeltaDollars: 300},
	}
	extra := s.balanceResiduals(trades, 100, &diag)
	if len(extra) != 1 {
		t.Fatalf("balanceResiduals returned %d trades, want 1", len(extra))
	}
	if extra[0].Identifier != "BIL" || !approx(extra[0].Price, 1.0) {
		t.Errorf("offset = %+v, want BIL at par", extra[0])
	}
	if !approx(extra[0].SharesDelta, -300) {
		t.Errorf("offset shares = %v, want -300", extra[0].SharesDelta)
	}
}

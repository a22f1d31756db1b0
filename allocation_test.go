package rebal

import "testing"

func TestInvestable(t *testing.T) {
	w := investable(Weights{
		"US_Core":      0.3,
		"Treasuries":   0.3,
		SleeveIlliquid: 0.4,
	})
	if _, ok := w[SleeveIlliquid]; ok {
		t.Fatal("investable weights still contain the illiquid sleeve")
	}
	if !approx(w["US_Core"], 0.5) || !approx(w["Treasuries"], 0.5) {
		t.Errorf("investable = %v, want each 0.5 after renormalization", w)
	}
}

func TestInvestable_ZeroSum(t *testing.T) {
	// Nothing to normalize by: the weights pass through unchanged.
	w := investable(Weights{"US_Core": 0, "Treasuries": 0})
	if w["US_Core"] != 0 || w["Treasuries"] != 0 {
		t.Errorf("investable zero-sum = %v, want zeros", w)
	}
}

func TestSnapshot_Deltas(t *testing.T) {
	holdings := []Holding{
		row("A", "SCHB", "", 100, 100, 80),                // US_Core 10000
		row("A", "A8MTC", "AUTOMATTIC INC", 10, 500, 100), // illiquid 5000
	}
	s := newSnapshot(holdings, DefaultConventions())
	deltas := s.deltas("A", Weights{"US_Core": 0.5, "Treasuries": 0.5})

	// Pool is 15000 - 5000 illiquid = 10000; each sleeve targets 5000.
	want := map[string]float64{
		"Treasuries": 5000,  // from zero
		"US_Core":    -5000, // from 10000
	}
	if len(deltas) != len(want) {
		t.Fatalf("deltas = %v, want %d sleeves", deltas, len(want))
	}
	for _, d := range deltas {
		if d.sleeve == SleeveIlliquid {
			t.Fatalf("deltas include the illiquid sleeve: %v", d)
		}
		if w, ok := want[d.sleeve]; !ok || !approx(d.dollars, w) {
			t.Errorf("delta[%s] = %v, want %v", d.sleeve, d.dollars, want[d.sleeve])
		}
	}
	// Sorted sleeve order is part of the contract.
	for i := 1; i < len(deltas); i++ {
		if deltas[i-1].sleeve >= deltas[i].sleeve {
			t.Errorf("deltas not in sorted sleeve order: %v", deltas)
		}
	}
}

func TestSnapshot_Deltas_HeldSleeveOutsideTargets(t *testing.T) {
	// A held sleeve absent from the targets gets a zero target, producing a
	// full liquidation delta.
	holdings := []Holding{
		row("A", "SCHB", "", 100, 100, 80), // US_Core 10000
		row("A", "XLE", "", 50, 80, 60),    // Energy 4000
	}
	s := newSnapshot(holdings, DefaultConventions())
	deltas := s.deltas("A", Weights{"US_Core": 1})

	got := map[string]float64{}
	for _, d := range deltas {
		got[d.sleeve] = d.dollars
	}
	if !approx(got["Energy"], -4000) {
		t.Errorf("delta[Energy] = %v, want -4000", got["Energy"])
	}
	if !approx(got["US_Core"], 4000) {
		t.Errorf("delta[US_Core] = %v, want 4000", got["US_Core"])
	}
}

func TestSnapshot_Deltas_IlliquidExceedsTotal(t *testing.T) {
	// A stale snapshot can price the illiquid position above the account total;
	// the pool clamps at zero instead of going negative.
	holdings := []Holding{
		row("A", "A8MTC", "AUTOMATTIC INC", 10, 500, 100), // 5000
		row("A", "SCHB", "", -10, 100, 80),                // -1000
	}
	s := newSnapshot(holdings, DefaultConventions())
	for _, d := range s.deltas("A", Weights{"US_Core": 1}) {
		if d.sleeve == "US_Core" && d.dollars > 1000+1e-9 {
			t.Errorf("delta[US_Core] = %v, want at most 1000 with a clamped pool", d.dollars)
		}
	}
}

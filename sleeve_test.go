package rebal

import "testing"

func TestConventions_Sleeve(t *testing.T) {
	conv := DefaultConventions()

	testCases := []struct {
		name    string
		symbol  string
		secName string
		want    string
	}{
		{name: "exact symbol match", symbol: "SCHB", secName: "SCHWAB US BROAD MARKET ETF", want: "US_Core"},
		{name: "symbol match is case-insensitive", symbol: "schb", secName: "", want: "US_Core"},
		{name: "growth symbol", symbol: "AMZN", secName: "AMAZON.COM INC", want: "US_Growth"},
		{name: "money market fund", symbol: "SPAXX", secName: "FIDELITY GOVT MMKT", want: "Cash"},
		{name: "inflation keyword", symbol: "912810FH", secName: "US TREASURY INFLATION INDEXED BOND", want: "TIPS"},
		{name: "treasury keyword", symbol: "912828ZT", secName: "US TREASURY NOTE 0.25%", want: "Treasuries"},
		{name: "UST keyword", symbol: "X123", secName: "UST BILL DUE 2027", want: "Treasuries"},
		{name: "strips keyword", symbol: "912803AY", secName: "STRIPPED INT STRIP", want: "Treasuries"},
		{name: "inflation beats treasury", symbol: "912810FH", secName: "UST INFLATION INDEXED", want: "TIPS"},
		{name: "illiquid by name", symbol: "A8MTC", secName: "AUTOMATTIC INC CLASS A", want: SleeveIlliquid},
		{name: "illiquid by symbol", symbol: "AUTOMATTIC", secName: "", want: SleeveIlliquid},
		{name: "illiquid beats symbol table", symbol: "SCHB", secName: "AUTOMATTIC SOMETHING", want: SleeveIlliquid},
		{name: "unknown defaults to US core", symbol: "ZZZZ", secName: "SOME RANDOM FUND", want: SleeveUSCore},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := conv.Sleeve(tc.symbol, tc.secName); got != tc.want {
				t.Errorf("Sleeve(%q, %q) = %q, want %q", tc.symbol, tc.secName, got, tc.want)
			}
		})
	}
}

func TestConventions_TaxStatus(t *testing.T) {
	conv := DefaultConventions()

	testCases := []struct {
		account string
		want    string
	}{
		{account: "Vanguard Roth IRA", want: "ROTH IRA"},
		{account: "Schwab Roth", want: "ROTH IRA"},
		{account: "Fidelity HSA", want: "HSA"},
		{account: "Wing Family Trust", want: "Trust"},
		{account: "Revocable Trust at Schwab", want: "Trust"},
		{account: "Schwab Brokerage", want: "Taxable"},
		{account: "", want: "Taxable"},
	}
	for _, tc := range testCases {
		if got := conv.TaxStatus(tc.account); got != tc.want {
			t.Errorf("TaxStatus(%q) = %q, want %q", tc.account, got, tc.want)
		}
	}
}

func TestConventions_RuleOrderWins(t *testing.T) {
	// An account matching both the roth and trust patterns takes the first rule.
	conv := DefaultConventions()
	if got := conv.TaxStatus("Roth Trust"); got != "ROTH IRA" {
		t.Errorf("TaxStatus(%q) = %q, want %q", "Roth Trust", got, "ROTH IRA")
	}
}

func TestConventions_IsCashLike(t *testing.T) {
	conv := DefaultConventions()
	for _, sym := range []string{"SPAXX", "VMFXX", "FDRXX", "BIL", "CASH", "bil"} {
		if !conv.IsCashLike(sym) {
			t.Errorf("IsCashLike(%q) = false, want true", sym)
		}
	}
	for _, sym := range []string{"SCHB", "AGG", ""} {
		if conv.IsCashLike(sym) {
			t.Errorf("IsCashLike(%q) = true, want false", sym)
		}
	}
}

func TestConventions_SleeveForProxy(t *testing.T) {
	conv := DefaultConventions()

	if sleeve, ok := conv.sleeveForProxy("IEF"); !ok || sleeve != "Treasuries" {
		t.Errorf("sleeveForProxy(IEF) = %q, %v, want Treasuries, true", sleeve, ok)
	}
	if _, ok := conv.sleeveForProxy("NOT-A-PROXY"); ok {
		t.Error("sleeveForProxy(NOT-A-PROXY) = true, want false")
	}

	// A shared proxy must resolve deterministically to the smallest sleeve.
	conv.FallbackProxy["AAA_Sleeve"] = "IEF"
	if sleeve, _ := conv.sleeveForProxy("IEF"); sleeve != "AAA_Sleeve" {
		t.Errorf("sleeveForProxy(IEF) with shared proxy = %q, want AAA_Sleeve", sleeve)
	}
}

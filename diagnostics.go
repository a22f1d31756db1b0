package rebal

// SkipReason explains why a candidate trade was silently dropped. Skips are
// normal operation, not errors: a degenerate sleeve or account must never
// block the rest of the rebalance.
type SkipReason string

const (
	// SkipZeroValueAccount: the account's total value is not positive.
	SkipZeroValueAccount SkipReason = "zero-value account"
	// SkipNoIdentifier: no canonical identifier and no fallback proxy resolve
	// for the sleeve in this account.
	SkipNoIdentifier SkipReason = "no identifier"
	// SkipInvalidPrice: the resolved identifier has no finite positive price.
	SkipInvalidPrice SkipReason = "invalid price"
	// SkipBelowNoise: the sleeve delta is under the one-dollar noise floor.
	SkipBelowNoise SkipReason = "below noise floor"
	// SkipZeroShares: the dollar delta rounds to zero shares.
	SkipZeroShares SkipReason = "zero rounded shares"
	// SkipNoHeldShares: a sell was clamped to the account's holdings and
	// nothing remained to sell.
	SkipNoHeldShares SkipReason = "no held shares to sell"
)

// Skip records one dropped candidate trade.
type Skip struct {
	Account    string
	Sleeve     string
	Identifier string
	Dollars    float64
	Reason     SkipReason
}

// Diagnostics collects the skip decisions taken during one engine run. It is
// an opaque report for tests and troubleshooting; its content never influences
// the computation.
type Diagnostics struct {
	Skips []Skip
}

func (d *Diagnostics) skip(account, sleeve, ident string, dollars float64, reason SkipReason) {
	d.Skips = append(d.Skips, Skip{
		Account:    account,
		Sleeve:     sleeve,
		Identifier: ident,
		Dollars:    dollars,
		Reason:     reason,
	})
}

// Skipped reports whether any candidate in the account was dropped for the
// given reason.
func (d *Diagnostics) Skipped(account string, reason SkipReason) bool {
	for _, s := range d.Skips {
		if s.Account == account && s.Reason == reason {
			return true
		}
	}
	return false
}

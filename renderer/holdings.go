package renderer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quentel/rebal"
)

// HoldingsMarkdown renders a holdings table (typically the post-trade
// projection) grouped by account, with per-account and grand totals.
func HoldingsMarkdown(title string, holdings []rebal.Holding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	byAccount := make(map[string][]rebal.Holding)
	for _, h := range holdings {
		byAccount[h.Account] = append(byAccount[h.Account], h)
	}
	accounts := make([]string, 0, len(byAccount))
	for account := range byAccount {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	grandTotal := 0.0
	for _, account := range accounts {
		rows := byAccount[account]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Symbol < rows[j].Symbol })

		fmt.Fprintf(&b, "## %s\n\n", account)
		fmt.Fprintln(&b, "| Symbol | Name | Sleeve | Quantity | Price | Value |")
		fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|")
		total := 0.0
		for _, h := range rows {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				h.Symbol, h.Name, h.Sleeve, shares(h.Quantity), usd(h.Price), usd(h.Value))
			total += h.Value
		}
		fmt.Fprintf(&b, "| **Total** | | | | | **%s** |\n\n", usd(total))
		grandTotal += total
	}
	fmt.Fprintf(&b, "**Portfolio total: %s**\n", usd(grandTotal))
	return b.String()
}

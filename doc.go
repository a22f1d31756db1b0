// Package rebal computes the buy/sell trades needed to move a multi-account
// investment portfolio toward a portfolio-wide target allocation.
//
// Holdings are grouped into sleeves (allocation buckets such as US_Core,
// Treasuries, TIPS or Cash). Given a snapshot of holdings and a set of target
// sleeve weights, the engine produces:
//   - one net trade per (account, identifier, sleeve, tax status), expressed
//     in whole-ish share quantities,
//   - the projected holdings table after those trades are applied,
//   - a residual map of accounts whose net cash flow from trading could not be
//     neutralized within tolerance.
//
// Hard constraints honored by the engine:
//   - designated illiquid positions are never traded; their value is held fixed,
//   - no security ever moves between accounts,
//   - each account's net cash flow from trading is offset by a same-account
//     cash trade (within a configurable tolerance).
//
// The computation is a pure, single-pass batch over an in-memory snapshot: it
// never performs I/O, never raises for degenerate data, and prefers skipping a
// single trade over aborting the whole rebalance. Loading holdings and target
// files, and rendering reports, live at the edges (see the loader and the
// renderer package); they are the only places that return errors.
//
// This package is the foundation of the `rebal` command-line tool.
package rebal

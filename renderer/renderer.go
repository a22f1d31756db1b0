// Package renderer turns rebalancing plans into markdown and HTML reports.
// Reports are markdown-first: the same string renders in the terminal (via
// glamour, in the cmd layer) and exports to standalone HTML here.
package renderer

import (
	"bytes"
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// usd formats a dollar amount for display, e.g. "$1,234.56".
func usd(v float64) string {
	return money.New(int64(math.Round(v*100)), money.USD).Display()
}

// signedUSD formats a dollar amount with an explicit sign; zero renders as a
// dash to keep tables scannable.
func signedUSD(v float64) string {
	switch {
	case v == 0:
		return "-"
	case v > 0:
		return "+" + usd(v)
	default:
		return usd(v)
	}
}

// shares formats a share delta for display.
func shares(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

const htmlHeader = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Rebalancing Plan</title>
<style>
body { font-family: sans-serif; margin: 2em auto; max-width: 60em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3em 0.7em; }
</style>
</head>
<body>
`

const htmlFooter = "</body>\n</html>\n"

// HTML converts a markdown report into a standalone HTML document. Tables use
// the GitHub-flavored table extension, since every report is table-heavy.
func HTML(markdown string) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("cannot convert report to HTML: %w", err)
	}
	var out bytes.Buffer
	out.WriteString(htmlHeader)
	out.Write(body.Bytes())
	out.WriteString(htmlFooter)
	return out.Bytes(), nil
}

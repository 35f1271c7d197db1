// Package render formats generated strike tables for the terminal and for
// spreadsheet upload. Rendering is presentation only: no values are
// transformed here beyond string formatting.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/dzubidas/ibit-strike-ratio/pkg/pricing"
	"github.com/dzubidas/ibit-strike-ratio/pkg/strike"
)

const (
	reportWidth = 80

	// Rows within this absolute distance of the live quote are marked as
	// the current level. Cosmetic only.
	nearCurrentTolerance = 2.0

	timestampLayout = "2006-01-02 15:04:05"
)

// Report renders a table plus metadata as a terminal block. The optional
// reference quote adds a live index line to the header when present.
func Report(table strike.Table, quote pricing.Quote, label, asset string, reference *pricing.Quote) string {
	rule := strings.Repeat("=", reportWidth)
	divider := strings.Repeat("-", reportWidth)
	ratio := table.Ratio.Ratio()

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, "%s STRIKE TO %s PRICE CALCULATOR\n", strings.ToUpper(label), strings.ToUpper(asset))
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "Current %s Price: %s\n", label, money(quote.Price))
	fmt.Fprintf(&b, "Current %s Equivalent: %s\n", asset, money(quote.Price/ratio))
	fmt.Fprintf(&b, "Formula: %s = %s / %.10f\n", asset, label, ratio)
	if reference != nil {
		fmt.Fprintf(&b, "Live %s Index: %s\n", asset, money(reference.Price))
	}
	fmt.Fprintf(&b, "Updated: %s\n", table.GeneratedAt.Format(timestampLayout))
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "%-15s | %-15s\n", label+" Strike", asset+" Equivalent")
	fmt.Fprintf(&b, "%s\n", divider)
	for _, row := range table.Rows {
		marker := ""
		if math.Abs(row.Strike-quote.Price) < nearCurrentTolerance {
			marker = " <- near current price"
		}
		fmt.Fprintf(&b, "$%-14.2f | %-15s%s\n", row.Strike, money(row.Converted), marker)
	}
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "<- = near current %s price\n", label)
	return b.String()
}

// SheetMatrix renders the spreadsheet cell grid: header rows, a blank
// separator row, a column-header row, then one row per strike. Identical
// inputs always produce an identical matrix; only the Updated row varies
// run to run, driven by the table's generation timestamp.
func SheetMatrix(table strike.Table, quote pricing.Quote, label, asset string) [][]string {
	ratio := table.Ratio.Ratio()
	matrix := [][]string{
		{fmt.Sprintf("%s Strike to %s Price Calculator", label, asset)},
		{""},
		{fmt.Sprintf("Updated: %s", table.GeneratedAt.Format(timestampLayout))},
		{fmt.Sprintf("Current %s Price: %s", label, money(quote.Price))},
		{fmt.Sprintf("Shares Outstanding: %s", humanize.FormatFloat("#,###.", table.Ratio.SharesOutstanding))},
		{fmt.Sprintf("%s %s units: %s", label, asset, humanize.FormatFloat("#,###.#####", table.Ratio.Units))},
		{fmt.Sprintf("Formula: %s = %s / %.10f", asset, label, ratio)},
		{fmt.Sprintf("Official Ratio: %.10f", ratio)},
		{""},
		{fmt.Sprintf("%s Strike Price", label), fmt.Sprintf("%s Equivalent Price", asset)},
	}
	for _, row := range table.Rows {
		matrix = append(matrix, []string{
			fmt.Sprintf("$%.2f", row.Strike),
			money(row.Converted),
		})
	}
	return matrix
}

func money(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

package usecase

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pennywise/backend/internal/domain"
)

const (
	failureMarker    = "❌"
	noResultsMessage = "No results found."
)

// FormatSpots renders a spot search response as chat/terminal text
func FormatSpots(resp domain.SearchResponse) string {
	if text, ok := formatEmpty(resp.Error, len(resp.Spots)); ok {
		return text
	}

	var b strings.Builder
	if resp.Location != "" {
		fmt.Fprintf(&b, "📍 Top spots for %q in %s\n", resp.Query, resp.Location)
	} else {
		fmt.Fprintf(&b, "📍 Top spots for %q\n", resp.Query)
	}
	if resp.Summary != "" {
		fmt.Fprintf(&b, "%s\n", resp.Summary)
	}

	for _, spot := range resp.Spots {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%d. %s\n", spot.Rank, spot.Name)
		if spot.Description != "" {
			fmt.Fprintf(&b, "%s\n", spot.Description)
		}
		if len(spot.Highlights) > 0 {
			fmt.Fprintf(&b, "✨ %s\n", strings.Join(spot.Highlights, " • "))
		}
		fmt.Fprintf(&b, "🔗 %s\n", spot.URL)
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatAlternatives renders an alternatives response as chat/terminal text
func FormatAlternatives(resp domain.AlternativesResponse) string {
	if text, ok := formatEmpty(resp.Error, len(resp.Alternatives)); ok {
		return text
	}

	var b strings.Builder
	where := ""
	if resp.Location != "" {
		where = " near " + resp.Location
	}
	fmt.Fprintf(&b, "💡 Found %d cheaper alternative(s) to %q%s:\n", len(resp.Alternatives), resp.Item, where)

	for _, alt := range resp.Alternatives {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%d. %s\n", alt.Rank, alt.Name)
		if alt.Description != "" {
			fmt.Fprintf(&b, "   %s\n", alt.Description)
		}
		fmt.Fprintf(&b, "   %s\n", alt.URL)
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatReceipt renders an itemized receipt with two-decimal prices
func FormatReceipt(receipt domain.ReceiptSuccess) string {
	var b strings.Builder
	b.WriteString("🧾 Receipt breakdown\n\nItems:\n")

	for i, item := range receipt.Items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item.Name)
		fmt.Fprintf(&b, "   Qty: %d × $%s\n", item.Quantity, money(item.Price))
	}

	fmt.Fprintf(&b, "\nTotal: $%s", money(receipt.Total))
	return b.String()
}

// FormatReceiptFailure renders the single-line failure notice for a receipt
func FormatReceiptFailure(failure domain.ReceiptFailure) string {
	return formatError("Couldn't read that receipt: " + failure.Message)
}

// FormatReceiptAnalysis renders either variant of a receipt analysis
func FormatReceiptAnalysis(analysis domain.ReceiptAnalysis) string {
	switch a := analysis.(type) {
	case domain.ReceiptSuccess:
		return FormatReceipt(a)
	case domain.ReceiptFailure:
		return FormatReceiptFailure(a)
	default:
		return formatError(fmt.Sprintf("unexpected receipt analysis %T", analysis))
	}
}

// formatEmpty returns the error or no-results text when there is nothing to list
func formatEmpty(errMsg string, count int) (string, bool) {
	if errMsg != "" {
		return formatError(errMsg), true
	}
	if count == 0 {
		return noResultsMessage, true
	}
	return "", false
}

func formatError(msg string) string {
	return failureMarker + " " + msg
}

// money formats an amount with exactly two decimals, rounding half away from zero
func money(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

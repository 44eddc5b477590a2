package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pennywise/backend/internal/domain"
)

func TestFormatReceipt(t *testing.T) {
	receipt := domain.ReceiptSuccess{
		Items: []domain.ReceiptItem{{Name: "Coffee", Quantity: 2, Price: 3.5}},
		Total: 7.0,
	}

	got := FormatReceipt(receipt)
	lines := strings.Split(got, "\n")

	assert.Contains(t, lines, "Items:")
	itemIdx := indexOf(lines, "1. Coffee")
	if assert.GreaterOrEqual(t, itemIdx, 0, "missing item line in:\n%s", got) {
		assert.Equal(t, "Qty: 2 × $3.50", strings.TrimSpace(lines[itemIdx+1]))
	}
	assert.True(t, strings.HasSuffix(got, "$7.00"), "total line should end with $7.00:\n%s", got)
}

func TestFormatReceipt_Rounding(t *testing.T) {
	receipt := domain.ReceiptSuccess{
		Items: []domain.ReceiptItem{
			{Name: "Bagel", Quantity: 1, Price: 1.005},
			{Name: "Juice", Quantity: 3, Price: 2},
		},
		Total: 7.1,
	}

	got := FormatReceipt(receipt)

	assert.Contains(t, got, "1. Bagel")
	assert.Contains(t, got, "2. Juice")
	assert.Contains(t, got, "Qty: 3 × $2.00")
	assert.Contains(t, got, "Total: $7.10")
}

func TestFormatReceiptAnalysis(t *testing.T) {
	t.Run("failure variant is a single marked line", func(t *testing.T) {
		got := FormatReceiptAnalysis(domain.ReceiptFailure{Message: "image is blurry"})
		assert.True(t, strings.HasPrefix(got, "❌"))
		assert.Contains(t, got, "image is blurry")
		assert.NotContains(t, got, "\n")
		assert.NotContains(t, got, "Items:")
	})

	t.Run("success variant is itemized", func(t *testing.T) {
		got := FormatReceiptAnalysis(domain.ReceiptSuccess{
			Items: []domain.ReceiptItem{{Name: "Tea", Quantity: 1, Price: 2.25}},
			Total: 2.25,
		})
		assert.Contains(t, got, "Items:")
		assert.Contains(t, got, "1. Tea")
	})
}

func TestFormatSpots(t *testing.T) {
	resp := domain.SearchResponse{
		Query:    "tacos",
		Location: "Austin",
		Summary:  "Two cheap picks and one splurge.",
		Spots: []domain.RankedSpot{
			{Rank: 1, Name: "Taco Stand", Description: "Two tacos for $5", URL: "https://stand.example", Highlights: []string{"cash only", "late night"}},
			{Rank: 2, Name: "Taqueria", Description: "Family run", URL: "https://taqueria.example"},
		},
	}

	got := FormatSpots(resp)
	lines := strings.Split(got, "\n")

	assert.Contains(t, lines[0], "Austin")
	assert.Contains(t, lines[0], "tacos")
	assert.Equal(t, "Two cheap picks and one splurge.", lines[1])
	assert.Contains(t, lines, "1. Taco Stand")
	assert.Contains(t, lines, "Two tacos for $5")
	assert.Contains(t, lines, "✨ cash only • late night")
	assert.Contains(t, lines, "🔗 https://stand.example")
	assert.Contains(t, lines, "2. Taqueria")
	assert.Contains(t, got, "https://stand.example\n\n2. Taqueria", "spots are separated by a blank line")
}

func TestFormatSpots_NoLocationNoSummary(t *testing.T) {
	got := FormatSpots(domain.SearchResponse{
		Query: "pizza",
		Spots: []domain.RankedSpot{{Rank: 1, Name: "Slice", URL: "https://slice.example"}},
	})

	lines := strings.Split(got, "\n")
	assert.Equal(t, `📍 Top spots for "pizza"`, lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "1. Slice", lines[2])
}

func TestFormatEmptyAndErrors(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "spots error",
			got:  FormatSpots(domain.SearchResponse{Query: "x", Error: "provider down"}),
			want: "❌ provider down",
		},
		{
			name: "spots empty",
			got:  FormatSpots(domain.SearchResponse{Query: "x"}),
			want: "No results found.",
		},
		{
			name: "alternatives error",
			got:  FormatAlternatives(domain.AlternativesResponse{Item: "x", Error: "quota exceeded"}),
			want: "❌ quota exceeded",
		},
		{
			name: "alternatives empty",
			got:  FormatAlternatives(domain.AlternativesResponse{Item: "x"}),
			want: "No results found.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestFormatAlternatives(t *testing.T) {
	got := FormatAlternatives(domain.AlternativesResponse{
		Item:     "AirPods Pro",
		Location: "Seattle",
		Alternatives: []domain.RankedSpot{
			{Rank: 1, Name: "Budget Buds", Description: "Under $30", URL: "https://buds.example"},
			{Rank: 2, Name: "Value Earphones", URL: "https://value.example"},
		},
	})

	lines := strings.Split(got, "\n")
	assert.Contains(t, lines[0], "2")
	assert.Contains(t, lines[0], "AirPods Pro")
	assert.Contains(t, lines[0], "Seattle")
	assert.Contains(t, lines, "1. Budget Buds")
	assert.Contains(t, lines, "   Under $30")
	assert.Contains(t, lines, "   https://buds.example")
	assert.Contains(t, lines, "2. Value Earphones")
}

func indexOf(lines []string, want string) int {
	for i, l := range lines {
		if l == want {
			return i
		}
	}
	return -1
}

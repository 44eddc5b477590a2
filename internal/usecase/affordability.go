package usecase

import (
	"strings"

	"github.com/pennywise/backend/internal/domain"
)

// Keyword weights for the affordability heuristic
const (
	affordableKeywordWeight = 2
	expensiveKeywordWeight  = -3
)

// affordableKeywords raise the score when present anywhere in the result text
var affordableKeywords = []string{
	"cheap", "budget", "affordable", "discount", "deal", "save",
	"inexpensive", "low price", "bargain", "value", "economical",
	"free", "sale", "$", "under", "less than",
}

// expensiveKeywords lower the score when present anywhere in the result text
var expensiveKeywords = []string{
	"luxury", "premium", "expensive", "upscale", "high-end",
	"exclusive", "gourmet", "fine dining",
}

// ScoreAffordability estimates how budget-friendly a search result is.
// Each keyword counts once no matter how often it occurs; the score is unbounded
// and negative when a result reads as expensive.
func ScoreAffordability(result domain.SearchResult) int {
	text := strings.ToLower(result.Title + result.Snippet + result.Description)

	score := 0
	for _, keyword := range affordableKeywords {
		if strings.Contains(text, keyword) {
			score += affordableKeywordWeight
		}
	}
	for _, keyword := range expensiveKeywords {
		if strings.Contains(text, keyword) {
			score += expensiveKeywordWeight
		}
	}

	return score
}

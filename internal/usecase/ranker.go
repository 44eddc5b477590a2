package usecase

import (
	"sort"
	"strings"

	"github.com/pennywise/backend/internal/domain"
)

// RankResults orders results by mode and returns at most domain.MaxRankedSpots
// spots with dense 1-based ranks. Empty input yields an empty, non-nil slice.
func RankResults(results []domain.SearchResult, mode domain.RankMode) []domain.RankedSpot {
	ordered := results
	if mode == domain.RankAffordability {
		scored := scoreResults(results)
		// Stable so equal scores keep the provider order
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].AffordabilityScore > scored[j].AffordabilityScore
		})

		ordered = make([]domain.SearchResult, len(scored))
		for i, s := range scored {
			ordered[i] = s.SearchResult
		}
	}

	return topSpots(ordered)
}

// scoreResults annotates every result with its affordability score
func scoreResults(results []domain.SearchResult) []domain.ScoredResult {
	scored := make([]domain.ScoredResult, len(results))
	for i, r := range results {
		scored[i] = domain.ScoredResult{
			SearchResult:       r,
			AffordabilityScore: ScoreAffordability(r),
		}
	}
	return scored
}

// topSpots converts the first MaxRankedSpots results to ranked spots
func topSpots(results []domain.SearchResult) []domain.RankedSpot {
	n := len(results)
	if n > domain.MaxRankedSpots {
		n = domain.MaxRankedSpots
	}

	spots := make([]domain.RankedSpot, 0, n)
	for i := 0; i < n; i++ {
		r := results[i]
		spots = append(spots, domain.RankedSpot{
			Rank:        i + 1,
			Name:        strings.TrimSpace(r.Title),
			Description: spotDescription(r),
			URL:         r.URL,
		})
	}
	return spots
}

// spotDescription prefers the snippet and falls back to the provider description
func spotDescription(r domain.SearchResult) string {
	if s := strings.TrimSpace(r.Snippet); s != "" {
		return s
	}
	return strings.TrimSpace(r.Description)
}

package domain

import (
	"fmt"
	"strings"
)

// MaxRankedSpots caps every ranked or alternatives list
const MaxRankedSpots = 3

// SearchResult is a single web result returned by a search provider
type SearchResult struct {
	Title       string `json:"title"`
	Snippet     string `json:"snippet,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

// ScoredResult is a SearchResult annotated with its affordability score
type ScoredResult struct {
	SearchResult
	AffordabilityScore int `json:"affordabilityScore"`
}

// RankedSpot is one entry of the top-N slice presented to the user
type RankedSpot struct {
	Rank        int      `json:"rank"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Highlights  []string `json:"highlights,omitempty"`
}

// RankMode selects how search results are ordered before truncation
type RankMode int

const (
	// RankPlain keeps the provider order
	RankPlain RankMode = iota
	// RankAffordability orders by descending affordability score
	RankAffordability
)

// String implements fmt.Stringer
func (m RankMode) String() string {
	switch m {
	case RankPlain:
		return "plain"
	case RankAffordability:
		return "affordable"
	default:
		return fmt.Sprintf("RankMode(%d)", int(m))
	}
}

// ParseRankMode converts a user supplied mode name into a RankMode.
// An empty string means plain ranking.
func ParseRankMode(s string) (RankMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plain":
		return RankPlain, nil
	case "affordable", "affordability", "budget":
		return RankAffordability, nil
	default:
		return RankPlain, fmt.Errorf("%w: unknown rank mode %q", ErrInvalidRequest, s)
	}
}

// SpotRequest asks the search pipeline for the top spots matching a query
type SpotRequest struct {
	Query    string   `json:"query" binding:"required"`
	Location string   `json:"location,omitempty"`
	Mode     RankMode `json:"-"`
	Enhance  bool     `json:"enhance,omitempty"`
}

// SearchResponse is the outcome of the spot search pipeline.
// Error is set instead of returning a Go error so callers can always format it.
type SearchResponse struct {
	Query    string       `json:"query"`
	Location string       `json:"location,omitempty"`
	Summary  string       `json:"summary,omitempty"`
	Spots    []RankedSpot `json:"spots"`
	Error    string       `json:"error,omitempty"`
}

// AlternativesRequest asks for cheaper alternatives to an item
type AlternativesRequest struct {
	Item     string `json:"item" binding:"required"`
	Location string `json:"location,omitempty"`
}

// AlternativesResponse is the outcome of an alternatives lookup
type AlternativesResponse struct {
	Item         string       `json:"item"`
	Location     string       `json:"location,omitempty"`
	Alternatives []RankedSpot `json:"alternatives"`
	Error        string       `json:"error,omitempty"`
}

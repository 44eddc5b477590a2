package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pennywise/backend/internal/domain"
)

const enhancePromptTemplate = `You help people find good, budget-friendly places and products.
The user searched for: %s

Here are the top results as JSON:
%s

Rewrite each result for a chat message. Keep the same rank numbers.

You MUST respond with ONLY raw JSON. No explanation. No markdown.

Use this JSON format:

{
  "summary": "one sentence overview of the options",
  "spots": [
    {"rank": 1, "name": "short place name", "description": "one sentence", "highlights": ["short fact", "short fact"]}
  ]
}`

// Enhancement is the model's rewrite of a ranked result list
type Enhancement struct {
	Summary string              `json:"summary"`
	Spots   []domain.RankedSpot `json:"spots"`
}

// AIEnhancer re-summarizes ranked spots with the generative model
type AIEnhancer struct {
	model  domain.AIModel
	logger *zap.Logger
}

// NewAIEnhancer creates a new enhancer backed by model
func NewAIEnhancer(model domain.AIModel, logger *zap.Logger) *AIEnhancer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIEnhancer{
		model:  model,
		logger: logger.Named("ai_enhancer"),
	}
}

// Enhance asks the model for a summary and per-spot highlights, then merges the
// answer onto spots by rank. URLs always come from the original spots.
func (e *AIEnhancer) Enhance(ctx context.Context, query string, spots []domain.RankedSpot) (Enhancement, error) {
	if len(spots) == 0 {
		return Enhancement{Spots: spots}, nil
	}

	payload, err := json.Marshal(spots)
	if err != nil {
		return Enhancement{}, fmt.Errorf("marshal spots: %w", err)
	}

	resp, err := e.model.Generate(ctx, fmt.Sprintf(enhancePromptTemplate, query, payload), nil)
	if err != nil {
		return Enhancement{}, fmt.Errorf("%w: %v", domain.ErrAIModelFailure, err)
	}

	var rewritten Enhancement
	if err := decodeModelJSON(resp, &rewritten); err != nil {
		return Enhancement{}, err
	}

	return Enhancement{
		Summary: strings.TrimSpace(rewritten.Summary),
		Spots:   mergeEnhancedSpots(spots, rewritten.Spots),
	}, nil
}

// mergeEnhancedSpots overlays rewritten fields onto the original spots by rank
func mergeEnhancedSpots(original, rewritten []domain.RankedSpot) []domain.RankedSpot {
	byRank := make(map[int]domain.RankedSpot, len(rewritten))
	for _, s := range rewritten {
		byRank[s.Rank] = s
	}

	merged := make([]domain.RankedSpot, len(original))
	for i, spot := range original {
		if r, ok := byRank[spot.Rank]; ok {
			if name := strings.TrimSpace(r.Name); name != "" {
				spot.Name = name
			}
			if desc := strings.TrimSpace(r.Description); desc != "" {
				spot.Description = desc
			}
			spot.Highlights = nonEmpty(r.Highlights)
		}
		merged[i] = spot
	}
	return merged
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

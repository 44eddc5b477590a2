package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pennywise/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9$\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	CacheTTL   time.Duration
	MaxResults int
}

// SearchService runs the spot search pipeline: cache -> provider -> rank -> enhance
type SearchService struct {
	cache      domain.CacheRepository
	provider   domain.SearchProvider
	enhancer   *AIEnhancer
	cacheTTL   time.Duration
	maxResults int
	logger     *zap.Logger
}

// NewSearchService creates a new search service with dependencies.
// enhancer may be nil, in which case enhance requests return the plain ranking.
func NewSearchService(
	cache domain.CacheRepository,
	provider domain.SearchProvider,
	enhancer *AIEnhancer,
	config SearchServiceConfig,
	logger *zap.Logger,
) *SearchService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &SearchService{
		cache:      cache,
		provider:   provider,
		enhancer:   enhancer,
		cacheTTL:   cacheTTL,
		maxResults: maxResults,
		logger:     logger.Named("search_service"),
	}
}

// FindSpots looks up the top spots for a request.
// Failures are reported in SearchResponse.Error, never as a Go error.
func (s *SearchService) FindSpots(ctx context.Context, request domain.SpotRequest) domain.SearchResponse {
	resp := domain.SearchResponse{
		Query:    strings.TrimSpace(request.Query),
		Location: strings.TrimSpace(request.Location),
		Spots:    []domain.RankedSpot{},
	}
	if resp.Query == "" {
		resp.Error = domain.ErrInvalidRequest.Error() + ": query is required"
		return resp
	}

	query := buildSpotQuery(resp.Query, resp.Location, request.Mode)
	results, err := s.search(ctx, query)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}

	resp.Spots = RankResults(results, request.Mode)

	if request.Enhance && s.enhancer != nil && len(resp.Spots) > 0 {
		enhanced, err := s.enhancer.Enhance(ctx, query, resp.Spots)
		if err != nil {
			// Keep the plain ranking
			s.logger.Warn("enhance spots failed", zap.String("query", query), zap.Error(err))
		} else {
			resp.Summary = enhanced.Summary
			resp.Spots = enhanced.Spots
		}
	}

	return resp
}

// FindAlternatives looks up cheaper alternatives to an item, ranked by affordability
func (s *SearchService) FindAlternatives(ctx context.Context, request domain.AlternativesRequest) domain.AlternativesResponse {
	resp := domain.AlternativesResponse{
		Item:         strings.TrimSpace(request.Item),
		Location:     strings.TrimSpace(request.Location),
		Alternatives: []domain.RankedSpot{},
	}
	if resp.Item == "" {
		resp.Error = domain.ErrInvalidRequest.Error() + ": item is required"
		return resp
	}

	query := "cheaper alternatives to " + cleanItemQuery(resp.Item)
	if resp.Location != "" {
		query += " near " + resp.Location
	}

	results, err := s.search(ctx, query)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}

	resp.Alternatives = RankResults(results, domain.RankAffordability)
	return resp
}

// search wraps the provider call site: cache first, then the provider.
// Provider errors are returned for the caller to convert into an error field.
func (s *SearchService) search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	cacheKey := generateCacheKey(s.provider.Name(), query)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		s.logger.Debug("search cache hit", zap.String("query", query))
		return cached, nil
	}

	startAt := time.Now()
	results, err := s.provider.Search(ctx, query, s.maxResults)
	if err != nil {
		s.logger.Warn("search provider failed",
			zap.String("provider", s.provider.Name()),
			zap.String("query", query),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchProviderFailure, err)
	}

	s.logger.Info("search provider succeeded",
		zap.String("provider", s.provider.Name()),
		zap.String("query", query),
		zap.Int("results", len(results)),
		zap.Duration("cost", time.Since(startAt)))

	if len(results) > 0 {
		if err := s.setInCache(ctx, cacheKey, results); err != nil {
			// Caching is best effort
			s.logger.Warn("cache search results", zap.Error(err))
		}
	}

	return results, nil
}

// buildSpotQuery turns the user query into the provider query
func buildSpotQuery(query, location string, mode domain.RankMode) string {
	if mode == domain.RankAffordability && !strings.Contains(strings.ToLower(query), "affordable") {
		query = "affordable " + query
	}
	if location != "" {
		query = fmt.Sprintf("%s in %s", query, location)
	}
	return query
}

// generateCacheKey creates a normalized cache key.
// Format: "search:{provider}:{normalized_query}"
func generateCacheKey(provider, query string) string {
	return fmt.Sprintf("search:%s:%s", provider, normalizeForCacheKey(query))
}

// normalizeForCacheKey converts to lowercase, removes special characters and collapses whitespace
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// getFromCache retrieves search results from cache.
// Results are stored as a JSON string so every cache backend round-trips them the same way.
func (s *SearchService) getFromCache(ctx context.Context, key string) ([]domain.SearchResult, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	raw, ok := value.(string)
	if !ok {
		return nil, domain.ErrCacheMiss
	}

	var results []domain.SearchResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, domain.ErrCacheMiss
	}
	return results, nil
}

// setInCache stores search results in cache
func (s *SearchService) setInCache(ctx context.Context, key string, results []domain.SearchResult) error {
	if s.cache == nil {
		return nil
	}

	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, string(data), s.cacheTTL)
}

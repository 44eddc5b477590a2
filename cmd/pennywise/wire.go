package main

import (
	"context"

	"github.com/Laisky/errors/v2"
	"go.uber.org/zap"

	"github.com/pennywise/backend/config"
	"github.com/pennywise/backend/internal/domain"
	"github.com/pennywise/backend/internal/infrastructure/cache"
	"github.com/pennywise/backend/internal/infrastructure/chatdb"
	"github.com/pennywise/backend/internal/infrastructure/gemini"
	"github.com/pennywise/backend/internal/infrastructure/search"
	"github.com/pennywise/backend/internal/infrastructure/telegram"
	"github.com/pennywise/backend/internal/usecase"
)

// closableCache is a cache backend that owns resources
type closableCache interface {
	domain.CacheRepository
	Close() error
}

func newCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (closableCache, error) {
	switch cfg.Cache.Type {
	case "redis":
		c, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		logger.Info("using redis cache", zap.Duration("ttl", cfg.Cache.TTL))
		return c, nil
	default:
		logger.Info("using memory cache", zap.Duration("ttl", cfg.Cache.TTL))
		return cache.NewMemoryCache(0), nil
	}
}

func newSearchProvider(cfg *config.Config, logger *zap.Logger) (domain.SearchProvider, error) {
	switch cfg.Search.Provider {
	case "exa":
		return search.NewExaClient(cfg.Search.APIKey, cfg.Search.BaseURL, logger), nil
	case "google":
		return search.NewGoogleClient(cfg.Search.APIKey, cfg.Search.EngineID, cfg.Search.BaseURL, logger), nil
	default:
		return nil, errors.Errorf("unknown search provider %q", cfg.Search.Provider)
	}
}

// newAIModel returns nil without error when no API key is configured
func newAIModel(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domain.AIModel, error) {
	if cfg.AI.APIKey == "" {
		return nil, nil
	}
	return gemini.NewClient(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL, logger)
}

func newTransport(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domain.MessagingTransport, error) {
	switch cfg.Messaging.Transport {
	case "telegram":
		return telegram.New(cfg.Messaging.TelegramToken, cfg.Messaging.TelegramAPI, cfg.Messaging.PollInterval, logger)
	case "chatdb":
		return chatdb.New(ctx, chatdb.Config{
			Path:         cfg.Messaging.ChatDBPath,
			PollInterval: cfg.Messaging.PollInterval,
		}, logger)
	default:
		return nil, errors.Errorf("unknown messaging transport %q", cfg.Messaging.Transport)
	}
}

// newSearchService wires cache, provider and an enhancer when model is set.
// The returned cleanup releases the cache.
func newSearchService(ctx context.Context, cfg *config.Config, model domain.AIModel, logger *zap.Logger) (*usecase.SearchService, func(), error) {
	if err := cfg.ValidateSearch(); err != nil {
		return nil, nil, err
	}

	c, err := newCache(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := c.Close(); err != nil {
			logger.Warn("close cache", zap.Error(err))
		}
	}

	provider, err := newSearchProvider(cfg, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	var enhancer *usecase.AIEnhancer
	if model != nil {
		enhancer = usecase.NewAIEnhancer(model, logger)
	} else {
		logger.Warn("AI API key not configured, enhance requests return the plain ranking")
	}

	svc := usecase.NewSearchService(c, provider, enhancer, usecase.SearchServiceConfig{
		CacheTTL:   cfg.Cache.TTL,
		MaxResults: cfg.Search.MaxResults,
	}, logger)
	return svc, cleanup, nil
}

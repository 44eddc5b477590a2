package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SearchProvider defines the interface for a hosted web search API
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// AIModel defines the interface for a generative model.
// image may be nil for text-only prompts.
type AIModel interface {
	Generate(ctx context.Context, prompt string, image *InlineImage) (string, error)
}

// MessagingTransport delivers and receives chat messages
type MessagingTransport interface {
	// UnreadMessages returns unread messages grouped by sender
	UnreadMessages(ctx context.Context) ([]UnreadThread, error)
	// Send delivers text to recipient. It wraps ErrTransportUnavailable when
	// the underlying messaging application is not running.
	Send(ctx context.Context, recipient, text string) error
	// StartWatching begins polling and invokes handlers for every new message.
	// It returns once polling has been started.
	StartWatching(ctx context.Context, handlers WatchHandlers) error
	// StopWatching stops the poll loop; it is safe to call more than once
	StopWatching()
	// Close releases all transport resources
	Close() error
}

package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrSearchProviderFailure is returned when the web search API request fails
	ErrSearchProviderFailure = errors.New("search provider request failed")

	// ErrAIModelFailure is returned when the generative model request fails
	ErrAIModelFailure = errors.New("AI model request failed")

	// ErrUnparsableResponse is returned when a model response is not the JSON we asked for
	ErrUnparsableResponse = errors.New("model response is not valid JSON")

	// ErrTransportUnavailable is returned by Send when the messaging application or
	// service behind the transport is not running
	ErrTransportUnavailable = errors.New("messaging transport is not running")

	// ErrTransportClosed is returned when a closed transport is used
	ErrTransportClosed = errors.New("messaging transport is closed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)

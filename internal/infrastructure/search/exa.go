package search

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"
	"go.uber.org/zap"

	"github.com/pennywise/backend/internal/domain"
)

// DefaultExaBaseURL is the public neural search endpoint
const DefaultExaBaseURL = "https://api.exa.ai"

// ExaClient handles communication with the Exa neural search API
type ExaClient struct {
	httpClient httpDoer
	apiKey     string
	baseURL    string
	logger     *zap.Logger
}

// NewExaClient creates a new Exa API client. An empty baseURL selects DefaultExaBaseURL.
func NewExaClient(apiKey, baseURL string, logger *zap.Logger) *ExaClient {
	if baseURL == "" {
		baseURL = DefaultExaBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExaClient{
		httpClient: newHTTPClient(),
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.Named("exa_search"),
	}
}

// exaSearchRequest is the POST /search body
type exaSearchRequest struct {
	Query      string      `json:"query"`
	Type       string      `json:"type"`
	NumResults int         `json:"numResults"`
	Contents   exaContents `json:"contents"`
}

type exaContents struct {
	Text       exaTextOptions       `json:"text"`
	Highlights exaHighlightsOptions `json:"highlights"`
}

type exaTextOptions struct {
	MaxCharacters int `json:"maxCharacters"`
}

type exaHighlightsOptions struct {
	NumSentences     int `json:"numSentences"`
	HighlightsPerURL int `json:"highlightsPerUrl"`
}

// exaSearchResponse models the JSON payload returned by POST /search
type exaSearchResponse struct {
	RequestID string      `json:"requestId"`
	Results   []exaResult `json:"results"`
}

type exaResult struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Text       string   `json:"text"`
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
}

// Name implements domain.SearchProvider
func (c *ExaClient) Name() string { return "exa" }

// Search runs a natural-language query and returns up to maxResults results
func (c *ExaClient) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	if c.apiKey == "" {
		return nil, errors.New("exa api key is not configured")
	}

	payload, err := json.Marshal(exaSearchRequest{
		Query:      query,
		Type:       "auto",
		NumResults: maxResults,
		Contents: exaContents{
			Text:       exaTextOptions{MaxCharacters: 300},
			Highlights: exaHighlightsOptions{NumSentences: 2, HighlightsPerURL: 1},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal exa request")
	}

	endpoint := c.baseURL + "/search"
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrapf(err, "create request to `%s`", endpoint)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	body, err := doRequest(ctx, c.httpClient, c.logger, req)
	if err != nil {
		return nil, errors.Wrapf(err, "exa search %q", query)
	}

	var resp exaSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "decode exa response")
	}

	if len(resp.Results) == 0 {
		c.logger.Warn("exa search returned no results", zap.String("query", query))
	}

	return mapExaResults(resp.Results), nil
}

package search

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Laisky/errors/v2"
	"go.uber.org/zap"

	"github.com/pennywise/backend/internal/domain"
)

const (
	// DefaultGoogleBaseURL is the Programmable Search endpoint
	DefaultGoogleBaseURL = "https://www.googleapis.com/customsearch/v1"
	// googleMaxNum is the largest page size the API accepts
	googleMaxNum = 10
)

// GoogleClient provides access to the Google Programmable Search API
type GoogleClient struct {
	httpClient httpDoer
	apiKey     string
	cx         string
	endpoint   string
	logger     *zap.Logger
}

// NewGoogleClient instantiates a Programmable Search client with the given credentials.
// An empty endpoint selects DefaultGoogleBaseURL.
func NewGoogleClient(apiKey, cx, endpoint string, logger *zap.Logger) *GoogleClient {
	if endpoint == "" {
		endpoint = DefaultGoogleBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleClient{
		httpClient: newHTTPClient(),
		apiKey:     strings.TrimSpace(apiKey),
		cx:         strings.TrimSpace(cx),
		endpoint:   endpoint,
		logger:     logger.Named("google_search"),
	}
}

// customSearchResponse models the parts of the Custom Search payload we read
type customSearchResponse struct {
	Items []customSearchItem `json:"items"`
}

type customSearchItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Pagemap struct {
		Metatags []map[string]string `json:"metatags"`
	} `json:"pagemap"`
}

// Name implements domain.SearchProvider
func (c *GoogleClient) Name() string { return "google" }

// Search executes a Programmable Search query and returns up to maxResults results
func (c *GoogleClient) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	if c.apiKey == "" {
		return nil, errors.New("google api key is not configured")
	}
	if c.cx == "" {
		return nil, errors.New("google search engine id (cx) is not configured")
	}

	req, err := http.NewRequest(http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "create request to `%s`", c.endpoint)
	}

	num := maxResults
	if num <= 0 || num > googleMaxNum {
		num = googleMaxNum
	}

	params := req.URL.Query()
	params.Set("key", c.apiKey)
	params.Set("cx", c.cx)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))
	req.URL.RawQuery = params.Encode()

	body, err := doRequest(ctx, c.httpClient, c.logger, req)
	if err != nil {
		return nil, errors.Wrapf(err, "google search %q", query)
	}

	var resp customSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "decode google response")
	}

	if len(resp.Items) == 0 {
		c.logger.Warn("google search returned no results", zap.String("query", query))
	}

	return mapGoogleItems(resp.Items), nil
}

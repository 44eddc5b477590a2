// Package search implements domain.SearchProvider on top of hosted web search APIs.
package search

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Laisky/errors/v2"
	"go.uber.org/zap"
)

const (
	httpRequestTimeout = 30 * time.Second
	// logBodyLimit caps the number of response bytes logged for debugging
	logBodyLimit = 4096
	userAgent    = "Pennywise/1.0"
	redactedMark = "REDACTED"
)

// secretQueryParams are query parameters that carry credentials
var secretQueryParams = []string{"key", "api_key", "apikey", "token"}

// httpDoer is the subset of *http.Client used by the providers
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: httpRequestTimeout}
}

// doRequest executes req and returns the body of a 200 response.
// Any other status is an error carrying a truncated body.
func doRequest(ctx context.Context, client httpDoer, logger *zap.Logger, req *http.Request) ([]byte, error) {
	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", userAgent)

	logger.Debug("outgoing http request",
		zap.String("method", req.Method),
		zap.String("url", redactURL(req.URL)))

	startAt := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(redactURLError(err), "send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	truncatedBody, truncated := truncateForLog(body, logBodyLimit)
	logger.Debug("incoming http response",
		zap.String("method", req.Method),
		zap.Int("status", resp.StatusCode),
		zap.String("body", truncatedBody),
		zap.Bool("body_truncated", truncated),
		zap.Duration("cost", time.Since(startAt)))

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("status %d: %s", resp.StatusCode, truncatedBody)
	}

	return body, nil
}

func truncateForLog(body []byte, limit int) (string, bool) {
	if len(body) <= limit {
		return string(body), false
	}
	return string(body[:limit]), true
}

// redactURL renders u with userinfo and credential query parameters masked
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	masked := *u
	params := masked.Query()
	changed := false
	for _, name := range secretQueryParams {
		if params.Has(name) {
			params.Set(name, redactedMark)
			changed = true
		}
	}
	if changed {
		masked.RawQuery = params.Encode()
	}
	return masked.Redacted()
}

// redactURLError masks credentials in the URL the http client puts into
// transport errors
func redactURLError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	u, parseErr := url.Parse(urlErr.URL)
	if parseErr != nil {
		return &url.Error{Op: urlErr.Op, URL: redactedMark, Err: urlErr.Err}
	}
	return &url.Error{Op: urlErr.Op, URL: redactURL(u), Err: urlErr.Err}
}

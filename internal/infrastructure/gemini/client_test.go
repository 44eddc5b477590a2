package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pennywise/backend/internal/domain"
)

var _ domain.AIModel = (*Client)(nil)

type generateRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text       string `json:"text"`
			InlineData *struct {
				MIMEType string `json:"mimeType"`
				Data     string `json:"data"`
			} `json:"inlineData"`
		} `json:"parts"`
	} `json:"contents"`
}

func newTestServer(t *testing.T, status int, reply string, got *generateRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/test-model:generateContent"), r.URL.Path)
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), " ", "", "", nil)
	assert.Error(t, err)
}

func TestClient_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("text and image parts", func(t *testing.T) {
		var got generateRequest
		server := newTestServer(t, http.StatusOK,
			`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"total\":7}"}]}}]}`, &got)

		client, err := NewClient(ctx, "test-key", "test-model", server.URL, zaptest.NewLogger(t))
		require.NoError(t, err)

		text, err := client.Generate(ctx, "parse this", &domain.InlineImage{Data: []byte("img"), MIMEType: "image/png"})
		require.NoError(t, err)
		assert.Equal(t, `{"total":7}`, text)

		require.Len(t, got.Contents, 1)
		assert.Equal(t, "user", got.Contents[0].Role)
		require.Len(t, got.Contents[0].Parts, 2)
		assert.Equal(t, "parse this", got.Contents[0].Parts[0].Text)
		require.NotNil(t, got.Contents[0].Parts[1].InlineData)
		assert.Equal(t, "image/png", got.Contents[0].Parts[1].InlineData.MIMEType)
	})

	t.Run("text only", func(t *testing.T) {
		var got generateRequest
		server := newTestServer(t, http.StatusOK,
			`{"candidates":[{"content":{"role":"model","parts":[{"text":"{}"}]}}]}`, &got)

		client, err := NewClient(ctx, "test-key", "test-model", server.URL, nil)
		require.NoError(t, err)

		_, err = client.Generate(ctx, "summarize", nil)
		require.NoError(t, err)
		require.Len(t, got.Contents, 1)
		assert.Len(t, got.Contents[0].Parts, 1)
	})

	t.Run("api error", func(t *testing.T) {
		server := newTestServer(t, http.StatusBadRequest,
			`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, nil)

		client, err := NewClient(ctx, "bad-key", "test-model", server.URL, nil)
		require.NoError(t, err)

		_, err = client.Generate(ctx, "p", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "test-model")
	})

	t.Run("empty candidates", func(t *testing.T) {
		server := newTestServer(t, http.StatusOK, `{"candidates":[]}`, nil)

		client, err := NewClient(ctx, "test-key", "test-model", server.URL, nil)
		require.NoError(t, err)

		_, err = client.Generate(ctx, "p", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty response")
	})
}

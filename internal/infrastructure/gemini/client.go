// Package gemini implements domain.AIModel with the Google Gen AI SDK.
package gemini

import (
	"context"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/pennywise/backend/internal/domain"
)

// DefaultModel is used when no model name is configured
const DefaultModel = "gemini-2.5-flash"

// Client sends prompts, optionally with an inline image, to a Gemini model
type Client struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewClient creates a Gemini client. An empty baseURL uses the public endpoint.
func NewClient(ctx context.Context, apiKey, model, baseURL string, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}

	return &Client{
		client: client,
		model:  model,
		logger: logger.Named("gemini"),
	}, nil
}

// Generate implements domain.AIModel. The model is asked for a JSON response.
func (c *Client) Generate(ctx context.Context, prompt string, image *domain.InlineImage) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if image != nil {
		parts = append(parts, genai.NewPartFromBytes(image.Data, image.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	startAt := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", errors.Wrapf(err, "generate content with %s", c.model)
	}

	text := resp.Text()
	c.logger.Debug("generate content",
		zap.String("model", c.model),
		zap.Bool("with_image", image != nil),
		zap.Int("response_len", len(text)),
		zap.Duration("cost", time.Since(startAt)))

	if strings.TrimSpace(text) == "" {
		return "", errors.Errorf("empty response from %s", c.model)
	}
	return text, nil
}

package usecase

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/pennywise/backend/internal/domain"
)

// ReceiptPrompt is the fixed instruction sent with every receipt image
const ReceiptPrompt = `You are a receipt parser. Read the attached receipt image and extract every purchased line item.

You MUST respond with ONLY raw JSON. No explanation. No markdown.

Use this JSON format:

{
  "items": [
    {"name": "item name", "quantity": 1, "price": 0.00}
  ],
  "total": 0.00
}

"quantity" is a whole number of at least 1. "price" is the unit price as a number.
"total" is the receipt total as a number.

If the image is not a receipt or you cannot read it, respond with:

{"error": "short reason"}`

// receiptPayload mirrors both shapes the model may return
type receiptPayload struct {
	Items []struct {
		Name     string  `json:"name"`
		Quantity float64 `json:"quantity"`
		Price    float64 `json:"price"`
	} `json:"items"`
	Total *float64 `json:"total"`
	Error string   `json:"error"`
}

// ReceiptAnalyzer extracts line items and totals from receipt images
type ReceiptAnalyzer struct {
	model  domain.AIModel
	logger *zap.Logger
}

// NewReceiptAnalyzer creates a new receipt analyzer backed by model
func NewReceiptAnalyzer(model domain.AIModel, logger *zap.Logger) *ReceiptAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptAnalyzer{
		model:  model,
		logger: logger.Named("receipt_analyzer"),
	}
}

// Analyze sends the image to the model and parses its answer.
// Provider and parse problems come back as domain.ReceiptFailure, never as an error.
func (a *ReceiptAnalyzer) Analyze(ctx context.Context, image []byte, mimeType string) domain.ReceiptAnalysis {
	if len(image) == 0 {
		return domain.ReceiptFailure{Message: "the image is empty"}
	}
	if mimeType == "" {
		mimeType = mimetype.Detect(image).String()
	}

	resp, err := a.model.Generate(ctx, ReceiptPrompt, &domain.InlineImage{Data: image, MIMEType: mimeType})
	if err != nil {
		a.logger.Warn("receipt model request failed", zap.Error(err))
		return domain.ReceiptFailure{Message: err.Error()}
	}

	analysis, err := parseReceipt(resp)
	if err != nil {
		a.logger.Warn("unparsable receipt response", zap.Error(err), zap.Int("response_len", len(resp)))
		return domain.ReceiptFailure{Message: err.Error()}
	}

	return analysis
}

// AnalyzeFile reads an image from disk and analyzes it. The returned error only
// covers reading the file; analysis problems are reported as domain.ReceiptFailure.
func (a *ReceiptAnalyzer) AnalyzeFile(ctx context.Context, path, mimeType string) (domain.ReceiptAnalysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read receipt image %q: %w", path, err)
	}

	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(data).String()
	}

	a.logger.Debug("analyzing receipt file",
		zap.String("path", path),
		zap.String("mime_type", mimeType),
		zap.Int("size", len(data)))

	return a.Analyze(ctx, data, mimeType), nil
}

// parseReceipt turns a model response into one of the ReceiptAnalysis variants
func parseReceipt(resp string) (domain.ReceiptAnalysis, error) {
	var payload receiptPayload
	if err := decodeModelJSON(resp, &payload); err != nil {
		return nil, err
	}

	if msg := strings.TrimSpace(payload.Error); msg != "" {
		return domain.ReceiptFailure{Message: msg}, nil
	}

	if payload.Total == nil && len(payload.Items) == 0 {
		return nil, fmt.Errorf("%w: no items or total in response", domain.ErrUnparsableResponse)
	}

	receipt := domain.ReceiptSuccess{Items: make([]domain.ReceiptItem, 0, len(payload.Items))}
	for _, item := range payload.Items {
		if item.Price < 0 {
			return nil, fmt.Errorf("%w: negative price for %q", domain.ErrUnparsableResponse, item.Name)
		}
		// models sometimes answer 2.0 for a whole quantity
		qty := int(math.Round(item.Quantity))
		if qty < 1 {
			qty = 1
		}
		receipt.Items = append(receipt.Items, domain.ReceiptItem{
			Name:     strings.TrimSpace(item.Name),
			Quantity: qty,
			Price:    item.Price,
		})
	}

	if payload.Total != nil {
		receipt.Total = *payload.Total
	} else {
		for _, item := range receipt.Items {
			receipt.Total += float64(item.Quantity) * item.Price
		}
	}
	if receipt.Total < 0 {
		return nil, fmt.Errorf("%w: negative total", domain.ErrUnparsableResponse)
	}

	return receipt, nil
}

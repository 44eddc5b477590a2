package http

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pennywise/backend/internal/domain"
	"github.com/pennywise/backend/internal/usecase"
)

const (
	// MaxReceiptUploadBytes caps receipt image uploads
	MaxReceiptUploadBytes = 10 << 20

	serviceName    = "pennywise-backend"
	serviceVersion = "1.0.0"
)

// SpotSearcher runs the spot and alternatives search pipelines
type SpotSearcher interface {
	FindSpots(ctx context.Context, request domain.SpotRequest) domain.SearchResponse
	FindAlternatives(ctx context.Context, request domain.AlternativesRequest) domain.AlternativesResponse
}

// ReceiptAnalyzer extracts line items from an in-memory receipt image
type ReceiptAnalyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType string) domain.ReceiptAnalysis
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search   SpotSearcher
	receipts ReceiptAnalyzer
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler. Either dependency may be nil, in
// which case its endpoints answer 503.
func NewHandler(search SpotSearcher, receipts ReceiptAnalyzer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		search:   search,
		receipts: receipts,
		logger:   logger.Named("http"),
	}
}

// spotSearchRequest is the JSON body of POST /api/v1/spots/search
type spotSearchRequest struct {
	Query    string `json:"query" binding:"required"`
	Location string `json:"location"`
	Mode     string `json:"mode"`
	Enhance  bool   `json:"enhance"`
}

type spotSearchResponse struct {
	domain.SearchResponse
	Text string `json:"text"`
}

type alternativesResponse struct {
	domain.AlternativesResponse
	Text string `json:"text"`
}

type receiptResponse struct {
	Items []domain.ReceiptItem `json:"items,omitempty"`
	Total *float64             `json:"total,omitempty"`
	Error string               `json:"error,omitempty"`
	Text  string               `json:"text"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// SearchSpots handles spot search requests
func (h *Handler) SearchSpots(c *gin.Context) {
	if h.search == nil {
		abortUnavailable(c, "search")
		return
	}

	var req spotSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		abortBadRequest(c, "query must not be blank")
		return
	}

	mode, err := domain.ParseRankMode(req.Mode)
	if err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	resp := h.search.FindSpots(c.Request.Context(), domain.SpotRequest{
		Query:    req.Query,
		Location: req.Location,
		Mode:     mode,
		Enhance:  req.Enhance,
	})

	c.JSON(statusFor(resp.Error), spotSearchResponse{
		SearchResponse: resp,
		Text:           usecase.FormatSpots(resp),
	})
}

// SearchAlternatives handles cheaper-alternative lookups
func (h *Handler) SearchAlternatives(c *gin.Context) {
	if h.search == nil {
		abortUnavailable(c, "search")
		return
	}

	var req domain.AlternativesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(req.Item) == "" {
		abortBadRequest(c, "item must not be blank")
		return
	}

	resp := h.search.FindAlternatives(c.Request.Context(), req)

	c.JSON(statusFor(resp.Error), alternativesResponse{
		AlternativesResponse: resp,
		Text:                 usecase.FormatAlternatives(resp),
	})
}

// AnalyzeReceipt handles multipart receipt image uploads in the "image" field
func (h *Handler) AnalyzeReceipt(c *gin.Context) {
	if h.receipts == nil {
		abortUnavailable(c, "receipt analysis")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxReceiptUploadBytes)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		abortBadRequest(c, "multipart field \"image\" is required")
		return
	}
	if fileHeader.Size > MaxReceiptUploadBytes {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image is larger than 10MB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		abortBadRequest(c, "cannot open uploaded image")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		abortBadRequest(c, "cannot read uploaded image")
		return
	}

	mime := mimetype.Detect(data).String()
	if !strings.HasPrefix(mime, "image/") {
		c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported media type " + mime})
		return
	}

	analysis := h.receipts.Analyze(c.Request.Context(), data, mime)
	text := usecase.FormatReceiptAnalysis(analysis)

	switch a := analysis.(type) {
	case domain.ReceiptSuccess:
		total := a.Total
		c.JSON(http.StatusOK, receiptResponse{Items: a.Items, Total: &total, Text: text})
	case domain.ReceiptFailure:
		h.logger.Info("receipt analysis failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("reason", a.Message))
		c.JSON(http.StatusUnprocessableEntity, receiptResponse{Error: a.Message, Text: text})
	}
}

// statusFor maps a pipeline error field to an HTTP status
func statusFor(errMsg string) int {
	if errMsg == "" {
		return http.StatusOK
	}
	return http.StatusBadGateway
}

func abortBadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

func abortUnavailable(c *gin.Context, feature string) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": feature + " is not configured"})
}

package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pennywise/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = MaxReceiptUploadBytes

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		spots := v1.Group("/spots")
		{
			spots.POST("/search", handler.SearchSpots)
			spots.POST("/alternatives", handler.SearchAlternatives)
		}

		receipts := v1.Group("/receipts")
		{
			receipts.POST("/analyze", handler.AnalyzeReceipt)
		}
	}

	return router
}

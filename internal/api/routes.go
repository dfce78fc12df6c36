package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes. metricsHandler serves the
// Prometheus registry and may be nil.
func SetupRoutes(router *gin.Engine, handler *Handler, metricsHandler http.Handler) {
	// Health and readiness checks
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)

	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Ad-hoc enrichment endpoints
		enrich := v1.Group("/enrich")
		{
			enrich.POST("", handler.Enrich)            // POST /api/v1/enrich
			enrich.POST("/batch", handler.EnrichBatch) // POST /api/v1/enrich/batch
		}

		// Ingestion and pipeline control
		v1.POST("/reviews", handler.IngestReview) // POST /api/v1/reviews
		v1.POST("/drain", handler.Drain)          // POST /api/v1/drain

		// Statistics
		v1.GET("/stats", handler.GetStats) // GET /api/v1/stats
	}
}

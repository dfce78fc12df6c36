// Package api exposes the ops HTTP surface: health, stats, metrics, and
// ad-hoc enrichment for debugging and backfills.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sercanai/screenaso/internal/domain"
	"github.com/sercanai/screenaso/internal/enricher"
	"github.com/sercanai/screenaso/internal/logger"
	"github.com/sercanai/screenaso/internal/processor"
)

const readyCheckWait = 2 * time.Second

// ReviewStore is the persistence surface the handlers need.
// storage.ReviewRepository satisfies this.
type ReviewStore interface {
	InsertRaw(ctx context.Context, raw *domain.RawReview) error
	StatusCounts(ctx context.Context) (map[string]int64, error)
}

// Handler handles HTTP requests for the enrichment API.
type Handler struct {
	enricher *enricher.Enricher
	batch    *processor.BatchProcessor
	poller   *processor.Poller
	store    ReviewStore
	log      logger.Logger

	serviceName    string
	serviceVersion string
}

// NewHandler creates an API handler. poller and store may be nil when
// the service runs enrich-only.
func NewHandler(
	e *enricher.Enricher,
	batch *processor.BatchProcessor,
	poller *processor.Poller,
	store ReviewStore,
	log logger.Logger,
	serviceName, serviceVersion string,
) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		enricher:       e,
		batch:          batch,
		poller:         poller,
		store:          store,
		log:            log,
		serviceName:    serviceName,
		serviceVersion: serviceVersion,
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.serviceName,
		"version": h.serviceVersion,
	})
}

// ReadyCheck handles GET /ready. Ready means the review store answers.
func (h *Handler) ReadyCheck(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readyCheckWait)
	defer cancel()
	if _, err := h.store.StatusCounts(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// EnrichRequest represents a single ad-hoc enrichment request.
type EnrichRequest struct {
	Review *domain.RawReview `json:"review" binding:"required"`
}

// EnrichResponse represents an ad-hoc enrichment response.
type EnrichResponse struct {
	Result *domain.EnrichedReview `json:"result,omitempty"`
	Status string                 `json:"status"`
	Error  string                 `json:"error,omitempty"`
}

// Enrich handles POST /api/v1/enrich. The result is returned but not
// persisted; use the ingestion endpoint for durable processing.
func (h *Handler) Enrich(c *gin.Context) {
	var req EnrichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid enrich request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.enricher.Enrich(c.Request.Context(), *req.Review)
	if errors.Is(err, enricher.ErrRedactionFailed) {
		c.JSON(http.StatusUnprocessableEntity, EnrichResponse{
			Status: domain.StatusWithheld,
			Error:  err.Error(),
		})
		return
	}
	if err != nil {
		h.log.Error("enrichment failed",
			logger.String("review_id", req.Review.ID),
			logger.Error(err))
		c.JSON(http.StatusInternalServerError, EnrichResponse{
			Status: domain.StatusFailed,
			Error:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, EnrichResponse{
		Result: &rec,
		Status: domain.StatusEnriched,
	})
}

// BatchEnrichRequest represents a batch enrichment request.
type BatchEnrichRequest struct {
	Reviews []domain.RawReview `json:"reviews" binding:"required,min=1,max=100"`
}

// BatchEnrichResponse represents a batch enrichment response.
type BatchEnrichResponse struct {
	Results []EnrichResponse `json:"results"`
	Total   int              `json:"total"`
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
}

// EnrichBatch handles POST /api/v1/enrich/batch
func (h *Handler) EnrichBatch(c *gin.Context) {
	var req BatchEnrichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid batch enrich request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results := h.batch.Process(c.Request.Context(), req.Reviews)

	out := BatchEnrichResponse{Total: len(results)}
	for _, result := range results {
		switch {
		case errors.Is(result.Err, enricher.ErrRedactionFailed):
			out.Failed++
			out.Results = append(out.Results, EnrichResponse{
				Status: domain.StatusWithheld,
				Error:  result.Err.Error(),
			})
		case result.Err != nil:
			out.Failed++
			out.Results = append(out.Results, EnrichResponse{
				Status: domain.StatusFailed,
				Error:  result.Err.Error(),
			})
		default:
			out.Success++
			out.Results = append(out.Results, EnrichResponse{
				Result: result.Enriched,
				Status: domain.StatusEnriched,
			})
		}
	}

	c.JSON(http.StatusOK, out)
}

// IngestReview handles POST /api/v1/reviews, storing a raw review in
// pending state for the poller to pick up.
func (h *Handler) IngestReview(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "review store not configured"})
		return
	}

	var raw domain.RawReview
	if err := c.ShouldBindJSON(&raw); err != nil {
		h.log.Warn("invalid review payload", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if raw.ID == "" || raw.AppID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id and app_id are required"})
		return
	}

	if err := h.store.InsertRaw(c.Request.Context(), &raw); err != nil {
		h.log.Error("failed to store review",
			logger.String("review_id", raw.ID),
			logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"id":     raw.ID,
		"status": domain.StatusPending,
	})
}

// GetStats handles GET /api/v1/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats := gin.H{
		"service":          h.serviceName,
		"version":          h.serviceVersion,
		"enricher_version": h.enricher.Version(),
	}

	if h.store != nil {
		counts, err := h.store.StatusCounts(c.Request.Context())
		if err != nil {
			h.log.Error("failed to read status counts", logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		stats["reviews"] = counts
	}
	if h.poller != nil {
		stats["poller"] = h.poller.Stats()
	}

	c.JSON(http.StatusOK, stats)
}

// Drain handles POST /api/v1/drain, processing one pending batch out of
// cycle.
func (h *Handler) Drain(c *gin.Context) {
	if h.poller == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "poller not configured"})
		return
	}

	if err := h.poller.ProcessPending(c.Request.Context()); err != nil {
		h.log.Error("manual drain failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "drained"})
}

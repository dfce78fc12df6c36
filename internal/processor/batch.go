// Package processor drives enrichment: a worker pool fans a batch of
// raw reviews across the pipeline, and a poller feeds it from the store.
package processor

import (
	"context"
	"sync"
	"time"

	"github.com/sercanai/screenaso/internal/domain"
	"github.com/sercanai/screenaso/internal/enricher"
	"github.com/sercanai/screenaso/internal/logger"
	"github.com/sercanai/screenaso/internal/telemetry"
)

const defaultConcurrency = 4

// Result holds the outcome of enriching a single review.
type Result struct {
	Raw      domain.RawReview
	Enriched *domain.EnrichedReview
	Err      error
}

// BatchProcessor enriches reviews in parallel using a worker pool.
type BatchProcessor struct {
	enricher    *enricher.Enricher
	concurrency int
	log         logger.Logger
	telemetry   *telemetry.Provider
}

// NewBatchProcessor creates a batch processor. tel may be nil.
func NewBatchProcessor(e *enricher.Enricher, concurrency int, log logger.Logger, tel *telemetry.Provider) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &BatchProcessor{
		enricher:    e,
		concurrency: concurrency,
		log:         log,
		telemetry:   tel,
	}
}

// Process enriches a batch of reviews and returns one result per input.
// Order is not preserved. Individual failures are captured per result;
// the batch itself never fails.
func (b *BatchProcessor) Process(ctx context.Context, reviews []domain.RawReview) []Result {
	if len(reviews) == 0 {
		return nil
	}

	b.log.Info("starting batch",
		logger.Int("batch_size", len(reviews)),
		logger.Int("concurrency", b.concurrency))
	start := time.Now()

	if b.telemetry != nil {
		b.telemetry.RecordBatchSize(len(reviews))
		b.telemetry.SetActiveWorkers(b.concurrency)
		defer b.telemetry.SetActiveWorkers(0)
	}

	jobs := make(chan domain.RawReview, len(reviews))
	results := make(chan Result, len(reviews))

	var wg sync.WaitGroup
	for i := 0; i < b.concurrency; i++ {
		wg.Add(1)
		go b.worker(ctx, jobs, results, &wg)
	}

	for _, raw := range reviews {
		jobs <- raw
	}
	close(jobs)

	wg.Wait()
	close(results)

	out := make([]Result, 0, len(reviews))
	var failed int
	for result := range results {
		if result.Err != nil {
			failed++
		}
		out = append(out, result)
	}

	b.log.Info("batch complete",
		logger.Int("total", len(reviews)),
		logger.Int("failed", failed),
		logger.Duration("duration", time.Since(start)))
	return out
}

func (b *BatchProcessor) worker(ctx context.Context, jobs <-chan domain.RawReview, results chan<- Result, wg *sync.WaitGroup) {
	defer wg.Done()

	for raw := range jobs {
		select {
		case <-ctx.Done():
			results <- Result{Raw: raw, Err: ctx.Err()}
			continue
		default:
		}
		results <- b.processOne(ctx, raw)
	}
}

func (b *BatchProcessor) processOne(ctx context.Context, raw domain.RawReview) Result {
	start := time.Now()
	rec, err := b.enricher.Enrich(ctx, raw)
	if b.telemetry != nil {
		b.telemetry.RecordEnrichment(ctx, raw.Store, err == nil, time.Since(start))
	}
	if err != nil {
		b.log.Error("enrichment failed",
			logger.String("review_id", raw.ID),
			logger.Error(err))
		return Result{Raw: raw, Err: err}
	}

	if b.telemetry != nil {
		b.telemetry.RecordReviewType(ctx, rec.ReviewType)
		b.telemetry.RecordSentimentSource(ctx, rec.Sentiment.Source)
		sources := make([]string, 0, len(rec.AspectSentiment))
		for _, entry := range rec.AspectSentiment {
			sources = append(sources, entry.Source)
		}
		b.telemetry.RecordAspectSources(ctx, sources)
	}

	b.log.Debug("review enriched",
		logger.String("review_id", raw.ID),
		logger.String("review_type", rec.ReviewType),
		logger.String("sentiment", rec.Sentiment.Label))
	return Result{Raw: raw, Enriched: &rec}
}

// Concurrency reports the worker pool size.
func (b *BatchProcessor) Concurrency() int { return b.concurrency }

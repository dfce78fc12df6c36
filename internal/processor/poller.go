package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sercanai/screenaso/internal/domain"
	"github.com/sercanai/screenaso/internal/enricher"
	"github.com/sercanai/screenaso/internal/logger"
	"github.com/sercanai/screenaso/internal/publisher"
	"github.com/sercanai/screenaso/internal/telemetry"
)

const (
	defaultBatchSize       = 100
	defaultPollIntervalSec = 30
)

// Store is the persistence surface the poller needs.
// storage.ReviewRepository satisfies this.
type Store interface {
	FetchPending(ctx context.Context, limit int) ([]domain.RawReview, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SaveEnriched(ctx context.Context, rec *domain.EnrichedReview) error
}

// Poller periodically drains pending reviews through the batch
// processor and persists the outcomes.
type Poller struct {
	store     Store
	publisher publisher.Publisher
	batch     *BatchProcessor
	log       logger.Logger
	telemetry *telemetry.Provider

	batchSize    int
	pollInterval time.Duration
	running      bool
	stopChan     chan struct{}
}

// PollerConfig holds poller configuration.
type PollerConfig struct {
	BatchSize    int
	PollInterval time.Duration
}

// NewPoller creates a poller. pub and tel may be nil.
func NewPoller(store Store, pub publisher.Publisher, batch *BatchProcessor, log logger.Logger, tel *telemetry.Provider, cfg PollerConfig) *Poller {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollIntervalSec * time.Second
	}
	if pub == nil {
		pub = publisher.Nop{}
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Poller{
		store:        store,
		publisher:    pub,
		batch:        batch,
		log:          log,
		telemetry:    tel,
		batchSize:    cfg.BatchSize,
		pollInterval: cfg.PollInterval,
		stopChan:     make(chan struct{}),
	}
}

// Start launches the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	if p.running {
		return errors.New("poller is already running")
	}
	p.running = true
	p.log.Info("poller starting",
		logger.Int("batch_size", p.batchSize),
		logger.Duration("poll_interval", p.pollInterval))

	go p.run(ctx)
	return nil
}

// Stop halts the polling loop.
func (p *Poller) Stop() {
	if !p.running {
		return
	}
	p.log.Info("poller stopping")
	close(p.stopChan)
	p.running = false
}

func (p *Poller) run(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	// Drain immediately on start, then on each tick.
	if err := p.ProcessPending(ctx); err != nil {
		p.log.Error("initial drain failed", logger.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			p.log.Info("poller stopped, context cancelled")
			return
		case <-p.stopChan:
			p.log.Info("poller stopped")
			return
		case <-ticker.C:
			if err := p.ProcessPending(ctx); err != nil {
				p.log.Error("drain failed", logger.Error(err))
			}
		}
	}
}

// ProcessPending drains one batch of pending reviews. Exported so the
// ops API can trigger a drain out of cycle.
func (p *Poller) ProcessPending(ctx context.Context) error {
	pending, err := p.store.FetchPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending reviews: %w", err)
	}
	if len(pending) == 0 {
		p.log.Debug("no pending reviews")
		return nil
	}

	p.log.Info("found pending reviews", logger.Int("count", len(pending)))
	if p.telemetry != nil {
		p.telemetry.SetQueueDepth(len(pending))
		for i := range pending {
			p.telemetry.RecordPollerLag(ctx, pending[i].AuthoredAt)
		}
	}

	results := p.batch.Process(ctx, pending)
	p.persistResults(ctx, results)

	if p.telemetry != nil {
		p.telemetry.SetQueueDepth(0)
	}
	return nil
}

// persistResults writes each outcome back. Redaction failures withhold
// the review; other failures mark it failed. A failed status write is
// logged and skipped so one bad row cannot stall the batch.
func (p *Poller) persistResults(ctx context.Context, results []Result) {
	for _, result := range results {
		switch {
		case errors.Is(result.Err, enricher.ErrRedactionFailed):
			if p.telemetry != nil {
				p.telemetry.RecordWithheld(ctx)
			}
			p.log.Warn("review withheld, redaction failed",
				logger.String("review_id", result.Raw.ID))
			p.markStatus(ctx, result.Raw.ID, domain.StatusWithheld)

		case result.Err != nil:
			if p.telemetry != nil {
				p.telemetry.RecordEnrichmentFailure(ctx, result.Raw.Store, "enrich_error")
			}
			p.markStatus(ctx, result.Raw.ID, domain.StatusFailed)

		default:
			p.persistEnriched(ctx, result)
		}
	}
}

func (p *Poller) persistEnriched(ctx context.Context, result Result) {
	if err := p.store.SaveEnriched(ctx, result.Enriched); err != nil {
		p.log.Error("failed to save enriched review",
			logger.String("review_id", result.Raw.ID),
			logger.Error(err))
		p.markStatus(ctx, result.Raw.ID, domain.StatusFailed)
		return
	}
	p.markStatus(ctx, result.Raw.ID, domain.StatusEnriched)

	// Fan-out is best-effort: the record is already durable.
	err := p.publisher.Publish(ctx, result.Enriched)
	if p.telemetry != nil {
		p.telemetry.RecordPublish(ctx, err == nil)
	}
	if err != nil {
		p.log.Warn("failed to publish enriched review",
			logger.String("review_id", result.Raw.ID),
			logger.Error(err))
	}
}

func (p *Poller) markStatus(ctx context.Context, id, status string) {
	if err := p.store.UpdateStatus(ctx, id, status); err != nil {
		p.log.Error("failed to update review status",
			logger.String("review_id", id),
			logger.String("status", status),
			logger.Error(err))
	}
}

// IsRunning reports whether the polling loop is active.
func (p *Poller) IsRunning() bool { return p.running }

// Stats returns poller statistics for the ops API.
func (p *Poller) Stats() map[string]any {
	return map[string]any{
		"running":       p.running,
		"batch_size":    p.batchSize,
		"poll_interval": p.pollInterval.String(),
		"concurrency":   p.batch.Concurrency(),
	}
}

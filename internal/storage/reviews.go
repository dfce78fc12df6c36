package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sercanai/screenaso/internal/domain"
	"github.com/sercanai/screenaso/internal/logger"
)

// ReviewRepository persists raw reviews and their enriched records.
type ReviewRepository struct {
	db  *sqlx.DB
	log logger.Logger
}

// NewReviewRepository creates a repository over an open connection.
func NewReviewRepository(db *sqlx.DB, log logger.Logger) *ReviewRepository {
	if log == nil {
		log = logger.NewNop()
	}
	return &ReviewRepository{db: db, log: log}
}

// InsertRaw stores a collector-delivered review in pending state.
// Re-delivery of an already known ID is ignored.
func (r *ReviewRepository) InsertRaw(ctx context.Context, raw *domain.RawReview) error {
	status := raw.EnrichmentStatus
	if status == "" {
		status = domain.StatusPending
	}

	query := r.db.Rebind(`
		INSERT INTO raw_reviews
			(id, store, app_id, country, language_hint, rating, title, body, authored_at, enrichment_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`)

	_, err := r.db.ExecContext(ctx, query,
		raw.ID, raw.Store, raw.AppID, raw.Country, raw.LanguageHint,
		raw.Rating, raw.Title, raw.Body, raw.AuthoredAt, status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert raw review: %w", err)
	}
	return nil
}

// FetchPending returns up to limit reviews awaiting enrichment, oldest
// first.
func (r *ReviewRepository) FetchPending(ctx context.Context, limit int) ([]domain.RawReview, error) {
	query := r.db.Rebind(`
		SELECT id, store, app_id, country, language_hint, rating, title, body,
		       authored_at, enrichment_status, enriched_at
		FROM raw_reviews
		WHERE enrichment_status = ?
		ORDER BY authored_at ASC
		LIMIT ?`)

	var reviews []domain.RawReview
	if err := r.db.SelectContext(ctx, &reviews, query, domain.StatusPending, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch pending reviews: %w", err)
	}
	return reviews, nil
}

// UpdateStatus moves a raw review to the given status. The enriched_at
// timestamp is set only for the enriched state.
func (r *ReviewRepository) UpdateStatus(ctx context.Context, id, status string) error {
	var query string
	var args []any
	if status == domain.StatusEnriched {
		query = `UPDATE raw_reviews SET enrichment_status = ?, enriched_at = ? WHERE id = ?`
		args = []any{status, time.Now().UTC(), id}
	} else {
		query = `UPDATE raw_reviews SET enrichment_status = ? WHERE id = ?`
		args = []any{status, id}
	}

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to update review %s to %s: %w", id, status, err)
	}
	return nil
}

// SaveEnriched appends one enriched record. The source row is never
// updated in place; reprocessing produces a new record keyed by its own
// UUID, and review_id ties records back to the raw review.
func (r *ReviewRepository) SaveEnriched(ctx context.Context, rec *domain.EnrichedReview) error {
	aspects, err := json.Marshal(rec.AspectSentiment)
	if err != nil {
		return fmt.Errorf("failed to marshal aspects: %w", err)
	}
	keywords, err := json.Marshal(rec.KeywordCandidates)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}
	phrases, err := json.Marshal(rec.ValuePhrases)
	if err != nil {
		return fmt.Errorf("failed to marshal value phrases: %w", err)
	}
	redaction, err := json.Marshal(rec.Redaction)
	if err != nil {
		return fmt.Errorf("failed to marshal redaction: %w", err)
	}

	query := r.db.Rebind(`
		INSERT INTO enriched_reviews
			(id, review_id, app_id, store, country, rating, title, body, authored_at,
			 language_code, language_confidence,
			 sentiment_label, sentiment_score, sentiment_source,
			 aspect_sentiment, keyword_candidates, value_phrases,
			 review_type, needs_reply, redaction, enricher_version, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = r.db.ExecContext(ctx, query,
		uuid.NewString(), rec.ID, rec.AppID, rec.Store, rec.Country, rec.Rating,
		rec.Title, rec.Body, rec.AuthoredAt,
		rec.Language.Code, rec.Language.Confidence,
		rec.Sentiment.Label, rec.Sentiment.Score, rec.Sentiment.Source,
		string(aspects), string(keywords), string(phrases),
		rec.ReviewType, rec.NeedsReply, string(redaction),
		rec.EnricherVersion, rec.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save enriched review: %w", err)
	}
	return nil
}

// SaveEnrichedBatch saves multiple enriched records one by one. Partial
// failures are logged and tolerated; the batch errors only when every
// record fails.
func (r *ReviewRepository) SaveEnrichedBatch(ctx context.Context, recs []*domain.EnrichedReview) error {
	if len(recs) == 0 {
		return nil
	}

	var failed int
	var firstErr error
	for _, rec := range recs {
		if err := r.SaveEnriched(ctx, rec); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			r.log.Error("failed to save enriched review",
				logger.String("review_id", rec.ID),
				logger.Error(err))
		}
	}

	if failed == len(recs) {
		return fmt.Errorf("all %d enriched records failed: %w", failed, firstErr)
	}
	if failed > 0 {
		r.log.Warn("some enriched records failed to save",
			logger.Int("total", len(recs)),
			logger.Int("failed", failed))
	}
	return nil
}

// StatusCounts returns raw review counts grouped by enrichment status.
func (r *ReviewRepository) StatusCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT enrichment_status, COUNT(*) FROM raw_reviews GROUP BY enrichment_status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if scanErr := rows.Scan(&status, &count); scanErr != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", scanErr)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

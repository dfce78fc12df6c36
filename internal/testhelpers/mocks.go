// Package testhelpers provides shared test utilities for the enrichment
// service.
package testhelpers

import (
	"context"
	"errors"
	"sync"

	"github.com/sercanai/screenaso/internal/domain"
	"github.com/sercanai/screenaso/internal/privacy"
)

// ErrReviewNotFound is returned when a review is not found in the mock store.
var ErrReviewNotFound = errors.New("review not found")

// MockReviewStore implements the processor and API store interfaces in
// memory.
type MockReviewStore struct {
	mu       sync.RWMutex
	raw      map[string]*domain.RawReview
	enriched []*domain.EnrichedReview

	// FailSave forces SaveEnriched to fail, for error-path tests.
	FailSave bool
}

// NewMockReviewStore creates an empty mock store.
func NewMockReviewStore() *MockReviewStore {
	return &MockReviewStore{raw: make(map[string]*domain.RawReview)}
}

// InsertRaw stores a raw review in pending state.
func (m *MockReviewStore) InsertRaw(_ context.Context, raw *domain.RawReview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *raw
	if cp.EnrichmentStatus == "" {
		cp.EnrichmentStatus = domain.StatusPending
	}
	m.raw[cp.ID] = &cp
	return nil
}

// FetchPending returns up to limit pending reviews.
func (m *MockReviewStore) FetchPending(_ context.Context, limit int) ([]domain.RawReview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.RawReview
	for _, r := range m.raw {
		if r.EnrichmentStatus == domain.StatusPending && len(out) < limit {
			out = append(out, *r)
		}
	}
	return out, nil
}

// UpdateStatus moves a review to the given status.
func (m *MockReviewStore) UpdateStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.raw[id]
	if !ok {
		return ErrReviewNotFound
	}
	r.EnrichmentStatus = status
	return nil
}

// SaveEnriched appends an enriched record.
func (m *MockReviewStore) SaveEnriched(_ context.Context, rec *domain.EnrichedReview) error {
	if m.FailSave {
		return errors.New("save failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enriched = append(m.enriched, rec)
	return nil
}

// StatusCounts returns raw review counts grouped by status.
func (m *MockReviewStore) StatusCounts(_ context.Context) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int64)
	for _, r := range m.raw {
		counts[r.EnrichmentStatus]++
	}
	return counts, nil
}

// StatusOf returns the current status of a raw review.
func (m *MockReviewStore) StatusOf(id string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.raw[id]; ok {
		return r.EnrichmentStatus
	}
	return ""
}

// Enriched returns the saved enriched records.
func (m *MockReviewStore) Enriched() []*domain.EnrichedReview {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.EnrichedReview(nil), m.enriched...)
}

// MockPublisher captures published records.
type MockPublisher struct {
	mu        sync.Mutex
	published []*domain.EnrichedReview

	// Err, when set, is returned from every Publish call.
	Err error
}

// Publish records the enriched review.
func (m *MockPublisher) Publish(_ context.Context, rec *domain.EnrichedReview) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, rec)
	return nil
}

// Close implements the publisher interface.
func (m *MockPublisher) Close() error { return nil }

// Published returns the captured records.
func (m *MockPublisher) Published() []*domain.EnrichedReview {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.EnrichedReview(nil), m.published...)
}

// StaticDetector returns a fixed language for every input and counts
// calls.
type StaticDetector struct {
	Lang  domain.Language
	Calls int
}

// Detect implements the language detector interface.
func (d *StaticDetector) Detect(_, _ string) domain.Language {
	d.Calls++
	return d.Lang
}

// SpyAnalyzer returns a fixed sentiment and records whether it ran.
type SpyAnalyzer struct {
	Result domain.Sentiment
	Calls  int
}

// Analyze implements the sentiment analyzer interface.
func (a *SpyAnalyzer) Analyze(_ string) domain.Sentiment {
	a.Calls++
	return a.Result
}

// FailingRedactor fails every redaction, for fail-closed tests.
type FailingRedactor struct{}

// Redact implements the redactor interface.
func (FailingRedactor) Redact(_ context.Context, _, _ string) (privacy.Result, error) {
	return privacy.Result{}, errors.New("detector exploded")
}

// StaticZeroShot returns fixed label scores.
type StaticZeroShot struct {
	Scores map[string]float64
	Err    error
	Calls  int
}

// ZeroShot implements the zero-shot classifier interface.
func (z *StaticZeroShot) ZeroShot(_ context.Context, _ string, _ []string) (map[string]float64, error) {
	z.Calls++
	return z.Scores, z.Err
}

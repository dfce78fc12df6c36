package enricher_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sercanai/screenaso/internal/domain"
	"github.com/sercanai/screenaso/internal/enricher"
	"github.com/sercanai/screenaso/internal/privacy"
	"github.com/sercanai/screenaso/internal/testhelpers"
)

func strPtr(s string) *string { return &s }

func englishDetector() *testhelpers.StaticDetector {
	return &testhelpers.StaticDetector{Lang: domain.Language{Code: "en", Confidence: 0.92}}
}

func TestEnrichPositiveReviewWithEmail(t *testing.T) {
	e := enricher.New(enricher.Config{}, nil,
		enricher.WithLanguageDetector(englishDetector()))

	raw := domain.RawReview{
		ID:     "r-1",
		Store:  domain.StoreAppStore,
		AppID:  "com.example.app",
		Rating: 5,
		Title:  strPtr("Great app"),
		Body:   strPtr("I love the dark mode, it works perfectly. Email me at jane@example.com"),
	}

	rec, err := e.Enrich(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "en", rec.Language.Code)
	assert.Equal(t, domain.SentimentPositive, rec.Sentiment.Label)
	assert.Equal(t, domain.SourceModel, rec.Sentiment.Source)

	require.NotNil(t, rec.Body)
	assert.False(t, strings.Contains(*rec.Body, "@"), "email must not survive redaction")
	assert.True(t, rec.Redaction.Applied)
	assert.Equal(t, []string{privacy.FieldBody}, rec.Redaction.Fields)

	assert.Equal(t, domain.TypePraise, rec.ReviewType)
	assert.False(t, rec.NeedsReply)

	for _, kw := range rec.KeywordCandidates {
		assert.NotContains(t, kw, "example", "redacted address must not leak into keywords")
		assert.NotContains(t, kw, "jane")
	}
}

func TestEnrichRatingOnlyReview(t *testing.T) {
	e := enricher.New(enricher.Config{}, nil,
		enricher.WithLanguageDetector(&testhelpers.StaticDetector{
			Lang: domain.Language{Code: domain.LanguageUnknown},
		}))

	raw := domain.RawReview{
		ID:     "r-2",
		Store:  domain.StorePlayStore,
		AppID:  "com.example.app",
		Rating: 1,
	}

	rec, err := e.Enrich(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, domain.SentimentNeutral, rec.Sentiment.Label)
	assert.Equal(t, domain.SourceFallback, rec.Sentiment.Source)
	assert.Zero(t, rec.Sentiment.Score)
	assert.Empty(t, rec.KeywordCandidates)
	assert.Empty(t, rec.AspectSentiment)
	assert.Equal(t, domain.TypeOther, rec.ReviewType)
	assert.True(t, rec.NeedsReply, "one-star review needs a reply")
	assert.False(t, rec.Redaction.Applied)
	assert.Nil(t, rec.Title)
	assert.Nil(t, rec.Body)
}

func TestEnrichUnsupportedLanguageSkipsSentimentModel(t *testing.T) {
	spy := &testhelpers.SpyAnalyzer{Result: domain.Sentiment{Label: domain.SentimentPositive, Source: domain.SourceModel}}
	e := enricher.New(enricher.Config{}, nil,
		enricher.WithLanguageDetector(&testhelpers.StaticDetector{
			Lang: domain.Language{Code: "de", Confidence: 0.98},
		}),
		enricher.WithSentimentAnalyzer(spy))

	raw := domain.RawReview{
		ID:     "r-3",
		Store:  domain.StorePlayStore,
		AppID:  "com.example.app",
		Rating: 3,
		Body:   strPtr("Die App ist in Ordnung, aber manchmal langsam."),
	}

	rec, err := e.Enrich(context.Background(), raw)
	require.NoError(t, err)

	assert.Zero(t, spy.Calls, "sentiment model must not run for unsupported languages")
	assert.Equal(t, domain.SentimentNeutral, rec.Sentiment.Label)
	assert.Equal(t, domain.SourceFallback, rec.Sentiment.Source)

	for aspect, entry := range rec.AspectSentiment {
		assert.Equal(t, domain.SentimentNeutral, entry.Label, "aspect %s must take the safe default", aspect)
		assert.Equal(t, domain.SourceFallback, entry.Source)
	}
}

func TestEnrichRedactionFailureWithholds(t *testing.T) {
	e := enricher.New(enricher.Config{}, nil,
		enricher.WithLanguageDetector(englishDetector()),
		enricher.WithRedactor(testhelpers.FailingRedactor{}))

	raw := domain.RawReview{
		ID:     "r-4",
		Store:  domain.StoreAppStore,
		AppID:  "com.example.app",
		Rating: 2,
		Body:   strPtr("call me at 555-123-4567"),
	}

	_, err := e.Enrich(context.Background(), raw)
	require.ErrorIs(t, err, enricher.ErrRedactionFailed)
}

func TestEnrichDoesNotMutateInput(t *testing.T) {
	e := enricher.New(enricher.Config{}, nil,
		enricher.WithLanguageDetector(englishDetector()))

	body := "contact support@example.com about billing"
	raw := domain.RawReview{
		ID:     "r-5",
		Store:  domain.StoreAppStore,
		AppID:  "com.example.app",
		Rating: 2,
		Body:   strPtr(body),
	}

	rec, err := e.Enrich(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, body, *raw.Body, "input review must stay untouched")
	assert.NotEqual(t, body, *rec.Body)
}

func TestEnrichZeroShotDisabledByDefault(t *testing.T) {
	zs := &testhelpers.StaticZeroShot{Scores: map[string]float64{domain.AspectPricing: 0.9}}
	e := enricher.New(enricher.Config{}, nil,
		enricher.WithLanguageDetector(englishDetector()),
		enricher.WithZeroShot(zs))

	raw := domain.RawReview{
		ID:     "r-6",
		Store:  domain.StoreAppStore,
		AppID:  "com.example.app",
		Rating: 4,
		Body:   strPtr("This app is wonderful and fast."),
	}

	_, err := e.Enrich(context.Background(), raw)
	require.NoError(t, err)
	assert.Zero(t, zs.Calls, "zero-shot must stay off unless enabled")
}

func TestEnrichZeroShotAddsAspects(t *testing.T) {
	zs := &testhelpers.StaticZeroShot{Scores: map[string]float64{domain.AspectPricing: 0.8}}
	e := enricher.New(enricher.Config{EnableZeroShot: true, ZeroShotThreshold: 0.45}, nil,
		enricher.WithLanguageDetector(englishDetector()),
		enricher.WithZeroShot(zs))

	raw := domain.RawReview{
		ID:     "r-7",
		Store:  domain.StoreAppStore,
		AppID:  "com.example.app",
		Rating: 4,
		Body:   strPtr("Really enjoying this app, works great."),
	}

	rec, err := e.Enrich(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, 1, zs.Calls)
	entry, ok := rec.AspectSentiment[domain.AspectPricing]
	require.True(t, ok, "zero-shot aspect above threshold must be emitted")
	assert.Equal(t, domain.SourceModel, entry.Source)
	assert.InDelta(t, 0.8, entry.Confidence, 1e-9)
}

func TestEnrichStampsVersionAndTimestamp(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	e := enricher.New(enricher.Config{Version: "2.3.0"}, nil,
		enricher.WithLanguageDetector(englishDetector()),
		enricher.WithClock(func() time.Time { return fixed }))

	raw := domain.RawReview{
		ID:     "r-8",
		Store:  domain.StoreAppStore,
		AppID:  "com.example.app",
		Rating: 5,
		Body:   strPtr("Excellent, thank you!"),
	}

	rec, err := e.Enrich(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "2.3.0", rec.EnricherVersion)
	assert.Equal(t, fixed, rec.ProcessedAt)
}

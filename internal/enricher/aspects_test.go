package enricher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sercanai/screenaso/internal/domain"
)

func positiveSentiment() domain.Sentiment {
	return domain.Sentiment{
		Label:      domain.SentimentPositive,
		Score:      0.6,
		Confidence: 0.6,
		Source:     domain.SourceModel,
	}
}

func TestTagHeuristicHits(t *testing.T) {
	tagger := NewAspectTagger(nil, 0.45, nil, nil)

	got := tagger.Tag(context.Background(), "the app keeps crashing with an error after the update", positiveSentiment())

	entry, ok := got[domain.AspectStability]
	require.True(t, ok, "crash and error should trigger the stability aspect")
	assert.Equal(t, domain.SourceHeuristic, entry.Source)
	assert.InDelta(t, 1.0, entry.Confidence, 1e-9, "two hits saturate confidence")
	assert.Equal(t, domain.SentimentPositive, entry.Label)
}

func TestTagSingleHitBelowSaturation(t *testing.T) {
	tagger := NewAspectTagger(nil, 0.45, nil, nil)

	got := tagger.Tag(context.Background(), "too expensive for what it offers", positiveSentiment())

	entry, ok := got[domain.AspectPricing]
	require.True(t, ok)
	assert.InDelta(t, 0.5, entry.Confidence, 1e-9)
}

func TestTagEmptyText(t *testing.T) {
	tagger := NewAspectTagger(nil, 0.45, nil, nil)
	assert.Empty(t, tagger.Tag(context.Background(), "", positiveSentiment()))
}

func TestTagFallbackSentimentYieldsSafeDefaults(t *testing.T) {
	tagger := NewAspectTagger(nil, 0.45, nil, nil)

	got := tagger.Tag(context.Background(), "laggy and slow loading", domain.NeutralSentiment(domain.SourceFallback))

	entry, ok := got[domain.AspectPerformance]
	require.True(t, ok)
	assert.Equal(t, domain.SentimentNeutral, entry.Label)
	assert.Zero(t, entry.Score)
	assert.Equal(t, domain.SourceFallback, entry.Source)
}

type fixedZeroShot struct {
	scores map[string]float64
	err    error
	calls  int
}

func (f *fixedZeroShot) ZeroShot(_ context.Context, _ string, _ []string) (map[string]float64, error) {
	f.calls++
	return f.scores, f.err
}

func TestTagZeroShotOverridesHeuristic(t *testing.T) {
	zs := &fixedZeroShot{scores: map[string]float64{
		domain.AspectPricing: 0.9,
		domain.AspectAds:     0.2, // below threshold, dropped
		"nonsense":           0.99,
	}}
	tagger := NewAspectTagger(zs, 0.45, nil, nil)

	got := tagger.Tag(context.Background(), "costs too much, expensive subscription", positiveSentiment())

	require.Equal(t, 1, zs.calls)
	entry := got[domain.AspectPricing]
	assert.Equal(t, domain.SourceModel, entry.Source)
	assert.InDelta(t, 0.9, entry.Confidence, 1e-9)

	_, hasAds := got[domain.AspectAds]
	assert.False(t, hasAds, "scores below threshold are not emitted")
	_, hasNonsense := got["nonsense"]
	assert.False(t, hasNonsense, "labels outside the taxonomy are dropped")
}

func TestTagZeroShotErrorKeepsHeuristic(t *testing.T) {
	zs := &fixedZeroShot{err: errors.New("sidecar down")}
	tagger := NewAspectTagger(zs, 0.45, nil, nil)

	got := tagger.Tag(context.Background(), "the subscription is expensive", positiveSentiment())

	entry, ok := got[domain.AspectPricing]
	require.True(t, ok, "heuristic result survives a sidecar failure")
	assert.Equal(t, domain.SourceHeuristic, entry.Source)
}

func TestTagFallbackSkipsZeroShot(t *testing.T) {
	zs := &fixedZeroShot{scores: map[string]float64{domain.AspectPricing: 0.9}}
	tagger := NewAspectTagger(zs, 0.45, nil, nil)

	tagger.Tag(context.Background(), "irgendein text", domain.NeutralSentiment(domain.SourceFallback))
	assert.Zero(t, zs.calls, "zero-shot must not run on fallback sentiment")
}

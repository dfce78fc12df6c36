package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Metrics register against the default Prometheus registry, so the
// provider is built once and shared across subtests.
func TestProvider(t *testing.T) {
	p := NewProvider()
	require.NotNil(t, p.Metrics)
	require.NotNil(t, p.Tracer)
	require.NotNil(t, p.Handler())

	ctx := context.Background()

	t.Run("record enrichment", func(t *testing.T) {
		p.RecordEnrichment(ctx, "app_store", true, 12*time.Millisecond)
		p.RecordEnrichment(ctx, "play_store", false, 3*time.Millisecond)
		p.RecordEnrichmentFailure(ctx, "play_store", "enrich_error")
		p.RecordWithheld(ctx)
	})

	t.Run("record stages", func(t *testing.T) {
		p.RecordRedaction(ctx, "body", "fallback", true)
		p.RecordRedaction(ctx, "title", "model", false)
		p.RecordSentimentSource(ctx, "model")
		p.RecordAspectSources(ctx, []string{"heuristic", "model"})
		p.RecordSidecarFailure(ctx, "/zero-shot")
		p.RecordReviewType(ctx, "bug_report")
		p.RecordReviewType(ctx, "")
	})

	t.Run("gauges and batch", func(t *testing.T) {
		p.SetQueueDepth(42)
		p.SetActiveWorkers(4)
		p.RecordBatchSize(100)
		p.RecordPollerLag(ctx, time.Now().Add(-time.Minute))
		p.RecordPublish(ctx, true)
		p.RecordPublish(ctx, false)
	})

	t.Run("span", func(t *testing.T) {
		spanCtx, span := p.StartSpan(ctx, "enrich_review")
		assert.NotNil(t, spanCtx)
		span.End()
	})
}

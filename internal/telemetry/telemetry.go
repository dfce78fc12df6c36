// Package telemetry provides OpenTelemetry instrumentation for the
// enrichment service. It exports Prometheus metrics and provides tracing
// capabilities.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "enrichd"

// Metrics holds all enrichment Prometheus metrics
type Metrics struct {
	// Processing metrics
	ReviewsProcessed *prometheus.CounterVec
	ReviewsFailed    *prometheus.CounterVec
	ReviewsWithheld  prometheus.Counter
	EnrichDuration   *prometheus.HistogramVec
	BatchSize        prometheus.Histogram

	// Pipeline stage metrics
	RedactionFallbacks prometheus.Counter
	RedactionApplied   *prometheus.CounterVec
	SentimentSource    *prometheus.CounterVec
	AspectSource       *prometheus.CounterVec
	SidecarFailures    *prometheus.CounterVec

	// Backpressure metrics
	QueueDepth    prometheus.Gauge
	ActiveWorkers prometheus.Gauge

	// Lag metrics (freshness SLO)
	PollerLag prometheus.Histogram

	// Fan-out metrics
	RecordsPublished prometheus.Counter
	PublishFailures  prometheus.Counter

	// Review type distribution
	ReviewTypeTotal *prometheus.CounterVec
}

// Provider wraps telemetry providers
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initProcessingMetrics(m)
	initStageMetrics(m)
	initBackpressureMetrics(m)
	initFanOutMetrics(m)
	return m
}

func initProcessingMetrics(m *Metrics) {
	m.ReviewsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enrichd_reviews_processed_total",
		Help: "Total reviews successfully enriched",
	}, []string{"store"})

	m.ReviewsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enrichd_reviews_failed_total",
		Help: "Total reviews that failed enrichment",
	}, []string{"store", "error_code"})

	m.ReviewsWithheld = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrichd_reviews_withheld_total",
		Help: "Total reviews withheld because redaction failed closed",
	})

	m.EnrichDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "enrichd_processing_duration_seconds",
		Help:    "Time to enrich a single review",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
	}, []string{"store"})

	m.BatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "enrichd_batch_size",
		Help:    "Number of reviews per batch",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 500},
	})

	m.ReviewTypeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enrichd_review_type_total",
		Help: "Total reviews by assigned review_type",
	}, []string{"review_type"})
}

func initStageMetrics(m *Metrics) {
	m.RedactionFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrichd_redaction_fallback_total",
		Help: "Redactions served by the pattern fallback instead of the primary detector",
	})

	m.RedactionApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enrichd_redaction_applied_total",
		Help: "Fields with at least one masked span",
	}, []string{"field"})

	m.SentimentSource = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enrichd_sentiment_source_total",
		Help: "Sentiment results by provenance (model, heuristic, fallback)",
	}, []string{"source"})

	m.AspectSource = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enrichd_aspect_source_total",
		Help: "Aspect entries by provenance (model, heuristic, fallback)",
	}, []string{"source"})

	m.SidecarFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enrichd_sidecar_failures_total",
		Help: "ML sidecar calls that failed and degraded to local inference",
	}, []string{"endpoint"})
}

func initBackpressureMetrics(m *Metrics) {
	m.QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "enrichd_queue_depth",
		Help: "Current pending reviews in work queue",
	})

	m.ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "enrichd_active_workers",
		Help: "Currently active worker goroutines",
	})

	m.PollerLag = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "enrichd_poller_lag_seconds",
		Help:    "Time between review authoring and enrichment start",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600},
	})
}

func initFanOutMetrics(m *Metrics) {
	m.RecordsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrichd_records_published_total",
		Help: "Enriched records published to the fan-out channel",
	})

	m.PublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrichd_publish_failures_total",
		Help: "Enriched records that could not be published",
	})
}

// RecordEnrichment records metrics for a single enriched review
func (p *Provider) RecordEnrichment(ctx context.Context, store string, success bool, duration time.Duration) {
	if success {
		p.Metrics.ReviewsProcessed.WithLabelValues(store).Inc()
	}
	p.Metrics.EnrichDuration.WithLabelValues(store).Observe(duration.Seconds())
}

// RecordEnrichmentFailure records a failed enrichment with error code
func (p *Provider) RecordEnrichmentFailure(ctx context.Context, store, errorCode string) {
	p.Metrics.ReviewsFailed.WithLabelValues(store, errorCode).Inc()
}

// RecordWithheld records a review withheld by the redaction gate
func (p *Provider) RecordWithheld(ctx context.Context) {
	p.Metrics.ReviewsWithheld.Inc()
}

// RecordReviewType increments the review_type counter
func (p *Provider) RecordReviewType(ctx context.Context, reviewType string) {
	if reviewType == "" {
		reviewType = "other"
	}
	p.Metrics.ReviewTypeTotal.WithLabelValues(reviewType).Inc()
}

// RecordRedaction records per-field redaction outcomes
func (p *Provider) RecordRedaction(ctx context.Context, field, source string, applied bool) {
	if applied {
		p.Metrics.RedactionApplied.WithLabelValues(field).Inc()
	}
	if source == "fallback" {
		p.Metrics.RedactionFallbacks.Inc()
	}
}

// RecordSentimentSource records sentiment provenance
func (p *Provider) RecordSentimentSource(ctx context.Context, source string) {
	p.Metrics.SentimentSource.WithLabelValues(source).Inc()
}

// RecordAspectSources records provenance for each emitted aspect entry
func (p *Provider) RecordAspectSources(ctx context.Context, sources []string) {
	for _, source := range sources {
		p.Metrics.AspectSource.WithLabelValues(source).Inc()
	}
}

// RecordSidecarFailure records a degraded sidecar call
func (p *Provider) RecordSidecarFailure(ctx context.Context, endpoint string) {
	p.Metrics.SidecarFailures.WithLabelValues(endpoint).Inc()
}

// RecordPollerLag records the freshness lag
func (p *Provider) RecordPollerLag(ctx context.Context, authoredAt time.Time) {
	p.Metrics.PollerLag.Observe(time.Since(authoredAt).Seconds())
}

// RecordPublish records a fan-out publish attempt
func (p *Provider) RecordPublish(ctx context.Context, success bool) {
	if success {
		p.Metrics.RecordsPublished.Inc()
		return
	}
	p.Metrics.PublishFailures.Inc()
}

// SetQueueDepth sets the current queue depth
func (p *Provider) SetQueueDepth(depth int) {
	p.Metrics.QueueDepth.Set(float64(depth))
}

// SetActiveWorkers sets the current active worker count
func (p *Provider) SetActiveWorkers(count int) {
	p.Metrics.ActiveWorkers.Set(float64(count))
}

// RecordBatchSize records the size of a processed batch
func (p *Provider) RecordBatchSize(size int) {
	p.Metrics.BatchSize.Observe(float64(size))
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, span
}

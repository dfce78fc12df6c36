package domain

import "time"

// Sentiment labels. These literals are a stable contract for downstream
// JSON consumers and must not change.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Provenance sources for enrichment signals.
const (
	SourceModel     = "model"
	SourceHeuristic = "heuristic"
	SourceFallback  = "fallback"
)

// LanguageUnknown is the language code emitted when detection confidence
// falls below the configured threshold.
const LanguageUnknown = "unknown"

// Review type taxonomy.
const (
	TypeBugReport      = "bug_report"
	TypeFeatureRequest = "feature_request"
	TypePraise         = "praise"
	TypeUXFeedback     = "ux_feedback"
	TypePaymentIssue   = "payment_issue"
	TypeOther          = "other"
)

// Aspect taxonomy. AspectSentiment keys are always a subset of this set.
const (
	AspectPricing     = "pricing"
	AspectPerformance = "performance"
	AspectUX          = "ux"
	AspectStability   = "stability"
	AspectAds         = "ads"
	AspectSupport     = "support"
)

// AspectTaxonomy returns the fixed aspect set in stable order.
func AspectTaxonomy() []string {
	return []string{
		AspectPricing,
		AspectPerformance,
		AspectUX,
		AspectStability,
		AspectAds,
		AspectSupport,
	}
}

// ValidAspect reports whether name belongs to the fixed taxonomy.
func ValidAspect(name string) bool {
	switch name {
	case AspectPricing, AspectPerformance, AspectUX, AspectStability, AspectAds, AspectSupport:
		return true
	}
	return false
}

// Language holds the detected language and its confidence.
type Language struct {
	Code       string  `json:"code"`
	Confidence float64 `json:"confidence"`
}

// Sentiment holds the overall polarity result. Score is bounded to [-1,1].
type Sentiment struct {
	Label      string  `json:"label"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// NeutralSentiment returns the safe default used for empty text and
// unsupported languages.
func NeutralSentiment(source string) Sentiment {
	return Sentiment{Label: SentimentNeutral, Score: 0, Confidence: 0, Source: source}
}

// AspectSentiment is one entry of the sparse per-aspect map.
type AspectSentiment struct {
	Label      string  `json:"label"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Redaction reports which fields were masked on the enriched record.
type Redaction struct {
	Applied bool     `json:"applied"`
	Fields  []string `json:"fields,omitempty"`
}

// EnrichedReview is the immutable output of the enrichment pipeline.
// Title and Body in the embedded RawReview hold the redacted text; the
// pre-redaction values are never carried past the orchestrator.
type EnrichedReview struct {
	RawReview

	Language          Language                   `json:"language"`
	Sentiment         Sentiment                  `json:"sentiment"`
	AspectSentiment   map[string]AspectSentiment `json:"aspect_sentiment"`
	KeywordCandidates []string                   `json:"keyword_candidates"`
	ValuePhrases      []string                   `json:"value_phrases,omitempty"`
	ReviewType        string                     `json:"review_type"`
	NeedsReply        bool                       `json:"needs_reply"`
	Redaction         Redaction                  `json:"redaction_applied"`

	EnricherVersion string    `json:"enricher_version"`
	ProcessedAt     time.Time `json:"processed_at"`
}

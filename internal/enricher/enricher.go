// Package enricher orchestrates the review enrichment pipeline: language
// identification, the mandatory redaction gate, sentiment, aspects,
// keywords, review-type classification, and the needs-reply flag.
package enricher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sercanai/screenaso/internal/domain"
	"github.com/sercanai/screenaso/internal/language"
	"github.com/sercanai/screenaso/internal/logger"
	"github.com/sercanai/screenaso/internal/privacy"
	"github.com/sercanai/screenaso/internal/sentiment"
)

// ErrRedactionFailed marks a review whose text could not be safely
// masked. Redaction fails closed: the caller must withhold the review
// rather than emit unredacted text.
var ErrRedactionFailed = errors.New("redaction failed")

// The sentiment lexicon only covers English; other languages take the
// neutral fallback instead of producing garbage scores.
const supportedSentimentLanguage = "en"

// Redactor masks one field of review text. privacy.Redactor satisfies
// this.
type Redactor interface {
	Redact(ctx context.Context, field, text string) (privacy.Result, error)
}

// Config carries the tunable enrichment parameters.
type Config struct {
	Version               string
	EnableZeroShot        bool
	KeywordLimit          int
	ValuePhraseLimit      int
	MinLanguageConfidence float64
	ZeroShotThreshold     float64
	SidecarRPS            float64
}

// Enricher runs the pipeline stages in order. It is stateless between
// calls and safe for concurrent use.
type Enricher struct {
	cfg Config
	log logger.Logger

	detector language.Detector
	analyzer sentiment.Analyzer
	redactor Redactor
	zeroShot ZeroShotClassifier

	keywords *KeywordExtractor
	aspects  *AspectTagger
	types    *TypeClassifier

	now func() time.Time
}

// Option overrides a pipeline stage, primarily for tests.
type Option func(*Enricher)

// WithLanguageDetector replaces the default lingua-backed detector.
func WithLanguageDetector(d language.Detector) Option {
	return func(e *Enricher) { e.detector = d }
}

// WithSentimentAnalyzer replaces the default VADER analyzer.
func WithSentimentAnalyzer(a sentiment.Analyzer) Option {
	return func(e *Enricher) { e.analyzer = a }
}

// WithRedactor replaces the default pattern-fallback redactor.
func WithRedactor(r Redactor) Option {
	return func(e *Enricher) { e.redactor = r }
}

// WithZeroShot attaches a zero-shot aspect classifier. It is only
// consulted when Config.EnableZeroShot is set.
func WithZeroShot(zs ZeroShotClassifier) Option {
	return func(e *Enricher) { e.zeroShot = zs }
}

// WithClock fixes the processed_at timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Enricher) { e.now = now }
}

// New assembles an enricher with default stages, then applies options.
func New(cfg Config, log logger.Logger, opts ...Option) *Enricher {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	if cfg.KeywordLimit <= 0 {
		cfg.KeywordLimit = 8
	}
	if cfg.ValuePhraseLimit <= 0 {
		cfg.ValuePhraseLimit = 5
	}

	e := &Enricher{
		cfg: cfg,
		log: log,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.detector == nil {
		e.detector = language.NewDetector(cfg.MinLanguageConfidence)
	}
	if e.analyzer == nil {
		e.analyzer = sentiment.NewAnalyzer()
	}
	if e.redactor == nil {
		e.redactor = privacy.NewRedactor(nil, log)
	}

	zeroShot := e.zeroShot
	if !cfg.EnableZeroShot {
		zeroShot = nil
	}
	var limiter *rate.Limiter
	if zeroShot != nil && cfg.SidecarRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.SidecarRPS), 1)
	}

	e.keywords = NewKeywordExtractor(cfg.KeywordLimit, cfg.ValuePhraseLimit)
	e.aspects = NewAspectTagger(zeroShot, cfg.ZeroShotThreshold, limiter, log)
	e.types = NewTypeClassifier()
	return e
}

// Version reports the enricher version stamped onto records.
func (e *Enricher) Version() string { return e.cfg.Version }

// Enrich runs the full pipeline on one raw review and returns the
// immutable enriched record. The input is never mutated. A redaction
// failure returns an error wrapping ErrRedactionFailed and no record;
// every other stage degrades to a safe default instead of failing.
func (e *Enricher) Enrich(ctx context.Context, raw domain.RawReview) (domain.EnrichedReview, error) {
	title := raw.TitleText()
	body := raw.BodyText()

	// Language runs on the raw text: redaction placeholders would skew
	// detection, and the detector never persists or transmits the text.
	lang := e.detector.Detect(joinFields(title, body), hintOf(raw))

	redactedTitle, err := e.redactor.Redact(ctx, privacy.FieldTitle, title)
	if err != nil {
		return domain.EnrichedReview{}, fmt.Errorf("%w: title: %w", ErrRedactionFailed, err)
	}
	redactedBody, err := e.redactor.Redact(ctx, privacy.FieldBody, body)
	if err != nil {
		return domain.EnrichedReview{}, fmt.Errorf("%w: body: %w", ErrRedactionFailed, err)
	}

	// Every stage past this point sees only redacted text.
	redactedFull := joinFields(redactedTitle.Text, redactedBody.Text)

	snt := domain.NeutralSentiment(domain.SourceFallback)
	if lang.Code == supportedSentimentLanguage {
		snt = e.analyzer.Analyze(preferredText(redactedTitle.Text, redactedBody.Text))
	}

	keywords, valuePhrases := e.keywords.Extract(redactedFull, lang.Code)
	if keywords == nil {
		keywords = []string{}
	}

	aspects := e.aspects.Tag(ctx, redactedFull, snt)
	reviewType := e.types.Classify(redactedFull, keywords, aspects, snt, raw.Rating)
	needsReply := NeedsReply(raw.Rating, snt, reviewType, keywords)

	out := raw
	if raw.Title != nil {
		t := redactedTitle.Text
		out.Title = &t
	}
	if raw.Body != nil {
		b := redactedBody.Text
		out.Body = &b
	}

	return domain.EnrichedReview{
		RawReview:         out,
		Language:          lang,
		Sentiment:         snt,
		AspectSentiment:   aspects,
		KeywordCandidates: keywords,
		ValuePhrases:      valuePhrases,
		ReviewType:        reviewType,
		NeedsReply:        needsReply,
		Redaction:         redactionSummary(redactedTitle, redactedBody),
		EnricherVersion:   e.cfg.Version,
		ProcessedAt:       e.now().UTC(),
	}, nil
}

func redactionSummary(title, body privacy.Result) domain.Redaction {
	var fields []string
	if title.Applied {
		fields = append(fields, privacy.FieldTitle)
	}
	if body.Applied {
		fields = append(fields, privacy.FieldBody)
	}
	return domain.Redaction{Applied: len(fields) > 0, Fields: fields}
}

// preferredText picks the body when present, else the title. Bodies
// carry the substance; titles alone are often a single exclamation.
func preferredText(title, body string) string {
	if strings.TrimSpace(body) != "" {
		return body
	}
	return title
}

func joinFields(title, body string) string {
	switch {
	case strings.TrimSpace(title) == "":
		return body
	case strings.TrimSpace(body) == "":
		return title
	default:
		return title + ". " + body
	}
}

func hintOf(raw domain.RawReview) string {
	if raw.LanguageHint == nil {
		return ""
	}
	return *raw.LanguageHint
}

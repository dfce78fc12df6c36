// Package privacy masks personally identifiable information in review
// text. Redaction runs before any other enrichment stage and is the one
// stage whose total failure withholds a review instead of degrading.
package privacy

import (
	"context"
	"sort"
	"strings"

	"github.com/sercanai/screenaso/internal/logger"
)

// PII categories reported in redaction results.
const (
	CategoryEmail    = "email"
	CategoryPhone    = "phone"
	CategoryCard     = "card"
	CategoryIBAN     = "iban"
	CategoryName     = "name"
	CategoryLocation = "location"
)

// Field names accepted by Redact.
const (
	FieldTitle = "title"
	FieldBody  = "body"
)

// Whole-field placeholders, emitted when a field is unsafe to retain in
// any form.
const (
	TokenTitle = "[REDACTED_TITLE]"
	TokenBody  = "[REDACTED_BODY]"
)

// Span is one sensitive region found by the primary detector. Offsets
// are byte positions into the analyzed text.
type Span struct {
	Start    int     `json:"start"`
	End      int     `json:"end"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Detection is the primary detector's verdict for one field.
type Detection struct {
	Spans []Span `json:"spans"`
	// FieldUnsafe marks the whole field as unretainable; the caller
	// collapses it to the field placeholder.
	FieldUnsafe bool `json:"field_unsafe"`
}

// SpanDetector is the primary, model-based redaction path. A nil
// detector or any detector error routes to the deterministic fallback.
type SpanDetector interface {
	Detect(ctx context.Context, text string) (*Detection, error)
}

// Result describes one field after redaction.
type Result struct {
	Text       string
	Applied    bool
	Categories []string
	Source     string // "model" or "fallback"
}

// Minimum detector score for fuzzy entity categories. Short or
// low-confidence name/location hits are mostly brand-word false
// positives.
const (
	minEntityScore = 0.70
	minEntitySpan  = 3
)

// Redactor masks title/body text using the primary detector when one is
// configured, always followed by the deterministic pattern pass. The
// pattern pass is a floor: it runs even after a successful model pass so
// a missed email or card number can never survive.
type Redactor struct {
	detector SpanDetector
	log      logger.Logger
}

// NewRedactor creates a redactor. detector may be nil, in which case
// only the pattern fallback applies.
func NewRedactor(detector SpanDetector, log logger.Logger) *Redactor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Redactor{detector: detector, log: log}
}

// Redact masks sensitive spans in a single field. field selects the
// whole-field placeholder (FieldTitle or FieldBody). The concrete
// redactor never returns an error: the pattern fallback is total. The
// error return exists for the orchestrator's fail-closed contract, which
// withholds the review when any Redactor implementation fails.
func (r *Redactor) Redact(ctx context.Context, field, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{Text: text}, nil
	}
	if IsFieldPlaceholder(text) {
		// Already fully redacted upstream; re-masking is a no-op.
		return Result{Text: text, Applied: true, Source: "model"}, nil
	}

	masked := text
	categories := make([]string, 0, 2)
	source := "fallback"

	if r.detector != nil {
		detection, err := r.detector.Detect(ctx, text)
		switch {
		case err != nil:
			r.log.Warn("pii detector unavailable, using pattern fallback",
				logger.String("field", field),
				logger.Error(err))
		case detection.FieldUnsafe:
			return Result{
				Text:       fieldPlaceholder(field),
				Applied:    true,
				Categories: []string{field},
				Source:     "model",
			}, nil
		default:
			masked, categories = applySpans(masked, detection.Spans)
			source = "model"
		}
	}

	masked, patternCategories := maskPatterns(masked)
	categories = mergeCategories(categories, patternCategories)

	return Result{
		Text:       masked,
		Applied:    len(categories) > 0,
		Categories: categories,
		Source:     source,
	}, nil
}

// applySpans replaces detector spans with categorical placeholders,
// back to front so earlier offsets stay valid. Spans overlapping an
// existing placeholder are skipped, which keeps re-masking idempotent.
func applySpans(text string, spans []Span) (string, []string) {
	sorted := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Start < 0 || s.End > len(text) || s.Start >= s.End {
			continue
		}
		if s.Category == CategoryName || s.Category == CategoryLocation {
			if s.Score < minEntityScore || s.End-s.Start < minEntitySpan {
				continue
			}
		}
		if placeholderPattern.MatchString(text[s.Start:s.End]) {
			continue
		}
		sorted = append(sorted, s)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })

	categories := make([]string, 0, len(sorted))
	prevStart := len(text) + 1
	for _, s := range sorted {
		if s.End > prevStart {
			continue // overlaps a span already replaced
		}
		text = text[:s.Start] + categoryPlaceholder(s.Category) + text[s.End:]
		categories = append(categories, s.Category)
		prevStart = s.Start
	}
	return text, categories
}

func fieldPlaceholder(field string) string {
	if field == FieldTitle {
		return TokenTitle
	}
	return TokenBody
}

func mergeCategories(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, c := range append(a, b...) {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Package language identifies the language of review text.
package language

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"

	"github.com/sercanai/screenaso/internal/domain"
)

// Detector resolves the language of a text with a confidence value.
// Implementations must be safe for concurrent use.
type Detector interface {
	Detect(text, hint string) domain.Language
}

// linguaDetector wraps a lingua-go detector. The underlying model tables
// are expensive to build, so the instance is created lazily exactly once
// per process and shared read-only afterward.
type linguaDetector struct {
	minConfidence float64

	once     sync.Once
	detector lingua.LanguageDetector
}

// NewDetector creates the default lingua-backed detector. Detections
// below minConfidence yield domain.LanguageUnknown.
func NewDetector(minConfidence float64) Detector {
	return &linguaDetector{minConfidence: minConfidence}
}

func (d *linguaDetector) ensure() lingua.LanguageDetector {
	d.once.Do(func() {
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromAllSpokenLanguages().
			Build()
	})
	return d.detector
}

// Detect returns the best-guess language of text. The store-provided
// BCP-47 hint is consulted only when there is no text to detect from;
// a confident detection always wins over the hint.
func (d *linguaDetector) Detect(text, hint string) domain.Language {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		if code := normalizeHint(hint); code != "" {
			return domain.Language{Code: code, Confidence: 0}
		}
		return domain.Language{Code: domain.LanguageUnknown, Confidence: 0}
	}

	detector := d.ensure()
	lang, ok := detector.DetectLanguageOf(normalized)
	if !ok {
		return domain.Language{Code: domain.LanguageUnknown, Confidence: 0}
	}

	confidence := detector.ComputeLanguageConfidence(normalized, lang)
	if confidence < d.minConfidence {
		return domain.Language{Code: domain.LanguageUnknown, Confidence: confidence}
	}

	return domain.Language{
		Code:       strings.ToLower(lang.IsoCode639_1().String()),
		Confidence: confidence,
	}
}

// normalizeHint reduces a BCP-47 tag like "en-US" or "pt_BR" to its
// primary subtag.
func normalizeHint(hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" {
		return ""
	}
	hint = strings.ReplaceAll(hint, "_", "-")
	return strings.SplitN(hint, "-", 2)[0]
}

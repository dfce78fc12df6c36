// Package sentiment scores overall review polarity with a local VADER
// lexicon model.
package sentiment

import (
	"strings"
	"sync"

	"github.com/jonreiter/govader"

	"github.com/sercanai/screenaso/internal/domain"
)

// Label thresholds on the compound score.
const (
	positiveThreshold = 0.25
	negativeThreshold = -0.25
)

// Analyzer scores text polarity. Implementations must be safe for
// concurrent use.
type Analyzer interface {
	Analyze(text string) domain.Sentiment
}

// vaderAnalyzer wraps govader. The lexicon is loaded lazily once per
// process and treated as a shared read-only resource.
type vaderAnalyzer struct {
	once     sync.Once
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewAnalyzer creates the default VADER-backed analyzer.
func NewAnalyzer() Analyzer {
	return &vaderAnalyzer{}
}

func (a *vaderAnalyzer) ensure() *govader.SentimentIntensityAnalyzer {
	a.once.Do(func() {
		a.analyzer = govader.NewSentimentIntensityAnalyzer()
	})
	return a.analyzer
}

// Analyze scores text and maps the compound score onto the three-value
// label set. Empty or whitespace-only text deterministically yields the
// neutral default without touching the model.
func (a *vaderAnalyzer) Analyze(text string) domain.Sentiment {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return domain.NeutralSentiment(domain.SourceFallback)
	}

	scores := a.ensure().PolarityScores(normalized)
	compound := clamp(scores.Compound)

	return domain.Sentiment{
		Label:      ScoreLabel(compound),
		Score:      compound,
		Confidence: abs(compound),
		Source:     domain.SourceModel,
	}
}

// ScoreLabel maps a signed score in [-1,1] onto a sentiment label.
func ScoreLabel(score float64) string {
	switch {
	case score >= positiveThreshold:
		return domain.SentimentPositive
	case score <= negativeThreshold:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

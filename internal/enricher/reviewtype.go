package enricher

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/sercanai/screenaso/internal/domain"
)

// typeRule binds a review type to its trigger keywords. Rules are
// evaluated by priority, descending; the first match wins, so payment
// and pricing signals outrank generic negative sentiment and praise is
// checked last among keyword rules.
type typeRule struct {
	reviewType string
	priority   int
	keywords   []string
}

var typeRules = []typeRule{
	{
		reviewType: domain.TypePaymentIssue,
		priority:   50,
		keywords:   []string{"billing", "purchase", "subscription", "charged", "overcharged", "refund", "paywall", "payment"},
	},
	{
		reviewType: domain.TypeBugReport,
		priority:   40,
		keywords:   []string{"crash", "bug", "error", "glitch", "broken", "force close", "doesn t work", "fail"},
	},
	{
		reviewType: domain.TypeFeatureRequest,
		priority:   30,
		keywords:   []string{"please add", "i wish", "would be great", "would be nice", "can you add", "feature request", "needs a"},
	},
	{
		reviewType: domain.TypeUXFeedback,
		priority:   20,
		keywords:   []string{"ui", "ux", "design", "interface", "navigation", "layout"},
	},
	{
		reviewType: domain.TypePraise,
		priority:   10,
		keywords:   []string{"love", "great", "awesome", "amazing", "excellent", "thank you", "perfect"},
	},
}

// Rating at or above which a positive-sentiment review defaults to
// praise even without praise keywords.
const praiseRatingFloor = 4

// TypeClassifier assigns exactly one category from the closed taxonomy
// using deterministic rule evaluation over redacted text, keyword
// candidates, aspect signals, and the star rating.
type TypeClassifier struct {
	matcher *ahocorasick.Matcher
	kwRules []*typeRule
}

// NewTypeClassifier compiles the rule keywords into one automaton.
func NewTypeClassifier() *TypeClassifier {
	var patterns []string
	var kwRules []*typeRule
	for i := range typeRules {
		rule := &typeRules[i]
		for _, kw := range rule.keywords {
			patterns = append(patterns, normalizeTerm(kw))
			kwRules = append(kwRules, rule)
		}
	}
	return &TypeClassifier{
		matcher: ahocorasick.NewStringMatcher(patterns),
		kwRules: kwRules,
	}
}

// Classify returns the review type. Identical inputs always produce
// identical output.
func (c *TypeClassifier) Classify(
	text string,
	keywords []string,
	aspects map[string]domain.AspectSentiment,
	snt domain.Sentiment,
	rating float64,
) string {
	haystack := normalizeText(text)
	if len(keywords) > 0 {
		haystack += " " + strings.Join(keywords, " ")
	}

	best := ""
	bestPriority := -1
	for _, idx := range c.matcher.Match([]byte(haystack)) {
		if idx < 0 || idx >= len(c.kwRules) {
			continue
		}
		rule := c.kwRules[idx]
		if rule.reviewType == domain.TypePraise && !isPositive(snt, rating) {
			continue
		}
		if rule.priority > bestPriority {
			best = rule.reviewType
			bestPriority = rule.priority
		}
	}
	if best != "" {
		return best
	}

	// Aspect signals: a pricing aspect with negative polarity is a
	// payment complaint even when no rule keyword survived redaction.
	if pricing, ok := aspects[domain.AspectPricing]; ok && pricing.Label == domain.SentimentNegative {
		return domain.TypePaymentIssue
	}

	if isPositive(snt, rating) && rating >= praiseRatingFloor {
		return domain.TypePraise
	}

	return domain.TypeOther
}

func isPositive(snt domain.Sentiment, rating float64) bool {
	return snt.Label == domain.SentimentPositive || rating >= praiseRatingFloor
}

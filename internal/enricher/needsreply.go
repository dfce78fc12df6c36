package enricher

import "github.com/sercanai/screenaso/internal/domain"

// Review types that always warrant developer attention.
var attentionTypes = map[string]bool{
	domain.TypeBugReport:      true,
	domain.TypeFeatureRequest: true,
	domain.TypePaymentIssue:   true,
}

// Keyword markers that escalate a review regardless of its type.
var attentionMarkers = map[string]bool{
	"refund":  true,
	"support": true,
	"help":    true,
	"broken":  true,
}

const (
	lowRatingCeiling       = 2
	negativeScoreThreshold = -0.25
)

// NeedsReply derives the reply-urgency flag. It is a pure function of
// its inputs: no side effects, identical inputs always yield identical
// output.
func NeedsReply(rating float64, snt domain.Sentiment, reviewType string, keywords []string) bool {
	if attentionTypes[reviewType] {
		return true
	}
	if rating <= lowRatingCeiling {
		return true
	}
	if snt.Label == domain.SentimentNegative || snt.Score <= negativeScoreThreshold {
		return true
	}
	for _, kw := range keywords {
		if attentionMarkers[kw] {
			return true
		}
	}
	return false
}

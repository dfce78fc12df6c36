package enricher

import (
	"context"
	"math"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/time/rate"

	"github.com/sercanai/screenaso/internal/domain"
	"github.com/sercanai/screenaso/internal/logger"
	"github.com/sercanai/screenaso/internal/sentiment"
)

// aspectLexicon maps each taxonomy aspect to its heuristic keyword set.
var aspectLexicon = map[string][]string{
	domain.AspectPricing: {
		"price", "paywall", "subscription", "expensive", "overcharged", "refund", "billing",
	},
	domain.AspectPerformance: {
		"slow", "lag", "laggy", "delay", "freez", "loading", "sluggish", "speed",
	},
	domain.AspectUX: {
		"ui", "ux", "design", "interface", "navigation", "layout", "button", "screen",
	},
	domain.AspectStability: {
		"crash", "bug", "error", "hang", "force close", "frozen", "unstable", "glitch",
	},
	domain.AspectAds: {
		"ads", "advert", "commercial", "pop up", "popup", "sponsored",
	},
	domain.AspectSupport: {
		"support", "help", "customer service", "contact", "reply", "response",
	},
}

// A single heuristic keyword hit is worth this much confidence; two or
// more saturate at 1.0.
const heuristicHitWeight = 0.5

// minAspectConfidence is the relevance floor below which an aspect is
// not emitted.
const minAspectConfidence = 0.45

// ZeroShotClassifier scores text against candidate labels without
// label-specific training. mlclient.Client satisfies this.
type ZeroShotClassifier interface {
	ZeroShot(ctx context.Context, text string, labels []string) (map[string]float64, error)
}

// AspectTagger produces the sparse per-aspect sentiment map. The
// heuristic pass runs a single Aho-Corasick automaton over the lexicons
// of all six aspects; the optional zero-shot pass refines it.
type AspectTagger struct {
	matcher   *ahocorasick.Matcher
	keywords  []string
	kwAspects []string // aspect owning each keyword index

	zeroShot  ZeroShotClassifier // nil = heuristic-only mode
	threshold float64
	limiter   *rate.Limiter
	log       logger.Logger
}

// NewAspectTagger builds the automaton from the aspect lexicons.
// zeroShot may be nil (heuristic-only mode). limiter caps sidecar call
// rate and may be nil.
func NewAspectTagger(zeroShot ZeroShotClassifier, threshold float64, limiter *rate.Limiter, log logger.Logger) *AspectTagger {
	if log == nil {
		log = logger.NewNop()
	}

	t := &AspectTagger{
		zeroShot:  zeroShot,
		threshold: threshold,
		limiter:   limiter,
		log:       log,
	}
	for _, aspect := range domain.AspectTaxonomy() {
		for _, kw := range aspectLexicon[aspect] {
			t.keywords = append(t.keywords, normalizeTerm(kw))
			t.kwAspects = append(t.kwAspects, aspect)
		}
	}
	t.matcher = ahocorasick.NewStringMatcher(t.keywords)
	return t
}

// Tag returns aspects relevant to text, keyed strictly within the fixed
// taxonomy. Aspect polarity mirrors the overall sentiment. When overall
// carries fallback provenance (unknown or unsupported language) the
// zero-shot model is not invoked and emitted entries are the safe
// neutral default.
func (t *AspectTagger) Tag(ctx context.Context, text string, overall domain.Sentiment) map[string]domain.AspectSentiment {
	normalized := normalizeText(text)
	if normalized == "" {
		return map[string]domain.AspectSentiment{}
	}

	hitsPerAspect := make(map[string]int)
	for _, idx := range t.matcher.Match([]byte(normalized)) {
		if idx < 0 || idx >= len(t.kwAspects) {
			continue
		}
		hitsPerAspect[t.kwAspects[idx]]++
	}

	safeDefault := overall.Source == domain.SourceFallback

	result := make(map[string]domain.AspectSentiment, len(hitsPerAspect))
	for aspect, hits := range hitsPerAspect {
		confidence := math.Min(1.0, float64(hits)*heuristicHitWeight)
		if confidence < minAspectConfidence {
			continue
		}
		result[aspect] = t.entry(overall, confidence, domain.SourceHeuristic, safeDefault)
	}

	if t.zeroShot != nil && !safeDefault {
		t.mergeZeroShot(ctx, text, overall, result)
	}

	return result
}

// mergeZeroShot overlays model scores onto the heuristic result. Model
// labels clearing the threshold take precedence, with provenance
// recorded. Sidecar errors degrade silently to the heuristic result.
func (t *AspectTagger) mergeZeroShot(ctx context.Context, text string, overall domain.Sentiment, result map[string]domain.AspectSentiment) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return
		}
	}

	scores, err := t.zeroShot.ZeroShot(ctx, text, domain.AspectTaxonomy())
	if err != nil {
		t.log.Warn("zero-shot classification failed, keeping heuristic aspects", logger.Error(err))
		return
	}

	for aspect, score := range scores {
		if !domain.ValidAspect(aspect) || score < t.threshold {
			continue
		}
		existing, ok := result[aspect]
		if ok && existing.Confidence > score && existing.Source == domain.SourceModel {
			continue
		}
		result[aspect] = t.entry(overall, score, domain.SourceModel, false)
	}
}

func (t *AspectTagger) entry(overall domain.Sentiment, confidence float64, source string, safeDefault bool) domain.AspectSentiment {
	if safeDefault {
		return domain.AspectSentiment{
			Label:      domain.SentimentNeutral,
			Score:      0,
			Confidence: confidence,
			Source:     domain.SourceFallback,
		}
	}
	return domain.AspectSentiment{
		Label:      sentiment.ScoreLabel(overall.Score),
		Score:      overall.Score,
		Confidence: confidence,
		Source:     source,
	}
}

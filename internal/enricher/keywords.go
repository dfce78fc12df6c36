package enricher

import (
	"math"
	"sort"
	"strings"

	"github.com/bbalet/stopwords"

	"github.com/sercanai/screenaso/internal/domain"
	"github.com/sercanai/screenaso/internal/privacy"
)

const (
	maxPhraseTokens = 3
	// Candidate pools are larger than the final limits so interleaving
	// and deduplication have material to work with.
	candidateFactor = 2
)

// KeywordExtractor merges a statistical term-frequency extractor with a
// semantic phrase ranker. Both operate on redacted, placeholder-stripped
// text; short or empty input yields empty results, never an error.
type KeywordExtractor struct {
	keywordLimit     int
	valuePhraseLimit int
}

// NewKeywordExtractor creates an extractor with the configured caps.
func NewKeywordExtractor(keywordLimit, valuePhraseLimit int) *KeywordExtractor {
	return &KeywordExtractor{
		keywordLimit:     keywordLimit,
		valuePhraseLimit: valuePhraseLimit,
	}
}

type scoredTerm struct {
	term  string
	score float64
}

// Extract returns ranked keyword candidates (deduplicated by normalized
// form, capped at keyword_limit) and a secondary value-phrase list
// (capped at value_phrase_limit). lang selects the stopword list; codes
// without one fall back to English.
func (e *KeywordExtractor) Extract(text, lang string) (keywords, valuePhrases []string) {
	cleaned := privacy.StripPlaceholders(text)
	if cleaned == "" {
		return nil, nil
	}

	if lang == "" || lang == domain.LanguageUnknown {
		lang = "en"
	}
	tokens := strings.Fields(normalizeText(stopwords.CleanString(cleaned, lang, false)))
	if len(tokens) == 0 {
		return nil, nil
	}

	statistical := e.statisticalCandidates(tokens)
	semantic := e.semanticCandidates(tokens)

	keywords = interleave(statistical, semantic, e.keywordLimit)

	for _, c := range semantic {
		if len(valuePhrases) >= e.valuePhraseLimit {
			break
		}
		valuePhrases = append(valuePhrases, c.term)
	}

	return keywords, valuePhrases
}

// statisticalCandidates ranks unigrams and bigrams by frequency, longer
// terms first on ties.
func (e *KeywordExtractor) statisticalCandidates(tokens []string) []scoredTerm {
	freq := make(map[string]int)
	for i, tok := range tokens {
		freq[tok]++
		if i+1 < len(tokens) {
			freq[tok+" "+tokens[i+1]]++
		}
	}

	candidates := make([]scoredTerm, 0, len(freq))
	for term, count := range freq {
		candidates = append(candidates, scoredTerm{term: term, score: float64(count)})
	}
	sortCandidates(candidates)

	limit := e.keywordLimit * candidateFactor
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// semanticCandidates ranks 1..3-token windows by cosine similarity
// between the phrase term vector and the full-document term vector, so
// phrases built from the document's dominant vocabulary rank highest.
func (e *KeywordExtractor) semanticCandidates(tokens []string) []scoredTerm {
	docVec := make(map[string]float64)
	for _, tok := range tokens {
		docVec[tok]++
	}
	docNorm := vectorNorm(docVec)
	if docNorm == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var candidates []scoredTerm
	for i := range tokens {
		for n := 1; n <= maxPhraseTokens && i+n <= len(tokens); n++ {
			phrase := strings.Join(tokens[i:i+n], " ")
			if seen[phrase] {
				continue
			}
			seen[phrase] = true

			phraseVec := make(map[string]float64, n)
			for _, tok := range tokens[i : i+n] {
				phraseVec[tok]++
			}
			score := cosine(phraseVec, docVec, docNorm)
			// Slight preference for multi-token phrases keeps the list
			// from collapsing into repeated unigrams.
			score *= 1 + 0.1*float64(n-1)
			candidates = append(candidates, scoredTerm{term: phrase, score: score})
		}
	}
	sortCandidates(candidates)

	limit := e.valuePhraseLimit * candidateFactor
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// interleave alternates the two ranked lists, dedupes by normalized
// form, and truncates to limit.
func interleave(a, b []scoredTerm, limit int) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, limit)

	appendTerm := func(term string) {
		norm := normalizeTerm(term)
		if norm == "" || seen[norm] || len(out) >= limit {
			return
		}
		seen[norm] = true
		out = append(out, norm)
	}

	for i := 0; i < len(a) || i < len(b); i++ {
		if i < len(a) {
			appendTerm(a[i].term)
		}
		if i < len(b) {
			appendTerm(b[i].term)
		}
		if len(out) >= limit {
			break
		}
	}
	return out
}

func sortCandidates(candidates []scoredTerm) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if len(candidates[i].term) != len(candidates[j].term) {
			return len(candidates[i].term) > len(candidates[j].term)
		}
		return candidates[i].term < candidates[j].term
	})
}

func cosine(phraseVec, docVec map[string]float64, docNorm float64) float64 {
	var dot float64
	for term, weight := range phraseVec {
		dot += weight * docVec[term]
	}
	phraseNorm := vectorNorm(phraseVec)
	if phraseNorm == 0 {
		return 0
	}
	return dot / (phraseNorm * docNorm)
}

func vectorNorm(vec map[string]float64) float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	return math.Sqrt(sum)
}

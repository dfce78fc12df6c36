package enricher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sercanai/screenaso/internal/domain"
)

func TestExtractBasic(t *testing.T) {
	e := NewKeywordExtractor(8, 5)

	keywords, phrases := e.Extract(
		"The dark mode is fantastic. Dark mode makes reading at night comfortable.", "en")

	require.NotEmpty(t, keywords)
	assert.LessOrEqual(t, len(keywords), 8)
	assert.LessOrEqual(t, len(phrases), 5)
	assert.Contains(t, keywords, "dark mode", "repeated bigram should rank")

	seen := make(map[string]bool)
	for _, kw := range keywords {
		assert.False(t, seen[kw], "keywords must be deduplicated: %s", kw)
		seen[kw] = true
	}
}

func TestExtractEmptyAndPlaceholderOnly(t *testing.T) {
	e := NewKeywordExtractor(8, 5)

	keywords, phrases := e.Extract("", "en")
	assert.Empty(t, keywords)
	assert.Empty(t, phrases)

	keywords, phrases = e.Extract("[REDACTED_BODY]", "en")
	assert.Empty(t, keywords)
	assert.Empty(t, phrases)
}

func TestExtractStripsPlaceholders(t *testing.T) {
	e := NewKeywordExtractor(8, 5)

	keywords, _ := e.Extract("battery drain issue, contact [REDACTED_EMAIL] for details", "en")
	for _, kw := range keywords {
		assert.NotContains(t, kw, "redacted")
	}
}

func TestExtractUnknownLanguageFallsBackToEnglish(t *testing.T) {
	e := NewKeywordExtractor(8, 5)

	keywords, _ := e.Extract("the login screen crashes often", domain.LanguageUnknown)
	assert.NotEmpty(t, keywords)
	assert.NotContains(t, keywords, "the", "english stopwords still removed")
}

func TestExtractRespectsLimits(t *testing.T) {
	e := NewKeywordExtractor(3, 2)

	keywords, phrases := e.Extract(
		"slow loading times, broken sync, missing widgets, confusing settings, constant notifications, battery drain", "en")
	assert.LessOrEqual(t, len(keywords), 3)
	assert.LessOrEqual(t, len(phrases), 2)
}

func TestExtractDeterministic(t *testing.T) {
	e := NewKeywordExtractor(8, 5)
	text := "sync fails constantly and the sync settings are hidden"

	k1, p1 := e.Extract(text, "en")
	k2, p2 := e.Extract(text, "en")
	assert.Equal(t, k1, k2)
	assert.Equal(t, p1, p2)
}

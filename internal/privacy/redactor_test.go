package privacy

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskPatterns(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		want       string
		categories []string
	}{
		{
			name:       "email",
			input:      "contact me at jane.doe@example.com please",
			want:       "contact me at [REDACTED_EMAIL] please",
			categories: []string{CategoryEmail},
		},
		{
			name:       "phone with separators",
			input:      "call 555-123-4567 anytime",
			want:       "call [REDACTED_PHONE] anytime",
			categories: []string{CategoryPhone},
		},
		{
			name:       "card number",
			input:      "my card 4111 1111 1111 1111 was charged twice",
			want:       "my card [REDACTED_CARD] was charged twice",
			categories: []string{CategoryCard},
		},
		{
			name:       "iban",
			input:      "refund to DE89370400440532013000 now",
			want:       "refund to [REDACTED_IBAN] now",
			categories: []string{CategoryIBAN},
		},
		{
			name:       "email and phone together",
			input:      "jane@example.com or (555) 123 4567",
			want:       "[REDACTED_EMAIL] or [REDACTED_PHONE]",
			categories: []string{CategoryEmail, CategoryPhone},
		},
		{
			name:  "clean text untouched",
			input: "great app, love the dark mode",
			want:  "great app, love the dark mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, categories := maskPatterns(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.categories, categories)
			assert.False(t, ContainsPII(got))
		})
	}
}

func TestRedactIdempotent(t *testing.T) {
	r := NewRedactor(nil, nil)
	ctx := context.Background()

	inputs := []string{
		"email me at user@example.com",
		"call +1 555 123 4567 or 555.123.4567",
		"card 4111111111111111 charged",
		"already [REDACTED_EMAIL] masked",
	}

	for _, input := range inputs {
		once, err := r.Redact(ctx, FieldBody, input)
		require.NoError(t, err)
		twice, err := r.Redact(ctx, FieldBody, once.Text)
		require.NoError(t, err)
		assert.Equal(t, once.Text, twice.Text, "re-masking must be a no-op for %q", input)
	}
}

func TestRedactEmptyAndPlaceholder(t *testing.T) {
	r := NewRedactor(nil, nil)
	ctx := context.Background()

	res, err := r.Redact(ctx, FieldTitle, "")
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Empty(t, res.Text)

	res, err = r.Redact(ctx, FieldTitle, TokenTitle)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, TokenTitle, res.Text)
}

type stubDetector struct {
	detection *Detection
	err       error
}

func (s *stubDetector) Detect(_ context.Context, _ string) (*Detection, error) {
	return s.detection, s.err
}

func TestRedactModelSpans(t *testing.T) {
	text := "John Smith broke my account"
	det := &stubDetector{detection: &Detection{
		Spans: []Span{{Start: 0, End: 10, Category: CategoryName, Score: 0.95}},
	}}

	r := NewRedactor(det, nil)
	res, err := r.Redact(context.Background(), FieldBody, text)
	require.NoError(t, err)

	assert.True(t, res.Applied)
	assert.Equal(t, "model", res.Source)
	assert.Equal(t, "[REDACTED_NAME] broke my account", res.Text)
	assert.Contains(t, res.Categories, CategoryName)
}

func TestRedactLowScoreEntitySkipped(t *testing.T) {
	text := "Spotify keeps crashing"
	det := &stubDetector{detection: &Detection{
		Spans: []Span{{Start: 0, End: 7, Category: CategoryName, Score: 0.40}},
	}}

	r := NewRedactor(det, nil)
	res, err := r.Redact(context.Background(), FieldBody, text)
	require.NoError(t, err)
	assert.Equal(t, text, res.Text)
	assert.False(t, res.Applied)
}

func TestRedactFieldUnsafe(t *testing.T) {
	det := &stubDetector{detection: &Detection{FieldUnsafe: true}}
	r := NewRedactor(det, nil)

	res, err := r.Redact(context.Background(), FieldBody, "my full home address is 12 Elm Street")
	require.NoError(t, err)
	assert.Equal(t, TokenBody, res.Text)
	assert.True(t, res.Applied)
}

func TestRedactDetectorErrorFallsBack(t *testing.T) {
	det := &stubDetector{err: errors.New("sidecar down")}
	r := NewRedactor(det, nil)

	res, err := r.Redact(context.Background(), FieldBody, "reach me at a@b.io")
	require.NoError(t, err)
	assert.Equal(t, "fallback", res.Source)
	assert.False(t, strings.Contains(res.Text, "@"))
}

func TestRedactPatternFloorAfterModelPass(t *testing.T) {
	// Model found nothing; the pattern pass must still catch the email.
	det := &stubDetector{detection: &Detection{}}
	r := NewRedactor(det, nil)

	res, err := r.Redact(context.Background(), FieldBody, "missed one: leak@example.org")
	require.NoError(t, err)
	assert.False(t, ContainsPII(res.Text))
	assert.Contains(t, res.Categories, CategoryEmail)
}

func TestStripPlaceholders(t *testing.T) {
	assert.Equal(t, "", StripPlaceholders(TokenBody))
	assert.Equal(t, "call me at", StripPlaceholders("call me at [REDACTED_PHONE]"))
	assert.Equal(t, "plain text", StripPlaceholders("plain text"))
}

func TestIsFieldPlaceholder(t *testing.T) {
	assert.True(t, IsFieldPlaceholder(TokenTitle))
	assert.True(t, IsFieldPlaceholder(" [REDACTED_BODY] "))
	assert.False(t, IsFieldPlaceholder("has [REDACTED_EMAIL] inside"))
}

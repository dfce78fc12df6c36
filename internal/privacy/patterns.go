package privacy

import (
	"regexp"
	"strings"
)

// Categorical placeholders used for span-level masking. Placeholders
// contain no digits and no '@', so none of the patterns below can match
// one; masking already-masked text is therefore a no-op.
const (
	tokenEmail = "[REDACTED_EMAIL]"
	tokenPhone = "[REDACTED_PHONE]"
	tokenCard  = "[REDACTED_CARD]"
	tokenIBAN  = "[REDACTED_IBAN]"
	tokenName  = "[REDACTED_NAME]"
	tokenOther = "[REDACTED]"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	// Payment-card-like digit runs: 13-19 digits, optional space/dash
	// separators. Applied before the phone pattern so a card number is
	// not partially consumed as a phone match.
	cardPattern = regexp.MustCompile(`\b\d(?:[ -]?\d){12,18}\b`)

	ibanPattern = regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Za-z0-9]{11,30}\b`)

	// Phone numbers with common separator styles, with or without a
	// country prefix and area-code parentheses.
	phonePattern = regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]*)?\(?\d{3}\)?[-.\s]*\d{3}[-.\s]*\d{4}`)

	placeholderPattern = regexp.MustCompile(`\[REDACTED(?:_[A-Z]+)?\]`)
)

// maskPatterns is the deterministic fallback redaction pass. It covers
// emails, IBAN-like sequences, payment-card-like digit runs, and phone
// numbers. This set is a floor, never a ceiling.
func maskPatterns(text string) (string, []string) {
	var categories []string

	mask := func(p *regexp.Regexp, token, category string) {
		if p.MatchString(text) {
			text = p.ReplaceAllString(text, token)
			categories = append(categories, category)
		}
	}

	mask(emailPattern, tokenEmail, CategoryEmail)
	mask(ibanPattern, tokenIBAN, CategoryIBAN)
	mask(cardPattern, tokenCard, CategoryCard)
	mask(phonePattern, tokenPhone, CategoryPhone)

	return text, categories
}

func categoryPlaceholder(category string) string {
	switch category {
	case CategoryEmail:
		return tokenEmail
	case CategoryPhone:
		return tokenPhone
	case CategoryCard:
		return tokenCard
	case CategoryIBAN:
		return tokenIBAN
	case CategoryName, CategoryLocation:
		return tokenName
	default:
		return tokenOther
	}
}

// ContainsPII reports whether any fallback pattern still matches. Used
// by tests and by callers verifying the redaction gate.
func ContainsPII(text string) bool {
	return emailPattern.MatchString(text) ||
		ibanPattern.MatchString(text) ||
		cardPattern.MatchString(text) ||
		phonePattern.MatchString(text)
}

// IsFieldPlaceholder reports whether value is a whole-field placeholder.
func IsFieldPlaceholder(value string) bool {
	v := strings.TrimSpace(value)
	return v == TokenTitle || v == TokenBody || v == tokenOther
}

// StripPlaceholders removes redaction tokens and collapses whitespace,
// returning text suitable for keyword extraction.
func StripPlaceholders(value string) string {
	if IsFieldPlaceholder(value) {
		return ""
	}
	cleaned := placeholderPattern.ReplaceAllString(value, " ")
	return strings.Join(strings.Fields(cleaned), " ")
}

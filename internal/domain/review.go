package domain

import (
	"strings"
	"time"
)

// Store identifiers for review origins.
const (
	StoreAppStore  = "app_store"
	StorePlayStore = "play_store"
)

// EnrichmentStatus constants. A raw review moves pending -> enriched on
// success, pending -> failed on stage errors that leave no usable record,
// and pending -> withheld when redaction fails closed.
const (
	StatusPending  = "pending"
	StatusEnriched = "enriched"
	StatusFailed   = "failed"
	StatusWithheld = "withheld"
)

// RawReview represents a store review as delivered by the collector.
// It is consumed read-only by the enrichment pipeline.
type RawReview struct {
	ID           string  `db:"id"            json:"id"`
	Store        string  `db:"store"         json:"store"`
	AppID        string  `db:"app_id"        json:"app_id"`
	Country      string  `db:"country"       json:"country"`
	LanguageHint *string `db:"language_hint" json:"language_hint,omitempty"`
	Rating       float64 `db:"rating"        json:"rating"`

	// Title and Body are nullable: some stores allow rating-only reviews.
	Title *string `db:"title" json:"title"`
	Body  *string `db:"body"  json:"body"`

	AuthoredAt     time.Time      `db:"authored_at" json:"authored_at"`
	SourceMetadata map[string]any `db:"-"           json:"source_metadata,omitempty"`

	// Processing status, maintained by the persistence layer.
	EnrichmentStatus string     `db:"enrichment_status" json:"enrichment_status,omitempty"`
	EnrichedAt       *time.Time `db:"enriched_at"       json:"enriched_at,omitempty"`
}

// TitleText returns the title or "" when absent.
func (r *RawReview) TitleText() string {
	if r.Title == nil {
		return ""
	}
	return *r.Title
}

// BodyText returns the body or "" when absent.
func (r *RawReview) BodyText() string {
	if r.Body == nil {
		return ""
	}
	return *r.Body
}

// IsEmpty reports whether the review carries no text at all
// (rating-only review, the MalformedInput case).
func (r *RawReview) IsEmpty() bool {
	return strings.TrimSpace(r.TitleText()) == "" && strings.TrimSpace(r.BodyText()) == ""
}

// Package storage persists raw and enriched reviews through sqlx. The
// enriched table is append-only; raw rows only ever change status.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver for offline batch runs

	"github.com/sercanai/screenaso/internal/config"
)

const pingTimeout = 5 * time.Second

// Connect opens the review store selected by cfg.Driver ("postgres" or
// "sqlite3"), applies pool settings, and verifies connectivity.
func Connect(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error

	switch cfg.Driver {
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
		)
		db, err = sqlx.Open("postgres", dsn)
	case "sqlite3":
		db, err = sqlx.Open("sqlite3", cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLife)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if pingErr := db.PingContext(ctx); pingErr != nil {
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	return db, nil
}

// Schema shared by both drivers. Types stay on the portable subset so
// the same DDL runs under PostgreSQL and SQLite.
const schema = `
CREATE TABLE IF NOT EXISTS raw_reviews (
	id                TEXT PRIMARY KEY,
	store             TEXT NOT NULL,
	app_id            TEXT NOT NULL,
	country           TEXT NOT NULL DEFAULT '',
	language_hint     TEXT,
	rating            REAL NOT NULL,
	title             TEXT,
	body              TEXT,
	authored_at       TIMESTAMP NOT NULL,
	enrichment_status TEXT NOT NULL DEFAULT 'pending',
	enriched_at       TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_raw_reviews_status
	ON raw_reviews (enrichment_status, authored_at);

CREATE TABLE IF NOT EXISTS enriched_reviews (
	id                 TEXT PRIMARY KEY,
	review_id          TEXT NOT NULL,
	app_id             TEXT NOT NULL,
	store              TEXT NOT NULL,
	country            TEXT NOT NULL DEFAULT '',
	rating             REAL NOT NULL,
	title              TEXT,
	body               TEXT,
	authored_at        TIMESTAMP NOT NULL,
	language_code      TEXT NOT NULL,
	language_confidence REAL NOT NULL,
	sentiment_label    TEXT NOT NULL,
	sentiment_score    REAL NOT NULL,
	sentiment_source   TEXT NOT NULL,
	aspect_sentiment   TEXT NOT NULL,
	keyword_candidates TEXT NOT NULL,
	value_phrases      TEXT NOT NULL,
	review_type        TEXT NOT NULL,
	needs_reply        BOOLEAN NOT NULL,
	redaction          TEXT NOT NULL,
	enricher_version   TEXT NOT NULL,
	processed_at       TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_enriched_reviews_app
	ON enriched_reviews (app_id, processed_at);
`

// EnsureSchema creates the review tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

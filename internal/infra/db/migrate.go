package db

import (
	"context"
	"database/sql"
	"fmt"
)

// postgresSchema creates the subjects, reviews and follows tables.
// Full-text search vectors are generated columns so they never drift from
// the text they index.
var postgresSchema = []string{
	`
CREATE TABLE IF NOT EXISTS subjects (
    id            BIGSERIAL PRIMARY KEY,
    title         TEXT NOT NULL,
    category      TEXT NOT NULL DEFAULT '',
    description   TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    search_vector tsvector GENERATED ALWAYS AS (
        setweight(to_tsvector('english', coalesce(title, '')), 'A') ||
        setweight(to_tsvector('english', coalesce(category, '')), 'B') ||
        setweight(to_tsvector('english', coalesce(description, '')), 'C')
    ) STORED
)`,
	`
CREATE TABLE IF NOT EXISTS reviews (
    id            BIGSERIAL PRIMARY KEY,
    subject_id    BIGINT NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
    author_id     BIGINT NOT NULL,
    title         TEXT NOT NULL DEFAULT '',
    body          TEXT NOT NULL DEFAULT '',
    rating        SMALLINT NOT NULL CHECK (rating BETWEEN 1 AND 5),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    search_vector tsvector GENERATED ALWAYS AS (
        setweight(to_tsvector('english', coalesce(title, '')), 'A') ||
        setweight(to_tsvector('english', coalesce(body, '')), 'B')
    ) STORED
)`,
	`
CREATE TABLE IF NOT EXISTS follows (
    follower_id BIGINT NOT NULL,
    followee_id BIGINT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (follower_id, followee_id)
)`,
	`
CREATE OR REPLACE VIEW subject_rating_stats AS
SELECT subject_id, COUNT(*) AS review_count, AVG(rating)::float8 AS average_rating
FROM reviews
GROUP BY subject_id`,
	// keyset order for the latest feeds
	`CREATE INDEX IF NOT EXISTS idx_reviews_created_at_id ON reviews(created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_author_created_at ON reviews(author_id, created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_subject_id ON reviews(subject_id)`,
	`CREATE INDEX IF NOT EXISTS idx_subjects_created_at_id ON subjects(created_at DESC, id DESC)`,
	// full-text search
	`CREATE INDEX IF NOT EXISTS idx_reviews_search_vector ON reviews USING gin(search_vector)`,
	`CREATE INDEX IF NOT EXISTS idx_subjects_search_vector ON subjects USING gin(search_vector)`,
}

// sqliteSchema mirrors postgresSchema without full-text search.
// created_at is stored as unix microseconds.
var sqliteSchema = []string{
	`
CREATE TABLE IF NOT EXISTS subjects (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT NOT NULL,
    category    TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    created_at  INTEGER NOT NULL
)`,
	`
CREATE TABLE IF NOT EXISTS reviews (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    subject_id INTEGER NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
    author_id  INTEGER NOT NULL,
    title      TEXT NOT NULL DEFAULT '',
    body       TEXT NOT NULL DEFAULT '',
    rating     INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
    created_at INTEGER NOT NULL
)`,
	`
CREATE TABLE IF NOT EXISTS follows (
    follower_id INTEGER NOT NULL,
    followee_id INTEGER NOT NULL,
    created_at  INTEGER NOT NULL,
    PRIMARY KEY (follower_id, followee_id)
)`,
	`
CREATE VIEW IF NOT EXISTS subject_rating_stats AS
SELECT subject_id, COUNT(*) AS review_count, CAST(AVG(rating) AS REAL) AS average_rating
FROM reviews
GROUP BY subject_id`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_created_at_id ON reviews(created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_author_created_at ON reviews(author_id, created_at DESC, id DESC)`,
}

// MigrateUp creates the schema for driver. Every statement is idempotent.
func MigrateUp(ctx context.Context, db *sql.DB, driver string) error {
	var stmts []string
	switch driver {
	case DriverPostgres:
		stmts = postgresSchema
	case DriverSQLite:
		stmts = sqliteSchema
	default:
		return fmt.Errorf("MigrateUp: unsupported driver %q", driver)
	}

	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("MigrateUp: statement %d: %w", i+1, err)
		}
	}
	return nil
}

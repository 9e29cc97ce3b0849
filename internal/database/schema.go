package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema contains the complete DDL for the boilerplate engine tables.
// Statements are idempotent so Migrate can run on every startup.
const Schema = `
-- Persistent patterns: the durable, domain-scoped pattern library.
-- Rows merge on (domain, normalized_text) and are never deleted.
CREATE TABLE IF NOT EXISTS persistent_patterns (
    id                      SERIAL PRIMARY KEY,
    domain                  VARCHAR(255) NOT NULL,
    pattern_type            VARCHAR(50) NOT NULL,
    text_content            TEXT NOT NULL,
    normalized_text         TEXT NOT NULL,
    confidence_score        DOUBLE PRECISION NOT NULL DEFAULT 0,
    occurrences_total       INTEGER NOT NULL DEFAULT 0,
    is_ml_training_eligible BOOLEAN NOT NULL DEFAULT FALSE,
    removal_reason          TEXT NOT NULL DEFAULT '',
    created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (domain, normalized_text)
);
CREATE INDEX IF NOT EXISTS idx_patterns_domain ON persistent_patterns(domain);
CREATE INDEX IF NOT EXISTS idx_patterns_ml ON persistent_patterns(is_ml_training_eligible) WHERE is_ml_training_eligible;

-- Cleaning sessions: append-only, one row per cleaned article.
CREATE TABLE IF NOT EXISTS cleaning_sessions (
    id                          BIGSERIAL PRIMARY KEY,
    session_id                  UUID NOT NULL UNIQUE,
    article_id                  VARCHAR(255) NOT NULL,
    domain                      VARCHAR(255) NOT NULL,
    chars_removed               INTEGER NOT NULL DEFAULT 0,
    patterns_matched            TEXT[] NOT NULL DEFAULT '{}',
    persistent_removals         INTEGER NOT NULL DEFAULT 0,
    social_share_header_removed BOOLEAN NOT NULL DEFAULT FALSE,
    created_at                  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_sessions_domain_created ON cleaning_sessions(domain, created_at);
CREATE INDEX IF NOT EXISTS idx_sessions_article ON cleaning_sessions(article_id);

-- Segment detections: each removed segment within a session.
CREATE TABLE IF NOT EXISTS segment_detections (
    id           BIGSERIAL PRIMARY KEY,
    session_id   UUID NOT NULL,
    domain       VARCHAR(255) NOT NULL,
    pattern_type VARCHAR(50) NOT NULL,
    text_content TEXT NOT NULL,
    start_offset INTEGER NOT NULL,
    end_offset   INTEGER NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_segments_session ON segment_detections(session_id);
CREATE INDEX IF NOT EXISTS idx_segments_domain_type ON segment_detections(domain, pattern_type);

-- Wire detections: syndication provenance findings per session.
CREATE TABLE IF NOT EXISTS wire_detections (
    id               BIGSERIAL PRIMARY KEY,
    session_id       UUID NOT NULL,
    domain           VARCHAR(255) NOT NULL,
    provider         VARCHAR(100) NOT NULL,
    confidence       DOUBLE PRECISION NOT NULL DEFAULT 0,
    detection_method VARCHAR(50) NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_wire_domain ON wire_detections(domain);
CREATE INDEX IF NOT EXISTS idx_wire_provider ON wire_detections(provider);

-- Wire service patterns: the global signature registry, evaluated in
-- ascending priority order.
CREATE TABLE IF NOT EXISTS wire_service_patterns (
    id             SERIAL PRIMARY KEY,
    pattern        TEXT NOT NULL,
    pattern_type   VARCHAR(50) NOT NULL,
    service_name   VARCHAR(100) NOT NULL,
    case_sensitive BOOLEAN NOT NULL DEFAULT FALSE,
    priority       INTEGER NOT NULL DEFAULT 100,
    active         BOOLEAN NOT NULL DEFAULT TRUE,
    notes          TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_wire_patterns_active ON wire_service_patterns(active, priority);
`

// Migrate applies the schema. All statements are IF NOT EXISTS, so this is
// safe to run on every startup.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

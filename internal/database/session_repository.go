package database

import (
	"context"
	"fmt"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SessionRepository persists the append-only cleaning telemetry: sessions,
// removed-segment detections, and wire detections. Rows are inserted once
// and never updated.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// InsertSession records one cleaning session.
func (r *SessionRepository) InsertSession(ctx context.Context, session *domain.CleaningSession) error {
	query := `
		INSERT INTO cleaning_sessions
			(session_id, article_id, domain, chars_removed, patterns_matched,
			 persistent_removals, social_share_header_removed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(
		ctx,
		query,
		session.SessionID,
		session.ArticleID,
		session.Domain,
		session.CharsRemoved,
		pq.Array(session.PatternsMatched),
		session.PersistentRemovals,
		session.SocialShareHeaderRemoved,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cleaning session: %w", err)
	}
	return nil
}

// InsertSegmentDetection records one removed segment within a session.
func (r *SessionRepository) InsertSegmentDetection(ctx context.Context, detection *domain.SegmentDetection) error {
	query := `
		INSERT INTO segment_detections
			(session_id, domain, pattern_type, text_content, start_offset, end_offset)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(
		ctx,
		query,
		detection.SessionID,
		detection.Domain,
		detection.PatternType,
		detection.TextContent,
		detection.Start,
		detection.End,
	)
	if err != nil {
		return fmt.Errorf("failed to insert segment detection: %w", err)
	}
	return nil
}

// InsertWireDetection records a syndication-provenance finding for a session.
func (r *SessionRepository) InsertWireDetection(
	ctx context.Context,
	sessionID, dom string,
	detection *domain.WireDetection,
) error {
	query := `
		INSERT INTO wire_detections
			(session_id, domain, provider, confidence, detection_method)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(
		ctx,
		query,
		sessionID,
		dom,
		detection.Provider,
		detection.Confidence,
		detection.DetectionMethod,
	)
	if err != nil {
		return fmt.Errorf("failed to insert wire detection: %w", err)
	}
	return nil
}

// StatsByDomain aggregates cleaning sessions per domain, newest-cleaned
// domains first. An empty dom aggregates every domain up to limit; a
// non-empty dom returns just that domain's row.
func (r *SessionRepository) StatsByDomain(ctx context.Context, dom string, limit int) ([]domain.DomainCleaningStats, error) {
	if limit <= 0 {
		limit = 50
	}
	var stats []domain.DomainCleaningStats
	query := `
		SELECT
			cs.domain,
			COUNT(*) AS sessions,
			COALESCE(SUM(cs.chars_removed), 0) AS total_chars_removed,
			COALESCE(AVG(cs.chars_removed), 0) AS avg_chars_removed,
			COALESCE(SUM(cs.persistent_removals), 0) AS persistent_removals,
			COALESCE(SUM(CASE WHEN cs.social_share_header_removed THEN 1 ELSE 0 END), 0) AS header_removals,
			(SELECT COUNT(*) FROM wire_detections wd WHERE wd.domain = cs.domain) AS wire_detections
		FROM cleaning_sessions cs
	`
	args := []any{}
	if dom != "" {
		query += " WHERE cs.domain = $1"
		args = append(args, dom)
	}
	query += `
		GROUP BY cs.domain
		ORDER BY MAX(cs.created_at) DESC
	`
	query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
	args = append(args, limit)

	if err := r.db.SelectContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate domain stats: %w", err)
	}
	return stats, nil
}

// CandidateDomains returns domains with recent cleaning activity whose
// pattern library is empty or stale, ordered by session volume. The mining
// scheduler works through this list.
func (r *SessionRepository) CandidateDomains(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 20
	}
	var domains []string
	query := `
		SELECT cs.domain
		FROM cleaning_sessions cs
		LEFT JOIN persistent_patterns pp ON pp.domain = cs.domain
		WHERE cs.created_at > NOW() - INTERVAL '7 days'
		GROUP BY cs.domain
		HAVING COUNT(DISTINCT pp.id) = 0
			OR MAX(pp.updated_at) < NOW() - INTERVAL '30 days'
		ORDER BY COUNT(*) DESC
		LIMIT $1
	`
	if err := r.db.SelectContext(ctx, &domains, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list candidate domains: %w", err)
	}
	return domains, nil
}

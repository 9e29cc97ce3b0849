package database

import (
	"context"
	"fmt"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/domain"
	"github.com/jmoiron/sqlx"
)

// PatternRepository handles database operations for persistent boilerplate
// patterns. Rows are uniquely keyed by (domain, normalized_text) and are
// merged on upsert, never deleted.
type PatternRepository struct {
	db *sqlx.DB
}

// NewPatternRepository creates a new pattern repository.
func NewPatternRepository(db *sqlx.DB) *PatternRepository {
	return &PatternRepository{db: db}
}

const upsertPatternQuery = `
	INSERT INTO persistent_patterns
		(domain, pattern_type, text_content, normalized_text, confidence_score,
		 occurrences_total, is_ml_training_eligible, removal_reason)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (domain, normalized_text) DO UPDATE SET
		pattern_type      = EXCLUDED.pattern_type,
		text_content      = EXCLUDED.text_content,
		confidence_score  = GREATEST(persistent_patterns.confidence_score, EXCLUDED.confidence_score),
		occurrences_total = persistent_patterns.occurrences_total + EXCLUDED.occurrences_total,
		is_ml_training_eligible = (
			EXCLUDED.pattern_type IN ('subscription', 'navigation', 'footer')
			AND GREATEST(persistent_patterns.confidence_score, EXCLUDED.confidence_score) >= 0.5
		),
		removal_reason = EXCLUDED.removal_reason,
		updated_at     = NOW()
	RETURNING id, confidence_score, occurrences_total, is_ml_training_eligible, created_at, updated_at
`

// Upsert inserts or merges a pattern by (domain, normalized_text).
// Confidence merges via GREATEST so re-mining never regresses a promoted
// pattern; occurrence totals accumulate.
func (r *PatternRepository) Upsert(ctx context.Context, p *domain.PersistentPattern) error {
	err := r.db.QueryRowContext(
		ctx,
		upsertPatternQuery,
		p.Domain,
		p.PatternType,
		p.TextContent,
		p.NormalizedText,
		p.ConfidenceScore,
		p.OccurrencesTotal,
		p.IsMLTrainingEligible,
		p.RemovalReason,
	).Scan(&p.ID, &p.ConfidenceScore, &p.OccurrencesTotal, &p.IsMLTrainingEligible, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert pattern: %w", err)
	}
	return nil
}

// UpsertBatch merges a set of patterns inside one transaction, so a mining
// run either promotes every removable segment or none of them.
func (r *PatternRepository) UpsertBatch(ctx context.Context, patterns []*domain.PersistentPattern) error {
	if len(patterns) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin promotion transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, p := range patterns {
		scanErr := tx.QueryRowContext(
			ctx,
			upsertPatternQuery,
			p.Domain,
			p.PatternType,
			p.TextContent,
			p.NormalizedText,
			p.ConfidenceScore,
			p.OccurrencesTotal,
			p.IsMLTrainingEligible,
			p.RemovalReason,
		).Scan(&p.ID, &p.ConfidenceScore, &p.OccurrencesTotal, &p.IsMLTrainingEligible, &p.CreatedAt, &p.UpdatedAt)
		if scanErr != nil {
			return fmt.Errorf("failed to upsert pattern for %s: %w", p.Domain, scanErr)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit promotion: %w", err)
	}
	return nil
}

// Lookup returns every pattern stored for a domain, longest text first so
// the apply phase removes containing patterns before contained ones.
// Domain isolation is enforced here: the query never crosses domains.
func (r *PatternRepository) Lookup(ctx context.Context, dom string) ([]domain.PersistentPattern, error) {
	var patterns []domain.PersistentPattern
	query := `
		SELECT id, domain, pattern_type, text_content, normalized_text, confidence_score,
		       occurrences_total, is_ml_training_eligible, removal_reason, created_at, updated_at
		FROM persistent_patterns
		WHERE domain = $1
		ORDER BY LENGTH(text_content) DESC, confidence_score DESC
	`
	if err := r.db.SelectContext(ctx, &patterns, query, dom); err != nil {
		return nil, fmt.Errorf("failed to look up patterns for %s: %w", dom, err)
	}
	return patterns, nil
}

// MLTrainingPatterns returns the ML-training-eligible tier, optionally
// filtered to one domain. An empty domain queries across all domains for
// corpus-wide pattern review.
func (r *PatternRepository) MLTrainingPatterns(ctx context.Context, dom string) ([]domain.PersistentPattern, error) {
	var patterns []domain.PersistentPattern
	query := `
		SELECT id, domain, pattern_type, text_content, normalized_text, confidence_score,
		       occurrences_total, is_ml_training_eligible, removal_reason, created_at, updated_at
		FROM persistent_patterns
		WHERE is_ml_training_eligible = TRUE
	`
	args := []any{}
	if dom != "" {
		query += " AND domain = $1"
		args = append(args, dom)
	}
	query += " ORDER BY confidence_score DESC, occurrences_total DESC"

	if err := r.db.SelectContext(ctx, &patterns, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list ml training patterns: %w", err)
	}
	return patterns, nil
}

// CountByDomain returns the number of stored patterns for a domain.
func (r *PatternRepository) CountByDomain(ctx context.Context, dom string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM persistent_patterns WHERE domain = $1`
	if err := r.db.QueryRowContext(ctx, query, dom).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count patterns for %s: %w", dom, err)
	}
	return count, nil
}

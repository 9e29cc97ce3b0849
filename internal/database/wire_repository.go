package database

import (
	"context"
	"fmt"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/domain"
	"github.com/jmoiron/sqlx"
)

// WireRepository manages the global wire-service signature registry.
type WireRepository struct {
	db *sqlx.DB
}

// NewWireRepository creates a new wire pattern repository.
func NewWireRepository(db *sqlx.DB) *WireRepository {
	return &WireRepository{db: db}
}

// ListActive returns active wire patterns in ascending priority order, the
// order the matcher evaluates them in.
func (r *WireRepository) ListActive(ctx context.Context) ([]domain.WireServicePattern, error) {
	var patterns []domain.WireServicePattern
	query := `
		SELECT id, pattern, pattern_type, service_name, case_sensitive, priority, active, notes
		FROM wire_service_patterns
		WHERE active = TRUE
		ORDER BY priority ASC, id ASC
	`
	if err := r.db.SelectContext(ctx, &patterns, query); err != nil {
		return nil, fmt.Errorf("failed to list wire patterns: %w", err)
	}
	return patterns, nil
}

// Seed inserts the built-in signature set if the registry is empty. Safe to
// call on every startup.
func (r *WireRepository) Seed(ctx context.Context, patterns []domain.WireServicePattern) error {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wire_service_patterns`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count wire patterns: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin wire seed transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO wire_service_patterns
			(pattern, pattern_type, service_name, case_sensitive, priority, active, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, p := range patterns {
		if _, execErr := tx.ExecContext(ctx, query,
			p.Pattern, p.PatternType, p.ServiceName, p.CaseSensitive, p.Priority, p.Active, p.Notes,
		); execErr != nil {
			return fmt.Errorf("failed to seed wire pattern %s: %w", p.ServiceName, execErr)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit wire seed: %w", err)
	}
	return nil
}

// Package patterns defines the domain-scoped pattern library contract and a
// read-through snapshot cache for the apply phase.
package patterns

import (
	"context"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/domain"
)

// Reader is the read side of the pattern library, used by the apply phase.
// Lookup must never return patterns stored under a different domain, even if
// the text is byte-identical.
type Reader interface {
	Lookup(ctx context.Context, dom string) ([]domain.PersistentPattern, error)
}

// Library is the full pattern library contract. Writes happen only during
// mining runs; Upsert merges by (domain, normalized text) taking
// max(confidence) and accumulating occurrence counts.
type Library interface {
	Reader
	Upsert(ctx context.Context, pattern *domain.PersistentPattern) error
	MLTrainingPatterns(ctx context.Context, dom string) ([]domain.PersistentPattern, error)
}

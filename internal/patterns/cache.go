package patterns

import (
	"context"
	"sync"
	"time"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/domain"
)

// DefaultTTL bounds how long a domain snapshot is served before the backing
// store is consulted again. Patterns change only via infrequent mining runs,
// so a short-minutes TTL keeps the apply phase on the fast path.
const DefaultTTL = 5 * time.Minute

// Logger defines the logging interface used by the cache.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
}

type snapshot struct {
	patterns  []domain.PersistentPattern
	fetchedAt time.Time
}

// Cache is a read-through, per-domain snapshot cache in front of a pattern
// Reader. Readers get an immutable slice and never block on a refresh by
// another goroutine; a backing-store error degrades to the last known
// snapshot (or an empty set), never to a failed lookup.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]snapshot

	source Reader
	ttl    time.Duration
	logger Logger
	now    func() time.Time
}

// NewCache creates a cache over the given backing reader.
func NewCache(source Reader, ttl time.Duration, logger Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]snapshot),
		source:  source,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// Lookup returns the current pattern snapshot for a domain, refreshing from
// the backing store when the snapshot is missing or stale.
func (c *Cache) Lookup(ctx context.Context, dom string) ([]domain.PersistentPattern, error) {
	c.mu.RLock()
	entry, ok := c.entries[dom]
	c.mu.RUnlock()

	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.patterns, nil
	}

	fresh, err := c.source.Lookup(ctx, dom)
	if err != nil {
		c.logger.Warn("pattern lookup failed, serving cached snapshot",
			"domain", dom, "cached", ok, "error", err)
		if ok {
			return entry.patterns, nil
		}
		return nil, nil
	}

	c.mu.Lock()
	c.entries[dom] = snapshot{patterns: fresh, fetchedAt: c.now()}
	c.mu.Unlock()

	c.logger.Debug("pattern snapshot refreshed", "domain", dom, "patterns", len(fresh))
	return fresh, nil
}

// Invalidate drops the snapshot for a domain so the next lookup refetches.
// Called after a mining run promotes new patterns.
func (c *Cache) Invalidate(dom string) {
	c.mu.Lock()
	delete(c.entries, dom)
	c.mu.Unlock()
}

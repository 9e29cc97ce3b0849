package processor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/boilerplate"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type fakeSource struct {
	domains []string
	err     error
}

func (f *fakeSource) CandidateDomains(_ context.Context, _ int) ([]string, error) {
	return f.domains, f.err
}

type fakeInvalidator struct {
	mu      sync.Mutex
	domains []string
}

func (f *fakeInvalidator) Invalidate(dom string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.domains = append(f.domains, dom)
}

type fakeStore struct {
	articles map[string][]domain.Article
}

func (f *fakeStore) SampleArticles(_ context.Context, dom string, limit int) ([]domain.Article, error) {
	arts := f.articles[dom]
	if len(arts) > limit {
		arts = arts[:limit]
	}
	return arts, nil
}

type fakeWriter struct {
	mu      sync.Mutex
	batches [][]*domain.PersistentPattern
}

func (f *fakeWriter) UpsertBatch(_ context.Context, patterns []*domain.PersistentPattern) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, patterns)
	return nil
}

const testBoilerplate = "This item is available in full to subscribers. Print subscribers receive free " +
	"access to the digital edition. Subscribe today for unlimited access to all of our local coverage."

func repeatedArticles(dom string, n int) []domain.Article {
	articles := make([]domain.Article, 0, n)
	for i := 0; i < n; i++ {
		articles = append(articles, domain.Article{
			ID:     dom + "-" + strings.Repeat("x", i+1),
			Domain: dom,
			Text:   testBoilerplate + "\n\nUnique story body number " + strings.Repeat("z", i+1) + " with enough words.",
		})
	}
	return articles
}

func newTestScheduler(source DomainSource, cache PatternInvalidator, writer *fakeWriter) *Scheduler {
	store := &fakeStore{articles: map[string][]domain.Article{
		"a.com": repeatedArticles("a.com", 5),
		"b.com": repeatedArticles("b.com", 5),
	}}
	miner := boilerplate.NewMiner(store, writer, nil, nopLogger{}, nil)
	return NewScheduler(miner, source, cache, nopLogger{}, Options{
		Schedule:         "* * * * *",
		DomainsPerMinute: 6000,
		BatchLimit:       10,
		Mining:           boilerplate.MiningOptions{Promote: true},
	})
}

func TestRunPass_MinesAndInvalidatesCandidates(t *testing.T) {
	source := &fakeSource{domains: []string{"a.com", "b.com"}}
	cache := &fakeInvalidator{}
	writer := &fakeWriter{}
	sched := newTestScheduler(source, cache, writer)

	sched.RunPass(context.Background())

	require.Len(t, writer.batches, 2, "one promotion batch per domain")
	assert.ElementsMatch(t, []string{"a.com", "b.com"}, cache.domains)
}

func TestRunPass_SourceErrorAbortsPass(t *testing.T) {
	source := &fakeSource{err: errors.New("db down")}
	writer := &fakeWriter{}
	sched := newTestScheduler(source, nil, writer)

	sched.RunPass(context.Background())

	assert.Empty(t, writer.batches)
}

func TestRunPass_CancelledContextStopsEarly(t *testing.T) {
	source := &fakeSource{domains: []string{"a.com", "b.com"}}
	writer := &fakeWriter{}
	sched := newTestScheduler(source, nil, writer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sched.RunPass(ctx)

	assert.Empty(t, writer.batches, "cancelled pass must not promote")
}

func TestRunPass_NoCandidatesIsNoop(t *testing.T) {
	source := &fakeSource{}
	writer := &fakeWriter{}
	sched := newTestScheduler(source, nil, writer)

	sched.RunPass(context.Background())

	assert.Empty(t, writer.batches)
}

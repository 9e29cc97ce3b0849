package boilerplate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/domain"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type fakeArticleStore struct {
	articles []domain.Article
	err      error
}

func (f *fakeArticleStore) SampleArticles(_ context.Context, _ string, limit int) ([]domain.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.articles) {
		return f.articles[:limit], nil
	}
	return f.articles, nil
}

type fakeLibrary struct {
	upserts  []*domain.PersistentPattern
	batchErr error
}

func (f *fakeLibrary) UpsertBatch(_ context.Context, patterns []*domain.PersistentPattern) error {
	if f.batchErr != nil {
		return f.batchErr
	}
	f.upserts = append(f.upserts, patterns...)
	return nil
}

const subscriptionBlock = "This item is available in full to subscribers. Print subscribers receive free access to the digital edition. Subscribe today for unlimited access to all of our local coverage."

func sampledArticles(n int) []domain.Article {
	articles := make([]domain.Article, 0, n)
	for i := 0; i < n; i++ {
		body := fmt.Sprintf(
			"%s\n\nLocal reporter number %d filed a story about the county fair, which ran longer than expected this year and drew a record crowd from surrounding towns.\n\nMore coverage follows in the weekend edition, item %d.",
			subscriptionBlock, i, i,
		)
		articles = append(articles, domain.Article{ID: fmt.Sprintf("a%d", i), Domain: "example.com", Text: body})
	}
	return articles
}

func TestAnalyzeDomain_FindsRepeatedBoilerplate(t *testing.T) {
	store := &fakeArticleStore{articles: sampledArticles(5)}
	library := &fakeLibrary{}
	miner := NewMiner(store, library, nil, nopLogger{}, nil)

	analysis, err := miner.AnalyzeDomain(context.Background(), "example.com", MiningOptions{})
	require.NoError(t, err)
	require.Equal(t, 5, analysis.ArticlesSampled)

	var found *Segment
	for i := range analysis.Segments {
		if strings.HasPrefix(analysis.Segments[i].TextContent, "This item is available") {
			found = &analysis.Segments[i]
			break
		}
	}
	require.NotNil(t, found, "expected the repeated subscription block among segments")
	assert.Equal(t, domain.PatternTypeSubscription, found.PatternType)
	assert.True(t, found.Removable, "repeated template block should be removable")
	assert.GreaterOrEqual(t, found.PositionConsistency, 0.8)
	assert.GreaterOrEqual(t, found.BoundaryScore, DefaultBoundaryThreshold)
}

func TestAnalyzeDomain_InsufficientSampleReturnsEmpty(t *testing.T) {
	store := &fakeArticleStore{articles: sampledArticles(2)}
	miner := NewMiner(store, &fakeLibrary{}, nil, nopLogger{}, nil)

	analysis, err := miner.AnalyzeDomain(context.Background(), "example.com", MiningOptions{MinOccurrences: 3})
	require.NoError(t, err)
	assert.Empty(t, analysis.Segments)
	assert.Equal(t, 2, analysis.ArticlesSampled)
}

func TestAnalyzeDomain_PromoteWritesRemovableSegments(t *testing.T) {
	store := &fakeArticleStore{articles: sampledArticles(6)}
	library := &fakeLibrary{}
	miner := NewMiner(store, library, nil, nopLogger{}, nil)

	analysis, err := miner.AnalyzeDomain(context.Background(), "example.com", MiningOptions{Promote: true})
	require.NoError(t, err)
	require.Greater(t, analysis.PatternsPromoted, 0)
	require.Len(t, library.upserts, analysis.PatternsPromoted)

	for _, p := range library.upserts {
		assert.Equal(t, "example.com", p.Domain)
		assert.NotEmpty(t, p.TextContent)
		assert.GreaterOrEqual(t, p.ConfidenceScore, DefaultBoundaryThreshold)
	}
}

func TestAnalyzeDomain_MLTrainingEligibilityDerived(t *testing.T) {
	store := &fakeArticleStore{articles: sampledArticles(6)}
	library := &fakeLibrary{}
	miner := NewMiner(store, library, nil, nopLogger{}, nil)

	_, err := miner.AnalyzeDomain(context.Background(), "example.com", MiningOptions{Promote: true})
	require.NoError(t, err)

	for _, p := range library.upserts {
		want := domain.MLTrainingEligible(p.PatternType, p.ConfidenceScore)
		assert.Equal(t, want, p.IsMLTrainingEligible, "pattern %q", p.TextContent)
	}
}

func TestAnalyzeDomain_StoreErrorAborts(t *testing.T) {
	store := &fakeArticleStore{err: errors.New("connection refused")}
	library := &fakeLibrary{}
	miner := NewMiner(store, library, nil, nopLogger{}, nil)

	_, err := miner.AnalyzeDomain(context.Background(), "example.com", MiningOptions{Promote: true})
	require.Error(t, err)
	assert.Empty(t, library.upserts, "a failed run must not promote anything")
}

func TestAnalyzeDomain_PromotionFailureLeavesLibraryUntouched(t *testing.T) {
	store := &fakeArticleStore{articles: sampledArticles(6)}
	library := &fakeLibrary{batchErr: errors.New("connection refused")}
	miner := NewMiner(store, library, nil, nopLogger{}, nil)

	_, err := miner.AnalyzeDomain(context.Background(), "example.com", MiningOptions{Promote: true})
	require.Error(t, err)
	assert.Empty(t, library.upserts)
}

func TestAnalyzeDomain_CancelledContextPromotesNothing(t *testing.T) {
	store := &fakeArticleStore{articles: sampledArticles(6)}
	library := &fakeLibrary{}
	miner := NewMiner(store, library, nil, nopLogger{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := miner.AnalyzeDomain(ctx, "example.com", MiningOptions{Promote: true})
	require.Error(t, err)
	assert.Empty(t, library.upserts)
}

func TestAnalyzeDomain_WireAttributionOnRemovableSegments(t *testing.T) {
	footer := "& © 2025 Cable News Network, Inc., a Warner Bros. Discovery Company. All rights reserved. " +
		"This material may not be published, broadcast, rewritten, or redistributed."
	articles := make([]domain.Article, 0, 5)
	for i := 0; i < 5; i++ {
		articles = append(articles, domain.Article{
			ID:     fmt.Sprintf("a%d", i),
			Domain: "partnerstation.com",
			Text: fmt.Sprintf(
				"Local story number %03d covers the council meeting in enough detail for sampling.\n\n%s",
				i, footer,
			),
		})
	}
	matcher := wire.NewMatcher(wire.SeedPatterns(), wireLogger{})
	miner := NewMiner(&fakeArticleStore{articles: articles}, &fakeLibrary{}, matcher, nopLogger{}, nil)

	analysis, err := miner.AnalyzeDomain(context.Background(), "partnerstation.com", MiningOptions{})
	require.NoError(t, err)

	var found *Segment
	for i := range analysis.Segments {
		if strings.Contains(analysis.Segments[i].TextContent, "Cable News Network") {
			found = &analysis.Segments[i]
			break
		}
	}
	require.NotNil(t, found, "expected the repeated syndication footer among segments")
	require.True(t, found.Removable)
	require.NotNil(t, found.WireDetected, "removable segments must carry provenance when the registry matches")
	assert.Equal(t, "CNN NewsSource", found.WireDetected.Provider)
	assert.Equal(t, domain.DetectionMethodFooterCopyright, found.WireDetected.DetectionMethod)
}

func TestAnalyzeDomain_NoWireDetectorLeavesSegmentsBare(t *testing.T) {
	store := &fakeArticleStore{articles: sampledArticles(5)}
	miner := NewMiner(store, &fakeLibrary{}, nil, nopLogger{}, nil)

	analysis, err := miner.AnalyzeDomain(context.Background(), "example.com", MiningOptions{})
	require.NoError(t, err)
	for _, seg := range analysis.Segments {
		assert.Nil(t, seg.WireDetected)
	}
}

func TestAnalyzeDomain_EditorialProseNotFlagged(t *testing.T) {
	// The same quoted press-release paragraph appears in several articles
	// but at wildly different positions, so position consistency fails it.
	quote := "\"We are thrilled to open the new community center,\" said director Pat Lane in a statement released Monday morning."
	filler := strings.Repeat("Unrelated local coverage sentence padding the article body with detail. ", 8)
	articles := []domain.Article{
		{ID: "a1", Domain: "example.com", Text: quote + "\n\n" + filler},
		{ID: "a2", Domain: "example.com", Text: filler + "\n\n" + quote + "\n\n" + filler},
		{ID: "a3", Domain: "example.com", Text: filler + filler + "\n\n" + quote},
	}
	miner := NewMiner(&fakeArticleStore{articles: articles}, &fakeLibrary{}, nil, nopLogger{}, nil)

	analysis, err := miner.AnalyzeDomain(context.Background(), "example.com", MiningOptions{})
	require.NoError(t, err)
	for _, seg := range analysis.Segments {
		if strings.HasPrefix(seg.TextContent, "\"We are thrilled") {
			assert.False(t, seg.Removable, "drifting editorial quote must not be removable")
		}
	}
}

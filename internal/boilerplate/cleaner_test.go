package boilerplate

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/domain"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePatternReader struct {
	byDomain map[string][]domain.PersistentPattern
	err      error
}

func (f *fakePatternReader) Lookup(_ context.Context, dom string) ([]domain.PersistentPattern, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byDomain[dom], nil
}

type captureRecorder struct {
	sessions []*domain.CleaningSession
	segments []*domain.SegmentDetection
	wires    []*domain.WireDetection
}

func (c *captureRecorder) RecordSession(s *domain.CleaningSession) {
	c.sessions = append(c.sessions, s)
}

func (c *captureRecorder) RecordSegmentDetection(d *domain.SegmentDetection) {
	c.segments = append(c.segments, d)
}

func (c *captureRecorder) RecordWireDetection(_, _ string, d *domain.WireDetection) {
	c.wires = append(c.wires, d)
}

type wireLogger struct{}

func (wireLogger) Debug(string, ...any) {}
func (wireLogger) Warn(string, ...any)  {}

func newTestCleaner(reader PatternReader, recorder SessionRecorder) *Cleaner {
	matcher := wire.NewMatcher(wire.SeedPatterns(), wireLogger{})
	return NewCleaner(reader, matcher, recorder, nopLogger{}, nil, time.Second)
}

func TestClean_SocialShareHeaderStripped(t *testing.T) {
	cleaner := newTestCleaner(&fakePatternReader{}, nil)
	input := "Facebook Twitter WhatsApp SMS Email\n\nBy John Doe\nThe article content starts here."

	cleaned, meta := cleaner.Clean(context.Background(), input, "nopatterns.com", "art-1")

	assert.True(t, strings.HasPrefix(cleaned, "By John Doe"), "cleaned = %q", cleaned)
	assert.True(t, meta.SocialShareHeaderRemoved)
	assert.Positive(t, meta.CharsRemoved)
}

func TestClean_ProseMentioningPlatformsUntouched(t *testing.T) {
	cleaner := newTestCleaner(&fakePatternReader{}, nil)
	input := "Facebook announced new policies today, according to Twitter officials.\nMore details are expected soon."

	cleaned, meta := cleaner.Clean(context.Background(), input, "nopatterns.com", "art-2")

	assert.Equal(t, input, cleaned)
	assert.Zero(t, meta.CharsRemoved)
	assert.False(t, meta.SocialShareHeaderRemoved)
}

func TestClean_StoredSubscriptionPatternRemoved(t *testing.T) {
	pattern := "This item is available in full to subscribers. Print subscribers receive free access."
	reader := &fakePatternReader{byDomain: map[string][]domain.PersistentPattern{
		"example.com": {{
			Domain:      "example.com",
			PatternType: domain.PatternTypeSubscription,
			TextContent: pattern,
		}},
	}}
	cleaner := newTestCleaner(reader, nil)
	input := pattern + "\n\nActual article content starts now."

	cleaned, meta := cleaner.Clean(context.Background(), input, "example.com", "art-3")

	assert.True(t, strings.HasPrefix(cleaned, "Actual article content starts now."), "cleaned = %q", cleaned)
	assert.Equal(t, 1, meta.PersistentRemovals)
	assert.Contains(t, meta.PatternsMatched, domain.PatternTypeSubscription)
}

func TestClean_DomainIsolation(t *testing.T) {
	pattern := "This phrase is boilerplate on one site but editorial on another, honestly."
	reader := &fakePatternReader{byDomain: map[string][]domain.PersistentPattern{
		"a.com": {{Domain: "a.com", PatternType: domain.PatternTypeOther, TextContent: pattern}},
	}}
	cleaner := newTestCleaner(reader, nil)

	cleaned, meta := cleaner.Clean(context.Background(), pattern+" And more text follows.", "b.com", "art-4")

	assert.Contains(t, cleaned, pattern, "pattern stored under a.com must not apply to b.com")
	assert.Zero(t, meta.PersistentRemovals)
}

func TestClean_Idempotent(t *testing.T) {
	pattern := "Subscribe to the Daily Bugle for unlimited digital access and exclusive newsletters."
	reader := &fakePatternReader{byDomain: map[string][]domain.PersistentPattern{
		"example.com": {{Domain: "example.com", PatternType: domain.PatternTypeSubscription, TextContent: pattern}},
	}}
	cleaner := newTestCleaner(reader, nil)
	input := "Facebook Twitter WhatsApp SMS Email\n\n" + pattern + "\n\nThe actual story body sits here with plenty of detail."

	once, metaOnce := cleaner.Clean(context.Background(), input, "example.com", "art-5")
	require.Positive(t, metaOnce.CharsRemoved)

	twice, metaTwice := cleaner.Clean(context.Background(), once, "example.com", "art-5")
	assert.Equal(t, once, twice)
	assert.Zero(t, metaTwice.CharsRemoved)
}

func TestClean_OutputNeverLongerThanInput(t *testing.T) {
	reader := &fakePatternReader{byDomain: map[string][]domain.PersistentPattern{
		"example.com": {{Domain: "example.com", TextContent: "All rights reserved."}},
	}}
	cleaner := newTestCleaner(reader, nil)

	inputs := []string{
		"",
		"Short.",
		"Facebook Twitter WhatsApp SMS Email\n\nBody text.",
		"Body text with All rights reserved. inside it.",
	}
	for _, input := range inputs {
		cleaned, _ := cleaner.Clean(context.Background(), input, "example.com", "art")
		assert.LessOrEqual(t, len(cleaned), len(input), "input %q", input)
	}
}

func TestClean_WireDetectionOnRemovedSegment(t *testing.T) {
	footer := "& © 2025 Cable News Network, Inc., a Warner Bros. Discovery Company."
	reader := &fakePatternReader{byDomain: map[string][]domain.PersistentPattern{
		"partnerstation.com": {{
			Domain:      "partnerstation.com",
			PatternType: domain.PatternTypeFooter,
			TextContent: footer,
		}},
	}}
	cleaner := newTestCleaner(reader, nil)
	input := "The story body appears first with several sentences of coverage.\n\n" + footer

	cleaned, meta := cleaner.Clean(context.Background(), input, "partnerstation.com", "art-6")

	require.NotNil(t, meta.WireDetected)
	assert.Equal(t, "CNN NewsSource", meta.WireDetected.Provider)
	assert.NotContains(t, cleaned, "Cable News Network")
}

func TestClean_NoWireDetectionWithoutRemoval(t *testing.T) {
	cleaner := newTestCleaner(&fakePatternReader{}, nil)
	input := "WASHINGTON (AP) — This wire dateline sits in editorial text that is never removed."

	_, meta := cleaner.Clean(context.Background(), input, "example.com", "art-7")
	assert.Nil(t, meta.WireDetected, "wire matcher only runs on removed segments")
}

func TestClean_LookupErrorDegradesToHeuristics(t *testing.T) {
	cleaner := newTestCleaner(&fakePatternReader{err: context.DeadlineExceeded}, nil)
	input := "Facebook Twitter WhatsApp SMS Email\n\nStory text follows the header."

	cleaned, meta := cleaner.Clean(context.Background(), input, "example.com", "art-8")

	assert.True(t, strings.HasPrefix(cleaned, "Story text"))
	assert.True(t, meta.SocialShareHeaderRemoved)
}

func TestClean_ConcurrentCallsAreIndependent(t *testing.T) {
	long := "Subscribe today for unlimited digital access to all of our award-winning local coverage."
	short := "All rights reserved."
	reader := &fakePatternReader{byDomain: map[string][]domain.PersistentPattern{
		"example.com": {
			{Domain: "example.com", PatternType: domain.PatternTypeFooter, TextContent: short},
			{Domain: "example.com", PatternType: domain.PatternTypeSubscription, TextContent: long},
		},
	}}
	cleaner := newTestCleaner(reader, nil)
	input := "Facebook Twitter WhatsApp SMS Email\n\n" + long + "\n\nThe story body.\n\n" + short

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				cleaned, meta := cleaner.Clean(context.Background(), input, "example.com", "art")
				assert.True(t, strings.HasPrefix(cleaned, "The story body."), "cleaned = %q", cleaned)
				assert.True(t, meta.SocialShareHeaderRemoved)
				assert.Equal(t, 2, meta.PersistentRemovals)
			}
		}()
	}
	wg.Wait()
}

func TestClean_SharedPatternSnapshotUnmodified(t *testing.T) {
	short := "All rights reserved."
	long := "Subscribe today for unlimited digital access to all of our award-winning local coverage."
	snapshot := []domain.PersistentPattern{
		{Domain: "example.com", TextContent: short},
		{Domain: "example.com", TextContent: long},
	}
	reader := &fakePatternReader{byDomain: map[string][]domain.PersistentPattern{"example.com": snapshot}}
	cleaner := newTestCleaner(reader, nil)

	_, meta := cleaner.Clean(context.Background(), long+"\n\n"+short+"\n\nBody.", "example.com", "art")

	require.Equal(t, 2, meta.PersistentRemovals)
	assert.Equal(t, short, snapshot[0].TextContent, "apply-time ordering must not leak into the shared snapshot")
	assert.Equal(t, long, snapshot[1].TextContent)
}

func TestClean_SegmentDetectionOffsetsRecorded(t *testing.T) {
	recorder := &captureRecorder{}
	pattern := "Subscribe now for full digital access to all premium content from our newsroom."
	reader := &fakePatternReader{byDomain: map[string][]domain.PersistentPattern{
		"example.com": {{Domain: "example.com", PatternType: domain.PatternTypeSubscription, TextContent: pattern}},
	}}
	cleaner := newTestCleaner(reader, recorder)
	input := "Facebook Twitter WhatsApp SMS Email\n\nThe story opens with a paragraph of coverage.\n\n" +
		pattern + "\n\nThe story continues."

	_, _ = cleaner.Clean(context.Background(), input, "example.com", "art-11")

	require.Len(t, recorder.segments, 2)

	header := recorder.segments[0]
	assert.Equal(t, domain.PatternTypeSocialShare, header.PatternType)
	assert.Zero(t, header.Start)
	assert.Equal(t, len(header.TextContent), header.End)

	stored := recorder.segments[1]
	rest := input[header.End:]
	assert.Equal(t, strings.Index(rest, pattern), stored.Start)
	assert.Equal(t, stored.Start+len(pattern), stored.End)
}

func TestClean_RecordsSessionTelemetry(t *testing.T) {
	recorder := &captureRecorder{}
	pattern := "Subscribe now for full digital access to all premium content from our newsroom."
	reader := &fakePatternReader{byDomain: map[string][]domain.PersistentPattern{
		"example.com": {{Domain: "example.com", PatternType: domain.PatternTypeSubscription, TextContent: pattern}},
	}}
	cleaner := newTestCleaner(reader, recorder)
	input := pattern + "\n\nThe story body."

	_, meta := cleaner.Clean(context.Background(), input, "example.com", "art-9")

	require.Len(t, recorder.sessions, 1)
	session := recorder.sessions[0]
	assert.Equal(t, "art-9", session.ArticleID)
	assert.Equal(t, meta.CharsRemoved, session.CharsRemoved)
	assert.NotEmpty(t, session.SessionID)
	require.Len(t, recorder.segments, 1)
	assert.Equal(t, domain.PatternTypeSubscription, recorder.segments[0].PatternType)
}

func TestClean_ExpiredContextReturnsOriginal(t *testing.T) {
	pattern := "Subscribe now for full digital access to everything."
	reader := &fakePatternReader{byDomain: map[string][]domain.PersistentPattern{
		"example.com": {{Domain: "example.com", TextContent: pattern}},
	}}
	cleaner := newTestCleaner(reader, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := pattern + "\n\nBody."
	cleaned, meta := cleaner.Clean(ctx, input, "example.com", "art-10")

	assert.Equal(t, input, cleaned, "expired context must return original text")
	assert.Zero(t, meta.CharsRemoved)
}

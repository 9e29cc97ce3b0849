package boilerplate

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/domain"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultCleanTimeout is the hard latency budget for one Clean call. Past
// it the original text is returned rather than blocking article extraction.
const DefaultCleanTimeout = 2 * time.Second

// PatternReader is the read side of the pattern library consumed by the
// apply phase (typically the snapshot cache).
type PatternReader interface {
	Lookup(ctx context.Context, dom string) ([]domain.PersistentPattern, error)
}

// WireDetector reports syndication provenance for a removed segment.
type WireDetector interface {
	Detect(segment, dom string) *domain.WireDetection
}

// SessionRecorder receives telemetry facts without blocking the caller.
type SessionRecorder interface {
	RecordSession(session *domain.CleaningSession)
	RecordSegmentDetection(detection *domain.SegmentDetection)
	RecordWireDetection(sessionID, dom string, detection *domain.WireDetection)
}

// Cleaner is the inline, per-article apply phase. It reads the pattern
// library and stateless heuristics; it never mines. Removal is always of
// exact, previously-identified or structurally-detected substrings — free
// text is never rewritten.
type Cleaner struct {
	patterns  PatternReader
	wire      WireDetector
	recorder  SessionRecorder
	logger    Logger
	telemetry *telemetry.Provider
	timeout   time.Duration
}

// NewCleaner creates a cleaner. telemetry and recorder may be nil in tests.
func NewCleaner(
	patternReader PatternReader,
	wireDetector WireDetector,
	recorder SessionRecorder,
	logger Logger,
	tp *telemetry.Provider,
	timeout time.Duration,
) *Cleaner {
	if timeout <= 0 {
		timeout = DefaultCleanTimeout
	}
	return &Cleaner{
		patterns:  patternReader,
		wire:      wireDetector,
		recorder:  recorder,
		logger:    logger,
		telemetry: tp,
		timeout:   timeout,
	}
}

// Clean strips known boilerplate from one article's text and returns the
// cleaned text plus session metadata. It never returns an error: every
// failure mode degrades to "clean less", and on timeout the original text
// comes back untouched.
func (c *Cleaner) Clean(ctx context.Context, text, dom, articleID string) (string, domain.CleaningMetadata) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.telemetry != nil {
		var span trace.Span
		ctx, span = c.telemetry.StartSpan(ctx, "cleaner.Clean",
			attribute.String("domain", dom),
			attribute.String("article_id", articleID),
		)
		defer span.End()
	}

	original := text
	meta := domain.CleaningMetadata{ArticleID: articleID, Domain: dom}
	sessionID := uuid.NewString()
	matched := make(map[string]bool)
	var removedSegments []removedSegment

	// Step 1: structural social-share / leading-navigation header.
	if headerLen := DetectLeadingHeader(text); headerLen > 0 {
		removedSegments = append(removedSegments, removedSegment{
			text:        text[:headerLen],
			patternType: domain.PatternTypeSocialShare,
			start:       0,
			end:         headerLen,
		})
		text = text[headerLen:]
		meta.CharsRemoved += headerLen
		meta.SocialShareHeaderRemoved = true
		matched[domain.PatternTypeSocialShare] = true
	}

	// Step 2: stored persistent patterns for this domain. A cold-start
	// domain simply gets the structural heuristics; inline mining is
	// never triggered here.
	stored, err := c.patterns.Lookup(ctx, dom)
	if err != nil {
		c.logger.Warn("pattern lookup failed, applying heuristics only",
			"domain", dom, "article_id", articleID, "error", err)
		stored = nil
	}
	if timedOut(ctx) {
		return c.finishTimeout(ctx, original, meta)
	}

	// Longer patterns first, so a short pattern embedded in a longer one
	// cannot break the longer match. The lookup result is a snapshot shared
	// with concurrent Clean calls, so ordering happens on a local copy.
	stored = slices.Clone(stored)
	sort.SliceStable(stored, func(i, j int) bool {
		return len(stored[i].TextContent) > len(stored[j].TextContent)
	})

	for i := range stored {
		if timedOut(ctx) {
			return c.finishTimeout(ctx, original, meta)
		}
		pattern := &stored[i]
		if pattern.TextContent == "" {
			continue
		}
		cleaned, removed, first := removeAll(text, pattern.TextContent)
		if removed == 0 {
			// Pattern no longer present (site redesign). Not an
			// error; zero matches for that pattern.
			continue
		}
		text = cleaned
		meta.CharsRemoved += removed
		meta.PersistentRemovals++
		matched[pattern.PatternType] = true
		removedSegments = append(removedSegments, removedSegment{
			text:        pattern.TextContent,
			patternType: pattern.PatternType,
			start:       first,
			end:         first + len(pattern.TextContent),
		})
	}

	// Step 3: wire attribution over every removed segment; first hit wins.
	for _, seg := range removedSegments {
		if detection := c.wire.Detect(seg.text, dom); detection != nil {
			meta.WireDetected = detection
			if c.telemetry != nil {
				c.telemetry.RecordWireDetection(ctx, detection.Provider, detection.DetectionMethod)
			}
			break
		}
	}

	for t := range matched {
		meta.PatternsMatched = append(meta.PatternsMatched, t)
	}
	sort.Strings(meta.PatternsMatched)

	c.emitTelemetry(ctx, sessionID, &meta, removedSegments, time.Since(start))
	return text, meta
}

// removedSegment is one removed substring with its span in the text as it
// stood when that removal step ran.
type removedSegment struct {
	text        string
	patternType string
	start       int
	end         int
}

// removeAll removes every exact occurrence of pattern from text, each
// together with the immediately following whitespace run, and returns the
// remaining text, the removed character count, and the offset of the first
// occurrence (-1 when the pattern is absent). Output is never longer than
// input.
func removeAll(text, pattern string) (string, int, int) {
	total := 0
	first := -1
	for {
		idx := strings.Index(text, pattern)
		if idx < 0 {
			return text, total, first
		}
		if first < 0 {
			first = idx
		}
		end := idx + len(pattern)
		for end < len(text) && isSpaceByte(text[end]) {
			end++
		}
		total += end - idx
		text = text[:idx] + text[end:]
	}
}

func timedOut(ctx context.Context) bool {
	return ctx.Err() != nil
}

// finishTimeout returns the original, uncleaned text. Blocking article
// extraction is worse than skipping one article's cleaning.
func (c *Cleaner) finishTimeout(ctx context.Context, original string, meta domain.CleaningMetadata) (string, domain.CleaningMetadata) {
	c.logger.Warn("cleaning timed out, returning original text",
		"domain", meta.Domain, "article_id", meta.ArticleID)
	if c.telemetry != nil {
		c.telemetry.RecordCleanTimeout(ctx)
	}
	return original, domain.CleaningMetadata{ArticleID: meta.ArticleID, Domain: meta.Domain}
}

func (c *Cleaner) emitTelemetry(
	ctx context.Context,
	sessionID string,
	meta *domain.CleaningMetadata,
	segments []removedSegment,
	duration time.Duration,
) {
	if c.telemetry != nil {
		outcome := "unchanged"
		if meta.CharsRemoved > 0 {
			outcome = "cleaned"
		}
		c.telemetry.RecordClean(ctx, telemetry.CleanOutcome{
			Outcome:            outcome,
			CharsRemoved:       meta.CharsRemoved,
			PersistentRemovals: meta.PersistentRemovals,
			HeaderRemoved:      meta.SocialShareHeaderRemoved,
		}, duration)
	}

	if c.recorder == nil {
		return
	}
	now := time.Now()
	c.recorder.RecordSession(&domain.CleaningSession{
		SessionID:                sessionID,
		ArticleID:                meta.ArticleID,
		Domain:                   meta.Domain,
		CharsRemoved:             meta.CharsRemoved,
		PatternsMatched:          meta.PatternsMatched,
		PersistentRemovals:       meta.PersistentRemovals,
		SocialShareHeaderRemoved: meta.SocialShareHeaderRemoved,
		WireDetected:             meta.WireDetected,
		CreatedAt:                now,
	})
	for _, seg := range segments {
		c.recorder.RecordSegmentDetection(&domain.SegmentDetection{
			SessionID:   sessionID,
			Domain:      meta.Domain,
			PatternType: seg.patternType,
			TextContent: seg.text,
			Start:       seg.start,
			End:         seg.end,
			CreatedAt:   now,
		})
	}
	if meta.WireDetected != nil {
		c.recorder.RecordWireDetection(sessionID, meta.Domain, meta.WireDetected)
	}
}

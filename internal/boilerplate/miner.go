package boilerplate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/blocks"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/domain"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Mining defaults
const (
	DefaultSampleSize = 20
	MaxSampleSize     = 30
	MinSampleSize     = 10
)

// ArticleStore provides the sample of recent articles for one domain.
type ArticleStore interface {
	SampleArticles(ctx context.Context, dom string, limit int) ([]domain.Article, error)
}

// PatternWriter is the promotion side of the pattern library. UpsertBatch
// must be atomic: either every pattern merges or none do.
type PatternWriter interface {
	UpsertBatch(ctx context.Context, patterns []*domain.PersistentPattern) error
}

// MiningOptions control one AnalyzeDomain run.
type MiningOptions struct {
	SampleSize     int
	MinOccurrences int
	// Promote writes removable segments into the pattern library. Leave
	// false for review-only analysis.
	Promote bool
}

// Segment is one duplicated block found by a mining run, with enough detail
// for manual review before promotion.
type Segment struct {
	TextContent         string  `json:"text_content"`
	NormalizedText      string  `json:"normalized_text"`
	PatternType         string  `json:"pattern_type"`
	Length              int     `json:"length"`
	Occurrences         int     `json:"occurrences"`
	PositionConsistency float64 `json:"position_consistency"`
	BoundaryScore       float64 `json:"boundary_score"`
	Removable           bool    `json:"removable"`
	RemovalReason       string  `json:"removal_reason,omitempty"`
	RemovableChars      int     `json:"removable_chars"`
	// WireDetected carries syndication provenance when a removable segment
	// matches the wire-service registry.
	WireDetected *domain.WireDetection `json:"wire_detected,omitempty"`
}

// DomainAnalysis is the result of one mining run over one domain's sample.
type DomainAnalysis struct {
	Domain              string    `json:"domain"`
	ArticlesSampled     int       `json:"articles_sampled"`
	Segments            []Segment `json:"segments"`
	PatternsPromoted    int       `json:"patterns_promoted"`
	RemovableChars      int       `json:"removable_chars"`
	TotalChars          int       `json:"total_chars"`
	EstimatedRemovalPct float64   `json:"estimated_removal_pct"`
}

// Miner runs offline per-domain duplicate mining and promotes
// high-confidence blocks into the pattern library. Mining never runs inline
// with article cleaning.
type Miner struct {
	store     ArticleStore
	library   PatternWriter
	wire      WireDetector
	logger    Logger
	telemetry *telemetry.Provider
	threshold float64
}

// NewMiner creates a miner. wireDetector and telemetry may be nil in tests.
func NewMiner(store ArticleStore, library PatternWriter, wireDetector WireDetector, logger Logger, tp *telemetry.Provider) *Miner {
	return &Miner{
		store:     store,
		library:   library,
		wire:      wireDetector,
		logger:    logger,
		telemetry: tp,
		threshold: DefaultBoundaryThreshold,
	}
}

// AnalyzeDomain mines one domain's recent articles for repeated blocks,
// scores them, and (optionally) promotes removable segments. Fewer sampled
// articles than MinOccurrences is not an error: boilerplate detection
// degrades gracefully to an empty result. A cancelled context aborts the run
// with nothing promoted.
func (m *Miner) AnalyzeDomain(ctx context.Context, dom string, opts MiningOptions) (*DomainAnalysis, error) {
	start := time.Now()
	if m.telemetry != nil {
		var span trace.Span
		ctx, span = m.telemetry.StartSpan(ctx, "miner.AnalyzeDomain",
			attribute.String("domain", dom))
		defer span.End()
	}

	sampleSize := opts.SampleSize
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	if sampleSize > MaxSampleSize {
		sampleSize = MaxSampleSize
	}
	minOccurrences := opts.MinOccurrences
	if minOccurrences <= 0 {
		minOccurrences = domain.DefaultMinOccurrences
	}

	articles, err := m.store.SampleArticles(ctx, dom, sampleSize)
	if err != nil {
		m.recordRun(ctx, "failed", 0, 0, start)
		return nil, fmt.Errorf("sample articles for %s: %w", dom, err)
	}

	analysis := &DomainAnalysis{Domain: dom, ArticlesSampled: len(articles)}
	if len(articles) < minOccurrences {
		m.logger.Info("insufficient sample for mining, returning empty result",
			"domain", dom, "articles", len(articles), "min_occurrences", minOccurrences)
		m.recordRun(ctx, "insufficient_sample", 0, 0, start)
		return analysis, nil
	}

	candidates, rawTexts, totalChars, err := m.mineCandidates(ctx, articles, minOccurrences)
	if err != nil {
		m.recordRun(ctx, "cancelled", 0, 0, start)
		return nil, err
	}
	analysis.TotalChars = totalChars

	contentLengths := make(map[string]int, len(articles))
	for _, a := range articles {
		contentLengths[a.ID] = len(a.Text)
	}

	for _, block := range candidates {
		segment, keep := m.scoreBlock(block, contentLengths, rawTexts)
		if !keep {
			continue
		}
		// Every segment scheduled for removal gets a provenance check, so
		// promoted patterns carry wire attribution from the start.
		if segment.Removable && m.wire != nil {
			if detection := m.wire.Detect(segment.TextContent, dom); detection != nil {
				segment.WireDetected = detection
				if m.telemetry != nil {
					m.telemetry.RecordWireDetection(ctx, detection.Provider, detection.DetectionMethod)
				}
			}
		}
		analysis.Segments = append(analysis.Segments, segment)
		if segment.Removable {
			analysis.RemovableChars += segment.RemovableChars
		}
	}

	sort.Slice(analysis.Segments, func(i, j int) bool {
		return analysis.Segments[i].BoundaryScore > analysis.Segments[j].BoundaryScore
	})

	if analysis.TotalChars > 0 {
		analysis.EstimatedRemovalPct = 100 * float64(analysis.RemovableChars) / float64(analysis.TotalChars)
	}

	if opts.Promote {
		promoted, promoteErr := m.promote(ctx, dom, analysis.Segments)
		if promoteErr != nil {
			m.recordRun(ctx, "failed", len(analysis.Segments), 0, start)
			return nil, promoteErr
		}
		analysis.PatternsPromoted = promoted
	}

	m.logger.Info("mining run complete",
		"domain", dom,
		"articles", analysis.ArticlesSampled,
		"segments", len(analysis.Segments),
		"promoted", analysis.PatternsPromoted,
		"estimated_removal_pct", analysis.EstimatedRemovalPct,
	)
	m.recordRun(ctx, "completed", len(analysis.Segments), analysis.PatternsPromoted, start)
	return analysis, nil
}

// mineCandidates extracts blocks from every sampled article and groups them
// by normalized text. Exact-match grouping only: near-duplicates differing
// by one character stay distinct, so editorial sentences are never falsely
// merged. Also returns a representative raw text per group (the removable
// form) and the total sampled character count.
func (m *Miner) mineCandidates(
	ctx context.Context,
	articles []domain.Article,
	minOccurrences int,
) (map[string]*domain.CandidateBlock, map[string]string, int, error) {
	grouped := make(map[string]*domain.CandidateBlock)
	rawTexts := make(map[string]string)
	totalChars := 0

	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			m.logger.Warn("mining run cancelled mid-scan, discarding partial results",
				"article_id", article.ID)
			return nil, nil, 0, err
		}
		totalChars += len(article.Text)

		for _, block := range blocks.All(article.Text) {
			key := blocks.Normalize(block.Text)
			if key == "" {
				continue
			}
			candidate, ok := grouped[key]
			if !ok {
				candidate = &domain.CandidateBlock{
					NormalizedText: key,
					Length:         len(key),
					Occurrences:    make(map[string][]domain.Span),
				}
				grouped[key] = candidate
				rawTexts[key] = block.Text
			}
			span := domain.Span{Start: block.Start, End: block.End}
			if !containsSpan(candidate.Occurrences[article.ID], span) {
				candidate.Occurrences[article.ID] = append(candidate.Occurrences[article.ID], span)
			}
		}
	}

	// Retention gates: minimum distinct articles and minimum length.
	for key, candidate := range grouped {
		if candidate.ArticleCount() < minOccurrences || candidate.Length < domain.MinBlockLength {
			delete(grouped, key)
			delete(rawTexts, key)
		}
	}
	return grouped, rawTexts, totalChars, nil
}

// containsSpan dedupes identical spans produced by overlapping extraction
// streams (a single-line paragraph is also a line block).
func containsSpan(spans []domain.Span, span domain.Span) bool {
	for _, s := range spans {
		if s == span {
			return true
		}
	}
	return false
}

// scoreBlock computes consistency, type, and boundary score for one retained
// candidate and decides removability.
func (m *Miner) scoreBlock(
	block *domain.CandidateBlock,
	contentLengths map[string]int,
	rawTexts map[string]string,
) (Segment, bool) {
	block.PositionConsistency = positionConsistency(block, contentLengths)
	highConfidence := isHighConfidenceBoilerplate(block.NormalizedText)

	// Blocks that drift across articles are editorial duplication, not
	// template boilerplate, unless the structural signature says otherwise.
	if block.PositionConsistency < consistencyFloor && !highConfidence {
		return Segment{}, false
	}

	block.PatternType = classifyPatternType(block.NormalizedText)
	if highConfidence && block.PatternType == domain.PatternTypeOther {
		block.PatternType = domain.PatternTypeSocialShare
	}

	occurrences := 0
	for _, spans := range block.Occurrences {
		occurrences += len(spans)
	}
	block.BoundaryScore = boundaryScore(occurrences, block.PositionConsistency, block.Length)

	removable := false
	reason := ""
	switch {
	case highConfidence:
		removable = true
		reason = "structural share/engagement signature"
	case block.BoundaryScore >= m.threshold && block.Length >= domain.ShortBlockFloor:
		removable = true
		reason = fmt.Sprintf("boundary score %.2f across %d occurrences", block.BoundaryScore, occurrences)
	}

	return Segment{
		TextContent:         rawTexts[block.NormalizedText],
		NormalizedText:      block.NormalizedText,
		PatternType:         block.PatternType,
		Length:              block.Length,
		Occurrences:         occurrences,
		PositionConsistency: block.PositionConsistency,
		BoundaryScore:       block.BoundaryScore,
		Removable:           removable,
		RemovalReason:       reason,
		RemovableChars:      occurrences * block.Length,
	}, true
}

// promote upserts every removable segment in one atomic batch. Confidence
// merges via max(existing, new) and occurrence totals accumulate, so
// re-running mining never regresses an already-promoted pattern.
func (m *Miner) promote(ctx context.Context, dom string, segments []Segment) (int, error) {
	patterns := make([]*domain.PersistentPattern, 0, len(segments))
	for _, seg := range segments {
		if !seg.Removable {
			continue
		}
		confidence := seg.BoundaryScore
		if seg.RemovalReason == "structural share/engagement signature" && confidence < DefaultBoundaryThreshold {
			confidence = DefaultBoundaryThreshold
		}
		patterns = append(patterns, &domain.PersistentPattern{
			Domain:               dom,
			PatternType:          seg.PatternType,
			TextContent:          seg.TextContent,
			NormalizedText:       seg.NormalizedText,
			ConfidenceScore:      confidence,
			OccurrencesTotal:     seg.Occurrences,
			IsMLTrainingEligible: domain.MLTrainingEligible(seg.PatternType, confidence),
			RemovalReason:        seg.RemovalReason,
		})
	}
	if len(patterns) == 0 {
		return 0, nil
	}
	if err := m.library.UpsertBatch(ctx, patterns); err != nil {
		return 0, fmt.Errorf("promote patterns for %s: %w", dom, err)
	}
	return len(patterns), nil
}

func (m *Miner) recordRun(ctx context.Context, result string, segments, promoted int, start time.Time) {
	if m.telemetry == nil {
		return
	}
	m.telemetry.RecordMiningRun(ctx, result, segments, promoted, time.Since(start))
}

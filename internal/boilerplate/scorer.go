package boilerplate

import (
	"math"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/domain"
)

// Scoring constants. The boundary-score coefficients are tunables; these
// values hold for the worked removal scenarios and a 0.5 threshold.
const (
	// DefaultBoundaryThreshold is the removal gate on the boundary score.
	DefaultBoundaryThreshold = 0.5

	// consistencyFloor discards blocks whose position drifts too much
	// across articles, however often they recur.
	consistencyFloor = 0.2

	// variancePenalty scales relative-position variance into the
	// consistency score: consistency = 1 - variancePenalty*variance.
	variancePenalty = 5.0

	occurrenceWeight  = 0.4
	consistencyWeight = 0.4
	lengthWeight      = 0.2

	// occurrenceSaturation is the occurrence count at which the
	// log-scaled occurrence term reaches 1.0.
	occurrenceSaturation = 10.0

	// lengthSaturation is the block length at which the length term
	// reaches 1.0.
	lengthSaturation = 400.0

	// minNavigationHits is the distinct navigation-vocabulary hits
	// required to classify a block as navigation.
	minNavigationHits = 2

	// minShareSignatureHits is the distinct structural share-signature
	// hits required for the high-confidence override.
	minShareSignatureHits = 3

	// shareSignatureDominance is the minimum fraction of a block's words
	// that must be signature tokens for the override to fire, so prose
	// that merely mentions Facebook or Twitter is not mistaken for a
	// share-button row.
	shareSignatureDominance = 0.4
)

// positionConsistency scores how stable a block's relative position is
// across articles. CMS-injected boilerplate sits at a near-constant relative
// position regardless of article length; editorial duplication drifts.
// Result is clamped to [0, 1].
func positionConsistency(block *domain.CandidateBlock, contentLengths map[string]int) float64 {
	positions := make([]float64, 0, len(block.Occurrences))
	for articleID, spans := range block.Occurrences {
		total := contentLengths[articleID]
		if total <= 0 {
			continue
		}
		for _, span := range spans {
			positions = append(positions, float64(span.Start)/float64(total))
		}
	}
	if len(positions) == 0 {
		return 0
	}

	var sum float64
	for _, p := range positions {
		sum += p
	}
	mean := sum / float64(len(positions))

	var variance float64
	for _, p := range positions {
		d := p - mean
		variance += d * d
	}
	variance /= float64(len(positions))

	return clamp01(1 - variancePenalty*variance)
}

// classifyPatternType labels a block by keyword-frequency heuristics.
// Navigation needs two distinct menu-vocabulary hits; footer and
// subscription fire on a single hit of their vocabularies; everything else
// is "other" (dynamic sidebars, trending widgets).
func classifyPatternType(text string) string {
	if navigationMatcher.distinctHits(text) >= minNavigationHits {
		return domain.PatternTypeNavigation
	}
	if footerMatcher.distinctHits(text) > 0 {
		return domain.PatternTypeFooter
	}
	if subscriptionMatcher.distinctHits(text) > 0 {
		return domain.PatternTypeSubscription
	}
	return domain.PatternTypeOther
}

// boundaryScore blends occurrence count, position consistency, and length
// into the single [0,1] removal confidence.
func boundaryScore(occurrences int, consistency float64, length int) float64 {
	occTerm := math.Min(1, math.Log1p(float64(occurrences))/math.Log1p(occurrenceSaturation))
	lenTerm := math.Min(1, float64(length)/lengthSaturation)
	return clamp01(occurrenceWeight*occTerm + consistencyWeight*consistency + lengthWeight*lenTerm)
}

// isHighConfidenceBoilerplate reports whether a block matches the structural
// social-share/engagement signature: at least three distinct signature
// tokens dominating a short run. Such rows are always boilerplate but too
// short to survive the normal length gates.
func isHighConfidenceBoilerplate(text string) bool {
	hits := shareMatcher.distinctHits(text)
	if hits < minShareSignatureHits {
		return false
	}
	words := wordCount(text)
	if words == 0 {
		return false
	}
	return float64(hits)/float64(words) >= shareSignatureDominance
}

func wordCount(text string) int {
	count := 0
	inWord := false
	for _, r := range matchNormalize(text) {
		if r == ' ' {
			inWord = false
			continue
		}
		if !inWord {
			count++
			inWord = true
		}
	}
	return count
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

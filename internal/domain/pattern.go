package domain

import "time"

// PatternType constants for classified boilerplate blocks
const (
	PatternTypeNavigation   = "navigation"
	PatternTypeFooter       = "footer"
	PatternTypeSubscription = "subscription"
	PatternTypeSocialShare  = "social_share_header"
	PatternTypeOther        = "other"
)

// Candidate retention gates for the mining phase
const (
	DefaultMinOccurrences = 3
	MinBlockLength        = 30
	// Blocks shorter than this only clear the removal gate via the
	// high-confidence structural override.
	ShortBlockFloor = 150
)

// MLTrainingConfidenceFloor is the minimum confidence for a pattern to be
// eligible as an ML training example.
const MLTrainingConfidenceFloor = 0.5

// Span is a half-open [Start, End) byte range into an article's raw text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// CandidateBlock is a mining-phase block of text that repeats across a
// domain's sampled articles. It exists only for the duration of one mining
// run; blocks that clear the confidence bar are promoted into a
// PersistentPattern.
type CandidateBlock struct {
	NormalizedText      string            `json:"normalized_text"`
	Length              int               `json:"length"`
	Occurrences         map[string][]Span `json:"occurrences"` // article ID -> spans
	PatternType         string            `json:"pattern_type"`
	PositionConsistency float64           `json:"position_consistency"`
	BoundaryScore       float64           `json:"boundary_score"`
}

// ArticleCount returns the number of distinct articles the block appeared in.
func (b *CandidateBlock) ArticleCount() int {
	return len(b.Occurrences)
}

// PersistentPattern is a promoted boilerplate pattern owned by the pattern
// library. Uniquely keyed by (domain, normalized text content); never
// cross-domain and never physically deleted.
type PersistentPattern struct {
	ID                   int       `db:"id"                      json:"id"`
	Domain               string    `db:"domain"                  json:"domain"`
	PatternType          string    `db:"pattern_type"            json:"pattern_type"`
	TextContent          string    `db:"text_content"            json:"text_content"`
	NormalizedText       string    `db:"normalized_text"         json:"normalized_text"`
	ConfidenceScore      float64   `db:"confidence_score"        json:"confidence_score"`
	OccurrencesTotal     int       `db:"occurrences_total"       json:"occurrences_total"`
	IsMLTrainingEligible bool      `db:"is_ml_training_eligible" json:"is_ml_training_eligible"`
	RemovalReason        string    `db:"removal_reason"          json:"removal_reason,omitempty"`
	CreatedAt            time.Time `db:"created_at"              json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at"              json:"updated_at"`
}

// MLTrainingEligible reports whether a pattern of the given type and
// confidence is stable enough to feed automated-removal model training.
// Dynamic content (sidebars, trending widgets, anything classified "other")
// stays telemetry-only even at high confidence.
func MLTrainingEligible(patternType string, confidence float64) bool {
	if confidence < MLTrainingConfidenceFloor {
		return false
	}
	switch patternType {
	case PatternTypeSubscription, PatternTypeNavigation, PatternTypeFooter:
		return true
	default:
		return false
	}
}

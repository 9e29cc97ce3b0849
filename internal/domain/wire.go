package domain

// WireServicePattern type constants
const (
	WirePatternDateline = "dateline"
	WirePatternByline   = "byline"
	WirePatternAuthor   = "author"
	WirePatternURL      = "url"
	WirePatternContent  = "content"
)

// Detection method constants recorded on wire detections
const (
	DetectionMethodStoredPattern   = "stored_pattern"
	DetectionMethodFooterCopyright = "footer_copyright"
	DetectionMethodAuthorField     = "author_field"
	DetectionMethodURLHint         = "url_hint"
)

// Priority bands: at or below StrongSignalPriority a match is authoritative
// on its own; at or above WeakSignalPriority (section-path URL hints) a match
// needs corroborating evidence before anything acts on it.
const (
	StrongSignalPriority = 10
	WeakSignalPriority   = 50
)

// WireServicePattern is one entry in the global wire-service signature
// registry. Patterns are evaluated in ascending priority order; the first
// active match wins.
type WireServicePattern struct {
	ID            int    `db:"id"             json:"id"`
	Pattern       string `db:"pattern"        json:"pattern"`
	PatternType   string `db:"pattern_type"   json:"pattern_type"`
	ServiceName   string `db:"service_name"   json:"service_name"`
	CaseSensitive bool   `db:"case_sensitive" json:"case_sensitive"`
	Priority      int    `db:"priority"       json:"priority"`
	Active        bool   `db:"active"         json:"active"`
	Notes         string `db:"notes"          json:"notes,omitempty"`
}

// WireDetection is a syndication-provenance finding for a removed segment.
type WireDetection struct {
	Provider        string  `db:"provider"         json:"provider"`
	Confidence      float64 `db:"confidence"       json:"confidence"`
	DetectionMethod string  `db:"detection_method" json:"detection_method"`
}

package domain

import "time"

// CleaningMetadata is the per-article result of the apply phase, returned to
// the caller alongside the cleaned text.
type CleaningMetadata struct {
	ArticleID                string         `json:"article_id"`
	Domain                   string         `json:"domain"`
	CharsRemoved             int            `json:"chars_removed"`
	PatternsMatched          []string       `json:"patterns_matched"`
	PersistentRemovals       int            `json:"persistent_removals"`
	SocialShareHeaderRemoved bool           `json:"social_share_header_removed"`
	WireDetected             *WireDetection `json:"wire_detected,omitempty"`
}

// CleaningSession is the append-only telemetry fact recorded for every
// article that passes through the cleaner. Never mutated after insert.
type CleaningSession struct {
	SessionID                string         `db:"session_id"                  json:"session_id"`
	ArticleID                string         `db:"article_id"                  json:"article_id"`
	Domain                   string         `db:"domain"                      json:"domain"`
	CharsRemoved             int            `db:"chars_removed"               json:"chars_removed"`
	PatternsMatched          []string       `db:"patterns_matched"            json:"patterns_matched"`
	PersistentRemovals       int            `db:"persistent_removals"         json:"persistent_removals"`
	SocialShareHeaderRemoved bool           `db:"social_share_header_removed" json:"social_share_header_removed"`
	WireDetected             *WireDetection `db:"-"                           json:"wire_detected,omitempty"`
	CreatedAt                time.Time      `db:"created_at"                  json:"created_at"`
}

// SegmentDetection records one removed segment within a cleaning session.
type SegmentDetection struct {
	SessionID   string    `db:"session_id"   json:"session_id"`
	Domain      string    `db:"domain"       json:"domain"`
	PatternType string    `db:"pattern_type" json:"pattern_type"`
	TextContent string    `db:"text_content" json:"text_content"`
	Start       int       `db:"start_offset" json:"start"`
	End         int       `db:"end_offset"   json:"end"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
}

// DomainCleaningStats summarizes cleaning sessions for one domain.
type DomainCleaningStats struct {
	Domain             string  `db:"domain"               json:"domain"`
	Sessions           int     `db:"sessions"             json:"sessions"`
	TotalCharsRemoved  int     `db:"total_chars_removed"  json:"total_chars_removed"`
	AvgCharsRemoved    float64 `db:"avg_chars_removed"    json:"avg_chars_removed"`
	PersistentRemovals int     `db:"persistent_removals"  json:"persistent_removals"`
	WireDetections     int     `db:"wire_detections"      json:"wire_detections"`
	HeaderRemovals     int     `db:"header_removals"      json:"header_removals"`
}

package api

import (
	"github.com/LocalNewsImpact/boilerplate-engine/internal/domain"
)

// CleanRequest is a single inline-cleaning request.
type CleanRequest struct {
	ArticleID string `json:"article_id" binding:"required"`
	Domain    string `json:"domain"     binding:"required"`
	Text      string `json:"text"       binding:"required"`
}

// CleanResponse carries the cleaned text plus removal metadata.
type CleanResponse struct {
	Text     string                  `json:"text"`
	Metadata domain.CleaningMetadata `json:"metadata"`
}

// AnalyzeRequest triggers a synchronous mining run over one domain.
type AnalyzeRequest struct {
	Domain         string `json:"domain" binding:"required"`
	SampleSize     int    `json:"sample_size"`
	MinOccurrences int    `json:"min_occurrences"`
	Promote        bool   `json:"promote"`
}

// PatternsResponse lists persistent patterns.
type PatternsResponse struct {
	Domain   string                     `json:"domain,omitempty"`
	Patterns []domain.PersistentPattern `json:"patterns"`
	Total    int                        `json:"total"`
}

// WirePatternsResponse lists the active wire-service signature registry.
type WirePatternsResponse struct {
	Patterns []domain.WireServicePattern `json:"patterns"`
	Total    int                         `json:"total"`
}

// StatsResponse aggregates cleaning sessions per domain.
type StatsResponse struct {
	Domains []domain.DomainCleaningStats `json:"domains"`
	Total   int                          `json:"total"`
}

package domain

import "time"

// Article is the upstream shape consumed from the article store: one
// extracted article's raw text plus enough identity for mining and telemetry.
type Article struct {
	ID        string    `json:"id"`
	Domain    string    `json:"domain"`
	Text      string    `json:"text"`
	CrawledAt time.Time `json:"crawled_at"`
}

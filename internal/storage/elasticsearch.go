// Package storage provides the Elasticsearch-backed article store that
// mining runs sample from.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/domain"
)

// ArticleIndexPattern matches every per-source article index.
const ArticleIndexPattern = "*_articles"

// ElasticsearchStorage implements article sampling against Elasticsearch.
type ElasticsearchStorage struct {
	client *es.Client
}

// NewElasticsearchStorage creates a new Elasticsearch storage instance.
func NewElasticsearchStorage(client *es.Client) *ElasticsearchStorage {
	return &ElasticsearchStorage{
		client: client,
	}
}

// articleDocument is the wire shape of an article in the index.
type articleDocument struct {
	ID        string `json:"id"`
	Domain    string `json:"domain"`
	Text      string `json:"text"`
	CrawledAt string `json:"crawled_at"`
}

// SampleArticles returns up to limit of the most recently crawled articles
// for one publisher domain. This is the miner's sample: recent articles only,
// newest first, never cross-domain.
func (s *ElasticsearchStorage) SampleArticles(ctx context.Context, dom string, limit int) ([]domain.Article, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"domain": dom,
			},
		},
		"size": limit,
		"sort": []map[string]interface{}{
			{
				"crawled_at": map[string]interface{}{
					"order": "desc",
				},
			},
		},
	}

	queryBytes, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(ArticleIndexPattern),
		s.client.Search.WithBody(bytes.NewReader(queryBytes)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching: %s", res.String())
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				ID     string          `json:"_id"`
				Source articleDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	articles := make([]domain.Article, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		doc := hit.Source
		if doc.ID == "" {
			doc.ID = hit.ID
		}
		articles = append(articles, domain.Article{
			ID:     doc.ID,
			Domain: doc.Domain,
			Text:   doc.Text,
		})
	}

	return articles, nil
}

// TestConnection verifies Elasticsearch is reachable.
func (s *ElasticsearchStorage) TestConnection(ctx context.Context) error {
	res, err := s.client.Info(s.client.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error response from Elasticsearch: %s", res.String())
	}

	return nil
}

package bootstrap

import (
	"context"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/config"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/logger"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/storage"
)

// SetupElasticsearch builds the article store backing mining runs.
func SetupElasticsearch(cfg *config.Config, log logger.Interface) (*storage.ElasticsearchStorage, error) {
	esCfg := es.Config{
		Addresses:  []string{cfg.Elasticsearch.URL},
		Username:   cfg.Elasticsearch.Username,
		Password:   cfg.Elasticsearch.Password,
		MaxRetries: cfg.Elasticsearch.MaxRetries,
	}

	client, err := es.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	esStorage := storage.NewElasticsearchStorage(client)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Elasticsearch.Timeout)
	defer cancel()
	if err := esStorage.TestConnection(ctx); err != nil {
		return nil, fmt.Errorf("failed to verify Elasticsearch connection: %w", err)
	}

	log.Info("Elasticsearch connected successfully", "url", cfg.Elasticsearch.URL)
	return esStorage, nil
}

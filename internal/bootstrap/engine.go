package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/api"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/boilerplate"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/config"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/logger"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/patterns"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/processor"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/storage"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/telemetry"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/wire"
)

const readyProbeTimeout = 3 * time.Second

// EngineComponents holds everything the HTTP server and scheduler need.
type EngineComponents struct {
	DB        *sqlx.DB
	Cleaner   *boilerplate.Cleaner
	Miner     *boilerplate.Miner
	Cache     *patterns.Cache
	Recorder  *telemetry.Recorder
	Telemetry *telemetry.Provider
	Storage   *storage.ElasticsearchStorage
	Server    *http.Server
	Scheduler *processor.Scheduler

	dbComps *DatabaseComponents
}

// NewEngineComponents builds the full engine: database, article store,
// telemetry, pattern cache, wire matcher, cleaner, miner, scheduler, and the
// HTTP server.
func NewEngineComponents(cfg *config.Config, log logger.Interface) (*EngineComponents, error) {
	dbComps, err := SetupDatabase(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	esStorage, err := SetupElasticsearch(cfg, log)
	if err != nil {
		_ = dbComps.DB.Close()
		return nil, fmt.Errorf("setup elasticsearch: %w", err)
	}

	provider := telemetry.NewProvider()
	recorder := telemetry.NewRecorder(dbComps.SessionRepo, provider, log, cfg.Cleaning.TelemetryQueue)
	cache := patterns.NewCache(dbComps.PatternRepo, cfg.Cleaning.PatternCacheTTL, log)
	matcher := setupWireMatcher(dbComps, log)

	cleaner := boilerplate.NewCleaner(cache, matcher, recorder, log, provider, cfg.Cleaning.Timeout)
	miner := boilerplate.NewMiner(esStorage, dbComps.PatternRepo, matcher, log, provider)

	scheduler := processor.NewScheduler(miner, dbComps.SessionRepo, cache, log, processor.Options{
		Schedule:         cfg.Mining.Schedule,
		DomainsPerMinute: cfg.Mining.DomainsPerMinute,
		BatchLimit:       cfg.Mining.BatchLimit,
		Mining: boilerplate.MiningOptions{
			SampleSize:     cfg.Mining.SampleSize,
			MinOccurrences: cfg.Mining.MinOccurrences,
			Promote:        true,
		},
	})

	ready := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), readyProbeTimeout)
		defer cancel()
		if pingErr := dbComps.DB.PingContext(ctx); pingErr != nil {
			return fmt.Errorf("database: %w", pingErr)
		}
		return nil
	}

	handler := api.NewHandler(
		cleaner,
		miner,
		dbComps.PatternRepo,
		dbComps.SessionRepo,
		dbComps.WireRepo,
		ready,
		log,
	)

	server := api.NewServer(handler, api.ServerConfig{
		Port:  cfg.Service.Port,
		Debug: cfg.Service.Debug,
	})

	return &EngineComponents{
		DB:        dbComps.DB,
		Cleaner:   cleaner,
		Miner:     miner,
		Cache:     cache,
		Recorder:  recorder,
		Telemetry: provider,
		Storage:   esStorage,
		Server:    server,
		Scheduler: scheduler,
		dbComps:   dbComps,
	}, nil
}

// setupWireMatcher seeds the registry on first run and compiles the active
// set. A registry read failure falls back to the built-in signatures so wire
// detection keeps working.
func setupWireMatcher(dbComps *DatabaseComponents, log logger.Interface) *wire.Matcher {
	ctx, cancel := context.WithTimeout(context.Background(), readyProbeTimeout)
	defer cancel()

	if err := dbComps.WireRepo.Seed(ctx, wire.SeedPatterns()); err != nil {
		log.Warn("failed to seed wire pattern registry", "error", err)
	}

	registry, err := dbComps.WireRepo.ListActive(ctx)
	if err != nil || len(registry) == 0 {
		if err != nil {
			log.Warn("failed to load wire pattern registry, using built-in signatures", "error", err)
		}
		registry = wire.SeedPatterns()
	}
	return wire.NewMatcher(registry, log)
}

// Close shuts down in dependency order: recorder first so queued telemetry
// drains into a live database.
func (c *EngineComponents) Close() {
	if c.Recorder != nil {
		c.Recorder.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}

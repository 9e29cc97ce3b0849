package bootstrap

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/config"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/database"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/logger"
)

// DatabaseComponents holds the database connection and repositories.
type DatabaseComponents struct {
	DB          *sqlx.DB
	PatternRepo *database.PatternRepository
	SessionRepo *database.SessionRepository
	WireRepo    *database.WireRepository
}

// SetupDatabase connects to PostgreSQL, applies the schema, and builds the
// repositories.
func SetupDatabase(cfg *config.Config, log logger.Interface) (*DatabaseComponents, error) {
	dbConfig := database.Config{
		Host:     cfg.Database.Host,
		Port:     strconv.Itoa(cfg.Database.Port),
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
	}

	log.Info("Connecting to PostgreSQL database",
		"host", dbConfig.Host,
		"port", dbConfig.Port,
		"database", dbConfig.DBName,
	)

	db, err := database.NewPostgresConnection(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.Migrate(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DatabaseComponents{
		DB:          db,
		PatternRepo: database.NewPatternRepository(db),
		SessionRepo: database.NewSessionRepository(db),
		WireRepo:    database.NewWireRepository(db),
	}, nil
}

// Package bootstrap wires configuration, storage, and engine components for
// the binaries under cmd/.
package bootstrap

import (
	"fmt"
	"os"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/config"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/logger"
)

// ConfigPathEnv overrides the default config file location.
const ConfigPathEnv = "BOILERPLATE_CONFIG"

// LoadConfig loads configuration. A missing file is fine: defaults plus
// environment apply.
func LoadConfig() (*config.Config, error) {
	path := os.Getenv(ConfigPathEnv)
	if path == "" {
		path = "config.yml"
	}
	if _, err := os.Stat(path); err != nil {
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// CreateLogger creates a logger instance from configuration.
func CreateLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}

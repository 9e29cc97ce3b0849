// Package config loads service configuration from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServiceName       = "boilerplate-engine"
	defaultServiceVersion    = "1.0.0"
	defaultServicePort       = 8074
	defaultDBHost            = "localhost"
	defaultDBPort            = 5432
	defaultDBUser            = "postgres"
	defaultDBName            = "boilerplate"
	defaultDBSSLMode         = "disable"
	defaultESURL             = "http://localhost:9200"
	defaultESMaxRetries      = 3
	defaultESTimeoutSec      = 30
	defaultLogLevel          = "info"
	defaultLogFormat         = "json"
	defaultCleanTimeoutSec   = 2
	defaultPatternCacheTTL   = 5 * time.Minute
	defaultTelemetryQueue    = 1024
	defaultSampleSize        = 20
	defaultMinOccurrences    = 3
	defaultMiningSchedule    = "0 * * * *"
	defaultMiningRatePerMin  = 6
	defaultMiningBatchLimit  = 20
	defaultBoundaryThreshold = 0.5
)

// Config holds all configuration for the boilerplate engine.
type Config struct {
	Service       ServiceConfig       `mapstructure:"service"       yaml:"service"`
	Database      DatabaseConfig      `mapstructure:"database"      yaml:"database"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch" yaml:"elasticsearch"`
	Logging       LoggingConfig       `mapstructure:"logging"       yaml:"logging"`
	Cleaning      CleaningConfig      `mapstructure:"cleaning"      yaml:"cleaning"`
	Mining        MiningConfig        `mapstructure:"mining"        yaml:"mining"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `mapstructure:"name"    yaml:"name"`
	Version string `mapstructure:"version" yaml:"version"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Debug   bool   `mapstructure:"debug"   yaml:"debug"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"     yaml:"host"`
	Port     int    `mapstructure:"port"     yaml:"port"`
	User     string `mapstructure:"user"     yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	Database string `mapstructure:"database" yaml:"database"`
	SSLMode  string `mapstructure:"sslmode"  yaml:"sslmode"`
}

// ElasticsearchConfig holds Elasticsearch configuration.
type ElasticsearchConfig struct {
	URL        string        `mapstructure:"url"         yaml:"url"`
	Username   string        `mapstructure:"username"    yaml:"username"`
	Password   string        `mapstructure:"password"    yaml:"password"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	Timeout    time.Duration `mapstructure:"timeout"     yaml:"timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CleaningConfig holds inline-cleaning settings.
type CleaningConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"           yaml:"timeout"`
	PatternCacheTTL time.Duration `mapstructure:"pattern_cache_ttl" yaml:"pattern_cache_ttl"`
	TelemetryQueue  int           `mapstructure:"telemetry_queue"   yaml:"telemetry_queue"`
}

// MiningConfig holds offline pattern-mining settings.
type MiningConfig struct {
	SampleSize        int     `mapstructure:"sample_size"        yaml:"sample_size"`
	MinOccurrences    int     `mapstructure:"min_occurrences"    yaml:"min_occurrences"`
	BoundaryThreshold float64 `mapstructure:"boundary_threshold" yaml:"boundary_threshold"`
	// Schedule is a cron expression for the background mining pass.
	Schedule string `mapstructure:"schedule"        yaml:"schedule"`
	// DomainsPerMinute rate-limits how fast the scheduler works through
	// candidate domains.
	DomainsPerMinute int `mapstructure:"domains_per_minute" yaml:"domains_per_minute"`
	// BatchLimit caps the candidate domains picked up per scheduled pass.
	BatchLimit int `mapstructure:"batch_limit"      yaml:"batch_limit"`
}

// Load loads configuration from the given YAML path, with environment
// variables (prefix BOILERPLATE_, dots as underscores) taking precedence.
// A missing file is not an error: defaults plus environment apply.
func Load(path string) (*Config, error) {
	// Populate the environment from .env when present.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BOILERPLATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setElasticsearchDefaults(&cfg.Elasticsearch)
	setLoggingDefaults(&cfg.Logging)
	setCleaningDefaults(&cfg.Cleaning)
	setMiningDefaults(&cfg.Mining)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
}

func setElasticsearchDefaults(e *ElasticsearchConfig) {
	if e.URL == "" {
		e.URL = defaultESURL
	}
	if e.MaxRetries == 0 {
		e.MaxRetries = defaultESMaxRetries
	}
	if e.Timeout == 0 {
		e.Timeout = defaultESTimeoutSec * time.Second
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}

func setCleaningDefaults(c *CleaningConfig) {
	if c.Timeout == 0 {
		c.Timeout = defaultCleanTimeoutSec * time.Second
	}
	if c.PatternCacheTTL == 0 {
		c.PatternCacheTTL = defaultPatternCacheTTL
	}
	if c.TelemetryQueue == 0 {
		c.TelemetryQueue = defaultTelemetryQueue
	}
}

func setMiningDefaults(m *MiningConfig) {
	if m.SampleSize == 0 {
		m.SampleSize = defaultSampleSize
	}
	if m.MinOccurrences == 0 {
		m.MinOccurrences = defaultMinOccurrences
	}
	if m.BoundaryThreshold == 0 {
		m.BoundaryThreshold = defaultBoundaryThreshold
	}
	if m.Schedule == "" {
		m.Schedule = defaultMiningSchedule
	}
	if m.DomainsPerMinute == 0 {
		m.DomainsPerMinute = defaultMiningRatePerMin
	}
	if m.BatchLimit == 0 {
		m.BatchLimit = defaultMiningBatchLimit
	}
}

// Package config loads service configuration from config.yaml with
// environment variable overrides. Environment variables always win for
// fields that support both; secrets come from the environment only.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for intel-engine.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// AI insight provider configuration
	AI AIConfig `yaml:"ai"`

	// Feed ingestion configuration
	Ingest IngestConfig `yaml:"ingest"`

	// ExportDir is where generated data exports are written.
	ExportDir string `yaml:"export_dir" env:"EXPORT_DIR" env-default:"exports"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"intel"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"intel_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// AIConfig selects and configures the LLM insight provider.
type AIConfig struct {
	// Provider is "openai" or "anthropic". Empty disables insights.
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:""`
	APIKey   string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML
	Model    string `yaml:"model" env:"AI_MODEL" env-default:""`
	// Endpoint overrides the OpenAI-compatible base URL; ignored by
	// the anthropic provider.
	Endpoint string `yaml:"endpoint" env:"AI_ENDPOINT" env-default:""`
}

// IsAvailable returns true if an insight provider is configured.
func (c *AIConfig) IsAvailable() bool {
	return c.Provider != "" && c.APIKey != ""
}

// IngestConfig holds feed ingestion settings.
type IngestConfig struct {
	// Schedule is a cron expression for the automatic refresh; empty
	// disables scheduled ingestion.
	Schedule string `yaml:"schedule" env:"INGEST_SCHEDULE" env-default:""`

	// CatalogPath points at the feeds.yaml endpoint catalog.
	CatalogPath string `yaml:"catalog_path" env:"INGEST_CATALOG_PATH" env-default:"feeds.yaml"`

	// DefaultSourcesStr is a comma-separated source list applied to the
	// filtered dashboard when a request names no sources.
	DefaultSourcesStr string `yaml:"default_sources" env:"INGEST_DEFAULT_SOURCES" env-default:"MITRE ATT&CK,CISA KEV Catalog,URLhaus"`

	// DefaultSources is the parsed list from DefaultSourcesStr.
	DefaultSources []string `yaml:"-"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on
// the returned Config. Secrets (PGPASSWORD, AI_API_KEY) must come from
// environment variables (yaml:"-" fields).
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// A missing config.yaml is fine; environment defaults apply.
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.Ingest.DefaultSources = parseSourceList(cfg.Ingest.DefaultSourcesStr)

	return cfg, nil
}

func parseSourceList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

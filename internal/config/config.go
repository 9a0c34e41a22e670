// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Host string `envconfig:"LORE_HOST" yaml:"host"`
	Port int    `envconfig:"LORE_PORT" yaml:"port"`

	// Catalog configuration
	Catalog CatalogConfig `yaml:"catalog"`

	// Provider configuration
	Provider ProviderConfig `yaml:"provider"`

	// Index configuration
	Index IndexConfig `yaml:"index"`

	// Evaluation configuration
	Eval EvalConfig `yaml:"eval"`

	// Cache configuration
	Cache CacheConfig `yaml:"cache"`

	// Bus configuration
	Bus BusConfig `yaml:"bus"`

	// Notes configuration
	Notes NotesConfig `yaml:"notes"`

	// Logging configuration
	Log LogConfig `yaml:"log"`

	// Security configuration
	Security SecurityConfig `yaml:"security"`
}

// CatalogConfig holds catalog API settings.
type CatalogConfig struct {
	GraphQLURL     string `envconfig:"LORE_CATALOG_URL" yaml:"graphql_url"`
	TimeoutSeconds int    `envconfig:"LORE_CATALOG_TIMEOUT" yaml:"timeout_seconds"`
}

// ProviderConfig holds text/embedding provider settings.
type ProviderConfig struct {
	Endpoint            string `envconfig:"LORE_PROVIDER_ENDPOINT" yaml:"endpoint"`
	APIKey              string `envconfig:"LORE_PROVIDER_API_KEY" yaml:"api_key"`
	APIVersion          string `envconfig:"LORE_PROVIDER_API_VERSION" yaml:"api_version"`
	CompletionDeploy    string `envconfig:"LORE_PROVIDER_COMPLETION_DEPLOYMENT" yaml:"completion_deployment"`
	EmbeddingDeploy     string `envconfig:"LORE_PROVIDER_EMBEDDING_DEPLOYMENT" yaml:"embedding_deployment"`
	EmbeddingDimensions int    `envconfig:"LORE_PROVIDER_EMBED_DIM" yaml:"embedding_dimensions"`
	TimeoutSeconds      int    `envconfig:"LORE_PROVIDER_TIMEOUT" yaml:"timeout_seconds"`
}

// IndexConfig holds semantic index settings.
type IndexConfig struct {
	Backend          string `envconfig:"LORE_INDEX_BACKEND" yaml:"backend"` // memory or qdrant
	QdrantURL        string `envconfig:"LORE_QDRANT_URL" yaml:"qdrant_url"`
	QdrantAPIKey     string `envconfig:"LORE_QDRANT_API_KEY" yaml:"qdrant_api_key"`
	Collection       string `envconfig:"LORE_INDEX_COLLECTION" yaml:"collection"`
	DefaultLimit     int    `envconfig:"LORE_SEARCH_DEFAULT_LIMIT" yaml:"default_limit"`
	MaxLimit         int    `envconfig:"LORE_SEARCH_MAX_LIMIT" yaml:"max_limit"`
	EnrichConcurrent int    `envconfig:"LORE_SEARCH_ENRICH_CONCURRENCY" yaml:"enrich_concurrency"`
}

// EvalConfig holds evaluation settings.
type EvalConfig struct {
	JudgeEnabled bool    `envconfig:"LORE_JUDGE_ENABLED" yaml:"judge_enabled"`
	JudgeTemp    float64 `envconfig:"LORE_JUDGE_TEMPERATURE" yaml:"judge_temperature"`
	MaxTokens    int     `envconfig:"LORE_EVAL_MAX_TOKENS" yaml:"max_tokens"`
}

// CacheConfig holds catalog cache settings.
type CacheConfig struct {
	Type       string `envconfig:"LORE_CACHE_TYPE" yaml:"type"` // memory or redis
	Size       int    `envconfig:"LORE_CACHE_SIZE" yaml:"size"`
	TTLSeconds int    `envconfig:"LORE_CACHE_TTL" yaml:"ttl_seconds"` // 0 = no expiry
	RedisURL   string `envconfig:"LORE_REDIS_URL" yaml:"redis_url"`
}

// BusConfig holds event bus settings.
type BusConfig struct {
	Type          string `envconfig:"LORE_BUS_TYPE" yaml:"type"` // memory or kafka
	KafkaBrokers  string `envconfig:"LORE_KAFKA_BROKERS" yaml:"kafka_brokers"`
	ConsumerGroup string `envconfig:"LORE_KAFKA_CONSUMER_GROUP" yaml:"consumer_group"`
}

// NotesConfig holds notes storage settings.
type NotesConfig struct {
	Path string `envconfig:"LORE_NOTES_PATH" yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"LORE_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"LORE_LOG_FORMAT" yaml:"format"`
}

// SecurityConfig holds security settings.
type SecurityConfig struct {
	RateLimit   int    `envconfig:"LORE_RATE_LIMIT" yaml:"rate_limit"` // requests/sec per client, 0 = disabled
	CORSOrigins string `envconfig:"LORE_CORS_ORIGINS" yaml:"cors_origins"`
}

// Load loads configuration from environment variables and optional config file.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Set defaults first
	setDefaults(cfg)

	// Load from YAML file if provided (overrides defaults)
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.Host = "0.0.0.0"
	cfg.Port = 8080

	cfg.Catalog = CatalogConfig{
		GraphQLURL:     "https://rickandmortyapi.com/graphql",
		TimeoutSeconds: 30,
	}

	cfg.Provider = ProviderConfig{
		APIVersion:          "2024-02-01",
		CompletionDeploy:    "gpt-4o-mini",
		EmbeddingDeploy:     "text-embedding-3-small",
		EmbeddingDimensions: 1536,
		TimeoutSeconds:      60,
	}

	cfg.Index = IndexConfig{
		Backend:          "memory",
		QdrantURL:        "http://localhost:6333",
		Collection:       "entities",
		DefaultLimit:     5,
		MaxLimit:         50,
		EnrichConcurrent: 4,
	}

	cfg.Eval = EvalConfig{
		JudgeEnabled: false,
		JudgeTemp:    0.0,
		MaxTokens:    500,
	}

	cfg.Cache = CacheConfig{
		Type:       "memory",
		Size:       1000,
		TTLSeconds: 300,
		RedisURL:   "redis://localhost:6379",
	}

	cfg.Bus = BusConfig{
		Type:          "memory",
		ConsumerGroup: "lore-search",
	}

	cfg.Notes = NotesConfig{
		Path: "./data/notes.db",
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}

	cfg.Security = SecurityConfig{
		RateLimit:   0,
		CORSOrigins: "*",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}

	// Catalog validation
	if c.Catalog.GraphQLURL == "" {
		errs = append(errs, "catalog graphql_url must not be empty")
	}

	// Provider validation
	if c.Provider.EmbeddingDimensions < 1 {
		errs = append(errs, "embedding_dimensions must be positive")
	}

	// Index validation
	validBackends := map[string]bool{"memory": true, "qdrant": true}
	if !validBackends[c.Index.Backend] {
		errs = append(errs, fmt.Sprintf("invalid index backend: %s (must be memory or qdrant)", c.Index.Backend))
	}

	if c.Index.DefaultLimit < 1 {
		errs = append(errs, "default_limit must be positive")
	}

	if c.Index.MaxLimit < c.Index.DefaultLimit {
		errs = append(errs, "max_limit must be at least default_limit")
	}

	// Cache validation
	validCacheTypes := map[string]bool{"memory": true, "redis": true}
	if !validCacheTypes[c.Cache.Type] {
		errs = append(errs, fmt.Sprintf("invalid cache type: %s (must be memory or redis)", c.Cache.Type))
	}

	// Bus validation
	validBusTypes := map[string]bool{"memory": true, "kafka": true}
	if !validBusTypes[c.Bus.Type] {
		errs = append(errs, fmt.Sprintf("invalid bus type: %s (must be memory or kafka)", c.Bus.Type))
	}

	if c.Bus.Type == "kafka" && c.Bus.KafkaBrokers == "" {
		errs = append(errs, "kafka_brokers must be set when bus type is kafka")
	}

	// Eval validation
	if c.Eval.JudgeTemp < 0 || c.Eval.JudgeTemp > 2 {
		errs = append(errs, "judge_temperature must be between 0 and 2")
	}

	// Log validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Address returns the server address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ProviderConfigured reports whether provider credentials are present.
func (c *Config) ProviderConfigured() bool {
	return c.Provider.Endpoint != "" && c.Provider.APIKey != ""
}

// Package config provides unified configuration loading for the catalog assistant.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the catalog assistant.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Pinecone      PineconeConfig      `yaml:"pinecone"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	Generation    GenerationConfig    `yaml:"generation"`
	Retrieval     RetrievalConfig     `yaml:"retrieval"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// DatabaseConfig holds catalog store connection settings.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"` // sqlite or postgres
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path         string `yaml:"path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// PostgresConfig holds Postgres-specific settings.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// PineconeConfig holds similarity-index settings.
type PineconeConfig struct {
	APIKey    string `yaml:"api_key"`
	Index     string `yaml:"index"`
	Namespace string `yaml:"namespace"`
	Cloud     string `yaml:"cloud"`
	Region    string `yaml:"region"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // vertex or genai
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
	// Vertex-only settings.
	Project     string `yaml:"project"`
	Location    string `yaml:"location"`
	AccessToken string `yaml:"access_token"`
}

// GenerationConfig holds text-generation model settings.
type GenerationConfig struct {
	Model   string        `yaml:"model"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// RetrievalConfig holds retrieval settings.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8000,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     60 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path:         "/tmp/catalog-assistant.db",
				MaxOpenConns: 1,
			},
			Postgres: PostgresConfig{
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 5 * time.Minute,
			},
		},
		Pinecone: PineconeConfig{
			Index:  "ecommerce-ai-assistant",
			Cloud:  "aws",
			Region: "us-east-1",
		},
		Embedding: EmbeddingConfig{
			Provider:  "vertex",
			Model:     "text-embedding-004",
			Dimension: 768,
			BatchSize: 32,
			Location:  "us-central1",
		},
		Generation: GenerationConfig{
			Model:   "gemini-1.5-flash",
			Timeout: 60 * time.Second,
		},
		Retrieval: RetrievalConfig{
			TopK: 10,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "debug",
			LogFormat: "json",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("invalid database driver: %s", c.Database.Driver)
	}

	switch strings.ToLower(c.Embedding.Provider) {
	case "vertex", "genai", "google":
	default:
		return fmt.Errorf("unsupported embeddings provider: %s", c.Embedding.Provider)
	}

	if c.Embedding.Dimension < 1 {
		return fmt.Errorf("embedding dimension must be positive")
	}

	if c.Embedding.BatchSize < 1 {
		return fmt.Errorf("embedding batch_size must be positive")
	}

	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("retrieval top_k must be positive")
	}

	return nil
}

// DatabaseDSN returns the appropriate database connection string.
func (c *Config) DatabaseDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLite.Path
	}
	return c.Database.Postgres.DSN
}

// applyEnvOverrides applies environment variable overrides to config.
// The variable names match the ones the deployment already uses.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		if strings.HasPrefix(v, "sqlite:") {
			cfg.Database.Driver = "sqlite"
			cfg.Database.SQLite.Path = strings.TrimPrefix(v, "sqlite:")
		} else if strings.HasPrefix(v, "postgres") {
			cfg.Database.Driver = "postgres"
			cfg.Database.Postgres.DSN = v
		}
	}

	if v := os.Getenv("PINECONE_API_KEY"); v != "" {
		cfg.Pinecone.APIKey = v
	}

	if v := os.Getenv("PINECONE_INDEX_NAME"); v != "" {
		cfg.Pinecone.Index = v
	}

	if v := os.Getenv("PINECONE_NAMESPACE"); v != "" {
		cfg.Pinecone.Namespace = v
	}

	if v := os.Getenv("PINECONE_CLOUD"); v != "" {
		cfg.Pinecone.Cloud = v
	}

	if v := os.Getenv("PINECONE_REGION"); v != "" {
		cfg.Pinecone.Region = v
	}

	if v := os.Getenv("EMBEDDINGS_PROVIDER"); v != "" {
		cfg.Embedding.Provider = strings.ToLower(v)
	}

	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}

	if v := os.Getenv("EMBED_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Embedding.BatchSize = n
		}
	}

	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		cfg.Embedding.Project = v
	}

	if v := os.Getenv("GOOGLE_CLOUD_LOCATION"); v != "" {
		cfg.Embedding.Location = v
	}

	if v := os.Getenv("GOOGLE_ACCESS_TOKEN"); v != "" {
		cfg.Embedding.AccessToken = v
	}

	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.Generation.APIKey = v
	}

	if v := os.Getenv("GENERATION_MODEL"); v != "" {
		cfg.Generation.Model = v
	}

	if v := os.Getenv("RETRIEVAL_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Retrieval.TopK = n
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}

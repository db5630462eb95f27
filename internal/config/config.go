package config

import (
	"fmt"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultDataKey is the pre-shared key the published artifacts are sealed with.
const DefaultDataKey = "0123456789abcdef0123456789abcdef"

// Cache backends.
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendBolt   = "bolt"
	CacheBackendMemory = "memory"
)

// Config holds all configuration for the application.
// Every field is read from the environment variable named in its tag.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Data      DataConfig
	Cache     CacheConfig
	Refresh   RefreshConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string        `envconfig:"SERVER_PORT" default:"5001"`
	Host         string        `envconfig:"SERVER_HOST" default:"localhost"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	Addr         string        `ignored:"true"` // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string `envconfig:"DB_PATH" default:"./data/fundwallet.db"`
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost"`
}

// DataConfig describes where the fund artifact lives and how it is sealed.
type DataConfig struct {
	URL              string        `envconfig:"DATA_URL" default:"https://cdn.jsdelivr.net/gh/visnkmr/fasttest@main/data.b64"`
	Chunks           int           `envconfig:"DATA_CHUNKS" default:"1"`
	Key              string        `envconfig:"DATA_KEY" default:"0123456789abcdef0123456789abcdef"`
	Timeout          time.Duration `envconfig:"DATA_TIMEOUT" default:"2m"`
	FetchConcurrency int           `envconfig:"FETCH_CONCURRENCY" default:"3"`
}

// CacheConfig selects the persistent payload cache.
type CacheConfig struct {
	Backend  string        `envconfig:"CACHE_BACKEND" default:"sqlite"`
	BoltPath string        `envconfig:"CACHE_BOLT_PATH" default:"./data/payload.bolt"`
	Key      string        `envconfig:"CACHE_KEY" default:"fund-data"`
	Version  string        `envconfig:"CACHE_VERSION" default:"v1"`
	MaxAge   time.Duration `envconfig:"CACHE_MAX_AGE" default:"24h"`
	SealKey  string        `envconfig:"CACHE_SEAL_KEY"`
	SealTTL  time.Duration `envconfig:"CACHE_SEAL_TTL" default:"720h"`
}

// RefreshConfig holds the background refresh schedule. An empty schedule disables it.
type RefreshConfig struct {
	Schedule string `envconfig:"REFRESH_SCHEDULE" default:"@every 6h"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// RateLimitConfig holds per-client request limits. A non-positive RPS disables limiting.
type RateLimitConfig struct {
	RPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"20"`
	Burst int     `envconfig:"RATE_LIMIT_BURST" default:"40"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	// Combine host and port
	config.Server.Addr = net.JoinHostPort(config.Server.Host, config.Server.Port)

	return &config, nil
}

func (c *Config) validate() error {
	if len(c.Data.Key) != 32 {
		return fmt.Errorf("DATA_KEY must be 32 bytes, got %d", len(c.Data.Key))
	}
	if c.Data.Chunks < 1 {
		return fmt.Errorf("DATA_CHUNKS must be at least 1, got %d", c.Data.Chunks)
	}
	switch c.Cache.Backend {
	case CacheBackendSQLite, CacheBackendBolt, CacheBackendMemory:
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of sqlite, bolt or memory, got %q", c.Cache.Backend)
	}
	if c.Cache.Version == "" {
		return fmt.Errorf("CACHE_VERSION must not be empty")
	}
	return nil
}

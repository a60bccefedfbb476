// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/errors"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/logging"
)

// Cache backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Pricing contains pricing model settings
	Pricing PricingConfig `json:"pricing"`

	// Database contains PostgreSQL settings
	Database DatabaseConfig `json:"database"`

	// Cache contains estimate cache settings
	Cache CacheConfig `json:"cache"`

	// Server contains HTTP server settings
	Server ServerConfig `json:"server"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// ModelPath is an .hcl or .json pricing file. Ignored when a database DSN is set.
	ModelPath string `json:"model_path"`

	// DefaultCurrency is used when neither the inputs nor the model name one
	DefaultCurrency types.Currency `json:"default_currency"`

	// Variables are exposed to pricing files as var.<name>
	Variables map[string]string `json:"variables,omitempty"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	// DSN is a PostgreSQL connection string; empty disables the database
	DSN string `json:"dsn,omitempty"`

	MaxOpenConns int `json:"max_open_conns"`

	// Migrate applies the schema on startup
	Migrate bool `json:"migrate"`
}

// CacheConfig contains cache-related settings
type CacheConfig struct {
	// Enabled enables caching
	Enabled bool `json:"enabled"`

	// Backend is memory or redis
	Backend string `json:"backend"`

	// TTLSeconds is how long to cache estimates
	TTLSeconds int `json:"ttl_seconds"`

	// MaxEntries caps the memory backend
	MaxEntries int `json:"max_entries"`

	Redis RedisConfig `json:"redis"`
}

// RedisConfig contains redis connection settings
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr string `json:"addr"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format (cli, json)
	DefaultFormat string `json:"default_format"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			ModelPath:       "pricing.hcl",
			DefaultCurrency: types.CurrencyUSD,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Backend:    BackendMemory,
			TTLSeconds: 600, // 10 minutes
			MaxEntries: 10000,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file, then applies environment overrides.
// A missing file yields the defaults. A .env file in the working directory is
// loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	config := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, errors.Wrap(errors.TypeConfig, "failed to parse config file", err).WithContext("path", path)
			}
		case !os.IsNotExist(err):
			return nil, errors.Wrap(errors.TypeConfig, "failed to read config file", err).WithContext("path", path)
		}
	}

	config.ApplyEnv(os.LookupEnv)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides settings from environment variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("PRICING_MODEL_PATH", &c.Pricing.ModelPath)
	str("DATABASE_URL", &c.Database.DSN)
	str("REDIS_ADDR", &c.Cache.Redis.Addr)
	str("REDIS_PASSWORD", &c.Cache.Redis.Password)
	str("CACHE_BACKEND", &c.Cache.Backend)
	str("SERVER_ADDR", &c.Server.Addr)
	str("LOG_LEVEL", &c.Logging.Level)

	if v, ok := lookup("CACHE_TTL_SECONDS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.TTLSeconds = n
		}
	}
}

// Validate checks settings that would otherwise fail late
func (c *Config) Validate() error {
	if c.Cache.Enabled {
		switch c.Cache.Backend {
		case BackendMemory:
		case BackendRedis:
			if c.Cache.Redis.Addr == "" {
				return errors.Config("redis cache backend requires an address")
			}
		default:
			return errors.Newf(errors.TypeConfig, "unknown cache backend %q", c.Cache.Backend)
		}
		if c.Cache.TTLSeconds <= 0 {
			return errors.Config("cache ttl must be positive")
		}
	}
	if c.Database.DSN == "" && c.Pricing.ModelPath == "" {
		return errors.Config("either a pricing model path or a database DSN is required")
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Internal("failed to encode config", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.TypeConfig, "failed to create config directory", err).WithContext("path", path)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.Wrap(errors.TypeConfig, "failed to write config file", err).WithContext("path", path)
	}
	return nil
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}

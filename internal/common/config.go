// Package common provides shared utilities for StockPulse
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for StockPulse
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Market      MarketConfig  `toml:"market"`
	Fetch       FetchConfig   `toml:"fetch"`
	Auth        AuthConfig    `toml:"auth"`
	Warmer      WarmerConfig  `toml:"warmer"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the key-value store configuration.
type StorageConfig struct {
	Redis RedisConfig `toml:"redis"`
}

// RedisConfig holds connection settings for the remote key-value store.
// An empty Addr means no persistent store is configured, so the service
// degrades to recompute-always with the in-memory fallback tier.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Finnhub FinnhubConfig `toml:"finnhub"`
	Reddit  RedditConfig  `toml:"reddit"`
}

// FinnhubConfig holds Finnhub API configuration
type FinnhubConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *FinnhubConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// RedditConfig holds Reddit API configuration
type RedditConfig struct {
	BaseURL   string `toml:"base_url"`
	UserAgent string `toml:"user_agent"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *RedditConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// MarketConfig centralizes market-wide defaults that were historically
// scattered per endpoint: the heatmap symbol universe and the S&P 500
// P/E served when the upstream metric is unavailable.
type MarketConfig struct {
	HeatmapSymbols  []string `toml:"heatmap_symbols"`
	SP500FallbackPE float64  `toml:"sp500_fallback_pe"`
}

// FetchConfig holds upstream fan-out settings.
type FetchConfig struct {
	BatchSize  int    `toml:"batch_size"`
	BatchDelay string `toml:"batch_delay"`
	Timeout    string `toml:"timeout"`
}

// GetBatchDelay parses and returns the inter-batch delay.
func (c *FetchConfig) GetBatchDelay() time.Duration {
	d, err := time.ParseDuration(c.BatchDelay)
	if err != nil {
		return 1 * time.Second
	}
	return d
}

// GetTimeout parses and returns the per-call timeout.
func (c *FetchConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// AuthConfig holds token validation configuration. Session establishment
// lives in an external service; this server only verifies bearer tokens.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

// WarmerConfig holds the periodic cache-warmer settings.
type WarmerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // cron expression
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Redis: RedisConfig{
				Addr: "",
				DB:   0,
			},
		},
		Clients: ClientsConfig{
			Finnhub: FinnhubConfig{
				BaseURL:   "https://finnhub.io/api/v1",
				RateLimit: 10,
				Timeout:   "30s",
			},
			Reddit: RedditConfig{
				BaseURL:   "https://www.reddit.com",
				UserAgent: "stockpulse/1.0",
				RateLimit: 1,
				Timeout:   "15s",
			},
		},
		Market: MarketConfig{
			HeatmapSymbols: []string{
				"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA",
				"BRK.B", "JPM", "V", "UNH", "XOM", "JNJ", "WMT", "PG",
			},
			SP500FallbackPE: 24.5,
		},
		Fetch: FetchConfig{
			BatchSize:  5,
			BatchDelay: "1s",
			Timeout:    "10s",
		},
		Auth: AuthConfig{
			JWTSecret: "dev-jwt-secret-change-in-production",
		},
		Warmer: WarmerConfig{
			Enabled:  false,
			Schedule: "*/10 * * * *",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STOCKPULSE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("STOCKPULSE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("STOCKPULSE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("STOCKPULSE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if addr := os.Getenv("STOCKPULSE_REDIS_ADDR"); addr != "" {
		config.Storage.Redis.Addr = addr
	}
	if pw := os.Getenv("STOCKPULSE_REDIS_PASSWORD"); pw != "" {
		config.Storage.Redis.Password = pw
	}
	if db := os.Getenv("STOCKPULSE_REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			config.Storage.Redis.DB = n
		}
	}

	if v := os.Getenv("STOCKPULSE_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}

	if v := os.Getenv("STOCKPULSE_WARMER"); v != "" {
		config.Warmer.Enabled = strings.EqualFold(v, "on") || v == "1" || strings.EqualFold(v, "true")
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from environment or config fallback.
func ResolveAPIKey(name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"finnhub_api_key": {"FINNHUB_API_KEY", "STOCKPULSE_FINNHUB_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}

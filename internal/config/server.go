package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the serve command's settings. Values come from an
// optional YAML file with environment variables taking precedence. Durations
// are whole seconds in the file.
type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            string `yaml:"port"`
	Environment     string `yaml:"environment"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
	IdleTimeoutSec  int    `yaml:"idle_timeout_sec"`

	DataDir    string `yaml:"data_dir"`
	StorageDir string `yaml:"storage_dir"`

	MaxHistoryItems int `yaml:"max_history_items"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`

	ParseCacheTTLSec int `yaml:"parse_cache_ttl_sec"`
}

// RateLimitConfig bounds per-client request rates.
type RateLimitConfig struct {
	WindowSec   int `yaml:"window_sec"`
	MaxRequests int `yaml:"max_requests"`
}

// Window returns the limiter window as a duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSec) * time.Second
}

// ReadTimeout returns the HTTP read timeout.
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSec) * time.Second
}

// WriteTimeout returns the HTTP write timeout.
func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSec) * time.Second
}

// IdleTimeout returns the HTTP idle timeout.
func (c ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSec) * time.Second
}

// ParseCacheTTL returns the parse cache entry lifetime.
func (c ServerConfig) ParseCacheTTL() time.Duration {
	return time.Duration(c.ParseCacheTTLSec) * time.Second
}

// DefaultServerConfig returns the built-in settings.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            "3000",
		Environment:     "development",
		ReadTimeoutSec:  30,
		WriteTimeoutSec: 300, // long enough for held-open STT requests
		IdleTimeoutSec:  120,
		DataDir:         "data",
		StorageDir:      "uploads",
		MaxHistoryItems: 100,
		RateLimit: RateLimitConfig{
			WindowSec:   60,
			MaxRequests: 100,
		},
		ParseCacheTTLSec: 300,
	}
}

// LoadServerConfig builds the server config from defaults, an optional YAML
// file at path (skipped when "" or absent) and environment overrides.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *ServerConfig) {
	if host := os.Getenv("HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		cfg.Environment = env
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if dir := os.Getenv("STORAGE_DIR"); dir != "" {
		cfg.StorageDir = dir
	}
	if v := os.Getenv("MAX_HISTORY_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxHistoryItems = n
		}
	}
}

package configloader

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables that override values from the YAML file.
const (
	EnvConfigPath = "CONFIG_PATH"
	EnvAPIURL     = "API_URL"
	EnvLogLevel   = "LOG_LEVEL"
)

// DefaultPath is used when neither a flag nor CONFIG_PATH names a config file.
const DefaultPath = "config/config.yml"

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
	File   string `yaml:"file"`
}

// ChainAPIConfig holds configuration for the balance/transaction service client.
type ChainAPIConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	TransactionLimit     int    `yaml:"transactionLimit"`
	RateLimit            int    `yaml:"rateLimit"`
	BurstLimit           int    `yaml:"burstLimit"`
}

// RefreshConfig holds the periodic refresh settings.
type RefreshConfig struct {
	IntervalSeconds int `yaml:"intervalSeconds"`
}

// CacheConfig holds configuration for the derived view cache.
type CacheConfig struct {
	DefaultExpirationMinutes int `yaml:"defaultExpirationMinutes"`
	CleanupIntervalMinutes   int `yaml:"cleanupIntervalMinutes"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path"`
	SpecFile string `yaml:"specFile"`
}

// CORSConfig lists the origins allowed to call the API. Empty allows all.
type CORSConfig struct {
	AllowOrigins []string `yaml:"allowOrigins"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	ChainAPI ChainAPIConfig `yaml:"chainAPI"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Cache    CacheConfig    `yaml:"cache"`
	Swagger  SwaggerConfig  `yaml:"swagger"`
	CORS     CORSConfig     `yaml:"cors"`
}

// RequestTimeout returns the chain API request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.ChainAPI.RequestTimeoutMillis) * time.Millisecond
}

// RefreshInterval returns the period of the refresh timer.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Refresh.IntervalSeconds) * time.Second
}

// CacheExpiration returns the default expiration of cached derived views.
func (c *Config) CacheExpiration() time.Duration {
	return time.Duration(c.Cache.DefaultExpirationMinutes) * time.Minute
}

// CacheCleanupInterval returns the purge interval of the derived view cache.
func (c *Config) CacheCleanupInterval() time.Duration {
	return time.Duration(c.Cache.CleanupIntervalMinutes) * time.Minute
}

// ResolvePath picks the config file path: explicit flag value, then CONFIG_PATH, then DefaultPath.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultPath
}

// LoadDotEnv loads a .env file into the process environment if one exists.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			logrus.Warnf("Failed to load env file %s: %v", p, err)
			continue
		}
		logrus.Infof("Loaded environment from %s", p)
	}
}

// Load reads the YAML configuration file from the given path and unmarshals it.
// A missing file is not an error: defaults and environment overrides still apply.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
		logrus.Infof("Loading configuration from path: %s", path)
	case errors.Is(err, os.ErrNotExist):
		logrus.Warnf("Config file %s not found, using defaults", path)
	default:
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.ChainAPI.BaseURL = v
		logrus.Infof("ChainAPI.BaseURL overridden by %s", EnvAPIURL)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.ChainAPI.BaseURL == "" {
		cfg.ChainAPI.BaseURL = "http://localhost:8000"
		logrus.Infof("ChainAPI.BaseURL not set, defaulting to %s", cfg.ChainAPI.BaseURL)
	}
	cfg.ChainAPI.BaseURL = strings.TrimRight(cfg.ChainAPI.BaseURL, "/")
	if cfg.ChainAPI.RequestTimeoutMillis <= 0 {
		cfg.ChainAPI.RequestTimeoutMillis = 10000 // 10 seconds
	}
	if cfg.ChainAPI.TransactionLimit <= 0 {
		cfg.ChainAPI.TransactionLimit = 10
	}
	if cfg.ChainAPI.RateLimit <= 0 {
		cfg.ChainAPI.RateLimit = 10
	}
	if cfg.ChainAPI.BurstLimit <= 0 {
		cfg.ChainAPI.BurstLimit = 20
	}

	if cfg.Refresh.IntervalSeconds <= 0 {
		cfg.Refresh.IntervalSeconds = 30
	}

	if cfg.Cache.DefaultExpirationMinutes <= 0 {
		cfg.Cache.DefaultExpirationMinutes = 5
	}
	if cfg.Cache.CleanupIntervalMinutes <= 0 {
		cfg.Cache.CleanupIntervalMinutes = 10
	}

	if cfg.Swagger.Path == "" {
		cfg.Swagger.Path = "/swagger"
	}
	if cfg.Swagger.SpecFile == "" {
		cfg.Swagger.SpecFile = "./docs/swagger.yaml"
	}
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.ChainAPI.BaseURL, "http://") && !strings.HasPrefix(c.ChainAPI.BaseURL, "https://") {
		return fmt.Errorf("chainAPI.baseURL must be an http(s) URL, got %q", c.ChainAPI.BaseURL)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

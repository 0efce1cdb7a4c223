// Package config loads runtime configuration: built-in defaults, then an
// optional YAML file, then NK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"nebenkosten/internal/domain/plausibility"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// Config is the full runtime configuration.
type Config struct {
	Log          LogConfig          `yaml:"log"`
	Storage      StorageConfig      `yaml:"storage"`
	HTTP         HTTPConfig         `yaml:"http"`
	Plausibility PlausibilityConfig `yaml:"plausibility"`
}

// LogConfig configures pkg/logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// StorageConfig selects the blob store backing the calculation.
type StorageConfig struct {
	Driver       string        `yaml:"driver"`
	Dir          string        `yaml:"dir"`
	DSN          string        `yaml:"dsn"`
	Key          string        `yaml:"key"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// PlausibilityConfig adds rules to, or replaces, the default rule set.
type PlausibilityConfig struct {
	DisableDefaults bool                `yaml:"disable_defaults"`
	Rules           []plausibility.Rule `yaml:"rules"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:       "info",
			Development: false,
		},
		Storage: StorageConfig{
			Driver:       DriverFile,
			Dir:          ".nebenkosten",
			Key:          "nebenkosten-storage",
			WriteTimeout: 5 * time.Second,
		},
		HTTP: HTTPConfig{
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
	}
}

// Load builds the configuration. path may be empty; NK_CONFIG is used then.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("NK_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Log.Level = getEnv("NK_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Development = getEnvBool("NK_DEV", cfg.Log.Development)

	cfg.Storage.Driver = getEnv("NK_STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.Dir = getEnv("NK_STORAGE_DIR", cfg.Storage.Dir)
	cfg.Storage.DSN = getEnv("NK_DATABASE_URL", cfg.Storage.DSN)
	cfg.Storage.Key = getEnv("NK_STORAGE_KEY", cfg.Storage.Key)
	cfg.Storage.WriteTimeout = getEnvDuration("NK_WRITE_TIMEOUT", cfg.Storage.WriteTimeout)

	cfg.HTTP.Port = getEnv("NK_PORT", cfg.HTTP.Port)
	cfg.HTTP.ShutdownTimeout = getEnvDuration("NK_SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout)
}

// Validate checks that the selected storage driver has what it needs.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Storage.Dir == "" {
			return errors.New("config: storage.dir required for file driver")
		}
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("config: storage.dsn required for postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Key == "" {
		return errors.New("config: storage.key required")
	}
	if c.Storage.WriteTimeout <= 0 {
		return errors.New("config: storage.write_timeout must be positive")
	}
	return nil
}

// PlausibilityRules returns the effective rule set.
func (c Config) PlausibilityRules() []plausibility.Rule {
	var rules []plausibility.Rule
	if !c.Plausibility.DisableDefaults {
		rules = append(rules, plausibility.DefaultRules()...)
	}
	return append(rules, c.Plausibility.Rules...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// Package config loads tally's YAML configuration.
//
// A missing key keeps its default, so an empty file is a valid
// configuration: a local SQLite ledger, in-memory pending store with a
// five-minute TTL, and English messages.
//
//	database:
//	  driver: sqlite3          # sqlite3 | sqlite | postgres | postgresql | pq
//	  dsn: ./tally.db
//	pending:
//	  backend: memory          # memory | redis
//	  ttl: 5m
//	  sweep_interval: 1m
//	  redis: {addr: localhost:6379, db: 0, prefix: tally:pending}
//	classifier:
//	  endpoint: https://api.openai.com/v1/chat/completions
//	  model: gpt-4o-mini
//	  api_key_env: OPENAI_API_KEY
//	  timeout: 20s
//	  rate_per_second: 2
//	  burst: 4
//	default_locale: en
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tally/internal/ledger"
	"github.com/roach88/tally/internal/pending"
)

// Pending store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the whole configuration file.
type Config struct {
	Database      DatabaseConfig   `yaml:"database"`
	Pending       PendingConfig    `yaml:"pending"`
	Classifier    ClassifierConfig `yaml:"classifier"`
	DefaultLocale string           `yaml:"default_locale"`
}

// DatabaseConfig selects the ledger database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// PendingConfig configures the pending action store and its sweeper.
type PendingConfig struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	Redis         RedisConfig   `yaml:"redis"`
}

// RedisConfig is used when Backend is "redis".
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// ClassifierConfig configures the chat-completions classifier.
type ClassifierConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	Model         string        `yaml:"model"`
	APIKeyEnv     string        `yaml:"api_key_env"`
	Timeout       time.Duration `yaml:"timeout"`
	RatePerSecond float64       `yaml:"rate_per_second"`
	Burst         int           `yaml:"burst"`
}

// APIKey reads the key from the environment variable named by APIKeyEnv.
func (c ClassifierConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "tally.db",
		},
		Pending: PendingConfig{
			Backend:       BackendMemory,
			TTL:           pending.DefaultTTL,
			SweepInterval: pending.DefaultSweepInterval,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: pending.DefaultRedisPrefix,
			},
		},
		Classifier: ClassifierConfig{
			Endpoint:      "https://api.openai.com/v1/chat/completions",
			Model:         "gpt-4o-mini",
			APIKeyEnv:     "OPENAI_API_KEY",
			Timeout:       20 * time.Second,
			RatePerSecond: 2,
			Burst:         4,
		},
		DefaultLocale: "en",
	}
}

// Load reads path over Default and validates the result. Unknown keys
// are an error.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse is Load over an already-open reader.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error

	if _, err := ledger.ParseDialect(c.Database.Driver); err != nil {
		errs = append(errs, fmt.Errorf("database.driver: %w", err))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn: required"))
	}

	switch c.Pending.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Pending.Redis.Addr == "" {
			errs = append(errs, errors.New("pending.redis.addr: required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("pending.backend: unsupported backend %q", c.Pending.Backend))
	}
	if c.Pending.TTL <= 0 {
		errs = append(errs, errors.New("pending.ttl: must be positive"))
	}
	if c.Pending.SweepInterval <= 0 {
		errs = append(errs, errors.New("pending.sweep_interval: must be positive"))
	} else if c.Pending.SweepInterval >= c.Pending.TTL {
		errs = append(errs, fmt.Errorf("pending.sweep_interval: %s must be shorter than ttl %s",
			c.Pending.SweepInterval, c.Pending.TTL))
	}

	if c.Classifier.RatePerSecond < 0 {
		errs = append(errs, errors.New("classifier.rate_per_second: must not be negative"))
	}
	if c.Classifier.Burst < 0 {
		errs = append(errs, errors.New("classifier.burst: must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

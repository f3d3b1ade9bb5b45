// Package config loads the clevrprog.yaml configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/clevrprog/internal/logging"
	"github.com/aretw0/clevrprog/pkg/corpus"
	"github.com/aretw0/clevrprog/pkg/rewrite"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "clevrprog.yaml"

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheFile   = "file"
)

// Config is the full application configuration.
type Config struct {
	// Catalog is the ontology file path. Empty selects the built-in one.
	Catalog        string   `yaml:"catalog"`
	FactorAttrs    bool     `yaml:"factor_attrs"`
	ChainPrefix    string   `yaml:"chain_prefix"`
	FactorFamilies []string `yaml:"factor_families"`
	BareFamilies   []string `yaml:"bare_families"`

	OutputFormat string `yaml:"output_format"`
	Limit        int    `yaml:"limit"`
	MaxLen       int    `yaml:"max_len"`
	Workers      int    `yaml:"workers"`
	OnError      string `yaml:"on_error"`

	LogLevel string `yaml:"log_level"`

	Cache CacheConfig `yaml:"cache"`
	HTTP  HTTPConfig  `yaml:"http"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend       string        `yaml:"backend"`
	Dir           string        `yaml:"dir"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	Prefix        string        `yaml:"prefix"`
	TTL           time.Duration `yaml:"ttl"`
}

// HTTPConfig configures the conversion service.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		ChainPrefix:  rewrite.DefaultChainPrefix,
		OutputFormat: string(corpus.FormatJSON),
		Limit:        5,
		Workers:      1,
		OnError:      string(corpus.OnErrorAbort),
		LogLevel:     "info",
		Cache: CacheConfig{
			Backend:   CacheNone,
			RedisAddr: "localhost:6379",
		},
		HTTP: HTTPConfig{Port: 8080},
	}
}

// Load reads path over the defaults and validates the result. A missing
// file is not an error when optional is true.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once as an *AggregateError.
func (c Config) Validate() error {
	var errs []error
	add := func(key, reason string, value any) {
		errs = append(errs, &ValidationError{Key: key, Reason: reason, Value: value})
	}

	if _, err := corpus.ParseFormat(c.OutputFormat); err != nil {
		add("output_format", "must be plain, json or yaml", c.OutputFormat)
	}
	if _, err := corpus.ParseErrorPolicy(c.OnError); err != nil {
		add("on_error", "must be abort or skip", c.OnError)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		add("log_level", "must be debug, info, warn or error", c.LogLevel)
	}
	if c.Limit < 0 {
		add("limit", "must not be negative", c.Limit)
	}
	if c.MaxLen < 0 {
		add("max_len", "must not be negative", c.MaxLen)
	}
	if c.Workers < 1 {
		add("workers", "must be at least 1", c.Workers)
	}
	for _, f := range c.FactorFamilies {
		if f == "" {
			add("factor_families", "must not contain empty names", nil)
			break
		}
	}

	switch c.Cache.Backend {
	case "", CacheNone, CacheMemory, CacheFile:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			add("cache.redis_addr", "required for the redis backend", nil)
		}
	default:
		add("cache.backend", "must be none, memory, file or redis", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		add("cache.ttl", "must not be negative", c.Cache.TTL)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		add("http.port", "out of range", c.HTTP.Port)
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

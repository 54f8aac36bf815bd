// Package config assembles process-wide configuration for the chat
// orchestrator from a YAML file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ebl-digital/chat-orchestrator/pkg/shared/stringutil"
)

// Config is the full set of recognized process-wide options.
type Config struct {
	Retrieval       RetrievalConfig       `yaml:"retrieval"`
	Cache           CacheConfig           `yaml:"cache"`
	Disambiguation  DisambiguationConfig  `yaml:"disambiguation"`
	Memory          MemoryConfig          `yaml:"memory"`
	Generative      GenerativeConfig      `yaml:"generative"`
	Fee             FeeConfig             `yaml:"fee"`
	Location        LocationConfig        `yaml:"location"`
	Directory       DirectoryConfig       `yaml:"directory"`
	Orchestrator    OrchestratorConfig    `yaml:"orchestrator"`
	Server          ServerConfig          `yaml:"server"`
}

type RetrievalConfig struct {
	URL       string `yaml:"url"`
	APIKey    string `yaml:"api_key"`
	DefaultKB string `yaml:"default_kb"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type CacheConfig struct {
	TTLSeconds int    `yaml:"ttl_seconds"`
	RedisAddr  string `yaml:"redis_addr"`
}

type DisambiguationConfig struct {
	TTLSeconds int    `yaml:"ttl_seconds"`
	RedisAddr  string `yaml:"redis_addr"`
}

type MemoryConfig struct {
	ConnectionString string `yaml:"connection_string"`
	FallbackCapacity int    `yaml:"fallback_capacity"`
}

type GenerativeConfig struct {
	Model          string  `yaml:"model"`
	FallbackModel  string  `yaml:"fallback_model"`
	Temperature    float64 `yaml:"temperature"`
	Stream         bool    `yaml:"stream"`
	AnthropicKey   string  `yaml:"anthropic_api_key"`
	OpenAIKey      string  `yaml:"openai_api_key"`
}

type FeeConfig struct {
	URL       string `yaml:"url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type LocationConfig struct {
	URL       string `yaml:"url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type DirectoryConfig struct {
	ConnectionString string `yaml:"connection_string"`
}

type OrchestratorConfig struct {
	MaxHistoryTurns  int `yaml:"max_history_turns"`
	PerCallTimeoutMs int `yaml:"per_call_timeout_ms"`
	RetryCount       int `yaml:"retry_count"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// WithDefaults fills in zero-valued fields with deployment defaults.
func (c *Config) WithDefaults() *Config {
	if c == nil {
		c = &Config{}
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = 3600
	}
	if c.Disambiguation.TTLSeconds <= 0 {
		c.Disambiguation.TTLSeconds = 600
	}
	if c.Memory.FallbackCapacity <= 0 {
		c.Memory.FallbackCapacity = 200
	}
	if c.Orchestrator.MaxHistoryTurns <= 0 {
		c.Orchestrator.MaxHistoryTurns = 20
	}
	if c.Orchestrator.PerCallTimeoutMs <= 0 {
		c.Orchestrator.PerCallTimeoutMs = 8000
	}
	if c.Orchestrator.RetryCount <= 0 {
		c.Orchestrator.RetryCount = 1
	}
	if c.Retrieval.TimeoutMs <= 0 {
		c.Retrieval.TimeoutMs = 10000
	}
	if c.Fee.TimeoutMs <= 0 {
		c.Fee.TimeoutMs = 5000
	}
	if c.Location.TimeoutMs <= 0 {
		c.Location.TimeoutMs = 5000
	}
	if c.Retrieval.DefaultKB == "" {
		c.Retrieval.DefaultKB = "policy"
	}
	if c.Generative.Model == "" {
		c.Generative.Model = "claude-sonnet-4-5"
	}
	if c.Generative.FallbackModel == "" {
		c.Generative.FallbackModel = "gpt-4.1"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	return c
}

// CacheTTL returns the configured cache TTL as a duration.
func (c CacheConfig) CacheTTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// DisambiguationTTL returns the configured disambiguation TTL as a duration.
func (c DisambiguationConfig) DisambiguationTTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Load reads a YAML config file, if present, then applies environment
// overrides on top of it.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}
	ApplyEnvOverrides(cfg)
	return cfg.WithDefaults(), nil
}

// ApplyEnvOverrides overlays environment variables onto cfg; env wins
// over file values.
func ApplyEnvOverrides(cfg *Config) {
	cfg.Retrieval.URL = envOr(cfg.Retrieval.URL, "RETRIEVAL_URL")
	cfg.Retrieval.APIKey = envOr(cfg.Retrieval.APIKey, "RETRIEVAL_API_KEY")
	cfg.Retrieval.DefaultKB = envOr(cfg.Retrieval.DefaultKB, "RETRIEVAL_DEFAULT_KB")
	cfg.Retrieval.TimeoutMs = envOrInt(cfg.Retrieval.TimeoutMs, "RETRIEVAL_TIMEOUT_MS")

	cfg.Cache.TTLSeconds = envOrInt(cfg.Cache.TTLSeconds, "CACHE_TTL_SECONDS")
	cfg.Cache.RedisAddr = envOr(cfg.Cache.RedisAddr, "CACHE_REDIS_ADDR")

	cfg.Disambiguation.TTLSeconds = envOrInt(cfg.Disambiguation.TTLSeconds, "DISAMBIGUATION_TTL_SECONDS")
	cfg.Disambiguation.RedisAddr = envOr(cfg.Disambiguation.RedisAddr, "DISAMBIGUATION_REDIS_ADDR")

	cfg.Memory.ConnectionString = envOr(cfg.Memory.ConnectionString, "MEMORY_CONNECTION_STRING")
	cfg.Memory.FallbackCapacity = envOrInt(cfg.Memory.FallbackCapacity, "MEMORY_FALLBACK_CAPACITY")

	cfg.Generative.Model = envOr(cfg.Generative.Model, "GENERATIVE_MODEL")
	cfg.Generative.FallbackModel = envOr(cfg.Generative.FallbackModel, "GENERATIVE_FALLBACK_MODEL")
	cfg.Generative.AnthropicKey = envOr(cfg.Generative.AnthropicKey, "ANTHROPIC_API_KEY")
	cfg.Generative.OpenAIKey = envOr(cfg.Generative.OpenAIKey, "OPENAI_API_KEY")

	cfg.Fee.URL = envOr(cfg.Fee.URL, "FEE_URL")
	cfg.Location.URL = envOr(cfg.Location.URL, "LOCATION_URL")
	cfg.Directory.ConnectionString = envOr(cfg.Directory.ConnectionString, "DIRECTORY_CONNECTION_STRING")

	cfg.Orchestrator.MaxHistoryTurns = envOrInt(cfg.Orchestrator.MaxHistoryTurns, "ORCHESTRATOR_MAX_HISTORY_TURNS")
	cfg.Orchestrator.PerCallTimeoutMs = envOrInt(cfg.Orchestrator.PerCallTimeoutMs, "ORCHESTRATOR_PER_CALL_TIMEOUT_MS")
	cfg.Orchestrator.RetryCount = envOrInt(cfg.Orchestrator.RetryCount, "ORCHESTRATOR_RETRY_COUNT")

	cfg.Server.Addr = envOr(cfg.Server.Addr, "SERVER_ADDR")
}

func envOr(existing, key string) string {
	return stringutil.EnvOr(existing, os.Getenv(key))
}

func envOrInt(existing int, key string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return existing
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return existing
	}
	return n
}

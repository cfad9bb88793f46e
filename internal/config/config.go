// Package config loads the scribe YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/scribe/pkg/adapters/llm"
	"github.com/aretw0/scribe/pkg/flows"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the file looked up when no --config flag is given.
const DefaultPath = "scribe.yaml"

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the full application configuration.
type Config struct {
	Models flows.Models `yaml:"models"`
	LLM    LLM          `yaml:"llm"`
	Cache  Cache        `yaml:"cache"`
	Tools  Tools        `yaml:"tools"`
	Post   Post         `yaml:"post"`
	Server Server       `yaml:"server"`
}

// LLM holds the chat model settings.
type LLM struct {
	Timeout     string                  `yaml:"timeout"`
	Temperature *float32                `yaml:"temperature"`
	MaxTokens   int                     `yaml:"max_tokens"`
	Providers   map[string]llm.Provider `yaml:"providers"`
}

// Cache selects where model responses are memoized.
type Cache struct {
	Backend string `yaml:"backend"`
	TTL     string `yaml:"ttl"`
	Redis   Redis  `yaml:"redis"`
	// EncryptionKeyEnv names the variable holding the AES-256 key that
	// encrypts cached responses. FallbackKeyEnvs hold rotated-out keys.
	EncryptionKeyEnv string   `yaml:"encryption_key_env"`
	FallbackKeyEnvs  []string `yaml:"fallback_key_envs"`
}

// Redis is the connection of the redis cache backend.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Tools points at an optional external tools file.
type Tools struct {
	File string `yaml:"file"`
}

// Post holds the defaults of the post command.
type Post struct {
	MaxCharacterCount int  `yaml:"max_character_count"`
	Copy              bool `yaml:"copy"`
	Save              bool `yaml:"save"`
}

// Server configures the HTTP server.
type Server struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Models: flows.DefaultModels(),
		LLM: LLM{
			Timeout: "120s",
		},
		Cache: Cache{
			Backend: CacheNone,
			TTL:     "24h",
			Redis: Redis{
				Addr:   "localhost:6379",
				Prefix: "scribe:",
			},
		},
		Tools: Tools{File: "tools.yaml"},
		Post: Post{
			MaxCharacterCount: flows.DefaultMaxCharacterCount,
			Copy:              true,
			Save:              true,
		},
		Server: Server{Addr: ":8080"},
	}
}

// Load reads path over the defaults. A missing file yields Default().
// Relative tool file paths are resolved against the config directory.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	cfg.Models = cfg.Models.Or(flows.DefaultModels())
	if cfg.Tools.File != "" && !filepath.IsAbs(cfg.Tools.File) {
		cfg.Tools.File = filepath.Join(filepath.Dir(path), cfg.Tools.File)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := parseDuration("llm.timeout", c.LLM.Timeout); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseDuration("cache.ttl", c.Cache.TTL); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Cache.Backend) {
	case "", CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend: unknown backend %q (want none, memory or redis)", c.Cache.Backend))
	}
	if c.Post.MaxCharacterCount < 0 {
		errs = append(errs, fmt.Errorf("post.max_character_count must not be negative, got %d", c.Post.MaxCharacterCount))
	}
	for name, p := range c.LLM.Providers {
		switch p.API {
		case llm.APIOpenAI, llm.APIClaude, llm.APIOllama:
		default:
			errs = append(errs, fmt.Errorf("llm.providers.%s: unknown api %q", name, p.API))
		}
	}
	return errors.Join(errs...)
}

// LLMConfig converts the llm section for the model resolver.
func (c Config) LLMConfig() (llm.Config, error) {
	timeout, err := parseDuration("llm.timeout", c.LLM.Timeout)
	if err != nil {
		return llm.Config{}, err
	}
	return llm.Config{
		Timeout:     timeout,
		Temperature: c.LLM.Temperature,
		MaxTokens:   c.LLM.MaxTokens,
		Providers:   c.LLM.Providers,
	}, nil
}

// CacheTTL returns the parsed cache entry lifetime; zero means no expiry.
func (c Config) CacheTTL() (time.Duration, error) {
	return parseDuration("cache.ttl", c.Cache.TTL)
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", field, s, err)
	}
	return d, nil
}

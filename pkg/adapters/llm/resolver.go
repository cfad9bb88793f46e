package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// API identifies the wire protocol spoken by a provider.
type API string

const (
	APIOpenAI API = "openai" // OpenAI-compatible chat completions
	APIClaude API = "claude"
	APIOllama API = "ollama"
)

var (
	// ErrInvalidModelID is returned for identifiers not in "provider/model" form.
	ErrInvalidModelID = errors.New("invalid model identifier")
	// ErrUnknownProvider is returned for providers with no configuration.
	ErrUnknownProvider = errors.New("unknown model provider")
	// ErrMissingAPIKey is returned when the provider key variable is unset.
	ErrMissingAPIKey = errors.New("missing API key")
)

// Provider describes how to reach one model vendor.
type Provider struct {
	API       API    `yaml:"api" mapstructure:"api"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	APIKeyEnv string `yaml:"api_key_env" mapstructure:"api_key_env"`
}

// Config holds generation settings shared by every model.
type Config struct {
	Timeout     time.Duration
	Temperature *float32
	MaxTokens   int
	Providers   map[string]Provider
}

// DefaultProviders returns the built-in provider table.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		"gemini": {
			API:       APIOpenAI,
			BaseURL:   "https://generativelanguage.googleapis.com/v1beta/openai/",
			APIKeyEnv: "GEMINI_API_KEY",
		},
		"openrouter": {
			API:       APIOpenAI,
			BaseURL:   "https://openrouter.ai/api/v1",
			APIKeyEnv: "OPENROUTER_API_KEY",
		},
		"openai": {
			API:       APIOpenAI,
			BaseURL:   "https://api.openai.com/v1",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		"deepseek": {
			API:       APIOpenAI,
			BaseURL:   "https://api.deepseek.com",
			APIKeyEnv: "DEEPSEEK_API_KEY",
		},
		"anthropic": {
			API:       APIClaude,
			APIKeyEnv: "ANTHROPIC_API_KEY",
		},
		"ollama": {
			API:     APIOllama,
			BaseURL: "http://localhost:11434",
		},
	}
}

// ParseID splits "provider/model" at the first slash. The model part may
// itself contain slashes, as in "openrouter/deepseek/deepseek-r1".
func ParseID(id string) (provider, name string, err error) {
	provider, name, ok := strings.Cut(strings.TrimSpace(id), "/")
	if !ok || provider == "" || name == "" {
		return "", "", fmt.Errorf("%w: %q (expected provider/model)", ErrInvalidModelID, id)
	}
	return strings.ToLower(provider), name, nil
}

// Resolver builds chat models on demand and reuses them per identifier.
// Safe for concurrent use.
type Resolver struct {
	cfg    Config
	getenv func(string) string
	build  func(ctx context.Context, p Provider, key, name string, cfg Config) (model.BaseChatModel, error)

	mu     sync.Mutex
	models map[string]model.BaseChatModel
}

// NewResolver creates a resolver. Providers in cfg extend or override
// DefaultProviders.
func NewResolver(cfg Config) *Resolver {
	providers := DefaultProviders()
	for name, p := range cfg.Providers {
		providers[strings.ToLower(name)] = p
	}
	cfg.Providers = providers

	return &Resolver{
		cfg:    cfg,
		getenv: os.Getenv,
		build:  newChatModel,
		models: make(map[string]model.BaseChatModel),
	}
}

// Providers lists the configured provider names, sorted.
func (r *Resolver) Providers() []string {
	names := make([]string, 0, len(r.cfg.Providers))
	for name := range r.cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ChatModel returns the model for id, creating it on first use.
func (r *Resolver) ChatModel(ctx context.Context, id string) (model.BaseChatModel, error) {
	providerName, name, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.models[id]; ok {
		return m, nil
	}

	p, ok := r.cfg.Providers[providerName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, providerName)
	}

	var key string
	if p.APIKeyEnv != "" {
		key = r.getenv(p.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("%w: set %s to use %s models", ErrMissingAPIKey, p.APIKeyEnv, providerName)
		}
	}

	m, err := r.build(ctx, p, key, name, r.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s model %q: %w", providerName, name, err)
	}
	r.models[id] = m
	return m, nil
}

func newChatModel(ctx context.Context, p Provider, key, name string, cfg Config) (model.BaseChatModel, error) {
	switch p.API {
	case APIOpenAI, "":
		var maxTokens *int
		if cfg.MaxTokens > 0 {
			maxTokens = &cfg.MaxTokens
		}
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:     p.BaseURL,
			APIKey:      key,
			Model:       name,
			Temperature: cfg.Temperature,
			MaxTokens:   maxTokens,
			Timeout:     cfg.Timeout,
		})
	case APIClaude:
		maxTokens := cfg.MaxTokens
		if maxTokens == 0 {
			maxTokens = 8192
		}
		var baseURL *string
		if p.BaseURL != "" {
			baseURL = &p.BaseURL
		}
		return claude.NewChatModel(ctx, &claude.Config{
			BaseURL:     baseURL,
			APIKey:      key,
			Model:       name,
			Temperature: cfg.Temperature,
			MaxTokens:   maxTokens,
		})
	case APIOllama:
		return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: p.BaseURL,
			Model:   name,
		})
	default:
		return nil, fmt.Errorf("unsupported provider api %q", p.API)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/scribe/pkg/adapters/llm"
	"github.com/aretw0/scribe/pkg/flows"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scribe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, flows.DefaultWritingModel, cfg.Models.Writing)
	assert.Equal(t, 3000, cfg.Post.MaxCharacterCount)
	assert.True(t, cfg.Post.Save)
	assert.True(t, cfg.Post.Copy)
}

func TestLoad_OverridesOnlyGivenFields(t *testing.T) {
	path := writeConfig(t, `
models:
  writing: anthropic/claude-sonnet-4
llm:
  timeout: 30s
  temperature: 0.2
  providers:
    local:
      api: ollama
      base_url: http://gpu-box:11434
cache:
  backend: redis
  redis:
    addr: redis:6379
    db: 2
tools:
  file: tools.yaml
post:
  save: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic/claude-sonnet-4", cfg.Models.Writing)
	assert.Equal(t, flows.DefaultCleaningModel, cfg.Models.Cleaning)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)
	assert.Equal(t, "scribe:", cfg.Cache.Redis.Prefix)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "tools.yaml"), cfg.Tools.File)
	assert.False(t, cfg.Post.Save)
	assert.True(t, cfg.Post.Copy)

	llmCfg, err := cfg.LLMConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, llmCfg.Timeout)
	require.NotNil(t, llmCfg.Temperature)
	assert.InDelta(t, 0.2, *llmCfg.Temperature, 1e-6)
	assert.Equal(t, llm.Provider{API: llm.APIOllama, BaseURL: "http://gpu-box:11434"}, llmCfg.Providers["local"])
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "models: [", "failed to parse"},
		{"bad timeout", "llm:\n  timeout: soon\n", "llm.timeout"},
		{"unknown backend", "cache:\n  backend: memcached\n", "unknown backend"},
		{"unknown api", "llm:\n  providers:\n    x:\n      api: grpc\n", "unknown api"},
		{"negative max", "post:\n  max_character_count: -1\n", "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCacheTTL(t *testing.T) {
	cfg := Default()
	ttl, err := cfg.CacheTTL()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)

	cfg.Cache.TTL = ""
	ttl, err = cfg.CacheTTL()
	require.NoError(t, err)
	assert.Zero(t, ttl)
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	return filepath.Join(dir, "stylequiz")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	gw := cfg.Gateway()
	assert.Equal(t, "http://localhost:8787", gw.BaseURL)
	assert.Equal(t, 3, gw.Retry.MaxAttempts)
	assert.False(t, cfg.LLMSettings().Enabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
api:
  base_url: https://learn.example.com/api
  timeout: 5s
  retry:
    max_attempts: 5
log:
  level: debug
llm:
  provider: gemini
  api_key: file-key
`), 0o644))
	t.Setenv("STYLEQUIZ_API_TIMEOUT", "20s")
	t.Setenv("STYLEQUIZ_LOG_FORMAT", "json")

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "https://learn.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.API.Timeout, "env overrides file")
	assert.Equal(t, 5, cfg.API.Retry.MaxAttempts)
	assert.Equal(t, 300*time.Millisecond, cfg.API.Retry.InitialWait, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	lc := cfg.LLMSettings()
	assert.Equal(t, "gemini", lc.Provider)
	assert.Equal(t, "file-key", lc.APIKey)
	assert.Equal(t, "gemini-flash", lc.ModelName())
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api: [unclosed"), 0o644))

	_, err := Load(New())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		edit func(*Config)
		want string
	}{
		{"relative url", func(c *Config) { c.API.BaseURL = "/api" }, "api.base_url"},
		{"ftp url", func(c *Config) { c.API.BaseURL = "ftp://host" }, "api.base_url"},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, "api.timeout"},
		{"no attempts", func(c *Config) { c.API.Retry.MaxAttempts = 0 }, "max_attempts"},
		{"shrinking backoff", func(c *Config) { c.API.Retry.Multiplier = 0.5 }, "multiplier"},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"llm key", func(c *Config) { c.LLM.Provider = "anthropic" }, "llm.api_key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestYAML_MasksKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "sk-abcdefghijklmnop"

	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "sk-abcdefghijklmnop")
	assert.True(t, strings.Contains(string(out), "timeout: 10s"), "durations render as strings:\n%s", out)

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Contains(t, back, "api")
	assert.Equal(t, "sk-abcdefghijklmnop", cfg.LLM.APIKey, "original config untouched")
}

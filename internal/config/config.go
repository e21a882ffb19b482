// Package config loads stylequiz settings from flags, STYLEQUIZ_* environment
// variables and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/stylequiz/internal/gateway"
	"github.com/abhisek/stylequiz/internal/llm"
	"github.com/abhisek/stylequiz/internal/logging"
)

// EnvPrefix prefixes every environment variable, e.g. STYLEQUIZ_API_BASE_URL.
const EnvPrefix = "STYLEQUIZ"

// Config is the effective configuration.
type Config struct {
	API APIConfig `yaml:"api"`
	DB  string    `yaml:"db"` // empty uses the XDG data dir
	Log LogConfig `yaml:"log"`
	LLM LLMConfig `yaml:"llm"`
}

// APIConfig is the learning platform connection.
type APIConfig struct {
	BaseURL         string        `yaml:"base_url"`
	Timeout         time.Duration `yaml:"timeout"`
	Retry           RetryConfig   `yaml:"retry"`
	SubjectCacheTTL time.Duration `yaml:"subject_cache_ttl"`
}

// RetryConfig is shared by the platform client and the LLM provider.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// LogConfig selects level, format and destination. An empty File logs to
// stylequiz.log in the data dir, since the TUI owns the terminal.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// LLMConfig selects the provider used for study tips.
type LLMConfig struct {
	Provider string        `yaml:"provider"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	Retry    RetryConfig   `yaml:"retry"`
}

// DefaultConfig mirrors the package defaults of gateway and llm.
func DefaultConfig() Config {
	gw := gateway.DefaultConfig()
	lc := llm.DefaultConfig()
	return Config{
		API: APIConfig{
			BaseURL: gw.BaseURL,
			Timeout: gw.Timeout,
			Retry: RetryConfig{
				MaxAttempts: gw.Retry.MaxAttempts,
				InitialWait: gw.Retry.InitialWait,
				MaxWait:     gw.Retry.MaxWait,
				Multiplier:  gw.Retry.Multiplier,
			},
			SubjectCacheTTL: gw.SubjectCacheTTL,
		},
		Log: LogConfig{Level: "info", Format: "text"},
		LLM: LLMConfig{
			Timeout: lc.Timeout,
			Retry: RetryConfig{
				MaxAttempts: lc.Retry.MaxAttempts,
				InitialWait: lc.Retry.InitialWait,
				MaxWait:     lc.Retry.MaxWait,
				Multiplier:  lc.Retry.Multiplier,
			},
		},
	}
}

// New returns a viper instance with defaults, env binding and the config
// file search path set. Flags are bound by the caller.
func New() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()
	for key, val := range map[string]any{
		"api.base_url":           d.API.BaseURL,
		"api.timeout":            d.API.Timeout,
		"api.retry.max_attempts": d.API.Retry.MaxAttempts,
		"api.retry.initial_wait": d.API.Retry.InitialWait,
		"api.retry.max_wait":     d.API.Retry.MaxWait,
		"api.retry.multiplier":   d.API.Retry.Multiplier,
		"api.subject_cache_ttl":  d.API.SubjectCacheTTL,
		"db":                     d.DB,
		"log.level":              d.Log.Level,
		"log.format":             d.Log.Format,
		"log.file":               d.Log.File,
		"llm.provider":           d.LLM.Provider,
		"llm.api_key":            d.LLM.APIKey,
		"llm.model":              d.LLM.Model,
		"llm.base_url":           d.LLM.BaseURL,
		"llm.timeout":            d.LLM.Timeout,
		"llm.retry.max_attempts": d.LLM.Retry.MaxAttempts,
		"llm.retry.initial_wait": d.LLM.Retry.InitialWait,
		"llm.retry.max_wait":     d.LLM.Retry.MaxWait,
		"llm.retry.multiplier":   d.LLM.Retry.Multiplier,
	} {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := Dir(); err == nil {
		v.AddConfigPath(dir)
	}
	return v
}

// Dir is $XDG_CONFIG_HOME/stylequiz, or ~/.config/stylequiz.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "stylequiz"), nil
}

// Load reads the config file if there is one and returns the validated
// effective config. A missing file is not an error; a malformed one is.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		API: APIConfig{
			BaseURL:         v.GetString("api.base_url"),
			Timeout:         v.GetDuration("api.timeout"),
			Retry:           retryFrom(v, "api.retry"),
			SubjectCacheTTL: v.GetDuration("api.subject_cache_ttl"),
		},
		DB: v.GetString("db"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			File:   v.GetString("log.file"),
		},
		LLM: LLMConfig{
			Provider: v.GetString("llm.provider"),
			APIKey:   v.GetString("llm.api_key"),
			Model:    v.GetString("llm.model"),
			BaseURL:  v.GetString("llm.base_url"),
			Timeout:  v.GetDuration("llm.timeout"),
			Retry:    retryFrom(v, "llm.retry"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func retryFrom(v *viper.Viper, prefix string) RetryConfig {
	return RetryConfig{
		MaxAttempts: v.GetInt(prefix + ".max_attempts"),
		InitialWait: v.GetDuration(prefix + ".initial_wait"),
		MaxWait:     v.GetDuration(prefix + ".max_wait"),
		Multiplier:  v.GetFloat64(prefix + ".multiplier"),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("api.base_url %q must be an absolute http(s) URL", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api.timeout must be positive"))
	}
	if c.API.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("api.retry.max_attempts must be at least 1"))
	}
	if c.API.Retry.Multiplier < 1 {
		errs = append(errs, errors.New("api.retry.multiplier must be at least 1"))
	}
	if c.API.SubjectCacheTTL < 0 {
		errs = append(errs, errors.New("api.subject_cache_ttl must not be negative"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	if err := c.LLMSettings().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Gateway is the platform client config.
func (c Config) Gateway() gateway.Config {
	return gateway.Config{
		BaseURL: c.API.BaseURL,
		Timeout: c.API.Timeout,
		Retry: gateway.RetryConfig{
			MaxAttempts: c.API.Retry.MaxAttempts,
			InitialWait: c.API.Retry.InitialWait,
			MaxWait:     c.API.Retry.MaxWait,
			Multiplier:  c.API.Retry.Multiplier,
		},
		SubjectCacheTTL: c.API.SubjectCacheTTL,
	}
}

// LLMSettings is the provider config. When no provider is set, vendor API
// key variables such as GEMINI_API_KEY are probed.
func (c Config) LLMSettings() llm.Config {
	return llm.Discover(llm.Config{
		Provider: c.LLM.Provider,
		APIKey:   c.LLM.APIKey,
		Model:    c.LLM.Model,
		BaseURL:  c.LLM.BaseURL,
		Timeout:  c.LLM.Timeout,
		Retry: llm.RetryConfig{
			MaxAttempts: c.LLM.Retry.MaxAttempts,
			InitialWait: c.LLM.Retry.InitialWait,
			MaxWait:     c.LLM.Retry.MaxWait,
			Multiplier:  c.LLM.Retry.Multiplier,
		},
	})
}

// Logging is the logger config; the caller supplies the output.
func (c Config) Logging() logging.LogConfig {
	return logging.LogConfig{Level: c.Log.Level, Format: c.Log.Format}
}

// YAML renders c for display with secrets masked.
func (c Config) YAML() ([]byte, error) {
	if c.LLM.APIKey != "" {
		c.LLM.APIKey = logging.MaskToken(c.LLM.APIKey)
	}
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("render config: %w", err)
	}
	return out, nil
}

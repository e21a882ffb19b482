package llm

import "testing"

func TestConfig_Validate(t *testing.T) {
	base := DefaultConfig()
	tests := []struct {
		name    string
		edit    func(*Config)
		wantErr bool
	}{
		{"disabled", func(c *Config) {}, false},
		{"mock", func(c *Config) { c.Provider = ProviderMock }, false},
		{"keyed", func(c *Config) { c.Provider = ProviderGemini; c.APIKey = "k" }, false},
		{"missing key", func(c *Config) { c.Provider = ProviderAnthropic }, true},
		{"unknown", func(c *Config) { c.Provider = "llama"; c.APIKey = "k" }, true},
		{"no attempts", func(c *Config) { c.Provider = ProviderOpenAI; c.APIKey = "k"; c.Retry.MaxAttempts = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.edit(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDiscover(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	if got := Discover(DefaultConfig()); got.Enabled() {
		t.Fatalf("Discover with no keys enabled %q", got.Provider)
	}

	t.Setenv("ANTHROPIC_API_KEY", "a-key")
	t.Setenv("OPENAI_API_KEY", "o-key")
	got := Discover(DefaultConfig())
	if got.Provider != ProviderOpenAI || got.APIKey != "o-key" {
		t.Errorf("Discover = %s/%s, want openai/o-key", got.Provider, got.APIKey)
	}
	if got.ModelName() != "gpt-4o-mini" {
		t.Errorf("ModelName = %q", got.ModelName())
	}

	explicit := DefaultConfig()
	explicit.Provider = ProviderMock
	if got := Discover(explicit); got.Provider != ProviderMock {
		t.Errorf("Discover overrode explicit provider: %q", got.Provider)
	}
}

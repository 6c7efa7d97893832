package llm

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != "mock" {
		t.Fatalf("expected mock provider by default, got %q", cfg.Provider)
	}
	if cfg.Anthropic.Model != "claude-haiku" || cfg.OpenAI.Model != "gpt-4o-mini" || cfg.Gemini.Model != "gemini-flash" {
		t.Fatalf("unexpected default models: %+v", cfg)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.InitialWait != time.Second || cfg.Retry.Multiplier != 2 {
		t.Fatalf("unexpected retry defaults: %+v", cfg.Retry)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %s", cfg.Timeout)
	}
	if cfg.Anthropic.APIKey != "" {
		t.Fatal("defaults must not read the environment")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("INTERVIEW_LLM_PROVIDER", "openai")
	t.Setenv("INTERVIEW_LLM_OPENAI_MODEL", "gpt-4o")
	t.Setenv("INTERVIEW_LLM_RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("OPENAI_API_KEY", "sk-vendor")
	t.Setenv("INTERVIEW_LLM_GEMINI_API_KEY", "g-explicit")
	t.Setenv("GEMINI_API_KEY", "g-vendor")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != "openai" || cfg.OpenAI.Model != "gpt-4o" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Retry.MaxAttempts != 5 {
		t.Fatalf("expected 5 attempts, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.OpenAI.APIKey != "sk-vendor" {
		t.Fatalf("expected vendor key fallback, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.Gemini.APIKey != "g-explicit" {
		t.Fatalf("explicit key should win, got %q", cfg.Gemini.APIKey)
	}
}

func TestConfigFromEnv_BadDuration(t *testing.T) {
	t.Setenv("INTERVIEW_LLM_TIMEOUT", "soon")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConfig_Validate(t *testing.T) {
	withKeys := DefaultConfig()
	withKeys.Anthropic.APIKey = "sk-test"
	withKeys.OpenAI.APIKey = "sk-test"

	tests := []struct {
		name     string
		provider string
		cfg      Config
		wantErr  string
	}{
		{"anthropic without key", "anthropic", DefaultConfig(), "INTERVIEW_LLM_ANTHROPIC_API_KEY"},
		{"anthropic with key", "anthropic", withKeys, ""},
		{"openai without key", "openai", DefaultConfig(), "INTERVIEW_LLM_OPENAI_API_KEY"},
		{"openai with key", "openai", withKeys, ""},
		{"openrouter without key", "openrouter", DefaultConfig(), "OPENROUTER_API_KEY"},
		{"mock needs no key", "mock", DefaultConfig(), ""},
		{"unknown provider", "unknown", DefaultConfig(), "unknown LLM provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.Provider = tt.provider
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

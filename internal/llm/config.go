package llm

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every LLM environment variable.
const EnvPrefix = "INTERVIEW_LLM_"

// Config holds all LLM provider configuration. Field tags name the
// environment variables relative to EnvPrefix.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "openrouter", "mock".
	Provider string `env:"PROVIDER" envDefault:"mock"`

	Anthropic  AnthropicConfig  `envPrefix:"ANTHROPIC_"`
	OpenAI     OpenAIConfig     `envPrefix:"OPENAI_"`
	Gemini     GeminiConfig     `envPrefix:"GEMINI_"`
	OpenRouter OpenRouterConfig `envPrefix:"OPENROUTER_"`
	Retry      RetryConfig      `envPrefix:"RETRY_"`

	// Timeout bounds one request including retries.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// The API keys fall back to the vendors' conventional variables.

type AnthropicConfig struct {
	APIKey string `env:"API_KEY" envDefault:"${ANTHROPIC_API_KEY}" envExpand:"true"`
	Model  string `env:"MODEL" envDefault:"claude-haiku"`
}

type OpenAIConfig struct {
	APIKey  string `env:"API_KEY" envDefault:"${OPENAI_API_KEY}" envExpand:"true"`
	Model   string `env:"MODEL" envDefault:"gpt-4o-mini"`
	BaseURL string `env:"BASE_URL"`
}

type GeminiConfig struct {
	APIKey string `env:"API_KEY" envDefault:"${GEMINI_API_KEY}" envExpand:"true"`
	Model  string `env:"MODEL" envDefault:"gemini-flash"`
}

type OpenRouterConfig struct {
	APIKey  string `env:"API_KEY" envDefault:"${OPENROUTER_API_KEY}" envExpand:"true"`
	Model   string `env:"MODEL" envDefault:"google/gemini-2.0-flash-001"`
	BaseURL string `env:"BASE_URL"`
}

// RetryConfig configures backoff for transient provider failures.
type RetryConfig struct {
	MaxAttempts int           `env:"MAX_ATTEMPTS" envDefault:"3"`
	InitialWait time.Duration `env:"INITIAL_WAIT" envDefault:"1s"`
	MaxWait     time.Duration `env:"MAX_WAIT" envDefault:"10s"`
	Multiplier  float64       `env:"MULTIPLIER" envDefault:"2"`
}

// DefaultConfig returns the tag defaults without consulting the environment.
func DefaultConfig() Config {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("llm: bad config defaults: %v", err))
	}
	return cfg
}

// ConfigFromEnv reads Config from INTERVIEW_LLM_* variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse LLM env: %w", err)
	}
	return cfg, nil
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	var key, name string
	switch c.Provider {
	case "anthropic":
		key, name = c.Anthropic.APIKey, "ANTHROPIC"
	case "openai":
		key, name = c.OpenAI.APIKey, "OPENAI"
	case "gemini":
		key, name = c.Gemini.APIKey, "GEMINI"
	case "openrouter":
		key, name = c.OpenRouter.APIKey, "OPENROUTER"
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s%s_API_KEY (or %s_API_KEY) is required for the %s provider", EnvPrefix, name, name, c.Provider)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%sRETRY_MAX_ATTEMPTS must be at least 1", EnvPrefix)
	}
	return nil
}

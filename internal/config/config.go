// Package config loads runtime settings from INTERVIEW_* environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/abhisek/interview/internal/feedback"
	"github.com/abhisek/interview/internal/llm"
	"github.com/abhisek/interview/internal/speech"
)

// Prefix is prepended to every variable name below.
const Prefix = "INTERVIEW_"

// Config is the full application configuration.
type Config struct {
	// QuestionsFile is a JSON or YAML entry payload. Empty or missing
	// files start the interview with a single blank question.
	QuestionsFile string `env:"QUESTIONS"`

	// DBPath overrides the local event database location.
	DBPath string `env:"DB"`

	// LogFile receives logs while the TUI owns the terminal.
	LogFile  string     `env:"LOG_FILE"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	API    APIConfig    `envPrefix:"API_"`
	Speech SpeechConfig `envPrefix:"SPEECH_"`
	Serve  ServeConfig  `envPrefix:"SERVE_"`
	LLM    llm.Config   `envPrefix:"LLM_"`
}

// APIConfig points at the feedback service.
type APIConfig struct {
	URL          string        `env:"URL" envDefault:"http://127.0.0.1:3000"`
	GeneratePath string        `env:"GENERATE_PATH" envDefault:"/v1/exam/genrateFeedback"`
	StorePath    string        `env:"STORE_PATH" envDefault:"/v1/exam/store"`
	FetchPath    string        `env:"FETCH_PATH" envDefault:"/v1/exam/feedback"`
	Token        string        `env:"TOKEN"`
	TokenFile    string        `env:"TOKEN_FILE"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"30s"`
	MaxAttempts  int           `env:"MAX_ATTEMPTS" envDefault:"3"`
}

// Feedback returns the client configuration.
func (a APIConfig) Feedback() feedback.Config {
	return feedback.Config{
		BaseURL:      a.URL,
		GeneratePath: a.GeneratePath,
		StorePath:    a.StorePath,
		FetchPath:    a.FetchPath,
		Timeout:      a.Timeout,
	}
}

// Tokens returns the token source. A token file wins over an inline token
// and is re-read on every request.
func (a APIConfig) Tokens() feedback.TokenSource {
	if a.TokenFile != "" {
		return feedback.FileToken{Path: a.TokenFile}
	}
	return feedback.StaticToken(a.Token)
}

// SpeechConfig selects how dictation captures and transcribes audio.
type SpeechConfig struct {
	// Provider is "openai", "gemini" or "mock".
	Provider string `env:"PROVIDER" envDefault:"openai"`
	Locale   string `env:"LOCALE" envDefault:"en-US"`

	// Command is the recorder command line. Empty uses arecord.
	Command []string `env:"COMMAND" envSeparator:" "`

	// File replays a recording instead of using the microphone.
	File string `env:"FILE"`

	// MockText is what the mock transcriber hears.
	MockText string `env:"MOCK_TEXT" envDefault:"This is a dictated answer."`

	OpenAIKey   string `env:"OPENAI_API_KEY" envDefault:"${OPENAI_API_KEY}" envExpand:"true"`
	OpenAIModel string `env:"OPENAI_MODEL" envDefault:"whisper-1"`
	GeminiKey   string `env:"GEMINI_API_KEY" envDefault:"${GEMINI_API_KEY}" envExpand:"true"`
	GeminiModel string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
}

// Options returns dictation options for the configured locale.
func (s SpeechConfig) Options() (speech.Options, error) {
	return speech.ParseLocale(s.Locale)
}

// ServeConfig configures the local reference feedback service.
type ServeConfig struct {
	Addr string `env:"ADDR" envDefault:"127.0.0.1:3000"`

	// Token is the bearer token clients must send. Empty accepts any
	// non-empty bearer token.
	Token string `env:"TOKEN"`
}

// Load reads envFile (if it exists) into the process environment without
// overriding variables already set, then parses Config. An empty envFile
// means ".env".
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}
	return Parse()
}

// Parse reads Config from the environment.
func Parse() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Default returns the tag defaults without consulting the environment.
func Default() Config {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix, Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("config: bad defaults: %v", err))
	}
	return cfg
}

// Validate checks the settings every command depends on.
func (c Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%sAPI_URL must be an absolute URL, got %q", Prefix, c.API.URL)
	}
	if c.API.MaxAttempts < 1 {
		return fmt.Errorf("%sAPI_MAX_ATTEMPTS must be at least 1, got %d", Prefix, c.API.MaxAttempts)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("%sAPI_TIMEOUT must not be negative", Prefix)
	}
	switch c.Speech.Provider {
	case "openai", "gemini", "mock":
	default:
		return fmt.Errorf("unknown speech provider: %q", c.Speech.Provider)
	}
	if _, err := c.Speech.Options(); err != nil {
		return fmt.Errorf("%sSPEECH_LOCALE: %w", Prefix, err)
	}
	return nil
}

// LogPath returns LogFile, or interview.log under the XDG state directory.
func (c Config) LogPath() (string, error) {
	if c.LogFile != "" {
		return c.LogFile, nil
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "interview", "interview.log"), nil
}

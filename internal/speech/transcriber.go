package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// ErrEmptyTranscript is returned when the recognizer heard nothing it could
// turn into text.
var ErrEmptyTranscript = errors.New("empty transcript")

// Transcriber turns one utterance into one final transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio, opts Options) (string, error)
	Name() string
}

// OpenAIConfig configures the Whisper transcriber.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: whisper-1
	BaseURL string
}

// OpenAITranscriber uses the OpenAI audio transcription endpoint.
type OpenAITranscriber struct {
	client *openai.Client
	model  string
}

// NewOpenAITranscriber creates a Whisper-backed transcriber.
func NewOpenAITranscriber(cfg OpenAIConfig) (*OpenAITranscriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAITranscriber{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

func (t *OpenAITranscriber) Name() string { return "openai" }

func (t *OpenAITranscriber) Transcribe(ctx context.Context, audio Audio, opts Options) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: audio.Filename(),
		Reader:   bytes.NewReader(audio.Data),
		Language: opts.Language(),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}
	return finalTranscript(resp.Text)
}

// GeminiConfig configures the Gemini transcriber.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: gemini-2.0-flash
}

// GeminiTranscriber sends inline audio to a Gemini model with a
// transcription instruction.
type GeminiTranscriber struct {
	client *genai.Client
	model  string
}

// NewGeminiTranscriber creates a Gemini-backed transcriber.
func NewGeminiTranscriber(ctx context.Context, cfg GeminiConfig) (*GeminiTranscriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiTranscriber{client: client, model: model}, nil
}

func (t *GeminiTranscriber) Name() string { return "gemini" }

func (t *GeminiTranscriber) Transcribe(ctx context.Context, audio Audio, opts Options) (string, error) {
	instruction := fmt.Sprintf(
		"Transcribe this recording verbatim. The speaker uses locale %s. "+
			"Reply with the transcript only, no commentary.", opts.Locale)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(instruction),
			genai.NewPartFromBytes(audio.Data, audio.MIMEType()),
		}, genai.RoleUser),
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini transcription: %w", err)
	}
	return finalTranscript(result.Text())
}

func finalTranscript(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

// MockTranscript is a canned transcription result.
type MockTranscript struct {
	Text string
	Err  error
}

// MockTranscriber returns canned transcripts in FIFO order.
type MockTranscriber struct {
	mu      sync.Mutex
	results []MockTranscript
	calls   int
}

// NewMockTranscriber creates a MockTranscriber with the given results.
func NewMockTranscriber(results ...MockTranscript) *MockTranscriber {
	return &MockTranscriber{results: results}
}

func (m *MockTranscriber) Name() string { return "mock" }

// Transcribe returns the next canned result, or an error once the queue is
// empty.
func (m *MockTranscriber) Transcribe(ctx context.Context, _ Audio, _ Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.results) == 0 {
		return "", errors.New("mock transcriber: no results queued")
	}
	r := m.results[0]
	m.results = m.results[1:]
	if r.Err != nil {
		return "", r.Err
	}
	return r.Text, nil
}

// AddResult appends a canned result to the queue.
func (m *MockTranscriber) AddResult(r MockTranscript) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
}

// CallCount returns the number of Transcribe calls made.
func (m *MockTranscriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// FixedTranscriber hears the same text every time. It backs the "mock"
// speech provider so dictation works without a microphone or API key.
type FixedTranscriber string

func (f FixedTranscriber) Name() string { return "fixed" }

func (f FixedTranscriber) Transcribe(ctx context.Context, _ Audio, _ Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return finalTranscript(string(f))
}

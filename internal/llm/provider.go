// Package llm wraps the hosted model APIs behind one Provider interface.
// Every provider supports structured output: when a request carries a
// Schema, the response content is JSON already validated against it.
package llm

import (
	"context"
	"encoding/json"

	"github.com/abhisek/interview/internal/schema"
)

// Provider generates one response per request.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Schema is the JSON Schema a structured response must satisfy.
type Schema = schema.Schema

// Request describes what to send to the model.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks the provider for JSON conforming to it.
	// When nil, Response.Content holds the raw text.
	Schema *Schema

	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0. Zero leaves the
	// provider default in place.
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserMessage is a shorthand for a single user turn.
func UserMessage(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}

// StopReason is why generation ended, normalized across providers.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response holds the model output.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason StopReason
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

// finish turns provider output into a Response, enforcing the request's
// schema and the max token limit.
func finish(req Request, content json.RawMessage, resp *Response) (*Response, error) {
	if resp.StopReason == StopMaxTokens && req.Schema != nil {
		return nil, &MaxTokensError{Content: content}
	}
	if err := schema.Validate(req.Schema, content); err != nil {
		return nil, &InvalidResponseError{Content: content, Err: err}
	}
	resp.Content = content
	return resp, nil
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names pass through so full IDs work too.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}

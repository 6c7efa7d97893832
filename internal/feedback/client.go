// Package feedback talks to the remote feedback service: one endpoint that
// generates feedback from a session's answers and one that stores it.
package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/interview/internal/answers"
	"github.com/abhisek/interview/internal/schema"
)

const tracerName = "github.com/abhisek/interview/internal/feedback"

// maxErrorBody bounds how much of an error response is kept in StatusError.
const maxErrorBody = 512

// Config holds the remote endpoint locations.
type Config struct {
	BaseURL      string
	GeneratePath string
	StorePath    string
	FetchPath    string

	// Timeout bounds a single HTTP call. Zero means no client-side limit.
	Timeout time.Duration
}

// DefaultConfig returns the endpoints of a locally running feedback service.
func DefaultConfig() Config {
	return Config{
		BaseURL:      "http://127.0.0.1:3000",
		GeneratePath: "/v1/exam/genrateFeedback",
		StorePath:    "/v1/exam/store",
		FetchPath:    "/v1/exam/feedback",
		Timeout:      30 * time.Second,
	}
}

// Stored is the Persist step's result.
type Stored struct {
	// ID identifies the stored feedback and parameterizes the result view.
	ID string

	// Raw is the full response body.
	Raw json.RawMessage
}

// StoredSchema requires a non-empty string _id in the store response.
var StoredSchema = &schema.Schema{
	Name:        "stored-feedback",
	Description: "Response of the feedback store endpoint",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"_id": map[string]any{"type": "string", "minLength": 1},
		},
		"required": []any{"_id"},
	},
}

// Document is stored feedback as read back from the service.
type Document struct {
	ID        string          `json:"_id"`
	CreatedAt time.Time       `json:"createdAt"`
	Data      json.RawMessage `json:"data"`
}

// Client calls the generate and store endpoints.
type Client struct {
	cfg    Config
	tokens TokenSource
	http   *http.Client
	now    func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a Client for cfg authenticated by tokens.
func NewClient(cfg Config, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		tokens: tokens,
		http:   &http.Client{Timeout: cfg.Timeout},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Data any `json:"data"`
}

// Generate sends the session and returns the generated feedback body.
// Only a 200 response counts as success.
func (c *Client) Generate(ctx context.Context, key string, session answers.Session) (json.RawMessage, error) {
	if session == nil {
		session = answers.Session{}
	}
	body, err := c.post(ctx, StepGenerate, c.cfg.GeneratePath, key, envelope{Data: session}, http.StatusOK)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &InvalidResponseError{Step: StepGenerate, Err: fmt.Errorf("body is not JSON")}
	}
	return json.RawMessage(body), nil
}

// Persist stores generated feedback and returns the id assigned to it.
// Only a 201 response counts as success.
func (c *Client) Persist(ctx context.Context, key string, generated json.RawMessage) (*Stored, error) {
	body, err := c.post(ctx, StepPersist, c.cfg.StorePath, key, envelope{Data: generated}, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(StoredSchema, body); err != nil {
		return nil, &InvalidResponseError{Step: StepPersist, Err: err}
	}

	var resp struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &InvalidResponseError{Step: StepPersist, Err: err}
	}
	return &Stored{ID: resp.ID, Raw: json.RawMessage(body)}, nil
}

// Fetch reads stored feedback by id.
func (c *Client) Fetch(ctx context.Context, id string) (*Document, error) {
	body, err := c.do(ctx, StepFetch, http.MethodGet, strings.TrimRight(c.cfg.FetchPath, "/")+"/"+url.PathEscape(id), "", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &InvalidResponseError{Step: StepFetch, Err: err}
	}
	return &doc, nil
}

func (c *Client) post(ctx context.Context, step Step, path, key string, payload any, want int) ([]byte, error) {
	return c.do(ctx, step, http.MethodPost, path, key, payload, want)
}

func (c *Client) do(ctx context.Context, step Step, method, path, key string, payload any, want int) (_ []byte, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "feedback."+string(step),
		trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, &TransportError{Step: step, Err: err}
	}
	if err := checkExpiry(token, c.now()); err != nil {
		return nil, &TransportError{Step: step, Err: err}
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", step, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	target := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", step, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Step: step, Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Step: step, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != want {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{Step: step, StatusCode: resp.StatusCode, Body: strings.TrimSpace(snippet)}
	}
	return body, nil
}

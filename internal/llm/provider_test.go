package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

var testFeedbackSchema = &Schema{
	Name: "test-feedback",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overall": map[string]any{"type": "string"},
			"score":   map[string]any{"type": "integer", "minimum": 0, "maximum": 10},
		},
		"required": []any{"overall", "score"},
	},
}

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: UserMessage("first")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Content)
	}
	if resp1.Usage.Total() != 15 {
		t.Fatalf("expected 15 total tokens, got %d", resp1.Usage.Total())
	}
	if resp1.StopReason != StopEnd {
		t.Fatalf("expected stop reason %q, got %q", StopEnd, resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: UserMessage("second")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Content)
	}

	calls := mock.Calls()
	if len(calls) != 2 || calls[1].Messages[0].Content != "second" {
		t.Fatalf("unexpected recorded calls: %+v", calls)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *UnavailableError
	if !errors.As(err, &unavail) {
		t.Fatalf("expected UnavailableError, got: %T", err)
	}
}

func TestMockProvider_ValidatesSchema(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"overall":"good","score":7}`)},
		MockResponse{Content: json.RawMessage(`{"overall":"good","score":70}`)},
		MockResponse{Content: json.RawMessage(`not json`)},
	)
	req := Request{Messages: UserMessage("x"), Schema: testFeedbackSchema}

	if _, err := mock.Generate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 2; i++ {
		_, err := mock.Generate(context.Background(), req)
		var inv *InvalidResponseError
		if !errors.As(err, &inv) {
			t.Fatalf("call %d: expected InvalidResponseError, got: %T (%v)", i+2, err, err)
		}
	}
}

func TestFinish_MaxTokensWithSchema(t *testing.T) {
	_, err := finish(Request{Schema: testFeedbackSchema}, json.RawMessage(`{"overall":`), &Response{StopReason: StopMaxTokens})
	var maxTok *MaxTokensError
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected MaxTokensError, got: %T", err)
	}

	resp, err := finish(Request{}, json.RawMessage(`truncated text`), &Response{StopReason: StopMaxTokens})
	if err != nil {
		t.Fatalf("plain text should pass through: %v", err)
	}
	if string(resp.Content) != "truncated text" {
		t.Fatalf("unexpected content %q", resp.Content)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != PurposeUnknown {
		t.Fatalf("expected %q, got %q", PurposeUnknown, p)
	}
	ctx = WithPurpose(ctx, PurposeFeedback)
	if p := PurposeFrom(ctx); p != PurposeFeedback {
		t.Fatalf("expected %q, got %q", PurposeFeedback, p)
	}
}

func TestClassify(t *testing.T) {
	base := errors.New("sdk")
	var rl *RateLimitError
	if !errors.As(classify(429, base), &rl) {
		t.Fatal("429 should be a rate limit")
	}
	for _, status := range []int{400, 500, 503} {
		var unavail *UnavailableError
		err := classify(status, base)
		if !errors.As(err, &unavail) {
			t.Fatalf("%d: expected UnavailableError, got %T", status, err)
		}
		if !errors.Is(err, base) {
			t.Fatalf("%d: classified error should wrap the SDK error", status)
		}
	}
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

const feedbackReply = `{"overall":"Specific examples, clear structure.","score":7}`

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	}
}

func feedbackRequest() Request {
	return Request{
		System:    "You review interview answers.",
		Messages:  UserMessage("## Question 1\nTell me about yourself.\n\n### Answer\nI build terminal tools.\n"),
		Schema:    testFeedbackSchema,
		MaxTokens: 2048,
	}
}

func reply(content string) MockResponse {
	return MockResponse{Content: json.RawMessage(content)}
}

func outage() MockResponse {
	return MockResponse{Err: &UnavailableError{Err: errors.New("503 service unavailable")}}
}

func TestRetryFeedbackRequests(t *testing.T) {
	isUnavailable := func(err error) bool { var e *UnavailableError; return errors.As(err, &e) }
	isInvalid := func(err error) bool { var e *InvalidResponseError; return errors.As(err, &e) }
	isTruncated := func(err error) bool { var e *MaxTokensError; return errors.As(err, &e) }

	tests := []struct {
		name      string
		attempts  int
		replies   []MockResponse
		wantCalls int
		wantErr   func(error) bool
	}{
		{
			name:      "first reply accepted",
			attempts:  3,
			replies:   []MockResponse{reply(feedbackReply)},
			wantCalls: 1,
		},
		{
			name:      "recovers after outages",
			attempts:  3,
			replies:   []MockResponse{outage(), outage(), reply(feedbackReply)},
			wantCalls: 3,
		},
		{
			name:      "outage outlasts attempts",
			attempts:  3,
			replies:   []MockResponse{outage(), outage(), outage(), reply(feedbackReply)},
			wantCalls: 3,
			wantErr:   isUnavailable,
		},
		{
			name:      "missing score asked again",
			attempts:  3,
			replies:   []MockResponse{reply(`{"overall":"Good."}`), reply(feedbackReply)},
			wantCalls: 2,
		},
		{
			name:      "second malformed reply is final",
			attempts:  3,
			replies:   []MockResponse{reply(`{"overall":"Good."}`), reply(`{"score":11,"overall":"x"}`), reply(feedbackReply)},
			wantCalls: 2,
			wantErr:   isInvalid,
		},
		{
			name:      "malformed reply then outage",
			attempts:  3,
			replies:   []MockResponse{reply(`not json`), outage(), reply(feedbackReply)},
			wantCalls: 3,
		},
		{
			name:      "truncated feedback not retried",
			attempts:  3,
			replies:   []MockResponse{{Err: &MaxTokensError{Content: json.RawMessage(`{"overall":"Spec`)}}, reply(feedbackReply)},
			wantCalls: 1,
			wantErr:   isTruncated,
		},
		{
			name:      "rate limit honours retry after",
			attempts:  2,
			replies:   []MockResponse{{Err: &RateLimitError{RetryAfter: time.Millisecond, Err: errors.New("429")}}, reply(feedbackReply)},
			wantCalls: 2,
		},
		{
			name:      "zero attempts still calls once",
			attempts:  0,
			replies:   []MockResponse{outage(), reply(feedbackReply)},
			wantCalls: 1,
			wantErr:   isUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.replies...)
			p := WithRetry(mock, fastRetry(tt.attempts))

			resp, err := p.Generate(context.Background(), feedbackRequest())
			if tt.wantErr != nil {
				if err == nil || !tt.wantErr(err) {
					t.Fatalf("unexpected error: %T (%v)", err, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if string(resp.Content) != feedbackReply {
					t.Errorf("content = %s", resp.Content)
				}
			}
			if got := mock.CallCount(); got != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", got, tt.wantCalls)
			}
			for i, call := range mock.Calls() {
				if call.Schema != testFeedbackSchema || call.MaxTokens != 2048 {
					t.Errorf("attempt %d sent a different request: %+v", i+1, call)
				}
			}
		})
	}
}

func TestRetryAttemptsFromEnv(t *testing.T) {
	t.Setenv("INTERVIEW_LLM_RETRY_MAX_ATTEMPTS", "2")
	t.Setenv("INTERVIEW_LLM_RETRY_INITIAL_WAIT", "1ms")
	t.Setenv("INTERVIEW_LLM_RETRY_MAX_WAIT", "2ms")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mock := NewMockProvider()
	p := WithRetry(mock, cfg.Retry)

	if _, err := p.Generate(context.Background(), feedbackRequest()); err == nil {
		t.Fatal("expected error from an empty mock")
	}
	if mock.CallCount() != 2 {
		t.Fatalf("calls = %d, want 2", mock.CallCount())
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID = %q", p.ModelID())
	}
}

func TestRetryStopsWhenDeadlinePassesDuringWait(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &RateLimitError{RetryAfter: time.Hour, Err: errors.New("429")}},
		reply(feedbackReply),
	)
	p := WithRetry(mock, fastRetry(3))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Generate(ctx, feedbackRequest())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d, want 1", mock.CallCount())
	}
}

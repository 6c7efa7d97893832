package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// AttemptEventData captures one step of one submission attempt.
type AttemptEventData struct {
	TriggerID    string
	Attempt      int
	Step         string // "generate" or "persist"
	Success      bool
	StatusCode   int
	ErrorMessage string
	LatencyMs    int64
}

// AttemptEventRecord is a stored attempt event.
type AttemptEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	AttemptEventData
}

// OutcomeEventData captures how a submission trigger ended.
type OutcomeEventData struct {
	TriggerID    string
	State        string // "succeeded" or "failed"
	Attempts     int
	Questions    int
	Answered     int
	FeedbackID   string
	Route        string
	ErrorMessage string
}

// OutcomeEventRecord is a stored outcome event.
type OutcomeEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	OutcomeEventData
}

// DictationEventData captures one dictation session.
type DictationEventData struct {
	DictationID     string
	QuestionNumber  int
	Locale          string
	Success         bool
	TranscriptChars int
	LatencyMs       int64
	ErrorMessage    string
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMRequestEventRecord is a persisted LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM requests sharing a purpose.
type LLMUsage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to local events.
type EventRepo interface {
	// AppendAttempt records one pipeline step.
	AppendAttempt(ctx context.Context, data AttemptEventData) error

	// AppendOutcome records the terminal state of a submission trigger.
	AppendOutcome(ctx context.Context, data OutcomeEventData) error

	// AppendDictation records the result of a dictation session.
	AppendDictation(ctx context.Context, data DictationEventData) error

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// RecentOutcomes returns outcomes, newest first.
	RecentOutcomes(ctx context.Context, opts QueryOpts) ([]OutcomeEventRecord, error)

	// AttemptsForTrigger returns the attempt events of one trigger in order.
	AttemptsForTrigger(ctx context.Context, triggerID string) ([]AttemptEventRecord, error)

	// QueryLLMEvents returns LLM request events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates LLM requests per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
}

// FeedbackDocument is a stored feedback body.
type FeedbackDocument struct {
	ID        string
	CreatedAt time.Time
	Body      []byte
}

// FeedbackRepo stores feedback documents keyed by generated ids.
type FeedbackRepo interface {
	// Save stores body and returns its new id.
	Save(ctx context.Context, body []byte) (string, error)

	// Get returns the document for id, or nil if it does not exist.
	Get(ctx context.Context, id string) (*FeedbackDocument, error)
}

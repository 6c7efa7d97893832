package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"attempt_events", "outcome_events", "dictation_events", "llm_request_events", "feedback_documents"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		require.NoError(t, err)
		seqs = append(seqs, seq)
	}

	for i, seq := range seqs {
		assert.Equal(t, int64(i+1), seq, "seq[%d]", i)
	}
}

func TestAttemptsForTrigger(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []AttemptEventData{
		{TriggerID: "t1", Attempt: 1, Step: "generate", Success: false, StatusCode: 500, ErrorMessage: "boom"},
		{TriggerID: "other", Attempt: 1, Step: "generate", Success: true, StatusCode: 200},
		{TriggerID: "t1", Attempt: 2, Step: "generate", Success: true, StatusCode: 200},
		{TriggerID: "t1", Attempt: 2, Step: "persist", Success: true, StatusCode: 201},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendAttempt(ctx, e))
	}

	got, err := repo.AttemptsForTrigger(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, 1, got[0].Attempt)
	assert.Equal(t, "boom", got[0].ErrorMessage)
	assert.False(t, got[0].Success)
	assert.Equal(t, "persist", got[2].Step)
	assert.Equal(t, 201, got[2].StatusCode)
	assert.Less(t, got[0].Sequence, got[1].Sequence)
}

func TestRecentOutcomes(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendOutcome(ctx, OutcomeEventData{TriggerID: "a", State: "failed", Attempts: 3, Questions: 2}))
	require.NoError(t, repo.AppendOutcome(ctx, OutcomeEventData{TriggerID: "b", State: "succeeded", Attempts: 1, Questions: 2, Answered: 2, FeedbackID: "abc", Route: "/feedback/abc"}))

	got, err := repo.RecentOutcomes(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].TriggerID, "newest first")
	assert.Equal(t, "/feedback/abc", got[0].Route)
	assert.WithinDuration(t, time.Now(), got[0].Timestamp, time.Minute)

	limited, err := repo.RecentOutcomes(ctx, QueryOpts{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	after, err := repo.RecentOutcomes(ctx, QueryOpts{After: got[1].Sequence})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "b", after[0].TriggerID)
}

func TestAppendDictationAndLLMRequest(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendDictation(ctx, DictationEventData{
		DictationID: "d1", QuestionNumber: 2, Locale: "en-US", Success: true, TranscriptChars: 5,
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "mock", Model: "mock", Purpose: "feedback", Success: true,
	}))

	var n int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM dictation_events").Scan(&n))
	assert.Equal(t, 1, n)
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM llm_request_events").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestFeedbackRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.FeedbackRepo()
	ctx := context.Background()

	id, err := repo.Save(ctx, []byte(`{"score":9}`))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.JSONEq(t, `{"score":9}`, string(doc.Body))

	missing, err := repo.Get(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLLMEventQueries(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, e := range []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude", Purpose: "feedback", InputTokens: 100, OutputTokens: 40, LatencyMs: 200, Success: true},
		{Provider: "anthropic", Model: "claude", Purpose: "feedback", InputTokens: 50, OutputTokens: 0, LatencyMs: 100, ErrorMessage: "rate limited"},
		{Provider: "mock", Model: "mock", Purpose: "unknown", InputTokens: 1, OutputTokens: 1, LatencyMs: 1, Success: true},
	} {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "mock", events[0].Provider)
	assert.Equal(t, "rate limited", events[1].ErrorMessage)

	usage, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, LLMUsage{Purpose: "feedback", Calls: 2, Failures: 1, InputTokens: 150, OutputTokens: 40, AvgLatencyMs: 150}, usage[0])
	assert.Equal(t, "unknown", usage[1].Purpose)
}

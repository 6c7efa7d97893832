package result

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/interview/internal/feedback"
	"github.com/abhisek/interview/internal/store"
)

type fakeFetcher struct {
	doc *feedback.Document
	err error
	ids []string
}

func (f *fakeFetcher) Fetch(_ context.Context, id string) (*feedback.Document, error) {
	f.ids = append(f.ids, id)
	return f.doc, f.err
}

func load(t *testing.T, s *ResultScreen) {
	t.Helper()
	cmd := s.Init()
	require.NotNil(t, cmd)
	s.Update(cmd())
}

func TestShowsIDWithoutFetcher(t *testing.T) {
	s := New("abc")
	assert.Nil(t, s.Init())

	view := s.View(80, 24)
	assert.Contains(t, view, "abc")
	assert.Contains(t, view, "/feedback/abc")
	assert.NotContains(t, view, "Loading")
}

func TestRendersKnownFeedback(t *testing.T) {
	f := &fakeFetcher{doc: &feedback.Document{
		ID:   "abc",
		Data: json.RawMessage(`{"overall":"Good grasp of basics.","score":8,"answers":[{"number":1,"score":8,"strengths":"Precise","improvement":"Mention the scheduler"}]}`),
	}}
	s := New("abc", WithFetcher(f))
	assert.Contains(t, s.View(80, 24), "Loading feedback")

	load(t, s)

	assert.Equal(t, []string{"abc"}, f.ids)
	view := s.View(100, 40)
	assert.Contains(t, view, "Score 8/10")
	assert.Contains(t, view, "Good grasp of basics.")
	assert.Contains(t, view, "Question 1  8/10")
	assert.Contains(t, view, "Mention the scheduler")
}

func TestRendersOtherShapesAsJSON(t *testing.T) {
	f := &fakeFetcher{doc: &feedback.Document{ID: "abc", Data: json.RawMessage(`{"verdict":"hire"}`)}}
	s := New("abc", WithFetcher(f))
	load(t, s)

	assert.Contains(t, s.View(100, 40), `"verdict": "hire"`)
}

func TestFetchError(t *testing.T) {
	s := New("abc", WithFetcher(&fakeFetcher{err: errors.New("404 not found")}))
	load(t, s)

	view := s.View(100, 40)
	assert.Contains(t, view, "Could not load feedback: 404 not found")
	assert.Contains(t, view, "abc")
}

func TestShowsRecordedAttempts(t *testing.T) {
	st, err := store.Open("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	require.NoError(t, st.EventRepo().AppendOutcome(ctx, store.OutcomeEventData{
		TriggerID: "t1", State: "succeeded", Attempts: 2, FeedbackID: "result-screen-id", Route: "/feedback/result-screen-id",
	}))

	s := New("result-screen-id", WithHistory(st.EventRepo()))
	load(t, s)

	assert.Contains(t, s.View(100, 40), "Stored after 2 attempt(s)")
}

type blockingFetcher struct{}

func (blockingFetcher) Fetch(ctx context.Context, _ string) (*feedback.Document, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestCloseAbandonsLoad(t *testing.T) {
	s := New("abc", WithFetcher(blockingFetcher{}))
	cmd := s.Init()
	require.NotNil(t, cmd)

	s.Close()
	s.Update(cmd())
	assert.Contains(t, s.View(100, 40), "Could not load feedback: context canceled")
}

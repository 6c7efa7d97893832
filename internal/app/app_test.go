package app

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"unicode"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/interview/internal/answers"
	"github.com/abhisek/interview/internal/feedback"
	"github.com/abhisek/interview/internal/router"
	"github.com/abhisek/interview/internal/screens/interview"
	"github.com/abhisek/interview/internal/speech"
	"github.com/abhisek/interview/internal/store"
	"github.com/abhisek/interview/internal/submit"
)

type okRemote struct {
	id string

	mu        sync.Mutex
	generated int
}

func (r *okRemote) Generate(context.Context, string, answers.Session) (json.RawMessage, error) {
	r.mu.Lock()
	r.generated++
	r.mu.Unlock()
	return json.RawMessage(`{"score":9}`), nil
}

func (r *okRemote) Persist(context.Context, string, json.RawMessage) (*feedback.Stored, error) {
	return &feedback.Stored{ID: r.id}, nil
}

func (r *okRemote) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generated
}

// messages collects what the pipeline would send to the program.
type messages struct{ msgs []tea.Msg }

func (m *messages) Navigate(route string) { m.msgs = append(m.msgs, router.NavigateMsg{Route: route}) }
func (m *messages) Notify(msg string)     { m.msgs = append(m.msgs, interview.NoticeMsg{Message: msg}) }

func newTestModel(t *testing.T, deps Deps) (AppModel, *messages) {
	t.Helper()
	if deps.Answers == nil {
		deps.Answers = answers.NewStore(nil)
		require.True(t, deps.Answers.Initialize(json.RawMessage(`[{"number":1,"question":"Q1"}]`)))
	}
	sink := &messages{}
	m := newAppModel(context.Background(), deps, sink, sink)
	m.Init()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(AppModel), sink
}

func update(m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(AppModel), cmd
}

// collect runs cmd and any batched commands without applying the results.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func press(code rune, mod tea.KeyMod) tea.KeyPressMsg {
	if mod == 0 && unicode.IsPrint(code) {
		return tea.KeyPressMsg{Code: code, Text: string(code)}
	}
	return tea.KeyPressMsg{Code: code, Mod: mod}
}

// drain runs cmd, feeding every resulting message back into the model.
func drain(m AppModel, cmd tea.Cmd) AppModel {
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = drain(m, c)
		}
		return m
	}
	m, next := update(m, msg)
	return drain(m, next)
}

func TestSubmitNavigatesToResult(t *testing.T) {
	m, sink := newTestModel(t, Deps{Remote: &okRemote{id: "abc"}, Submit: submit.DefaultConfig()})

	for _, r := range "hello" {
		m, _ = update(m, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	m, cmd := update(m, tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	m = drain(m, cmd)

	require.Equal(t, []tea.Msg{router.NavigateMsg{Route: "/feedback/abc"}}, sink.msgs)
	m, _ = update(m, sink.msgs[0])

	assert.Equal(t, 2, m.router.Depth())
	assert.Equal(t, "Feedback", m.router.Active().Title())
	view := m.View()
	assert.True(t, view.AltScreen)
	assert.Equal(t, "submitted", m.headerStatus())

	m, cmd = update(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	m = drain(m, cmd)
	assert.Equal(t, 1, m.router.Depth())
	assert.Equal(t, "Interview", m.router.Active().Title())
}

func TestEscAtRootReachesScreen(t *testing.T) {
	m, _ := newTestModel(t, Deps{Remote: &okRemote{id: "abc"}, Submit: submit.DefaultConfig()})

	m, _ = update(m, interview.NoticeMsg{Message: submit.FailureNotice})
	screen := m.router.Active().(*interview.InterviewScreen)
	require.Equal(t, submit.FailureNotice, screen.Notice())

	m, _ = update(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Empty(t, screen.Notice())
	assert.Equal(t, 1, m.router.Depth())
}

func TestHistoryRouteNeedsEvents(t *testing.T) {
	m, _ := newTestModel(t, Deps{Remote: &okRemote{id: "abc"}, Submit: submit.DefaultConfig()})
	m = drain(m, func() tea.Msg { return router.NavigateMsg{Route: interview.HistoryRoute} })
	assert.Equal(t, 1, m.router.Depth())

	st, err := store.Open("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	m, _ = newTestModel(t, Deps{Remote: &okRemote{id: "abc"}, Submit: submit.DefaultConfig(), Events: st.EventRepo()})
	m, _ = update(m, router.NavigateMsg{Route: interview.HistoryRoute})
	assert.Equal(t, 2, m.router.Depth())
	assert.Equal(t, "Submissions", m.router.Active().Title())
}

func TestCtrlCQuits(t *testing.T) {
	m, _ := newTestModel(t, Deps{Remote: &okRemote{id: "abc"}, Submit: submit.DefaultConfig()})
	_, cmd := update(m, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

// The pipeline navigates before Submit returns, so the program sees the
// NavigateMsg before the interview's own completion message.
func TestResubmitAfterReturningFromResult(t *testing.T) {
	remote := &okRemote{id: "abc"}
	m, sink := newTestModel(t, Deps{Remote: remote, Submit: submit.DefaultConfig()})

	m, cmd := update(m, press('s', tea.ModCtrl))
	done := collect(cmd)
	require.Equal(t, []tea.Msg{router.NavigateMsg{Route: "/feedback/abc"}}, sink.msgs)

	m = drain(m, func() tea.Msg { return sink.msgs[0] })
	require.Equal(t, "Feedback", m.router.Active().Title())
	for _, msg := range done {
		m = drain(m, func() tea.Msg { return msg })
	}
	require.Equal(t, "Feedback", m.router.Active().Title())

	m = drain(m, func() tea.Msg { return press(tea.KeyEscape, 0) })
	require.Equal(t, "Interview", m.router.Active().Title())

	_, cmd = update(m, press('s', tea.ModCtrl))
	require.NotNil(t, cmd, "a later trigger starts a new submission")
	collect(cmd)
	assert.Equal(t, 2, remote.calls())
	assert.Equal(t, submit.StateSucceeded, m.pipeline.Status().State)
}

func TestDictationFinishingUnderHistory(t *testing.T) {
	st, err := store.Open("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	session := answers.NewStore(nil)
	require.True(t, session.Initialize(json.RawMessage(`[{"number":1,"question":"Q1"}]`)))
	adapter, err := speech.NewAdapter(
		speech.StaticSource{Data: []byte("RIFF"), Format: "wav"},
		speech.NewMockTranscriber(
			speech.MockTranscript{Text: "hello"},
			speech.MockTranscript{Text: "again"},
		),
		session,
	)
	require.NoError(t, err)
	t.Cleanup(adapter.Close)

	m, _ := newTestModel(t, Deps{
		Answers:   session,
		Remote:    &okRemote{id: "abc"},
		Submit:    submit.DefaultConfig(),
		Dictation: adapter,
		Events:    st.EventRepo(),
	})

	m, dictate := update(m, press('r', tea.ModCtrl))
	require.NotNil(t, dictate)
	m = drain(m, func() tea.Msg { return press('o', tea.ModCtrl) })
	require.Equal(t, "Submissions", m.router.Active().Title())

	m = drain(m, dictate)
	require.Equal(t, "Submissions", m.router.Active().Title())

	m = drain(m, func() tea.Msg { return press(tea.KeyEscape, 0) })
	require.Equal(t, "Interview", m.router.Active().Title())

	m, _ = update(m, press('!', 0))
	qa, _ := session.Get(1)
	assert.Equal(t, "hello!", qa.Answer)

	_, again := update(m, press('r', tea.ModCtrl))
	assert.NotNil(t, again, "dictation can start again for the same question")
	collect(again)
}

func TestNoticeReturnsToInterview(t *testing.T) {
	st, err := store.Open("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	m, _ := newTestModel(t, Deps{Remote: &okRemote{id: "abc"}, Submit: submit.DefaultConfig(), Events: st.EventRepo()})
	m = drain(m, func() tea.Msg { return press('o', tea.ModCtrl) })
	require.Equal(t, 2, m.router.Depth())

	m, _ = update(m, interview.NoticeMsg{Message: submit.FailureNotice})
	require.Equal(t, 1, m.router.Depth())
	screen := m.router.Active().(*interview.InterviewScreen)
	assert.Equal(t, submit.FailureNotice, screen.Notice())
}

// Package interview is the answer entry screen: one card per question, typed
// or dictated answers, and a submit action that runs the feedback pipeline.
package interview

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/interview/internal/answers"
	"github.com/abhisek/interview/internal/router"
	"github.com/abhisek/interview/internal/screen"
	"github.com/abhisek/interview/internal/speech"
	"github.com/abhisek/interview/internal/submit"
	"github.com/abhisek/interview/internal/ui/components"
	"github.com/abhisek/interview/internal/ui/layout"
)

const statusInterval = 150 * time.Millisecond

// HistoryRoute is opened with ctrl+o.
const HistoryRoute = "/history"

// Submitter runs submission triggers. *submit.Pipeline satisfies it.
type Submitter interface {
	Submit(ctx context.Context, session answers.Session) (*submit.Outcome, error)
	Status() submit.Status
	MaxAttempts() int
}

// Dictator starts speech dictations. *speech.Adapter satisfies it.
type Dictator interface {
	StartDictation(ctx context.Context, number answers.Number) *speech.Dictation
}

// InterviewScreen edits the answers of a session.
type InterviewScreen struct {
	ctx       context.Context
	store     *answers.Store
	submitter Submitter
	dictator  Dictator

	numbers   []answers.Number
	questions []string
	inputs    []components.AnswerInput
	focus     int

	recording  map[answers.Number]bool
	submitting bool
	status     string
	notice     string
	dismiss    components.Button
}

var _ screen.Screen = (*InterviewScreen)(nil)
var _ screen.KeyHintProvider = (*InterviewScreen)(nil)
var _ screen.Resumer = (*InterviewScreen)(nil)

// Option configures an InterviewScreen.
type Option func(*InterviewScreen)

// WithDictation enables ctrl+r dictation through d.
func WithDictation(d Dictator) Option {
	return func(s *InterviewScreen) { s.dictator = d }
}

// WithContext sets the context dictations and submissions run under.
func WithContext(ctx context.Context) Option {
	return func(s *InterviewScreen) { s.ctx = ctx }
}

// New creates an InterviewScreen over an initialized answer store.
func New(store *answers.Store, submitter Submitter, opts ...Option) *InterviewScreen {
	s := &InterviewScreen{
		ctx:       context.Background(),
		store:     store,
		submitter: submitter,
		recording: make(map[answers.Number]bool),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, qa := range store.Snapshot() {
		in := components.NewAnswerInput("Type your answer", 0)
		in.SetValue(qa.Answer)
		s.numbers = append(s.numbers, qa.Number)
		s.questions = append(s.questions, qa.Question)
		s.inputs = append(s.inputs, in)
	}
	s.dismiss = components.NewButton("OK", true, func() tea.Cmd {
		s.notice = ""
		return nil
	})
	return s
}

func (s *InterviewScreen) Init() tea.Cmd {
	if len(s.inputs) == 0 {
		return nil
	}
	return s.inputs[s.focus].Focus()
}

func (s *InterviewScreen) Title() string {
	return "Interview"
}

func (s *InterviewScreen) KeyHints() []layout.KeyHint {
	if s.notice != "" {
		return []layout.KeyHint{{Key: "Enter", Description: "Dismiss"}}
	}
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Question"}}
	if s.dictator != nil {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+R", Description: "Dictate"})
	}
	return append(hints,
		layout.KeyHint{Key: "Ctrl+S", Description: "Submit"},
		layout.KeyHint{Key: "Ctrl+O", Description: "Submissions"},
		layout.KeyHint{Key: "Ctrl+C", Description: "Quit"},
	)
}

// Focused returns the question number that has keyboard focus.
func (s *InterviewScreen) Focused() answers.Number {
	if len(s.numbers) == 0 {
		return 0
	}
	return s.numbers[s.focus]
}

// Notice returns the notice awaiting acknowledgement, if any.
func (s *InterviewScreen) Notice() string {
	return s.notice
}

// Resume reloads every card from the store. Dictations that finished while
// another screen was on top have already written their transcripts there.
func (s *InterviewScreen) Resume() tea.Cmd {
	for i, n := range s.numbers {
		if qa, ok := s.store.Get(n); ok && s.inputs[i].Value() != qa.Answer {
			s.inputs[i].SetValue(qa.Answer)
		}
	}
	return nil
}

func (s *InterviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case NoticeMsg:
		s.notice = msg.Message
		return s, nil

	case dictationDoneMsg:
		return s, s.finishDictation(msg.Result)

	case submitDoneMsg:
		s.submitting = false
		s.status = outcomeStatus(msg.Outcome, msg.Err)
		return s, nil

	case statusTickMsg:
		if !s.submitting {
			return s, nil
		}
		st := s.submitter.Status()
		if st.State == submit.StateAttempting {
			s.status = fmt.Sprintf("Submitting (attempt %d of %d)", st.Attempt, s.submitter.MaxAttempts())
		}
		return s, s.statusTick()

	case router.UnknownRouteMsg:
		s.status = "No screen for " + msg.Route
		return s, nil

	case tea.KeyPressMsg:
		if s.notice != "" {
			return s, s.updateNotice(msg)
		}
		return s, s.handleKey(msg)
	}

	if len(s.inputs) == 0 {
		return s, nil
	}
	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return s, cmd
}

func (s *InterviewScreen) updateNotice(msg tea.KeyPressMsg) tea.Cmd {
	if msg.String() == "esc" {
		s.notice = ""
		return nil
	}
	var cmd tea.Cmd
	s.dismiss, cmd = s.dismiss.Update(msg)
	return cmd
}

func (s *InterviewScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if len(s.inputs) == 0 {
		return nil
	}
	switch msg.String() {
	case "up", "shift+tab":
		return s.moveFocus(-1)
	case "down", "tab":
		return s.moveFocus(1)
	case "ctrl+r":
		return s.startDictation()
	case "ctrl+s":
		return s.startSubmit()
	case "ctrl+o":
		return func() tea.Msg { return router.NavigateMsg{Route: HistoryRoute} }
	}

	before := s.inputs[s.focus].Value()
	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	if after := s.inputs[s.focus].Value(); after != before {
		s.store.SetAnswer(s.numbers[s.focus], after)
	}
	return cmd
}

func (s *InterviewScreen) moveFocus(delta int) tea.Cmd {
	next := (s.focus + delta + len(s.inputs)) % len(s.inputs)
	if next == s.focus {
		return nil
	}
	s.inputs[s.focus].Blur()
	s.focus = next
	return s.inputs[s.focus].Focus()
}

func (s *InterviewScreen) startDictation() tea.Cmd {
	if s.dictator == nil {
		return nil
	}
	number := s.numbers[s.focus]
	if s.recording[number] {
		return nil
	}
	s.recording[number] = true
	d := s.dictator.StartDictation(s.ctx, number)
	return func() tea.Msg {
		return dictationDoneMsg{screen: s, Result: d.Wait()}
	}
}

func (s *InterviewScreen) finishDictation(res speech.Result) tea.Cmd {
	delete(s.recording, res.Number)
	if res.Err != nil {
		if !errors.Is(res.Err, context.Canceled) {
			s.status = fmt.Sprintf("Could not capture an answer for question %d", res.Number)
		}
		return nil
	}
	qa, ok := s.store.Get(res.Number)
	if !ok {
		return nil
	}
	for i, n := range s.numbers {
		if n == res.Number {
			s.inputs[i].SetValue(qa.Answer)
		}
	}
	return nil
}

func (s *InterviewScreen) startSubmit() tea.Cmd {
	if s.submitting {
		return nil
	}
	s.submitting = true
	s.status = "Submitting"

	ctx := s.ctx
	snapshot := s.store.Snapshot()
	submitter := s.submitter
	run := func() tea.Msg {
		out, err := submitter.Submit(ctx, snapshot)
		return submitDoneMsg{screen: s, Outcome: out, Err: err}
	}
	return tea.Batch(run, s.statusTick())
}

func (s *InterviewScreen) statusTick() tea.Cmd {
	return tea.Tick(statusInterval, func(t time.Time) tea.Msg {
		return statusTickMsg{screen: s, at: t}
	})
}

func outcomeStatus(out *submit.Outcome, err error) string {
	switch {
	case errors.Is(err, submit.ErrInProgress):
		return "A submission is already running"
	case err != nil || out == nil:
		return ""
	case out.State == submit.StateSucceeded:
		return fmt.Sprintf("Feedback saved after %d attempt(s)", out.Attempts)
	default:
		return fmt.Sprintf("Submission failed after %d attempt(s)", out.Attempts)
	}
}

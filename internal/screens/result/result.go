// Package result shows stored feedback at /feedback/<id>.
package result

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/interview/internal/feedback"
	"github.com/abhisek/interview/internal/screen"
	"github.com/abhisek/interview/internal/store"
	"github.com/abhisek/interview/internal/submit"
	"github.com/abhisek/interview/internal/ui/layout"
	"github.com/abhisek/interview/internal/ui/theme"
)

// RoutePrefix is the route this screen is registered under.
const RoutePrefix = "/feedback/"

// Fetcher reads stored feedback. *feedback.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (*feedback.Document, error)
}

// OutcomeHistory looks up recorded submission outcomes. store.EventRepo
// satisfies it.
type OutcomeHistory interface {
	RecentOutcomes(ctx context.Context, opts store.QueryOpts) ([]store.OutcomeEventRecord, error)
}

type loadedMsg struct {
	Doc     *feedback.Document
	Outcome *store.OutcomeEventRecord
	Err     error
}

// review is the feedback shape produced by the bundled feedback service.
// Other shapes fall back to indented JSON.
type review struct {
	Overall string `json:"overall"`
	Score   *int   `json:"score"`
	Answers []struct {
		Number      int    `json:"number"`
		Score       int    `json:"score"`
		Strengths   string `json:"strengths"`
		Improvement string `json:"improvement"`
	} `json:"answers"`
}

// ResultScreen displays one stored feedback document.
type ResultScreen struct {
	ctx     context.Context
	cancel  context.CancelFunc
	id      string
	fetcher Fetcher
	history OutcomeHistory

	loaded  bool
	doc     *feedback.Document
	outcome *store.OutcomeEventRecord
	errMsg  string
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)
var _ screen.Closer = (*ResultScreen)(nil)

// Option configures a ResultScreen.
type Option func(*ResultScreen)

// WithFetcher loads the feedback document for display.
func WithFetcher(f Fetcher) Option {
	return func(s *ResultScreen) { s.fetcher = f }
}

// WithHistory shows how many attempts the submission took.
func WithHistory(h OutcomeHistory) Option {
	return func(s *ResultScreen) { s.history = h }
}

// New creates a ResultScreen for feedback id.
func New(id string, opts ...Option) *ResultScreen {
	ctx, cancel := context.WithCancel(context.Background())
	s := &ResultScreen{ctx: ctx, cancel: cancel, id: id}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the feedback id this screen shows.
func (s *ResultScreen) ID() string { return s.id }

func (s *ResultScreen) Init() tea.Cmd {
	ctx, fetcher, history, id := s.ctx, s.fetcher, s.history, s.id
	if fetcher == nil && history == nil {
		s.loaded = true
		return nil
	}
	return func() tea.Msg {
		var msg loadedMsg

		if history != nil {
			// Outcome lookup is best effort; the document is what matters.
			outcomes, err := history.RecentOutcomes(ctx, store.QueryOpts{Limit: 50})
			if err == nil {
				for i := range outcomes {
					if outcomes[i].FeedbackID == id {
						msg.Outcome = &outcomes[i]
						break
					}
				}
			}
		}
		if fetcher != nil {
			msg.Doc, msg.Err = fetcher.Fetch(ctx, id)
		}
		return msg
	}
}

// Close abandons a load still in flight.
func (s *ResultScreen) Close() { s.cancel() }

func (s *ResultScreen) Title() string {
	return "Feedback"
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Esc", Description: "Back to answers"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(loadedMsg); ok {
		s.loaded = true
		s.doc = msg.Doc
		s.outcome = msg.Outcome
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
	}
	return s, nil
}

func (s *ResultScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Succeeded.Render("Feedback saved"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render("ID     " + s.id))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("Route  " + submit.Route(s.id)))
	b.WriteString("\n")
	if s.outcome != nil {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("Stored after %d attempt(s) on %s",
			s.outcome.Attempts, s.outcome.Timestamp.Local().Format("Jan 02 15:04"))))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case !s.loaded:
		b.WriteString(theme.Hint.Render("Loading feedback..."))
	case s.errMsg != "":
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("Could not load feedback: " + s.errMsg))
	case s.doc != nil:
		b.WriteString(renderDocument(s.doc.Data, width-8))
	}

	return lipgloss.NewStyle().Width(width).Padding(0, 4).Render(b.String())
}

func renderDocument(data json.RawMessage, width int) string {
	var r review
	if err := json.Unmarshal(data, &r); err != nil || r.Score == nil {
		var pretty any
		if json.Unmarshal(data, &pretty) != nil {
			return string(data)
		}
		out, _ := json.MarshalIndent(pretty, "", "  ")
		return theme.Body.Render(string(out))
	}

	var b strings.Builder
	b.WriteString(theme.Title.Align(lipgloss.Left).Render(fmt.Sprintf("Score %d/10", *r.Score)))
	b.WriteString("\n")
	b.WriteString(theme.Body.Width(width).Render(r.Overall))
	b.WriteString("\n")
	for _, a := range r.Answers {
		b.WriteString("\n")
		b.WriteString(theme.Body.Bold(true).Render(fmt.Sprintf("Question %d  %d/10", a.Number, a.Score)))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Success).Width(width).Render("+ " + a.Strengths))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Width(width).Render("→ " + a.Improvement))
		b.WriteString("\n")
	}
	return b.String()
}

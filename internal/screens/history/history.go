package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/interview/internal/router"
	"github.com/abhisek/interview/internal/screen"
	"github.com/abhisek/interview/internal/store"
	"github.com/abhisek/interview/internal/ui/layout"
	"github.com/abhisek/interview/internal/ui/theme"
)

// Route is the path this screen is registered under.
const Route = "/history"

// Repo is the subset of store.EventRepo the screen reads.
type Repo interface {
	RecentOutcomes(ctx context.Context, opts store.QueryOpts) ([]store.OutcomeEventRecord, error)
	AttemptsForTrigger(ctx context.Context, triggerID string) ([]store.AttemptEventRecord, error)
}

type historyLoadedMsg struct {
	Outcomes []store.OutcomeEventRecord
	Attempts map[string][]store.AttemptEventRecord // trigger id → attempts
	Err      error
}

// HistoryScreen lists past submissions and their attempts.
type HistoryScreen struct {
	repo     Repo
	outcomes []store.OutcomeEventRecord
	attempts map[string][]store.AttemptEventRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(repo Repo) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		outcomes, err := s.repo.RecentOutcomes(ctx, store.QueryOpts{Limit: 50})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		attempts := make(map[string][]store.AttemptEventRecord, len(outcomes))
		for _, o := range outcomes {
			recs, err := s.repo.AttemptsForTrigger(ctx, o.TriggerID)
			if err != nil {
				continue
			}
			attempts[o.TriggerID] = recs
		}

		return historyLoadedMsg{Outcomes: outcomes, Attempts: attempts}
	}
}

func (s *HistoryScreen) Title() string {
	return "Submissions"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Attempts"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.outcomes = msg.Outcomes
			s.attempts = msg.Attempts
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.outcomes)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading submissions...")
	}
	if len(s.outcomes) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Nothing submitted yet.")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, o := range s.outcomes {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		result := o.Route
		if o.State != "succeeded" {
			result = "failed"
		}
		line := fmt.Sprintf("%s%s  %d/%d answered  %d attempt(s)  %s",
			prefix, o.Timestamp.Local().Format("Jan 02 15:04"), o.Answered, o.Questions, o.Attempts, result)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(s.renderAttempts(o.TriggerID, width))
		}
	}

	return b.String()
}

func (s *HistoryScreen) renderAttempts(trigger string, width int) string {
	recs := s.attempts[trigger]
	if len(recs) == 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Hint.Render("    No attempts recorded")) + "\n"
	}

	var b strings.Builder
	for _, a := range recs {
		mark, style := "✓", theme.Succeeded
		if !a.Success {
			mark, style = "✗", theme.Failed
		}
		detail := fmt.Sprintf("HTTP %d", a.StatusCode)
		if a.ErrorMessage != "" {
			detail = a.ErrorMessage
		}
		line := fmt.Sprintf("    #%d %-8s %s %s  %dms", a.Attempt, a.Step, mark, detail, a.LatencyMs)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.UnsetBold().Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

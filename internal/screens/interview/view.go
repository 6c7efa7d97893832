package interview

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/interview/internal/submit"
	"github.com/abhisek/interview/internal/ui/components"
	"github.com/abhisek/interview/internal/ui/layout"
	"github.com/abhisek/interview/internal/ui/theme"
)

func (s *InterviewScreen) View(width, height int) string {
	if s.notice != "" {
		body := theme.Failed.Render("Submission failed") + "\n\n" +
			theme.Body.Render(s.notice) + "\n\n" +
			lipgloss.PlaceHorizontal(lipgloss.Width(s.notice), lipgloss.Center, s.dismiss.View())
		return layout.RenderModal(body, width, height)
	}

	cardWidth := width - 4
	if cardWidth > 100 {
		cardWidth = 100
	}

	answered := 0
	for _, in := range s.inputs {
		if strings.TrimSpace(in.Value()) != "" {
			answered++
		}
	}
	progress := components.NewProgressBar("Answered", answered, len(s.inputs), cardWidth).View()
	status := s.renderStatus()

	budget := height - lipgloss.Height(progress) - lipgloss.Height(status) - 2
	cards := s.visibleCards(cardWidth, budget, layout.IsCompactHeight(height))

	content := lipgloss.JoinVertical(lipgloss.Left, progress, "", cards, "", status)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, content)
}

// visibleCards renders the focused card and as many neighbours as fit,
// preferring the cards after it.
func (s *InterviewScreen) visibleCards(width, budget int, compact bool) string {
	if len(s.inputs) == 0 {
		return theme.Hint.Render("No questions loaded.")
	}

	rendered := make([]string, len(s.inputs))
	for i := range s.inputs {
		rendered[i] = s.renderCard(i, width, compact)
	}

	first, last := s.focus, s.focus
	used := lipgloss.Height(rendered[s.focus])
	for last+1 < len(rendered) && used+lipgloss.Height(rendered[last+1]) <= budget {
		last++
		used += lipgloss.Height(rendered[last])
	}
	for first > 0 && used+lipgloss.Height(rendered[first-1]) <= budget {
		first--
		used += lipgloss.Height(rendered[first])
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered[first:last+1]...)
}

func (s *InterviewScreen) renderCard(i, width int, compact bool) string {
	number := s.numbers[i]

	heading := theme.Title.Align(lipgloss.Left).Render(fmt.Sprintf("Question %d", number))
	if s.recording[number] {
		heading += "  " + theme.Recording.Render("● listening")
	}

	question := s.questions[i]
	if compact && i != s.focus {
		question = truncate(question, width-6)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		heading,
		theme.Body.Width(width-4).Render(question),
		s.inputs[i].View(width-4),
	)

	style := theme.Card
	if i == s.focus {
		style = theme.FocusedCard
	}
	return style.Width(width).Render(body)
}

func (s *InterviewScreen) renderStatus() string {
	if s.status == "" {
		return ""
	}
	switch {
	case s.submitting:
		return theme.Pending.Render(s.status)
	case s.submitter.Status().State == submit.StateSucceeded:
		return theme.Succeeded.Render(s.status)
	default:
		return theme.Hint.Render(s.status)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

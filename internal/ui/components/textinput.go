package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/interview/internal/ui/theme"
)

// AnswerInput wraps bubbles/textinput for a single answer card. It starts
// blurred; the owning screen decides which card has focus.
type AnswerInput struct {
	Model textinput.Model
}

// NewAnswerInput creates an answer input. A charLimit of 0 means unlimited.
func NewAnswerInput(placeholder string, charLimit int) AnswerInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.CharLimit = charLimit
	ti.Blur()
	return AnswerInput{Model: ti}
}

// Update forwards messages to the input. Blurred inputs ignore key presses.
func (a AnswerInput) Update(msg tea.Msg) (AnswerInput, tea.Cmd) {
	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}

// View renders the input at the given width.
func (a AnswerInput) View(width int) string {
	if width > 4 {
		a.Model.SetWidth(width - 4)
	}
	if !a.Model.Focused() && a.Model.Value() == "" {
		return theme.Hint.Render("  " + a.Model.Placeholder)
	}
	return a.Model.View()
}

// Value returns the current text.
func (a AnswerInput) Value() string {
	return a.Model.Value()
}

// SetValue replaces the text and moves the cursor to the end.
func (a *AnswerInput) SetValue(s string) {
	a.Model.SetValue(s)
	a.Model.CursorEnd()
}

// Focus gives the input keyboard focus.
func (a *AnswerInput) Focus() tea.Cmd {
	return a.Model.Focus()
}

// Blur removes keyboard focus.
func (a *AnswerInput) Blur() {
	a.Model.Blur()
}

// Focused reports whether the input has focus.
func (a AnswerInput) Focused() bool {
	return a.Model.Focused()
}

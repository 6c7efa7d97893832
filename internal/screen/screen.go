// Package screen defines what the router stacks.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/interview/internal/ui/layout"
)

// Screen is one full-window view.
type Screen interface {
	// Init returns the command to run when the screen is pushed.
	Init() tea.Cmd

	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content area between header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Closer is implemented by screens holding work that must stop once they
// leave the stack.
type Closer interface {
	Close()
}

// Resumer is implemented by screens that refresh themselves when the
// screen above them is popped.
type Resumer interface {
	Resume() tea.Cmd
}

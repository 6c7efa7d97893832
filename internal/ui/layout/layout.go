// Package layout draws the frame shared by every screen: a header bar, the
// screen content, and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/interview/internal/ui/theme"
)

// Smallest terminal the interview renders in.
const (
	MinWidth  = 60
	MinHeight = 16
)

// Below this height cards drop their padding lines.
const CompactHeightThreshold = 30

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactHeight(height int) bool {
	return height < CompactHeightThreshold
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage fills the window with a resize request.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("Window too small for the interview.\n\nResize to at least %d x %d\n(currently %d x %d)",
		MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(msg))
}

var (
	bar = lipgloss.NewStyle().
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)

	brand      = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	badge      = lipgloss.NewStyle().Foreground(theme.Accent)
	hintKey    = lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	hintDesc   = lipgloss.NewStyle().Foreground(theme.TextDim)
	hintDivide = lipgloss.NewStyle().Foreground(theme.Border).Render(" │ ")
)

// RenderHeader puts the product name on the left, the screen title in the
// middle and an optional status badge on the right.
func RenderHeader(title, status string, width int) string {
	inner := max(width-4, 0)
	left := brand.Render("  Interview")
	right := ""
	if status != "" {
		right = badge.Render("[" + status + "]")
	}

	// Center the title in the full bar, then let the badge take what is left.
	used := lipgloss.Width(left)
	gapLeft := max((inner-lipgloss.Width(title))/2-used, 1)
	used += gapLeft + lipgloss.Width(title)
	gapRight := max(inner-used-lipgloss.Width(right), 1)

	row := left + strings.Repeat(" ", gapLeft) + theme.Body.Render(title) + strings.Repeat(" ", gapRight) + right
	return bar.Width(width).Render(row)
}

// RenderFooter lists key hints separated by dividers.
func RenderFooter(hints []KeyHint, width int) string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = hintKey.Render(h.Key) + " " + hintDesc.Render(h.Description)
	}
	return bar.Width(width).Render("  " + strings.Join(parts, hintDivide))
}

// RenderModal centers a bordered dialog in a blank area of the given size.
func RenderModal(body string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.Modal.Render(body))
}

// RenderFrame stacks header, content and footer, giving the content every
// row the bars do not use.
func RenderFrame(header, content, footer string, width, height int) string {
	rows := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().Width(width).Height(rows).MaxHeight(rows).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// Package theme holds the terminal palette and text styles of the CLI.
package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/pathwise/pathwise/internal/store"
)

// Color palette
var (
	Primary = lipgloss.Color("#8B5CF6") // Vivid Purple
	Accent  = lipgloss.Color("#F97316") // Orange
	Success = lipgloss.Color("#22C55E") // Green
	Error   = lipgloss.Color("#F43F5E") // Rose
	Text    = lipgloss.Color("#F8FAFC") // White
	TextDim = lipgloss.Color("#94A3B8") // Slate
	Bar     = lipgloss.Color("#14B8A6") // Teal
	Track   = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Track).
		Padding(0, 1)
)

// Outcomes
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Partial = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)
)

// Status renders a progress status with its color.
func Status(s store.Status) string {
	switch s {
	case store.StatusCompleted:
		return Correct.Render(string(s))
	case store.StatusInProgress:
		return Partial.Render(string(s))
	default:
		return Hint.Render(string(s))
	}
}

package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Spinner represents a loading spinner
type Spinner struct {
	frames []string
	frame  int
}

// NewSpinner creates a new spinner
func NewSpinner() *Spinner {
	return &Spinner{
		frames: []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"},
		frame:  0,
	}
}

// Next advances the spinner to the next frame
func (s *Spinner) Next() {
	s.frame = (s.frame + 1) % len(s.frames)
}

// View returns the current spinner frame
func (s *Spinner) View() string {
	return s.frames[s.frame]
}

var (
	spinnerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	loadingMsgStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
)

// loadingLine renders the spinner next to a message, used as the inline
// pending indicator of whichever section is waiting on the service.
func (s *Spinner) loadingLine(message string) string {
	return fmt.Sprintf("%s %s",
		spinnerStyle.Render(s.View()),
		loadingMsgStyle.Render(message))
}

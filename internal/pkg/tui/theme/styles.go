package theme

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles groups the lipgloss styles shared by report commands.
type Styles struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Body        lipgloss.Style
	Muted       lipgloss.Style
	Bold        lipgloss.Style
	Highlighted lipgloss.Style
	Label       lipgloss.Style

	Card lipgloss.Style

	BarFilled lipgloss.Style
	BarEmpty  lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
}

var (
	defaultStyles *Styles
	once          sync.Once
)

// Default returns the singleton default Styles instance
func Default() *Styles {
	once.Do(func() {
		defaultStyles = newStyles()
	})
	return defaultStyles
}

func newStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(Text).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true),

		Body: lipgloss.NewStyle().
			Foreground(TextDim),

		Muted: lipgloss.NewStyle().
			Foreground(TextMuted),

		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(Text),

		Highlighted: lipgloss.NewStyle().
			Foreground(AccentBright).
			Bold(true),

		Label: lipgloss.NewStyle().
			Foreground(TextDim).
			Width(18),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2),

		BarFilled: lipgloss.NewStyle().
			Foreground(Bar),

		BarEmpty: lipgloss.NewStyle().
			Foreground(Border),

		Success: lipgloss.NewStyle().
			Foreground(Good),

		Warning: lipgloss.NewStyle().
			Foreground(Warn),
	}
}

package theme

import "github.com/charmbracelet/lipgloss"

// Palette roles used by the report output.
var (
	Accent       = lipgloss.Color("#A855F7")
	AccentBright = lipgloss.Color("#C084FC")

	Text      = lipgloss.Color("#FFFFFF")
	TextDim   = lipgloss.Color("#9CA3AF")
	TextMuted = lipgloss.Color("#6B7280")
	Border    = lipgloss.Color("#374151")

	Bar  = lipgloss.Color("#06B6D4")
	Good = lipgloss.Color("#22C55E")
	Warn = lipgloss.Color("#F59E0B")
)

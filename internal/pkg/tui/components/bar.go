package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/claude-activity/internal/pkg/tui/theme"
)

// BarRow is one labelled value in a bar chart.
type BarRow struct {
	Label string
	Value float64
	Text  string
}

// BarChart renders rows as horizontal bars scaled to the largest value.
type BarChart struct {
	Rows   []BarRow
	Width  int
	styles *theme.Styles
}

// NewBarChart creates a bar chart with bars up to width cells wide.
func NewBarChart(width int, rows ...BarRow) BarChart {
	return BarChart{
		Rows:   rows,
		Width:  width,
		styles: theme.Default(),
	}
}

// Filled returns how many of width cells value occupies relative to peak.
// Any positive value gets at least one cell.
func Filled(value, peak float64, width int) int {
	if peak <= 0 || value <= 0 || width <= 0 {
		return 0
	}
	n := int(value / peak * float64(width))
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return n
}

// View renders the chart
func (c BarChart) View() string {
	var peak float64
	labelWidth := 0
	for _, r := range c.Rows {
		peak = max(peak, r.Value)
		labelWidth = max(labelWidth, lipgloss.Width(r.Label))
	}

	var lines []string
	for _, r := range c.Rows {
		n := Filled(r.Value, peak, c.Width)
		bar := c.styles.BarFilled.Render(strings.Repeat("█", n)) +
			c.styles.BarEmpty.Render(strings.Repeat("░", c.Width-n))
		label := fmt.Sprintf("%-*s", labelWidth, r.Label)
		lines = append(lines, fmt.Sprintf("%s  %s  %s", c.styles.Body.Render(label), bar, c.styles.Muted.Render(r.Text)))
	}
	return strings.Join(lines, "\n")
}

package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyquiz/internal/ui/theme"
)

// ProgressBar shows how far through a quiz or deck the user is.
type ProgressBar struct {
	Label   string
	Current int
	Total   int
	Width   int
}

// NewProgressBar creates a bar for current out of total.
func NewProgressBar(label string, current, total, width int) ProgressBar {
	return ProgressBar{Label: label, Current: current, Total: total, Width: width}
}

// Fraction is Current/Total clamped to [0,1].
func (p ProgressBar) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return min(max(float64(p.Current)/float64(p.Total), 0), 1)
}

// View renders "label  ████░░░░  3/7".
func (p ProgressBar) View() string {
	var head string
	if p.Label != "" {
		head = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}
	tail := lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  %d/%d", p.Current, p.Total))

	barWidth := max(p.Width-lipgloss.Width(head)-lipgloss.Width(tail), 4)
	filled := int(float64(barWidth) * p.Fraction())

	return head +
		lipgloss.NewStyle().Foreground(theme.Secondary).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("░", barWidth-filled)) +
		tail
}

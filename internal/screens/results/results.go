// Package results shows the score of a finished quiz.
package results

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyquiz/internal/review"
	"github.com/abhisek/studyquiz/internal/router"
	"github.com/abhisek/studyquiz/internal/screen"
	"github.com/abhisek/studyquiz/internal/screens/flashcards"
	"github.com/abhisek/studyquiz/internal/session"
	"github.com/abhisek/studyquiz/internal/ui/components"
	"github.com/abhisek/studyquiz/internal/ui/layout"
	"github.com/abhisek/studyquiz/internal/ui/theme"
)

// ResultsScreen displays a Summary and offers to review missed questions.
type ResultsScreen struct {
	summary session.Summary
	saveErr error
	menu    components.Menu
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)
var _ screen.StatusProvider = (*ResultsScreen)(nil)

// New creates a results screen. saveErr, if set, is shown as a warning.
func New(sum session.Summary, saveErr error) *ResultsScreen {
	cards := review.FromSummary(sum)
	label := fmt.Sprintf("Review missed questions (%d)", len(cards))
	return &ResultsScreen{
		summary: sum,
		saveErr: saveErr,
		menu: components.NewMenu([]components.MenuItem{
			{
				Label:    label,
				Disabled: len(cards) == 0,
				Action: func() tea.Cmd {
					return func() tea.Msg { return router.PushScreenMsg{Screen: flashcards.New(cards)} }
				},
			},
			{Label: "Done", Action: func() tea.Cmd { return tea.Quit }},
		}),
	}
}

func (s *ResultsScreen) Init() tea.Cmd { return nil }

func (s *ResultsScreen) Title() string { return "Results" }

func (s *ResultsScreen) Status() string {
	return fmt.Sprintf("%d%%", s.summary.Percentage())
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *ResultsScreen) View(width, height int) string {
	sum := s.summary
	band := sum.Feedback()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered("Quiz complete!", width, theme.Title))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(fmt.Sprintf("%d / %d correct   %d%%", sum.Score, sum.Total, sum.Percentage()),
		width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true)))
	b.WriteString("\n")
	b.WriteString(layout.Centered(band.Message, width, lipgloss.NewStyle().Foreground(theme.ScoreColor(sum.Percentage()))))
	b.WriteString("\n\n")

	if s.saveErr != nil {
		b.WriteString(layout.Centered("Result not saved: "+s.saveErr.Error(), width, theme.Hint))
		b.WriteString("\n\n")
	}

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n")

	for i, a := range sum.Answers {
		mark, style := "✓", theme.Correct
		if !a.IsCorrect {
			mark, style = "✗", theme.Incorrect
		}
		line := fmt.Sprintf("%s %d. %s", style.Render(mark), i+1, layout.Truncate(a.Question, min(width-16, 70)))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.menu.View()))
	return b.String()
}

// Package flashcards shows missed questions one card at a time.
package flashcards

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyquiz/internal/review"
	"github.com/abhisek/studyquiz/internal/screen"
	"github.com/abhisek/studyquiz/internal/ui/components"
	"github.com/abhisek/studyquiz/internal/ui/layout"
	"github.com/abhisek/studyquiz/internal/ui/theme"
)

// FlashcardScreen flips through a review deck.
type FlashcardScreen struct {
	cursor review.Cursor
}

var _ screen.Screen = (*FlashcardScreen)(nil)
var _ screen.KeyHintProvider = (*FlashcardScreen)(nil)
var _ screen.StatusProvider = (*FlashcardScreen)(nil)

// New creates a screen over cards, shuffled.
func New(cards []review.Card) *FlashcardScreen {
	return &FlashcardScreen{cursor: review.Cursor{Cards: review.Shuffle(cards, nil)}}
}

func (s *FlashcardScreen) Init() tea.Cmd { return nil }

func (s *FlashcardScreen) Title() string { return "Review" }

func (s *FlashcardScreen) Status() string {
	if len(s.cursor.Cards) == 0 {
		return ""
	}
	return fmt.Sprintf("Card %d/%d", s.cursor.Index+1, len(s.cursor.Cards))
}

func (s *FlashcardScreen) KeyHints() []layout.KeyHint {
	if len(s.cursor.Cards) == 0 {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}, {Key: "Ctrl+C", Description: "Quit"}}
	}
	return []layout.KeyHint{
		{Key: "Space", Description: "Flip"},
		{Key: "←→", Description: "Prev/Next"},
		{Key: "S", Description: "Shuffle & restart"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *FlashcardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "space", " ", "enter":
		s.cursor.Flip()
	case "right", "l", "n":
		s.cursor.Next()
	case "left", "h", "p":
		s.cursor.Prev()
	case "s", "S":
		s.cursor.Restart(nil)
	case "q", "esc":
		// Esc only reaches a root screen; pushed screens are popped by the app.
		return s, tea.Quit
	}
	return s, nil
}

func (s *FlashcardScreen) View(width, height int) string {
	card, ok := s.cursor.Current()
	if !ok {
		return layout.Centered("\n\nNo missed questions to review. Nice work!", width, theme.Hint)
	}

	var b strings.Builder
	b.WriteString("\n")
	bar := components.NewProgressBar("", s.cursor.Index+1, len(s.cursor.Cards), min(width-8, 60))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	inner := min(width-8, 70)
	var body string
	if !s.cursor.Flipped {
		body = theme.Hint.Render("Question") + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(inner).Render(card.Question) + "\n\n" +
			theme.Hint.Render("Press Space to reveal the answer")
	} else {
		body = theme.Incorrect.Render("Your answer: ") + card.UserAnswer + "\n" +
			theme.Correct.Render("Correct answer: ") + card.CorrectAnswer
		if card.Explanation != "" {
			body += "\n\n" + lipgloss.NewStyle().Foreground(theme.Text).Width(inner).Render(card.Explanation)
		}
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Card.Width(inner+6).Render(body)))
	return b.String()
}

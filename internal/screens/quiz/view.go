package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyquiz/internal/quizgen"
	"github.com/abhisek/studyquiz/internal/session"
	"github.com/abhisek/studyquiz/internal/ui/components"
	"github.com/abhisek/studyquiz/internal/ui/layout"
	"github.com/abhisek/studyquiz/internal/ui/theme"
)

var typeLabels = map[quizgen.QuestionType]string{
	quizgen.TypeMultipleChoice: "Multiple choice",
	quizgen.TypeTrueFalse:      "True or false",
	quizgen.TypeShortAnswer:    "Short answer",
}

func (s *QuizScreen) View(width, height int) string {
	if s.confirmQuit {
		return renderQuitConfirm(width)
	}

	inner := min(width-8, 70)
	q := s.state.Current()

	var b strings.Builder
	b.WriteString("\n")
	bar := components.NewProgressBar("Question", s.state.Index+1, s.state.Total(), min(width-8, 60))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	body := theme.Hint.Render(typeLabels[q.Type]) + "\n\n" +
		lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(inner).Render(q.Question)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Card.Width(inner+6).Render(body)))
	b.WriteString("\n\n")

	switch {
	case s.state.Phase == session.PhaseShowingFeedback:
		b.WriteString(s.renderFeedback(width, inner))
	case s.state.Reviewing():
		b.WriteString(s.renderReview(width, inner))
	case s.grading:
		b.WriteString(layout.Centered("Checking your answer...", width, theme.Hint))
	default:
		b.WriteString(s.renderInput(width))
	}

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(layout.Centered(s.errMsg, width, lipgloss.NewStyle().Foreground(theme.Error)))
	}
	return b.String()
}

func (s *QuizScreen) renderInput(width int) string {
	q := s.state.Current()
	if q.Type.Closed() {
		block := s.picker.View("", "") + "\n" + theme.Hint.Render(fmt.Sprintf("Select (A-%c) or use arrows + Enter", 'A'+len(s.picker.Options)-1))
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, "Answer: "+s.input.View())
}

func (s *QuizScreen) renderFeedback(width, inner int) string {
	rec := s.state.Answers[len(s.state.Answers)-1]
	q := s.state.Current()

	var b strings.Builder
	if q.Type.Closed() {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, components.NewPicker(choices(q)).View(rec.UserAnswer, rec.CorrectAnswer)))
		b.WriteString("\n")
	}
	b.WriteString(renderVerdict(rec, width, inner))
	if s.state.Reasoning != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Hint.Width(inner).Render(s.state.Reasoning)))
	}
	b.WriteString("\n\n")
	next := "Press Enter for the next question"
	if s.state.Index == s.state.Total()-1 {
		next = "Press Enter to see your results"
	}
	b.WriteString(layout.Centered(next, width, theme.Hint))
	return b.String()
}

func (s *QuizScreen) renderReview(width, inner int) string {
	rec, _ := s.state.Record()
	q := s.state.Current()

	var b strings.Builder
	b.WriteString(layout.Centered("Reviewing an answered question", width, theme.Subtitle))
	b.WriteString("\n\n")
	if q.Type.Closed() {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, components.NewPicker(choices(q)).View(rec.UserAnswer, rec.CorrectAnswer)))
		b.WriteString("\n")
	}
	b.WriteString(renderVerdict(rec, width, inner))
	return b.String()
}

func renderVerdict(rec session.AnswerRecord, width, inner int) string {
	var b strings.Builder
	if rec.IsCorrect {
		b.WriteString(layout.Centered("Correct!", width, theme.Correct))
	} else {
		b.WriteString(layout.Centered("Not quite", width, theme.Incorrect))
		b.WriteString("\n")
		b.WriteString(layout.Centered("Your answer: "+rec.UserAnswer, width, lipgloss.NewStyle().Foreground(theme.TextDim)))
		b.WriteString("\n")
		b.WriteString(layout.Centered("Correct answer: "+rec.CorrectAnswer, width, lipgloss.NewStyle().Foreground(theme.Text)))
	}
	if rec.Explanation != "" {
		b.WriteString("\n\n")
		exp := lipgloss.NewStyle().Foreground(theme.Text).Width(inner).Render(rec.Explanation)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, exp))
	}
	return b.String()
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered("End quiz early?", width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true)))
	b.WriteString("\n")
	b.WriteString(layout.Centered("Unfinished quizzes are not saved.", width, lipgloss.NewStyle().Foreground(theme.TextDim)))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered("[Y] Yes, end quiz", width, lipgloss.NewStyle().Foreground(theme.Success)))
	b.WriteString("\n")
	b.WriteString(layout.Centered("[N] No, keep going", width, lipgloss.NewStyle().Foreground(theme.Primary)))
	return b.String()
}

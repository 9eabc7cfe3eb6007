// Package history lists past quiz results.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyquiz/internal/review"
	"github.com/abhisek/studyquiz/internal/router"
	"github.com/abhisek/studyquiz/internal/screen"
	"github.com/abhisek/studyquiz/internal/screens/flashcards"
	"github.com/abhisek/studyquiz/internal/store"
	"github.com/abhisek/studyquiz/internal/ui/layout"
	"github.com/abhisek/studyquiz/internal/ui/theme"
)

// ListLimit is the number of results shown.
const ListLimit = 50

type historyLoadedMsg struct {
	Results []store.Result
	Err     error
}

type detailLoadedMsg struct {
	ID     int
	Result *store.Result
	Err    error
}

// HistoryScreen displays past results. Answers are loaded on demand.
type HistoryScreen struct {
	ctx      context.Context
	repo     store.ResultRepo
	results  []store.Result
	details  map[int]*store.Result
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)
var _ screen.StatusProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(ctx context.Context, repo store.ResultRepo) *HistoryScreen {
	return &HistoryScreen{
		ctx:      ctx,
		repo:     repo,
		details:  make(map[int]*store.Result),
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	ctx, repo := s.ctx, s.repo
	return func() tea.Msg {
		results, err := repo.ListResults(ctx, store.QueryOpts{Limit: ListLimit})
		return historyLoadedMsg{Results: results, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) Status() string {
	if !s.loaded || len(s.results) == 0 {
		return ""
	}
	return fmt.Sprintf("%d quizzes", len(s.results))
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "R", Description: "Review missed"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Quit"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.results = msg.Results
		}
		s.loaded = true
		return s, nil

	case detailLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		if msg.Result != nil {
			s.details[msg.ID] = msg.Result
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, tea.Quit
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.results)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if len(s.results) == 0 {
				return s, nil
			}
			s.expanded[s.selected] = !s.expanded[s.selected]
			id := s.results[s.selected].ID
			if s.expanded[s.selected] && s.details[id] == nil {
				return s, s.loadDetail(id)
			}
			return s, nil
		case "r", "R":
			return s, s.reviewSelected()
		}
	}
	return s, nil
}

func (s *HistoryScreen) loadDetail(id int) tea.Cmd {
	ctx, repo := s.ctx, s.repo
	return func() tea.Msg {
		r, err := repo.GetResult(ctx, id)
		return detailLoadedMsg{ID: id, Result: r, Err: err}
	}
}

// reviewSelected opens flashcards for the selected result's misses.
func (s *HistoryScreen) reviewSelected() tea.Cmd {
	if len(s.results) == 0 {
		return nil
	}
	sel := s.results[s.selected]
	if sel.Score == sel.Total {
		return nil
	}
	if r := s.details[sel.ID]; r != nil {
		cards := review.FromResult(*r)
		return func() tea.Msg { return router.PushScreenMsg{Screen: flashcards.New(cards)} }
	}
	ctx, repo := s.ctx, s.repo
	return func() tea.Msg {
		r, err := repo.GetResult(ctx, sel.ID)
		if err != nil || r == nil {
			return detailLoadedMsg{ID: sel.ID, Result: r, Err: err}
		}
		return router.PushScreenMsg{Screen: flashcards.New(review.FromResult(*r))}
	}
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered(fmt.Sprintf("\n\nError: %s", s.errMsg), width, lipgloss.NewStyle().Foreground(theme.Error))
	}
	if !s.loaded {
		return layout.Centered("\n\n  Loading history...", width, lipgloss.NewStyle().Foreground(theme.TextDim))
	}
	if len(s.results) == 0 {
		return layout.Centered("\n\n  No quizzes yet. Run one with `studyquiz quiz <file>`.", width, theme.Hint)
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, r := range s.results {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		source := r.Source
		if source == "" {
			source = "untitled"
		}
		line := fmt.Sprintf("%s%s  %-28s %2d/%-2d  %3d%%",
			prefix, r.Timestamp.Local().Format("Jan 02, 2006 15:04"), layout.Truncate(source, 28), r.Score, r.Total, r.Percentage())

		style := lipgloss.NewStyle().Foreground(theme.ScoreColor(r.Percentage()))
		if i == s.selected {
			style = style.Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(s.renderDetail(r, width))
		}
	}

	return b.String()
}

func (s *HistoryScreen) renderDetail(r store.Result, width int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)
	detail := s.details[r.ID]
	if detail == nil {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render("    Loading answers...")) + "\n"
	}

	var b strings.Builder
	meta := fmt.Sprintf("    %s difficulty, %s questions", detail.Difficulty, detail.QuestionTypes)
	if len(detail.Topics) > 0 {
		meta += ", topics: " + strings.Join(detail.Topics, ", ")
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render(meta)))
	b.WriteString("\n")
	for _, a := range detail.Answers {
		mark := theme.Correct.Render("✓")
		if !a.IsCorrect {
			mark = theme.Incorrect.Render("✗")
		}
		line := fmt.Sprintf("    %s %s", mark, layout.Truncate(a.Question, min(width-16, 64)))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
		b.WriteString("\n")
	}
	return b.String()
}

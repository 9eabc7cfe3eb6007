package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyquiz/internal/router"
	"github.com/abhisek/studyquiz/internal/screens/flashcards"
	"github.com/abhisek/studyquiz/internal/store"
)

// mockResultRepo implements store.ResultRepo for testing.
type mockResultRepo struct {
	results []store.Result
	gets    int
	listErr error
}

func (m *mockResultRepo) SaveResult(_ context.Context, _ store.ResultData) (*store.Result, error) {
	return nil, errors.New("not implemented")
}
func (m *mockResultRepo) ListResults(_ context.Context, opts store.QueryOpts) ([]store.Result, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]store.Result, 0, len(m.results))
	for _, r := range m.results {
		r.Answers = nil
		out = append(out, r)
	}
	return out, nil
}
func (m *mockResultRepo) GetResult(_ context.Context, id int) (*store.Result, error) {
	m.gets++
	for _, r := range m.results {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, nil
}
func (m *mockResultRepo) MissedAnswers(_ context.Context, _ int) ([]store.MissedAnswer, error) {
	return nil, nil
}
func (m *mockResultRepo) Stats(_ context.Context) (store.ResultStats, error) {
	return store.ResultStats{}, nil
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func testRepo() *mockResultRepo {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &mockResultRepo{results: []store.Result{
		{ID: 2, Timestamp: ts, ResultData: store.ResultData{
			Source: "biology.pdf", Difficulty: "medium", QuestionTypes: "mixed", Score: 1, Total: 2,
			Answers: []store.AnswerData{
				{Question: "What produces ATP?", UserAnswer: "Mitochondria", CorrectAnswer: "Mitochondria", IsCorrect: true},
				{Question: "Plants make food by?", UserAnswer: "Respiration", CorrectAnswer: "Photosynthesis"},
			},
		}},
		{ID: 1, Timestamp: ts.Add(-time.Hour), ResultData: store.ResultData{
			Source: "notes.txt", Score: 3, Total: 3,
		}},
	}}
}

func loaded(t *testing.T, repo *mockResultRepo) *HistoryScreen {
	t.Helper()
	s := New(context.Background(), repo)
	s.Update(s.Init()())
	if !s.loaded {
		t.Fatal("expected history to load")
	}
	return s
}

func TestHistoryScreen_List(t *testing.T) {
	s := loaded(t, testRepo())

	view := s.View(120, 30)
	for _, want := range []string{"biology.pdf", "notes.txt", "50%", "100%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if s.Status() != "2 quizzes" {
		t.Errorf("Status = %q", s.Status())
	}
}

func TestHistoryScreen_Empty(t *testing.T) {
	s := loaded(t, &mockResultRepo{})
	if !strings.Contains(s.View(120, 30), "No quizzes yet") {
		t.Fatal("expected empty message")
	}
}

func TestHistoryScreen_LoadError(t *testing.T) {
	s := loaded(t, &mockResultRepo{listErr: errors.New("db locked")})
	if !strings.Contains(s.View(120, 30), "db locked") {
		t.Fatal("expected error in view")
	}
}

func TestHistoryScreen_ExpandLoadsDetailOnce(t *testing.T) {
	repo := testRepo()
	s := loaded(t, repo)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected detail load")
	}
	s.Update(cmd())
	view := s.View(120, 30)
	if !strings.Contains(view, "Plants make food by?") || !strings.Contains(view, "medium difficulty") {
		t.Fatalf("expected answers in expanded view, got %q", view)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("detail should be cached")
	}
	if repo.gets != 1 {
		t.Fatalf("expected one GetResult call, got %d", repo.gets)
	}
}

func TestHistoryScreen_ReviewMissed(t *testing.T) {
	s := loaded(t, testRepo())

	_, cmd := s.Update(keyPress('r'))
	if cmd == nil {
		t.Fatal("expected review command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	fc, ok := push.Screen.(*flashcards.FlashcardScreen)
	if !ok {
		t.Fatalf("expected flashcard screen, got %T", push.Screen)
	}
	if fc.Status() != "Card 1/1" {
		t.Fatalf("expected one missed card, got %q", fc.Status())
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if _, cmd := s.Update(keyPress('r')); cmd != nil {
		t.Fatal("perfect score has nothing to review")
	}
}

package router

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyquiz/internal/screen"
)

type stubScreen struct {
	title   string
	inits   int
	updates []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.inits++
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.updates = append(s.updates, msg)
	return s, nil
}

func (s *stubScreen) View(int, int) string { return "[" + s.title + "]" }
func (s *stubScreen) Title() string        { return s.title }

func stackTitles(r *Router) string {
	titles := make([]string, 0, len(r.stack))
	for _, s := range r.stack {
		titles = append(titles, s.Title())
	}
	return strings.Join(titles, ">")
}

func TestRouter_Navigation(t *testing.T) {
	tests := []struct {
		name string
		msgs []tea.Msg
		want string
	}{
		{"initial", nil, "quiz"},
		{"push", []tea.Msg{PushScreenMsg{&stubScreen{title: "flashcards"}}}, "quiz>flashcards"},
		{"push then pop", []tea.Msg{PushScreenMsg{&stubScreen{title: "flashcards"}}, PopScreenMsg{}}, "quiz"},
		{"pop at root is ignored", []tea.Msg{PopScreenMsg{}, PopScreenMsg{}}, "quiz"},
		{"finished quiz becomes results", []tea.Msg{ReplaceScreenMsg{&stubScreen{title: "results"}}}, "results"},
		{"replace keeps depth", []tea.Msg{
			PushScreenMsg{&stubScreen{title: "history"}},
			ReplaceScreenMsg{&stubScreen{title: "flashcards"}},
		}, "quiz>flashcards"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&stubScreen{title: "quiz"})
			for _, msg := range tt.msgs {
				r.Update(msg)
			}
			if got := stackTitles(r); got != tt.want {
				t.Errorf("stack = %q, want %q", got, tt.want)
			}
			if r.Depth() != strings.Count(tt.want, ">")+1 {
				t.Errorf("depth = %d for stack %q", r.Depth(), tt.want)
			}
		})
	}
}

func TestRouter_InitRunsOnEntry(t *testing.T) {
	r := New(&stubScreen{title: "quiz"})

	pushed := &stubScreen{title: "flashcards"}
	r.Update(PushScreenMsg{Screen: pushed})
	replaced := &stubScreen{title: "results"}
	r.Update(ReplaceScreenMsg{Screen: replaced})

	if pushed.inits != 1 || replaced.inits != 1 {
		t.Errorf("inits: pushed=%d replaced=%d, want 1 each", pushed.inits, replaced.inits)
	}
}

func TestRouter_ForwardsToActive(t *testing.T) {
	root := &stubScreen{title: "quiz"}
	top := &stubScreen{title: "flashcards"}
	r := New(root)
	r.Push(top)

	type ping struct{}
	r.Update(ping{})

	if len(top.updates) != 1 || len(root.updates) != 0 {
		t.Fatalf("updates: top=%d root=%d, want only the top screen", len(top.updates), len(root.updates))
	}
	if got := r.View(80, 24); got != "[flashcards]" {
		t.Errorf("View = %q", got)
	}
}

func TestRouter_ReplaceOnEmptyStackPushes(t *testing.T) {
	r := &Router{}
	r.Replace(&stubScreen{title: "results"})
	if r.Depth() != 1 || r.Active().Title() != "results" {
		t.Errorf("stack = %q", stackTitles(r))
	}
}

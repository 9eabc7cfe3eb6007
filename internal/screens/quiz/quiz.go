// Package quiz runs one quiz attempt in the terminal.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyquiz/internal/logging"
	"github.com/abhisek/studyquiz/internal/quizgen"
	"github.com/abhisek/studyquiz/internal/router"
	"github.com/abhisek/studyquiz/internal/screen"
	"github.com/abhisek/studyquiz/internal/screens/results"
	"github.com/abhisek/studyquiz/internal/session"
	"github.com/abhisek/studyquiz/internal/store"
	"github.com/abhisek/studyquiz/internal/ui/components"
	"github.com/abhisek/studyquiz/internal/ui/layout"
)

// Options describes the quiz for the stored result.
type Options struct {
	Source        string
	Topics        []string
	Difficulty    quizgen.Difficulty
	QuestionTypes quizgen.TypeMix
}

// QuizScreen implements screen.Screen for an active quiz.
type QuizScreen struct {
	ctx     context.Context
	state   session.State
	grader  session.Grader
	results store.ResultRepo
	opts    Options

	picker components.Picker
	input  components.TextInput

	grading     bool
	confirmQuit bool
	errMsg      string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.StatusProvider = (*QuizScreen)(nil)
var _ screen.Busy = (*QuizScreen)(nil)

// New creates a quiz over questions. results may be nil, in which case
// the finished attempt is not stored.
func New(ctx context.Context, questions []quizgen.Question, grader session.Grader, results store.ResultRepo, opts Options) (*QuizScreen, error) {
	st, err := session.New(questions)
	if err != nil {
		return nil, err
	}
	s := &QuizScreen{
		ctx:     ctx,
		state:   st,
		grader:  grader,
		results: results,
		opts:    opts,
	}
	s.prepareInput()
	return s, nil
}

func (s *QuizScreen) Init() tea.Cmd {
	if s.state.Current().Type == quizgen.TypeShortAnswer {
		return s.input.Init()
	}
	return nil
}

func (s *QuizScreen) Title() string { return "Quiz" }

func (s *QuizScreen) Status() string {
	return fmt.Sprintf("Score %d/%d", s.state.Score(), len(s.state.Answers))
}

func (s *QuizScreen) Busy() bool { return s.grading }

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.grading:
		return []layout.KeyHint{{Key: "", Description: "Checking your answer..."}}
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "End quiz"},
			{Key: "N", Description: "Keep going"},
		}
	case s.state.Phase == session.PhaseShowingFeedback:
		return []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
	case s.state.Reviewing():
		return []layout.KeyHint{
			{Key: "←", Description: "Previous"},
			{Key: "→", Description: "Next"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	hints := []layout.KeyHint{{Key: "Enter", Description: "Submit"}}
	if s.state.Current().Type.Closed() {
		hints = append([]layout.KeyHint{{Key: "↑↓", Description: "Choose"}}, hints...)
	}
	if s.state.Index > 0 {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+P", Description: "Previous"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Quit"})
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case gradedMsg:
		return s.handleGraded(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.answering() && s.state.Current().Type == quizgen.TypeShortAnswer {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// answering reports whether the question on screen is waiting for input.
func (s *QuizScreen) answering() bool {
	return !s.grading && !s.confirmQuit &&
		s.state.Phase == session.PhaseAwaitingAnswer && !s.state.Reviewing()
}

func (s *QuizScreen) handleGraded(msg gradedMsg) (screen.Screen, tea.Cmd) {
	s.grading = false
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.errMsg = ""
	s.state = msg.State
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.grading {
		return s, nil
	}
	key := msg.String()

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			return s, tea.Quit
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if key == "esc" {
		s.confirmQuit = true
		return s, nil
	}

	switch {
	case s.state.Phase == session.PhaseShowingFeedback:
		switch key {
		case "enter", "space", " ", "right":
			return s.advance()
		}
		return s, nil
	case s.state.Reviewing():
		switch key {
		case "right", "ctrl+n", "enter":
			s.move(session.Forward)
		case "left", "ctrl+p":
			s.move(session.Back)
		}
		return s, nil
	case s.state.Phase != session.PhaseAwaitingAnswer:
		return s, nil
	}

	q := s.state.Current()
	if key == "ctrl+p" || (key == "left" && q.Type.Closed()) {
		s.move(session.Back)
		return s, nil
	}

	if q.Type.Closed() {
		var committed bool
		s.picker, committed = s.picker.Update(msg)
		if committed {
			return s, s.submit(s.picker.Value())
		}
		return s, nil
	}

	if key == "enter" {
		return s, s.submit(s.input.Value())
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// submit grades answer off the UI goroutine.
func (s *QuizScreen) submit(answer string) tea.Cmd {
	if strings.TrimSpace(answer) == "" {
		s.errMsg = "Please enter an answer."
		return nil
	}
	s.errMsg = ""
	s.grading = true

	ctx, st, g := s.ctx, s.state, s.grader
	return func() tea.Msg {
		next, err := session.Submit(ctx, st, g, answer)
		return gradedMsg{State: next, Err: err}
	}
}

func (s *QuizScreen) advance() (screen.Screen, tea.Cmd) {
	next, sum, err := session.Advance(s.state)
	if err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	s.state = next
	if sum == nil {
		s.prepareInput()
		return s, s.Init()
	}
	return s, s.finish(*sum)
}

// finish stores the attempt and swaps this screen for its results.
func (s *QuizScreen) finish(sum session.Summary) tea.Cmd {
	ctx, repo, data := s.ctx, s.results, s.resultData(sum)
	return func() tea.Msg {
		var saveErr error
		if repo != nil {
			log := logging.FromContext(ctx)
			res, err := repo.SaveResult(ctx, data)
			if err != nil {
				log.Warn().Err(err).Msg("save quiz result failed")
				saveErr = err
			} else {
				log.Debug().Int("id", res.ID).Int("score", res.Score).Int("total", res.Total).Msg("quiz result saved")
			}
		}
		return router.ReplaceScreenMsg{Screen: results.New(sum, saveErr)}
	}
}

func (s *QuizScreen) resultData(sum session.Summary) store.ResultData {
	answers := make([]store.AnswerData, 0, len(sum.Answers))
	for _, a := range sum.Answers {
		answers = append(answers, store.AnswerData(a))
	}
	return store.ResultData{
		Source:        s.opts.Source,
		Topics:        s.opts.Topics,
		Difficulty:    string(s.opts.Difficulty),
		QuestionTypes: string(s.opts.QuestionTypes),
		Score:         sum.Score,
		Total:         sum.Total,
		Answers:       answers,
	}
}

func (s *QuizScreen) move(step func(session.State) (session.State, error)) {
	next, err := step(s.state)
	if err != nil {
		if !errors.Is(err, session.ErrAtStart) && !errors.Is(err, session.ErrAtFrontier) {
			s.errMsg = err.Error()
		}
		return
	}
	s.errMsg = ""
	s.state = next
	if !s.state.Reviewing() {
		s.prepareInput()
	}
}

// prepareInput resets the answer controls for the question on screen.
func (s *QuizScreen) prepareInput() {
	q := s.state.Current()
	if q.Type.Closed() {
		s.picker = components.NewPicker(choices(q))
		return
	}
	s.input = components.NewTextInput("Type your answer...", 500)
}

// choices returns the options shown for a closed question.
func choices(q quizgen.Question) []string {
	if q.Type == quizgen.TypeTrueFalse {
		return []string{"True", "False"}
	}
	return q.Options
}

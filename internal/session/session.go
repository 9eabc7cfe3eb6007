// Package session drives one quiz attempt as an explicit state machine.
package session

import (
	"context"
	"slices"
	"strings"

	"github.com/abhisek/studyquiz/internal/grading"
	"github.com/abhisek/studyquiz/internal/quizgen"
)

// Grader decides whether an answer is correct. It never fails.
type Grader interface {
	Grade(ctx context.Context, q quizgen.Question, userAnswer string) grading.Outcome
}

// New starts an attempt at the first question.
func New(questions []quizgen.Question) (State, error) {
	if len(questions) == 0 {
		return State{}, ErrNoQuestions
	}
	return State{
		Questions: slices.Clone(questions),
		Phase:     PhaseAwaitingAnswer,
	}, nil
}

// Submit grades answer for the question on screen and shows feedback.
func Submit(ctx context.Context, s State, g Grader, answer string) (State, error) {
	switch {
	case s.Phase == PhaseComplete:
		return s, ErrComplete
	case s.Phase != PhaseAwaitingAnswer:
		return s, ErrWrongPhase
	case s.Index < len(s.Answers):
		return s, ErrAlreadyAnswered
	case strings.TrimSpace(answer) == "":
		return s, ErrEmptyAnswer
	}

	q := s.Current()
	outcome := g.Grade(ctx, q, answer)

	next := s
	next.Answers = append(slices.Clip(s.Answers), AnswerRecord{
		Question:      q.Question,
		UserAnswer:    answer,
		CorrectAnswer: q.CorrectAnswer,
		IsCorrect:     outcome.IsCorrect,
		Explanation:   q.Explanation,
	})
	next.Reasoning = outcome.Reasoning
	next.Phase = PhaseShowingFeedback
	return next, nil
}

// Advance leaves feedback for the next question. After the last question
// the attempt completes and the Summary is returned.
func Advance(s State) (State, *Summary, error) {
	switch s.Phase {
	case PhaseComplete:
		return s, nil, ErrComplete
	case PhaseShowingFeedback:
	default:
		return s, nil, ErrWrongPhase
	}

	next := s
	next.Reasoning = ""
	if s.Index+1 < len(s.Questions) {
		next.Index++
		next.Phase = PhaseAwaitingAnswer
		return next, nil, nil
	}
	next.Phase = PhaseComplete
	sum := Summarize(next.Answers)
	return next, &sum, nil
}

// Back moves to the previous question for review. Recorded answers are
// not changed.
func Back(s State) (State, error) {
	switch {
	case s.Phase == PhaseComplete:
		return s, ErrComplete
	case s.Phase != PhaseAwaitingAnswer:
		return s, ErrWrongPhase
	case s.Index == 0:
		return s, ErrAtStart
	}
	next := s
	next.Index--
	return next, nil
}

// Forward moves from a reviewed question toward the first unanswered one.
func Forward(s State) (State, error) {
	switch {
	case s.Phase == PhaseComplete:
		return s, ErrComplete
	case s.Phase != PhaseAwaitingAnswer:
		return s, ErrWrongPhase
	case s.Index >= len(s.Answers):
		return s, ErrAtFrontier
	}
	next := s
	next.Index++
	return next, nil
}

package session

import (
	"errors"

	"github.com/abhisek/studyquiz/internal/quizgen"
)

// Phase is the state of a quiz attempt at its current question.
type Phase int

const (
	PhaseAwaitingAnswer  Phase = iota // Waiting for an answer, or reviewing an answered question
	PhaseShowingFeedback              // Showing the verdict for the question just answered
	PhaseComplete                     // Every question answered; the summary has been emitted
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingAnswer:
		return "awaiting-answer"
	case PhaseShowingFeedback:
		return "showing-feedback"
	case PhaseComplete:
		return "complete"
	}
	return "unknown"
}

// Errors returned by transitions that are not allowed from the current state.
var (
	ErrNoQuestions     = quizgen.ErrNoQuestions
	ErrWrongPhase      = errors.New("transition not allowed in current phase")
	ErrEmptyAnswer     = errors.New("answer is empty")
	ErrAlreadyAnswered = errors.New("question was already answered")
	ErrAtStart         = errors.New("already at the first question")
	ErrAtFrontier      = errors.New("no answered question ahead")
	ErrComplete        = errors.New("quiz is complete")
)

// AnswerRecord is the graded outcome of one question. Records are never
// modified once appended.
type AnswerRecord struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation"`
}

// State is one quiz attempt. Transitions take a State and return the next
// one; the receiver is never modified.
type State struct {
	// Questions is the quiz in presentation order.
	Questions []quizgen.Question

	// Index is the question on screen.
	Index int

	Phase Phase

	// Answers holds one record per answered question, in order. Its length
	// is the answer frontier: questions before it are review-only.
	Answers []AnswerRecord

	// Reasoning is the verifier's note for the last graded answer, if any.
	Reasoning string
}

// Current returns the question on screen.
func (s State) Current() quizgen.Question {
	return s.Questions[s.Index]
}

// Total is the number of questions in the quiz.
func (s State) Total() int {
	return len(s.Questions)
}

// Reviewing reports whether the question on screen was already answered.
func (s State) Reviewing() bool {
	return s.Phase == PhaseAwaitingAnswer && s.Index < len(s.Answers)
}

// Record returns the answer recorded for the question on screen.
func (s State) Record() (AnswerRecord, bool) {
	if s.Index < len(s.Answers) {
		return s.Answers[s.Index], true
	}
	return AnswerRecord{}, false
}

// Score counts correct answers so far.
func (s State) Score() int {
	return countCorrect(s.Answers)
}

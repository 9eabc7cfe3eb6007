package quizgen

import (
	"errors"
	"fmt"

	"github.com/abhisek/studyquiz/internal/llm"
)

const (
	MsgTooShort   = "Content must be at least 50 characters long"
	MsgUnparsable = "Failed to parse quiz questions"
)

// ErrNoQuestions is returned when generation succeeds but no usable
// question remains.
var ErrNoQuestions = errors.New("no questions were generated from this content")

// GenerationError wraps any failure to produce a quiz.
type GenerationError struct {
	// Message, when set, is the user-facing text.
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("generate quiz: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func isInvalid(err error) bool {
	var inv *llm.ErrInvalidResponse
	return errors.As(err, &inv)
}

package topics

import (
	"errors"
	"fmt"

	"github.com/abhisek/studyquiz/internal/llm"
)

const (
	MsgTooShort   = "Content too short for topic extraction"
	MsgUnparsable = "Failed to parse topic structure"
)

// SegmentationError wraps any failure to produce topics.
type SegmentationError struct {
	// Message, when set, is the user-facing text.
	Message string
	Err     error
}

func (e *SegmentationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("segment topics: %v", e.Err)
}

func (e *SegmentationError) Unwrap() error { return e.Err }

func isInvalid(err error) bool {
	var inv *llm.ErrInvalidResponse
	return errors.As(err, &inv)
}

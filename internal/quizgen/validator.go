package quizgen

import "fmt"

// Validator checks one generated question. Validators may canonicalize
// fields in place; they are stateless and safe for concurrent use.
type Validator interface {
	// Name is a short identifier used in reports and logs.
	Name() string

	// Validate returns nil if q passes.
	Validate(q *Question, input GenerateInput) *ValidationError
}

// ValidationError describes why a question was discarded.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

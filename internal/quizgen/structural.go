package quizgen

import "strings"

// StructuralValidator checks that required fields are present, within
// length limits, and use a known type.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	q.Question = strings.TrimSpace(q.Question)
	q.CorrectAnswer = strings.TrimSpace(q.CorrectAnswer)
	q.Explanation = strings.TrimSpace(q.Explanation)

	if q.Question == "" {
		return v.fail("question is empty")
	}
	if len(q.Question) > 1000 {
		return v.fail("question exceeds 1000 characters")
	}
	if !q.Type.Valid() {
		return v.fail("type must be \"multiple_choice\", \"true_false\", or \"short_answer\"")
	}
	if q.CorrectAnswer == "" {
		return v.fail("correct_answer is empty")
	}
	if q.Explanation == "" {
		return v.fail("explanation is empty")
	}
	return nil
}

func (v *StructuralValidator) fail(msg string) *ValidationError {
	return &ValidationError{Validator: v.Name(), Message: msg}
}

// TypeFilterValidator discards questions whose type the configuration
// did not ask for.
type TypeFilterValidator struct{}

func (v *TypeFilterValidator) Name() string { return "type-filter" }

func (v *TypeFilterValidator) Validate(q *Question, input GenerateInput) *ValidationError {
	if !input.Config.QuestionTypes.Allows(q.Type) {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "type " + string(q.Type) + " not requested for " + string(input.Config.QuestionTypes) + " quiz",
		}
	}
	return nil
}

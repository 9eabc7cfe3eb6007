package quizgen

import "context"

// Generator produces quizzes from study material.
type Generator interface {
	// Generate returns the validated questions of one quiz, in
	// presentation order.
	Generate(ctx context.Context, input GenerateInput) ([]Question, error)
}

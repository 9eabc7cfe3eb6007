package grading

import (
	"context"

	"github.com/abhisek/studyquiz/internal/corpus"
	"github.com/abhisek/studyquiz/internal/logging"
	"github.com/abhisek/studyquiz/internal/quizgen"
)

// Method records how an Outcome was decided.
type Method string

const (
	MethodExact    Method = "exact"
	MethodAI       Method = "ai"
	MethodFallback Method = "fallback"
)

// Outcome is the result of grading one answer.
type Outcome struct {
	IsCorrect bool   `json:"isCorrect"`
	Reasoning string `json:"reasoning,omitempty"`
	Method    Method `json:"method"`
}

// Grader grades answers against one corpus. Grading never fails.
type Grader struct {
	verifier Verifier
	source   corpus.Corpus
}

// NewGrader creates a Grader. verifier may be nil, in which case short
// answers are graded by exact match.
func NewGrader(verifier Verifier, source corpus.Corpus) *Grader {
	return &Grader{verifier: verifier, source: source}
}

// Grade decides whether userAnswer answers q. Closed questions use exact
// normalized match. Short answers go to the verifier and fall back to
// exact match if it fails.
func (g *Grader) Grade(ctx context.Context, q quizgen.Question, userAnswer string) Outcome {
	exact := ExactMatch(userAnswer, q.CorrectAnswer)
	if q.Type.Closed() || g.verifier == nil {
		return Outcome{IsCorrect: exact, Method: MethodExact}
	}

	verdict, err := g.verifier.Verify(ctx, VerifyRequest{
		Question:      q.Question,
		UserAnswer:    userAnswer,
		CorrectAnswer: q.CorrectAnswer,
		Context:       corpus.Prefix(g.source, ContextLimit),
	})
	if err != nil {
		log := logging.FromContext(ctx)
		log.Warn().Err(err).Msg("answer verification failed, using exact match")
		return Outcome{IsCorrect: exact, Method: MethodFallback}
	}
	return Outcome{IsCorrect: verdict.IsCorrect, Reasoning: verdict.Reasoning, Method: MethodAI}
}

package quizgen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/studyquiz/internal/corpus"
	"github.com/abhisek/studyquiz/internal/llm"
	"github.com/abhisek/studyquiz/internal/logging"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   GeneratorConfig
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg GeneratorConfig) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// quizOutput is the raw LLM response. Questions stay raw so one item with
// the wrong shape is discarded instead of failing the decode.
type quizOutput struct {
	Questions []json.RawMessage `json:"questions"`
}

// Report describes how a generated batch was filtered.
type Report struct {
	Requested   int                  `json:"requested"`
	Returned    int                  `json:"returned"`
	Kept        int                  `json:"kept"`
	Discarded   []Discard            `json:"discarded,omitempty"`
	Composition map[QuestionType]int `json:"composition"`
}

// Discard records one rejected question.
type Discard struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Generate produces the questions of one quiz.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) ([]Question, error) {
	qs, _, err := g.GenerateWithReport(ctx, input)
	return qs, err
}

// GenerateWithReport is Generate plus a Report of the validation pass.
// Malformed or off-type questions are discarded; the batch fails only
// when none survive. Surplus questions beyond NumQuestions are dropped.
func (g *LLMGenerator) GenerateWithReport(ctx context.Context, input GenerateInput) ([]Question, *Report, error) {
	if err := input.Config.Validate(); err != nil {
		return nil, nil, &GenerationError{Err: err}
	}
	if err := corpus.Check("quiz", input.Corpus, corpus.MinQuizLength); err != nil {
		return nil, nil, &GenerationError{Message: MsgTooShort, Err: err}
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeQuiz)
	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input)},
		},
		Schema:      QuizSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		if isInvalid(err) {
			return nil, nil, &GenerationError{Message: MsgUnparsable, Err: err}
		}
		return nil, nil, &GenerationError{Err: fmt.Errorf("LLM generation failed: %w", err)}
	}

	var raw quizOutput
	if err := llm.DecodeJSON(resp.Content, &raw); err != nil {
		return nil, nil, &GenerationError{Message: MsgUnparsable, Err: err}
	}

	report := &Report{
		Requested:   input.Config.NumQuestions,
		Returned:    len(raw.Questions),
		Composition: map[QuestionType]int{},
	}
	kept := make([]Question, 0, len(raw.Questions))
	for i, item := range raw.Questions {
		var q Question
		if err := json.Unmarshal(item, &q); err != nil {
			report.Discarded = append(report.Discarded, Discard{Index: i, Reason: "malformed question: " + err.Error()})
			continue
		}
		if verr := g.validate(&q, input); verr != nil {
			report.Discarded = append(report.Discarded, Discard{Index: i, Reason: verr.Error()})
			continue
		}
		if len(kept) == input.Config.NumQuestions {
			report.Discarded = append(report.Discarded, Discard{Index: i, Reason: "surplus question"})
			continue
		}
		kept = append(kept, q)
		report.Composition[q.Type]++
	}
	report.Kept = len(kept)

	log := logging.FromContext(ctx)
	log.Info().
		Int("requested", report.Requested).
		Int("returned", report.Returned).
		Int("kept", report.Kept).
		Int("discarded", len(report.Discarded)).
		Msg("quiz generated")

	if len(kept) == 0 {
		return nil, report, &GenerationError{Err: ErrNoQuestions}
	}
	return kept, report, nil
}

// validate runs validators in order.
func (g *LLMGenerator) validate(q *Question, input GenerateInput) *ValidationError {
	for _, v := range g.config.Validators {
		if verr := v.Validate(q, input); verr != nil {
			return verr
		}
	}
	return nil
}

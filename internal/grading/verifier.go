package grading

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"github.com/abhisek/studyquiz/internal/corpus"
	"github.com/abhisek/studyquiz/internal/llm"
)

// ContextLimit bounds how much of the source material is sent to the
// verifier as grounding, in characters.
const ContextLimit = 1000

// MsgUnparsable is reported when the verifier reply is not a verdict.
const MsgUnparsable = "Failed to parse verification result"

// VerifyRequest is one conceptual grading request.
type VerifyRequest struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Context       string `json:"context"`
}

// Verdict is the verifier's decision.
type Verdict struct {
	IsCorrect bool   `json:"isCorrect"`
	Reasoning string `json:"reasoning"`
}

// Verifier grades free-text answers by meaning rather than wording.
type Verifier interface {
	Verify(ctx context.Context, req VerifyRequest) (*Verdict, error)
}

// VerifierConfig holds configuration for the LLM verifier.
type VerifierConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultVerifierConfig returns sensible defaults.
func DefaultVerifierConfig() VerifierConfig {
	return VerifierConfig{
		MaxTokens:   512,
		Temperature: 0.3,
	}
}

// LLMVerifier implements Verifier with a generative model.
type LLMVerifier struct {
	provider llm.Provider
	cfg      VerifierConfig
}

// NewVerifier creates an LLM-based verifier.
func NewVerifier(provider llm.Provider, cfg VerifierConfig) *LLMVerifier {
	return &LLMVerifier{provider: provider, cfg: cfg}
}

// Verify asks the model whether req.UserAnswer is conceptually correct.
func (v *LLMVerifier) Verify(ctx context.Context, req VerifyRequest) (*Verdict, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeVerify)

	req.Context = corpus.Prefix(corpus.Corpus(req.Context), ContextLimit)
	userMsg, err := buildVerifyMessage(req)
	if err != nil {
		return nil, fmt.Errorf("build verification prompt: %w", err)
	}

	resp, err := v.provider.Generate(ctx, llm.Request{
		System: verifySystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      VerdictSchema,
		MaxTokens:   v.cfg.MaxTokens,
		Temperature: v.cfg.Temperature,
	})
	if err != nil {
		var inv *llm.ErrInvalidResponse
		if errors.As(err, &inv) {
			return nil, fmt.Errorf("%s: %w", MsgUnparsable, err)
		}
		return nil, fmt.Errorf("LLM verification failed: %w", err)
	}

	var verdict Verdict
	if err := llm.DecodeJSON(resp.Content, &verdict); err != nil {
		return nil, fmt.Errorf("%s: %w", MsgUnparsable, err)
	}
	return &verdict, nil
}

const verifySystemPrompt = `You are an expert answer evaluator. Your task is to determine if a student's answer is conceptually correct.

IMPORTANT:
- Focus on whether the student understood the CONCEPT correctly, not exact wording.
- If the answer demonstrates understanding of the core concept, mark it as correct.
- Minor wording differences, synonyms, or alternative explanations should be accepted.
- Only mark as incorrect if the answer shows a fundamental misunderstanding.
- Keep reasoning to one sentence.

Respond with ONLY valid JSON: {"isCorrect": true or false, "reasoning": "..."}`

var verifyUserTemplate = template.Must(template.New("verify").Parse(`Question: {{.Question}}

Expected Answer: {{.CorrectAnswer}}

Student's Answer: {{.UserAnswer}}

Context from notes: {{.Context}}`))

func buildVerifyMessage(req VerifyRequest) (string, error) {
	var buf bytes.Buffer
	if err := verifyUserTemplate.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// VerdictSchema defines the JSON schema for verification responses.
var VerdictSchema = &llm.Schema{
	Name:        "answer-verdict",
	Description: "Whether a student's answer is conceptually correct",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"isCorrect": map[string]any{
				"type":        "boolean",
				"description": "True if the answer shows understanding of the core concept",
			},
			"reasoning": map[string]any{
				"type":        "string",
				"description": "Brief one-sentence explanation of the decision",
			},
		},
		"required":             []any{"isCorrect", "reasoning"},
		"additionalProperties": false,
	},
}

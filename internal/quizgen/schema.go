package quizgen

import "github.com/abhisek/studyquiz/internal/llm"

// QuizSchema defines the JSON schema for quiz generation responses.
var QuizSchema = &llm.Schema{
	Name:        "quiz-questions",
	Description: "A set of quiz questions grounded in the supplied study material",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question text, answerable from the source alone",
						},
						"type": map[string]any{
							"type":        "string",
							"enum":        []any{"multiple_choice", "true_false", "short_answer"},
							"description": "How the user answers",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly 4 options for multiple_choice. Empty for other types.",
						},
						"correct_answer": map[string]any{
							"type":        "string",
							"description": "Option text for multiple_choice, True or False for true_false, a brief answer for short_answer",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the answer is correct, referencing the source",
						},
					},
					"required":             []any{"question", "type", "options", "correct_answer", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
	// Replies are only held to the envelope. Each question is then decoded
	// and validated on its own, and defective ones are discarded.
	Validation: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "object"},
			},
		},
		"required": []any{"questions"},
	},
}

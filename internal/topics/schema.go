package topics

import "github.com/abhisek/studyquiz/internal/llm"

// TopicsSchema defines the JSON schema for topic segmentation responses.
var TopicsSchema = &llm.Schema{
	Name:        "topic-outline",
	Description: "The main topics of a study document with their subtopics",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topics": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "Identifier of the form topic-N",
						},
						"title": map[string]any{
							"type":        "string",
							"description": "Chapter or section title, at most 60 characters",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "What the section covers, at most 120 characters",
						},
						"subtopics": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "3-8 specific concepts present in the section",
						},
					},
					"required":             []any{"id", "title", "description", "subtopics"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"topics"},
		"additionalProperties": false,
	},
}

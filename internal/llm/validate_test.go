package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func verdictTestSchema() *Schema {
	return &Schema{
		Name:        "test-verdict",
		Description: "A grading verdict",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"isCorrect":  map[string]any{"type": "boolean"},
				"reasoning":  map[string]any{"type": "string"},
				"confidence": map[string]any{"type": "string", "enum": []any{"low", "high"}},
			},
			"required": []any{"isCorrect", "reasoning"},
		},
	}
}

func TestValidateResponse_ValidJSON(t *testing.T) {
	raw := json.RawMessage(`{"isCorrect":true,"reasoning":"same idea","confidence":"high"}`)
	body, err := ValidateResponse(verdictTestSchema(), raw)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if string(body) != string(raw) {
		t.Fatalf("expected body unchanged, got %s", body)
	}
}

func TestValidateResponse_FencedJSON(t *testing.T) {
	raw := json.RawMessage("```json\n{\"isCorrect\":false,\"reasoning\":\"wrong organelle\"}\n```")
	body, err := ValidateResponse(verdictTestSchema(), raw)
	if err != nil {
		t.Fatalf("expected fenced JSON to validate, got: %v", err)
	}
	if string(body) != `{"isCorrect":false,"reasoning":"wrong organelle"}` {
		t.Fatalf("expected fence stripped, got %s", body)
	}
}

func TestValidateResponse_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing required", `{"isCorrect":true}`},
		{"wrong type", `{"isCorrect":"yes","reasoning":"r"}`},
		{"invalid enum", `{"isCorrect":true,"reasoning":"r","confidence":"medium"}`},
		{"malformed", `{not json}`},
		{"empty", ``},
		{"fenced garbage", "```json\nnope\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateResponse(verdictTestSchema(), json.RawMessage(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T", err)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	raw := json.RawMessage("Photosynthesis converts light into chemical energy.")
	body, err := ValidateResponse(nil, raw)
	if err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
	if string(body) != string(raw) {
		t.Fatalf("expected raw text passthrough, got %s", body)
	}
}

func TestValidateResponse_NestedArrays(t *testing.T) {
	schema := &Schema{
		Name:        "test-topic-list",
		Description: "Nested test",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"topics": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"title":     map[string]any{"type": "string"},
							"subtopics": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						},
						"required": []any{"title", "subtopics"},
					},
				},
			},
			"required": []any{"topics"},
		},
	}

	valid := json.RawMessage(`{"topics":[{"title":"Cells","subtopics":["Membrane","Nucleus"]}]}`)
	if _, err := ValidateResponse(schema, valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	invalid := json.RawMessage(`{"topics":[{"title":"Cells","subtopics":[1,2]}]}`)
	if _, err := ValidateResponse(schema, invalid); err == nil {
		t.Fatal("expected error for wrong array item type")
	}
}

func TestValidateResponse_ValidationOverridesDefinition(t *testing.T) {
	schema := verdictTestSchema()
	schema.Definition["additionalProperties"] = false
	raw := json.RawMessage(`{"isCorrect":true,"reasoning":"same idea","extra":1}`)

	if _, err := ValidateResponse(schema, raw); err == nil {
		t.Fatal("strict definition should reject the extra field")
	}

	loose := verdictTestSchema()
	loose.Definition["additionalProperties"] = false
	loose.Validation = map[string]any{"type": "object", "required": []any{"isCorrect"}}
	if _, err := ValidateResponse(loose, raw); err != nil {
		t.Fatalf("validation definition should be used for replies, got %v", err)
	}
	if _, err := ValidateResponse(loose, json.RawMessage(`{"reasoning":"x"}`)); err == nil {
		t.Fatal("validation definition should still be enforced")
	}
}

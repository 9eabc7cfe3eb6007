package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestGeminiProvider(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-flash",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	return p
}

func geminiReply(text, finishReason string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{
						"role":  "model",
						"parts": []map[string]any{{"text": text}},
					},
					"finishReason": finishReason,
				},
			},
			"usageMetadata": map[string]any{
				"promptTokenCount":     120,
				"candidatesTokenCount": 60,
				"totalTokenCount":      180,
			},
		})
	}
}

func TestGeminiProvider_HappyPath(t *testing.T) {
	p := newTestGeminiProvider(t, geminiReply(`{"isCorrect":true,"reasoning":"paraphrase"}`, "STOP"))

	resp, err := p.Generate(context.Background(), Request{
		System:      "Grade answers.",
		Messages:    []Message{{Role: RoleUser, Content: "Grade this."}},
		Schema:      verdictTestSchema(),
		MaxTokens:   256,
		Temperature: 0.3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Model != "gemini-2.5-flash" {
		t.Fatalf("expected resolved model, got %q", resp.Model)
	}
	if resp.Usage.InputTokens != 120 || resp.Usage.OutputTokens != 60 || resp.Usage.TotalTokens != 180 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}
}

func TestGeminiProvider_InlineImage(t *testing.T) {
	var body struct {
		Contents []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text       string `json:"text"`
				InlineData *struct {
					MIMEType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"contents"`
	}
	handler := func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		geminiReply("Lecture notes: The cell cycle", "STOP")(w, r)
	}

	p := newTestGeminiProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		Messages:    []Message{{Role: RoleUser, Content: "Extract all text."}},
		Attachments: []Attachment{{MIMEType: "image/webp", Data: []byte("webp")}},
		MaxTokens:   1024,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "Lecture notes: The cell cycle" {
		t.Fatalf("unexpected text %q", resp.Text())
	}

	if len(body.Contents) != 1 || len(body.Contents[0].Parts) != 2 {
		t.Fatalf("expected one content with blob and text parts, got %+v", body.Contents)
	}
	blob := body.Contents[0].Parts[0].InlineData
	if blob == nil || blob.MIMEType != "image/webp" || blob.Data != "d2VicA==" {
		t.Fatalf("unexpected inline data %+v", blob)
	}
	if body.Contents[0].Parts[1].Text != "Extract all text." {
		t.Fatalf("expected text after the image, got %+v", body.Contents[0].Parts[1])
	}
}

func TestGeminiProvider_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"rate limit", http.StatusTooManyRequests, func(err error) bool {
			var e *ErrRateLimit
			return errors.As(err, &e)
		}},
		{"quota", http.StatusPaymentRequired, func(err error) bool {
			var e *ErrQuotaExhausted
			return errors.As(err, &e)
		}},
		{"unavailable", http.StatusServiceUnavailable, func(err error) bool {
			var e *ErrProviderUnavailable
			return errors.As(err, &e)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"code": tt.status, "message": tt.name, "status": "ERROR"},
				})
			})

			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "test"}},
				MaxTokens: 100,
			})
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error classification: %T (%v)", err, err)
			}
		})
	}
}

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // Pass-through
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, geminiModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{"type": "string"},
						"type":     map[string]any{"type": "string", "enum": []any{"multiple_choice", "true_false", "short_answer"}},
						"options":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					},
					"required": []any{"question", "type"},
				},
			},
			"count": map[string]any{"type": "integer"},
		},
		"required": []any{"questions"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if schema.Properties["count"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER for count, got %s", schema.Properties["count"].Type)
	}
	items := schema.Properties["questions"].Items
	if schema.Properties["questions"].Type != "ARRAY" || items == nil || items.Type != "OBJECT" {
		t.Fatalf("expected array of objects for questions, got %+v", schema.Properties["questions"])
	}
	if len(items.Properties["type"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(items.Properties["type"].Enum))
	}
	if items.Properties["options"].Items.Type != "STRING" {
		t.Fatalf("expected STRING option items, got %s", items.Properties["options"].Items.Type)
	}
	if len(schema.Required) != 1 || len(items.Required) != 2 {
		t.Fatalf("unexpected required lists %v / %v", schema.Required, items.Required)
	}
}

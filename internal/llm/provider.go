package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider is the core abstraction over a generative service.
// Consumers call Generate with a Request and receive text or structured JSON.
type Provider interface {
	// Generate sends a prompt to the model and returns its response.
	// When the request carries a Schema, the provider uses its native
	// structured output mechanism and Content is validated JSON with any
	// markdown fence already stripped.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation. Every pipeline call is single-turn.
	Messages []Message

	// Attachments are binary inputs (images, PDFs) sent alongside the
	// last user message. Only OCR requests use them.
	Attachments []Attachment

	// Schema is the JSON Schema the response must conform to.
	// When nil, the response Content is the raw model text.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Attachment is an inline binary part of a request.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// IsImage reports whether the attachment is an image.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.MIMEType, "image/")
}

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema, e.g. "quiz-questions".
	Name string

	// Description is sent to the model to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any

	// Validation, when set, replaces Definition for checking replies. The
	// model is still asked for Definition; stages that discard bad items one
	// by one use a looser Validation so a single defect does not reject the
	// whole reply.
	Validation map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is the generated output. For schema requests this is the
	// validated JSON object; otherwise it is the raw text.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Text returns Content as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

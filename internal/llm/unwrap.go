package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

var fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")

// UnwrapJSON strips a markdown code fence around a model response.
// Models asked for JSON often answer with ```json ... ```; the first fenced
// block wins. Unfenced input is returned trimmed.
func UnwrapJSON(raw []byte) []byte {
	if m := fencePattern.FindSubmatch(raw); m != nil {
		return m[1]
	}
	return bytes.TrimSpace(raw)
}

// DecodeJSON unwraps raw and unmarshals it into v.
// Failures are reported as *ErrInvalidResponse.
func DecodeJSON(raw []byte, v any) error {
	body := UnwrapJSON(raw)
	if len(body) == 0 {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("empty response")}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	return nil
}

package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchemas holds one compiled validator per *Schema. Schemas are
// package-level values in the stage packages, so the pointer is a stable key
// and two stages may reuse a name without colliding.
var compiledSchemas sync.Map // map[*Schema]*jsonschema.Schema

// ValidateResponse unwraps a fenced reply and checks it against schema
// (its Validation definition when set). It returns the bare JSON, or
// *ErrInvalidResponse carrying the original text. A nil schema skips
// validation.
func ValidateResponse(schema *Schema, raw json.RawMessage) (json.RawMessage, error) {
	if schema == nil {
		return raw, nil
	}
	invalid := func(format string, args ...any) error {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf(format, args...)}
	}

	body := json.RawMessage(UnwrapJSON(raw))
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, invalid("invalid JSON: %w", err)
	}

	compiled, err := schema.compile()
	if err != nil {
		return nil, invalid("compile schema %q: %w", schema.Name, err)
	}
	if err := compiled.Validate(inst); err != nil {
		return nil, invalid("schema %q: %w", schema.Name, err)
	}
	return body, nil
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	if v, ok := compiledSchemas.Load(s); ok {
		return v.(*jsonschema.Schema), nil
	}

	// Round-trip the Go map so the compiler sees plain decoded JSON
	// ([]any instead of []string and so on).
	def := s.Definition
	if s.Validation != nil {
		def = s.Validation
	}
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}

	url := "mem://schemas/" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, err
	}

	actual, _ := compiledSchemas.LoadOrStore(s, compiled)
	return actual.(*jsonschema.Schema), nil
}

package jsonschema

import (
	"bytes"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	sjs "github.com/santhosh-tekuri/jsonschema/v6"
)

const resourceID = "zskema://schema.json"

// Validator checks JSON-shaped values against a compiled document.
type Validator struct {
	mu sync.Mutex
	s  *sjs.Schema
}

// Compile checks that doc is a well-formed JSON Schema and prepares it for
// validation.
func Compile(doc *Schema) (*Validator, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: encode: %w", err)
	}
	return CompileBytes(b)
}

// CompileBytes is Compile for an already-encoded document.
func CompileBytes(b []byte) (*Validator, error) {
	data, err := sjs.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("jsonschema: decode: %w", err)
	}
	c := sjs.NewCompiler()
	c.DefaultDraft(sjs.Draft2020)
	if err := c.AddResource(resourceID, data); err != nil {
		return nil, fmt.Errorf("jsonschema: add resource: %w", err)
	}
	s, err := c.Compile(resourceID)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: compile: %w", err)
	}
	return &Validator{s: s}, nil
}

// Validate checks a value decoded from JSON (map[string]any, []any,
// float64, json.Number, string, bool, nil).
func (v *Validator) Validate(doc any) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.s.Validate(doc)
}

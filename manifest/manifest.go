// Package manifest compiles declarative schema documents into dsl schemas.
//
// A manifest is a JSON Schema flavoured document written in YAML or JSON:
//
//	$defs:
//	  Category:
//	    type: object
//	    properties:
//	      name: {type: string, minLength: 1}
//	      subcategories: {type: array, items: {$ref: "#/$defs/Category"}}
//	    required: [name, subcategories]
//	$ref: "#/$defs/Category"
//
// Local $ref targets compile to lazy schemas, so recursive definitions
// work. Kubernetes CRDs are accepted too: the served version's
// openAPIV3Schema is used, and the x-kubernetes-* extensions that affect
// validation are honoured. Cross-field checks are declared under x-rules.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/reoring/zskema"
	"github.com/reoring/zskema/dsl"
	"github.com/reoring/zskema/source"
)

// Options controls compilation.
type Options struct {
	// Strict turns unsupported keywords into errors instead of warnings.
	Strict bool
	// Source configures decoding in Load and LoadFile.
	Source source.Options
}

// Diag carries non-fatal warnings produced during compilation.
type Diag struct{ ws []string }

func (d *Diag) HasWarnings() bool  { return len(d.ws) > 0 }
func (d *Diag) Warnings() []string { return append([]string(nil), d.ws...) }

func (d *Diag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }

// Error reports a malformed manifest. Pointer locates the offending
// keyword inside the document.
type Error struct {
	Pointer string
	Err     error
}

func (e *Error) Error() string { return "manifest: " + e.Pointer + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Compile builds a schema from a decoded manifest (map[string]any as
// produced by the source package).
func Compile(doc any, opts Options) (s dsl.Schema, diag *Diag, err error) {
	diag = &Diag{}
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, diag, &Error{Pointer: "/", Err: fmt.Errorf("expected an object, got %s", zskema.TypeName(doc))}
	}
	if spec, ok := root["openAPIV3Schema"].(map[string]any); ok {
		root = spec
	} else if unwrapped := unwrapCRDSchema(root); unwrapped != nil {
		root = unwrapped
	}

	defer func() {
		if r := recover(); r != nil {
			var se *zskema.SchemaError
			if e, ok := r.(error); ok && errors.As(e, &se) {
				s, err = nil, &Error{Pointer: "/", Err: se}
				return
			}
			panic(r)
		}
	}()

	c := newCompiler(root, opts, diag)
	if err := c.compileDefs(); err != nil {
		return nil, diag, err
	}
	s, err = c.compile(root, "")
	if err != nil {
		return nil, diag, err
	}
	return s, diag, nil
}

// Load decodes the first document of r and compiles it.
func Load(r io.Reader, format source.Format, opts Options) (dsl.Schema, *Diag, error) {
	docs, err := source.Decode(r, format, opts.Source)
	if err != nil {
		return nil, &Diag{}, fmt.Errorf("manifest: decode: %w", err)
	}
	if len(docs) == 0 {
		return nil, &Diag{}, errors.New("manifest: empty document")
	}
	return Compile(docs[0].Value, opts)
}

// LoadFile is Load for a file; the format follows the extension.
func LoadFile(path string, opts Options) (dsl.Schema, *Diag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Diag{}, fmt.Errorf("manifest: %w", err)
	}
	defer f.Close()
	return Load(f, source.FormatOf(path), opts)
}

// unwrapCRDSchema extracts openAPIV3Schema from a CustomResourceDefinition,
// preferring a served version and falling back to spec.validation.
func unwrapCRDSchema(root map[string]any) map[string]any {
	spec, ok := root["spec"].(map[string]any)
	if !ok {
		return nil
	}
	if vers, ok := spec["versions"].([]any); ok {
		var first map[string]any
		for _, v := range vers {
			vm, _ := v.(map[string]any)
			sch, _ := vm["schema"].(map[string]any)
			oas, ok := sch["openAPIV3Schema"].(map[string]any)
			if !ok {
				continue
			}
			if served, ok := vm["served"].(bool); !ok || served {
				return oas
			}
			if first == nil {
				first = oas
			}
		}
		if first != nil {
			return first
		}
	}
	if val, ok := spec["validation"].(map[string]any); ok {
		if oas, ok := val["openAPIV3Schema"].(map[string]any); ok {
			return oas
		}
	}
	return nil
}

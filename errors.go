package zskema

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType               = "invalid_type"
	CodeInvalidLiteral            = "invalid_literal"
	CodeInvalidEnumValue          = "invalid_enum_value"
	CodeTooSmall                  = "too_small"
	CodeTooBig                    = "too_big"
	CodeInvalidStringFormat       = "invalid_string_format"
	CodeUnrecognizedKeys          = "unrecognized_keys"
	CodeInvalidUnion              = "invalid_union"
	CodeInvalidUnionDiscriminator = "invalid_union_discriminator"
	CodeInvalidIntersectionTypes  = "invalid_intersection_types"
	CodeNotMultipleOf             = "not_multiple_of"
	CodeNotFinite                 = "not_finite"
	CodeCustom                    = "custom"
	// Engine-level outcomes that are not data problems.
	CodeAsyncInSync = "async_in_sync"
	CodeSchemaCycle = "schema_cycle"
	// Input decoding problems reported by the source package.
	CodeDuplicateKey = "duplicate_key"
	CodeParseError   = "parse_error"
)

// Issue represents a single validation failure.
type Issue struct {
	Code    string
	Path    Path // Location inside the original input; empty means root.
	Message string
	// Params carries code-specific metadata (for example expected/received
	// for invalid_type, minimum/inclusive/origin for too_small).
	Params map[string]any
	// Input is the offending value as seen by the failing schema.
	Input any
}

// Param returns a single metadata entry.
func (it Issue) Param(key string) any {
	if it.Params == nil {
		return nil
	}
	return it.Params[key]
}

func (it Issue) String() string {
	return fmt.Sprintf("%s at %s: %s", it.Code, it.Path.Pointer(), it.Message)
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path.Pointer())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Codes lists the issue codes in order.
func (iss Issues) Codes() []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Code
	}
	return out
}

// WithPrefix returns a copy of the issues rebased under prefix.
func (iss Issues) WithPrefix(prefix Path) Issues {
	if len(prefix) == 0 {
		return iss
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		it.Path = prefix.Concat(it.Path)
		out[i] = it
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ErrCancelled is returned by asynchronous validation when the caller's
// context ends between refinement steps. It wraps the context error.
var ErrCancelled = errors.New("zskema: validation cancelled")

// SchemaError reports a malformed schema detected while it was being built.
// Builders panic with *SchemaError; it is never produced during validation.
type SchemaError struct {
	Op     string
	Reason string
}

func (e *SchemaError) Error() string {
	return "zskema: invalid schema: " + e.Op + ": " + e.Reason
}

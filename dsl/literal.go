package dsl

import (
	"fmt"

	"github.com/reoring/zskema"
	"github.com/reoring/zskema/coerce"
)

// normalizeLiteral maps numeric literals to float64 so they compare equal to
// decoded input.
func normalizeLiteral(op string, v any) any {
	if f, ok := coerce.Float(v); ok {
		return f
	}
	switch v.(type) {
	case nil, string, bool, zskema.UndefinedType:
		return v
	}
	panic(&zskema.SchemaError{Op: op, Reason: fmt.Sprintf("unsupported literal %T", v)})
}

// literalKey normalizes input for comparison against literal values.
// Non-comparable inputs map to a sentinel that matches nothing.
func literalKey(v any) any {
	if f, ok := coerce.Float(v); ok {
		return f
	}
	switch v.(type) {
	case nil, string, bool, zskema.UndefinedType:
		return v
	}
	return noMatch{}
}

type noMatch struct{}

// Literal accepts exactly one of the given values (strings, numbers,
// booleans, nil).
func Literal(values ...any) *Wrapper {
	if len(values) == 0 {
		panic(&zskema.SchemaError{Op: "literal", Reason: "no values"})
	}
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = normalizeLiteral("literal", v)
	}
	return newWrapper(&node{kind: KindLiteral, values: vals})
}

// EnumSchema accepts one of a fixed list of values.
type EnumSchema struct{ common[*EnumSchema] }

func newEnum(n *node) *EnumSchema {
	s := &EnumSchema{}
	s.common = common[*EnumSchema]{n: n, mk: newEnum}
	return s
}

// Enum accepts one of values. Duplicates collapse; order is kept.
func Enum(values ...any) *EnumSchema {
	if len(values) == 0 {
		panic(&zskema.SchemaError{Op: "enum", Reason: "no values"})
	}
	seen := map[any]bool{}
	var vals []any
	for _, v := range values {
		nv := normalizeLiteral("enum", v)
		if seen[nv] {
			continue
		}
		seen[nv] = true
		vals = append(vals, nv)
	}
	return newEnum(&node{kind: KindEnum, values: vals})
}

// Options returns the accepted values in declaration order.
func (s *EnumSchema) Options() []any { return append([]any(nil), s.n.values...) }

// Extract narrows the enum to values.
func (s *EnumSchema) Extract(values ...any) *EnumSchema {
	for _, v := range values {
		if !containsLiteral(s.n.values, normalizeLiteral("extract", v)) {
			panic(&zskema.SchemaError{Op: "extract", Reason: fmt.Sprintf("%v is not an option", v)})
		}
	}
	return Enum(values...)
}

// Exclude removes values from the enum.
func (s *EnumSchema) Exclude(values ...any) *EnumSchema {
	drop := make([]any, len(values))
	for i, v := range values {
		drop[i] = normalizeLiteral("exclude", v)
	}
	var keep []any
	for _, v := range s.n.values {
		if !containsLiteral(drop, v) {
			keep = append(keep, v)
		}
	}
	return Enum(keep...)
}

func containsLiteral(vals []any, v any) bool {
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}

// Null accepts only nil.
func Null() *Wrapper { return newWrapper(&node{kind: KindNull}) }

// Undefined accepts only zskema.Undefined.
func Undefined() *Wrapper { return newWrapper(&node{kind: KindUndefined}) }

// Any accepts every value.
func Any() *Wrapper { return newWrapper(&node{kind: KindAny}) }

// Unknown accepts every value.
func Unknown() *Wrapper { return newWrapper(&node{kind: KindUnknown}) }

// Never rejects every value.
func Never() *Wrapper { return newWrapper(&node{kind: KindNever}) }

// Preprocess runs fn on the raw input before schema validates it.
func Preprocess(fn func(v any) any, schema Schema) *Wrapper {
	n := nodeOf("preprocess", schema).clone()
	if fn == nil {
		panic(&zskema.SchemaError{Op: "preprocess", Reason: "nil function"})
	}
	if prev := n.preprocess; prev != nil {
		n.preprocess = func(v any) any { return prev(fn(v)) }
	} else {
		n.preprocess = fn
	}
	return newWrapper(n)
}

package dsl

import (
	"fmt"

	"github.com/reoring/zskema"
)

// UnionSchema accepts a value matching any of its options.
type UnionSchema struct{ common[*UnionSchema] }

func newUnion(n *node) *UnionSchema {
	s := &UnionSchema{}
	s.common = common[*UnionSchema]{n: n, mk: newUnion}
	return s
}

// Union tries options in order and returns the first success.
func Union(options ...Schema) *UnionSchema {
	if len(options) == 0 {
		panic(&zskema.SchemaError{Op: "union", Reason: "no options"})
	}
	ns := make([]*node, len(options))
	for i, o := range options {
		ns[i] = nodeOf("union", o)
	}
	return newUnion(&node{kind: KindUnion, options: ns})
}

// Options returns the member schemas.
func (s *UnionSchema) Options() []Schema {
	out := make([]Schema, len(s.n.options))
	for i, o := range s.n.options {
		out[i] = wrap(o)
	}
	return out
}

// Discriminator returns the discriminator key, or "" for plain unions.
func (s *UnionSchema) Discriminator() string { return s.n.discriminator }

// DiscriminatedUnion selects the member whose literal value of key matches
// the input. Every member must be an object declaring key as a literal or
// enum; values must be unique across members.
func DiscriminatedUnion(key string, options ...*ObjectSchema) *UnionSchema {
	if len(options) == 0 {
		panic(&zskema.SchemaError{Op: "discriminatedUnion", Reason: "no options"})
	}
	n := &node{kind: KindDiscriminatedUnion, discriminator: key, byDisc: map[any]*node{}}
	for i, o := range options {
		if o == nil {
			panic(&zskema.SchemaError{Op: "discriminatedUnion", Reason: fmt.Sprintf("option %d is nil", i)})
		}
		d, ok := o.n.field(key)
		if !ok {
			panic(&zskema.SchemaError{Op: "discriminatedUnion", Reason: fmt.Sprintf("option %d lacks discriminator %q", i, key)})
		}
		vals := discriminatorValues(d)
		if len(vals) == 0 {
			panic(&zskema.SchemaError{Op: "discriminatedUnion", Reason: fmt.Sprintf("option %d: discriminator %q is not a literal", i, key)})
		}
		for _, v := range vals {
			if _, dup := n.byDisc[v]; dup {
				panic(&zskema.SchemaError{Op: "discriminatedUnion", Reason: fmt.Sprintf("duplicate discriminator value %v", v)})
			}
			n.byDisc[v] = o.n
			n.values = append(n.values, v)
		}
		n.options = append(n.options, o.n)
	}
	return newUnion(n)
}

func discriminatorValues(n *node) []any {
	switch n.kind {
	case KindLiteral, KindEnum:
		return n.values
	case KindOptional, KindNullable, KindDefault:
		return discriminatorValues(n.elem)
	}
	return nil
}

// IntersectionSchema requires a value to satisfy both sides; outputs are
// merged.
type IntersectionSchema struct{ common[*IntersectionSchema] }

func newIntersection(n *node) *IntersectionSchema {
	s := &IntersectionSchema{}
	s.common = common[*IntersectionSchema]{n: n, mk: newIntersection}
	return s
}

// Intersection builds a schema satisfied by values matching both a and b.
func Intersection(a, b Schema) *IntersectionSchema {
	return newIntersection(&node{kind: KindIntersection, left: nodeOf("intersection", a), right: nodeOf("intersection", b)})
}

// Lazy defers schema construction to first use, enabling recursive
// schemas. The resolver runs at most once.
func Lazy(resolve func() Schema) *Wrapper {
	if resolve == nil {
		panic(&zskema.SchemaError{Op: "lazy", Reason: "nil resolver"})
	}
	return newWrapper(&node{kind: KindLazy, lazy: &lazyRef{resolve: resolve}})
}

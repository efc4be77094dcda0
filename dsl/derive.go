package dsl

import (
	"fmt"

	"github.com/reoring/zskema"
)

// derived copies the object's structure without its effects.
func (s *ObjectSchema) derived(fields []field) *ObjectSchema {
	out := s.n.clone()
	out.effects = nil
	out.fields = fields
	return newObject(out)
}

func (s *ObjectSchema) requireKeys(op string, keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		if _, ok := s.n.field(k); !ok {
			panic(&zskema.SchemaError{Op: op, Reason: fmt.Sprintf("unknown key %q", k)})
		}
		set[k] = true
	}
	return set
}

// Pick keeps only keys.
func (s *ObjectSchema) Pick(keys ...string) *ObjectSchema {
	want := s.requireKeys("pick", keys)
	var fs []field
	for _, f := range s.n.fields {
		if want[f.name] {
			fs = append(fs, f)
		}
	}
	return s.derived(fs)
}

// Omit drops keys.
func (s *ObjectSchema) Omit(keys ...string) *ObjectSchema {
	drop := s.requireKeys("omit", keys)
	var fs []field
	for _, f := range s.n.fields {
		if !drop[f.name] {
			fs = append(fs, f)
		}
	}
	return s.derived(fs)
}

// Extend adds or replaces fields. Replaced fields keep their position and
// new ones follow in key order.
func (s *ObjectSchema) Extend(fields Fields) *ObjectSchema {
	return s.derived(mergeFields(s.n.fields, toFields("extend", fields)))
}

// ExtendOf is Extend with new fields appended in the order given.
func (s *ObjectSchema) ExtendOf(props ...Prop) *ObjectSchema {
	return s.derived(mergeFields(s.n.fields, propFields("extend", props)))
}

// Merge combines two object schemas; other's fields and unknown-key policy
// win on conflict.
func (s *ObjectSchema) Merge(other *ObjectSchema) *ObjectSchema {
	if other == nil {
		panic(&zskema.SchemaError{Op: "merge", Reason: "nil schema"})
	}
	out := s.derived(mergeFields(s.n.fields, other.n.fields))
	out.n.unknown = other.n.unknown
	out.n.catchall = other.n.catchall
	return out
}

func mergeFields(base, add []field) []field {
	idx := make(map[string]int, len(base))
	out := append([]field(nil), base...)
	for i, f := range out {
		idx[f.name] = i
	}
	for _, f := range add {
		if i, ok := idx[f.name]; ok {
			out[i] = f
			continue
		}
		idx[f.name] = len(out)
		out = append(out, f)
	}
	return out
}

func (s *ObjectSchema) mapFields(op string, keys []string, fn func(*node) *node) *ObjectSchema {
	var only map[string]bool
	if len(keys) > 0 {
		only = s.requireKeys(op, keys)
	}
	fs := make([]field, len(s.n.fields))
	for i, f := range s.n.fields {
		if only == nil || only[f.name] {
			f.schema = fn(f.schema)
		}
		fs[i] = f
	}
	return s.derived(fs)
}

// Partial makes keys optional (all fields when none are given).
func (s *ObjectSchema) Partial(keys ...string) *ObjectSchema {
	return s.mapFields("partial", keys, func(n *node) *node {
		if n.kind == KindOptional {
			return n
		}
		return &node{kind: KindOptional, elem: n}
	})
}

// Required removes Optional and Default layers from keys (all fields when
// none are given). Nullable is kept.
func (s *ObjectSchema) Required(keys ...string) *ObjectSchema {
	return s.mapFields("required", keys, unwrapOptional)
}

func unwrapOptional(n *node) *node {
	for n.kind == KindOptional || n.kind == KindDefault {
		n = n.elem
	}
	return n
}

// KeyOf returns an enum of the declared field names.
func (s *ObjectSchema) KeyOf() *EnumSchema {
	if len(s.n.fields) == 0 {
		panic(&zskema.SchemaError{Op: "keyof", Reason: "object has no fields"})
	}
	keys := make([]any, len(s.n.fields))
	for i, f := range s.n.fields {
		keys[i] = f.name
	}
	return Enum(keys...)
}

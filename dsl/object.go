package dsl

import (
	"sort"
	"strconv"

	"github.com/reoring/zskema"
)

// Fields declares the properties of an object schema.
type Fields map[string]Schema

// Prop is one ordered field declaration for ObjectOf.
type Prop struct {
	Name   string
	Schema Schema
}

// Field declares a property for ObjectOf.
func Field(name string, schema Schema) Prop { return Prop{Name: name, Schema: schema} }

// ObjectSchema validates map[string]any values field by field, in
// declaration order. Object sorts its Fields map by key since a map has no
// order; ObjectOf keeps the order given.
type ObjectSchema struct{ common[*ObjectSchema] }

func newObject(n *node) *ObjectSchema {
	s := &ObjectSchema{}
	s.common = common[*ObjectSchema]{n: n, mk: newObject}
	return s
}

// Object builds an object schema. Unknown keys are stripped by default.
func Object(fields Fields) *ObjectSchema {
	return newObject(&node{kind: KindObject, fields: toFields("object", fields)})
}

// ObjectOf builds an object schema whose fields are validated, and whose
// issues are reported, in the order given. Repeated names are a schema
// error.
func ObjectOf(props ...Prop) *ObjectSchema {
	return newObject(&node{kind: KindObject, fields: propFields("object", props)})
}

func propFields(op string, props []Prop) []field {
	out := make([]field, 0, len(props))
	seen := make(map[string]bool, len(props))
	for _, pr := range props {
		if seen[pr.Name] {
			panic(&zskema.SchemaError{Op: op, Reason: "duplicate field " + strconv.Quote(pr.Name)})
		}
		seen[pr.Name] = true
		out = append(out, field{name: pr.Name, schema: nodeOf(op+"."+pr.Name, pr.Schema)})
	}
	return out
}

func toFields(op string, fields Fields) []field {
	out := make([]field, 0, len(fields))
	for name, s := range fields {
		out = append(out, field{name: name, schema: nodeOf(op+"."+name, s)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func (s *ObjectSchema) withUnknown(p zskema.UnknownPolicy, catchall *node) *ObjectSchema {
	out := s.n.clone()
	out.unknown = p
	out.catchall = catchall
	return newObject(out)
}

// Strict reports undeclared keys as one unrecognized_keys issue.
func (s *ObjectSchema) Strict() *ObjectSchema { return s.withUnknown(zskema.UnknownStrict, nil) }

// Strip drops undeclared keys from the output.
func (s *ObjectSchema) Strip() *ObjectSchema { return s.withUnknown(zskema.UnknownStrip, nil) }

// Passthrough copies undeclared keys to the output unvalidated.
func (s *ObjectSchema) Passthrough() *ObjectSchema {
	return s.withUnknown(zskema.UnknownPassthrough, nil)
}

// Catchall validates every undeclared key with schema.
func (s *ObjectSchema) Catchall(schema Schema) *ObjectSchema {
	return s.withUnknown(zskema.UnknownPassthrough, nodeOf("catchall", schema))
}

// UnknownPolicy reports how undeclared keys are handled.
func (s *ObjectSchema) UnknownPolicy() zskema.UnknownPolicy { return s.n.unknown }

// Shape returns the declared fields.
func (s *ObjectSchema) Shape() Fields {
	out := make(Fields, len(s.n.fields))
	for _, f := range s.n.fields {
		out[f.name] = wrap(f.schema)
	}
	return out
}

// Keys lists the declared field names in validation order.
func (s *ObjectSchema) Keys() []string {
	out := make([]string, len(s.n.fields))
	for i, f := range s.n.fields {
		out[i] = f.name
	}
	return out
}

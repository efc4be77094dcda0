package dsl

import (
	"fmt"
	"math/big"
	"time"

	"github.com/reoring/zskema"
	js "github.com/reoring/zskema/jsonschema"
)

// ToJSONSchema exports the input shape of schema as a draft 2020-12
// document. Refinements, transforms and pipes are not representable and
// are omitted; map schemas and Undefined are rejected.
func ToJSONSchema(schema Schema) (*js.Schema, error) {
	e := &exporter{defs: map[*lazyRef]string{}, out: map[string]*js.Schema{}}
	root, err := e.export(nodeOf("jsonschema", schema))
	if err != nil {
		return nil, err
	}
	root.SchemaURI = js.Draft
	if len(e.out) > 0 {
		root.Defs = e.out
	}
	return root, nil
}

type exporter struct {
	defs map[*lazyRef]string
	out  map[string]*js.Schema
}

func (e *exporter) export(n *node) (*js.Schema, error) {
	s, err := e.exportKind(n)
	if err != nil {
		return nil, err
	}
	if n.desc != "" {
		s.Description = n.desc
	}
	return s, nil
}

func (e *exporter) exportKind(n *node) (*js.Schema, error) {
	switch n.kind {
	case KindString:
		s := &js.Schema{Type: "string"}
		for _, c := range n.checks {
			v := int(c.num)
			switch c.op {
			case "min":
				s.MinLength = &v
			case "max":
				s.MaxLength = &v
			case "length":
				s.MinLength, s.MaxLength = &v, intPtr(v)
			case "regex":
				s.Pattern = c.str
			case "email":
				s.Format = "email"
			case "url":
				s.Format = "uri"
			case "uuid":
				s.Format = "uuid"
			case "datetime":
				s.Format = "date-time"
			}
		}
		return s, nil
	case KindNumber:
		s := &js.Schema{Type: "number"}
		for _, c := range n.checks {
			v := c.num
			switch c.op {
			case "min":
				if c.inclusive {
					s.Minimum = &v
				} else {
					s.ExclusiveMinimum = &v
				}
			case "max":
				if c.inclusive {
					s.Maximum = &v
				} else {
					s.ExclusiveMaximum = &v
				}
			case "int":
				s.Type = "integer"
			case "multipleOf":
				s.MultipleOf = &v
			}
		}
		return s, nil
	case KindBoolean:
		return &js.Schema{Type: "boolean"}, nil
	case KindDate:
		return &js.Schema{Type: "string", Format: "date-time"}, nil
	case KindBigInt:
		return &js.Schema{Type: "integer"}, nil
	case KindLiteral:
		if len(n.values) == 1 {
			return &js.Schema{Const: n.values[0]}, nil
		}
		return &js.Schema{Enum: append([]any(nil), n.values...)}, nil
	case KindEnum:
		return &js.Schema{Enum: append([]any(nil), n.values...)}, nil
	case KindNull:
		return &js.Schema{Type: "null"}, nil
	case KindAny, KindUnknown:
		return &js.Schema{}, nil
	case KindNever:
		return &js.Schema{Not: &js.Schema{}}, nil
	case KindObject:
		return e.exportObject(n)
	case KindArray, KindSet:
		items, err := e.export(n.elem)
		if err != nil {
			return nil, err
		}
		s := &js.Schema{Type: "array", Items: items, UniqueItems: n.kind == KindSet}
		for _, c := range n.checks {
			v := int(c.num)
			switch c.op {
			case "min":
				s.MinItems = &v
			case "max":
				s.MaxItems = &v
			case "length":
				s.MinItems, s.MaxItems = &v, intPtr(v)
			}
		}
		return s, nil
	case KindTuple:
		s := &js.Schema{Type: "array", MinItems: intPtr(len(n.items))}
		for _, it := range n.items {
			is, err := e.export(it)
			if err != nil {
				return nil, err
			}
			s.PrefixItems = append(s.PrefixItems, is)
		}
		if n.rest != nil {
			rs, err := e.export(n.rest)
			if err != nil {
				return nil, err
			}
			s.Items = rs
		} else {
			s.Items = false
		}
		return s, nil
	case KindRecord:
		ks, err := e.export(n.key)
		if err != nil {
			return nil, err
		}
		vs, err := e.export(n.value)
		if err != nil {
			return nil, err
		}
		return &js.Schema{Type: "object", PropertyNames: ks, AdditionalProperties: vs}, nil
	case KindUnion, KindDiscriminatedUnion, KindIntersection:
		members := n.options
		if n.kind == KindIntersection {
			members = []*node{n.left, n.right}
		}
		list := make([]*js.Schema, 0, len(members))
		for _, m := range members {
			ms, err := e.export(m)
			if err != nil {
				return nil, err
			}
			list = append(list, ms)
		}
		switch n.kind {
		case KindUnion:
			return &js.Schema{AnyOf: list}, nil
		case KindDiscriminatedUnion:
			return &js.Schema{OneOf: list}, nil
		}
		return &js.Schema{AllOf: list}, nil
	case KindLazy:
		name, ok := e.defs[n.lazy]
		if !ok {
			name = fmt.Sprintf("Lazy%d", len(e.defs)+1)
			e.defs[n.lazy] = name
			target, err := e.export(n.lazy.get())
			if err != nil {
				return nil, err
			}
			e.out[name] = target
		}
		return &js.Schema{Ref: "#/$defs/" + name}, nil
	case KindOptional, KindCatch:
		return e.export(n.elem)
	case KindNullable:
		inner, err := e.export(n.elem)
		if err != nil {
			return nil, err
		}
		return &js.Schema{AnyOf: []*js.Schema{inner, {Type: "null"}}}, nil
	case KindDefault:
		inner, err := e.export(n.elem)
		if err != nil {
			return nil, err
		}
		inner.Default = jsonDefault(n.defaultFn())
		return inner, nil
	}
	return nil, fmt.Errorf("dsl: %s schemas have no JSON Schema form", n.kind)
}

func (e *exporter) exportObject(n *node) (*js.Schema, error) {
	s := &js.Schema{Type: "object", Properties: map[string]*js.Schema{}}
	for _, f := range n.fields {
		fs, err := e.export(f.schema)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", f.name, err)
		}
		s.Properties[f.name] = fs
		if !acceptsUndefined(f.schema) {
			s.Required = append(s.Required, f.name)
		}
	}
	switch {
	case n.catchall != nil:
		cs, err := e.export(n.catchall)
		if err != nil {
			return nil, err
		}
		s.AdditionalProperties = cs
	case n.unknown == zskema.UnknownStrict:
		s.AdditionalProperties = false
	}
	return s, nil
}

// acceptsUndefined reports whether a missing field passes n's base check.
func acceptsUndefined(n *node) bool {
	switch n.kind {
	case KindOptional, KindDefault, KindCatch, KindAny, KindUnknown, KindUndefined:
		return true
	case KindNullable:
		return acceptsUndefined(n.elem)
	}
	return false
}

func jsonDefault(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *big.Int:
		return t.String()
	}
	return v
}

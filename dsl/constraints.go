package dsl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/reoring/zskema"
)

// StaticConstraints reads the declared bounds of each immediate field of an
// object schema, for generating form attributes. It never validates, runs
// coercion, or calls refinements and transforms. Non-object schemas yield
// an empty map.
func StaticConstraints(schema Schema) map[string]zskema.Constraint {
	out := map[string]zskema.Constraint{}
	n := nodeOf("constraints", schema)
	for n.kind == KindCatch || n.kind == KindLazy {
		if n.kind == KindLazy {
			n = n.lazy.get()
			continue
		}
		n = n.elem
	}
	if n.kind != KindObject {
		return out
	}
	for _, f := range n.fields {
		out[f.name] = fieldConstraint(f.schema)
	}
	return out
}

func fieldConstraint(n *node) zskema.Constraint {
	c := zskema.Constraint{Required: true}
	for {
		switch n.kind {
		case KindOptional, KindNullable, KindDefault:
			c.Required = false
			n = n.elem
			continue
		case KindCatch:
			n = n.elem
			continue
		}
		break
	}
	switch n.kind {
	case KindString:
		for _, ch := range n.checks {
			v := int(ch.num)
			switch ch.op {
			case "min":
				c.MinLength = &v
			case "max":
				c.MaxLength = &v
			case "length":
				c.MinLength, c.MaxLength = &v, intPtr(v)
			case "regex":
				if c.Pattern == "" {
					c.Pattern = ch.str
				}
			}
		}
	case KindNumber:
		for _, ch := range n.checks {
			v := ch.num
			switch ch.op {
			case "min":
				if ch.inclusive {
					c.Min = &v
				}
			case "max":
				if ch.inclusive {
					c.Max = &v
				}
			case "multipleOf":
				c.Step = &v
			}
		}
	case KindEnum:
		parts := make([]string, len(n.values))
		for i, v := range n.values {
			parts[i] = regexp.QuoteMeta(fmt.Sprint(v))
		}
		c.Pattern = strings.Join(parts, "|")
	case KindArray, KindSet:
		c.Multiple = true
	}
	return c
}

func intPtr(v int) *int { return &v }

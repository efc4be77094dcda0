package manifest

import (
	"fmt"

	"github.com/reoring/zskema/rules"
)

var ops = map[string]rules.Op{
	"eq": rules.Eq, "ne": rules.Ne, "lt": rules.Lt,
	"le": rules.Le, "gt": rules.Gt, "ge": rules.Ge,
}

// rules compiles an x-rules list. Each entry holds exactly one of
//
//	fieldsMatch: [/a, /b]          (optional message:)
//	required: /path
//	atLeastOne: /path
//	uniqueBy: {path: /items, keys: [/id]}
//	if: {path: /p, op: eq, value: v}, then: [rules...]
//	anyOf: [rules...]
func (c *compiler) rules(raw []any, ptr string) (rules.Rule, error) {
	out := make([]rules.Rule, 0, len(raw))
	for i, it := range raw {
		at := fmt.Sprintf("%s/%d", ptr, i)
		m, ok := it.(map[string]any)
		if !ok {
			return nil, c.errorf(at, "rule must be an object")
		}
		r, err := c.rule(m, at)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return rules.And(out...), nil
}

func (c *compiler) rule(m map[string]any, ptr string) (rules.Rule, error) {
	switch {
	case m["fieldsMatch"] != nil:
		pair, err := stringList(m["fieldsMatch"])
		if err != nil || len(pair) != 2 {
			return nil, c.errorf(ptr+"/fieldsMatch", "expected two JSON pointers")
		}
		if msg, ok := m["message"].(string); ok {
			return rules.FieldsMatch(pair[0], pair[1], msg), nil
		}
		return rules.FieldsMatch(pair[0], pair[1]), nil
	case m["required"] != nil:
		p, ok := m["required"].(string)
		if !ok {
			return nil, c.errorf(ptr+"/required", "expected a JSON pointer")
		}
		return rules.RequiredField(p), nil
	case m["atLeastOne"] != nil:
		p, ok := m["atLeastOne"].(string)
		if !ok {
			return nil, c.errorf(ptr+"/atLeastOne", "expected a JSON pointer")
		}
		return rules.AtLeastOne(p), nil
	case m["uniqueBy"] != nil:
		u, _ := m["uniqueBy"].(map[string]any)
		p, ok := u["path"].(string)
		if !ok {
			return nil, c.errorf(ptr+"/uniqueBy", "path is required")
		}
		var keys []string
		if u["keys"] != nil {
			var err error
			if keys, err = stringList(u["keys"]); err != nil {
				return nil, c.errorf(ptr+"/uniqueBy/keys", "%v", err)
			}
		}
		return rules.UniqueBy(p, keys...), nil
	case m["if"] != nil:
		return c.conditional(m, ptr)
	case m["anyOf"] != nil:
		list, ok := m["anyOf"].([]any)
		if !ok {
			return nil, c.errorf(ptr+"/anyOf", "expected a list of rules")
		}
		alts := make([]rules.Rule, 0, len(list))
		for i, it := range list {
			sub, _ := it.(map[string]any)
			r, err := c.rule(sub, fmt.Sprintf("%s/anyOf/%d", ptr, i))
			if err != nil {
				return nil, err
			}
			alts = append(alts, r)
		}
		return rules.Or(alts...), nil
	}
	return nil, c.errorf(ptr, "unknown rule")
}

func (c *compiler) conditional(m map[string]any, ptr string) (rules.Rule, error) {
	cond, ok := m["if"].(map[string]any)
	if !ok {
		return nil, c.errorf(ptr+"/if", "expected {path, op, value}")
	}
	path, _ := cond["path"].(string)
	opName, _ := cond["op"].(string)
	if opName == "" {
		opName = "eq"
	}
	op, ok := ops[opName]
	if path == "" || !ok {
		return nil, c.errorf(ptr+"/if", "expected {path, op, value} with op one of eq, ne, lt, le, gt, ge")
	}
	then, ok := m["then"].([]any)
	if !ok {
		return nil, c.errorf(ptr+"/then", "expected a list of rules")
	}
	body, err := c.rules(then, ptr+"/then")
	if err != nil {
		return nil, err
	}
	return rules.If(path, op, cond["value"]).Then(body), nil
}

// Package rules provides reusable cross-field checks for object schemas.
// Each Rule plugs into SuperRefine:
//
//	dsl.Object(fields).SuperRefine(rules.And(
//		rules.FieldsMatch("/password", "/confirm"),
//		rules.If("/contact", rules.Eq, "email").Then(rules.RequiredField("/email")),
//	))
package rules

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/reoring/zskema"
	"github.com/reoring/zskema/coerce"
	"github.com/reoring/zskema/dsl"
)

// Rule inspects a validated value and reports issues through rc.
type Rule = func(v any, rc *dsl.RefineCtx)

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Conditional composes conditional execution of rules.
type Conditional struct {
	path zskema.Path
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional comparing the value at a JSON Pointer against want.
func If(pointer string, op Op, want any) Conditional {
	return Conditional{path: zskema.ParsePointer(pointer), op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Then runs rules only when the condition holds.
func (c Conditional) Then(rules ...Rule) Rule {
	return func(v any, rc *dsl.RefineCtx) {
		if !c.eval(v) {
			return
		}
		for _, r := range rules {
			if r != nil {
				r(v, rc)
			}
		}
	}
}

func (c Conditional) eval(v any) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.eval(v) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.eval(v) {
				return true
			}
		}
		return false
	}
	cur, ok := valueAt(v, c.path)
	if !ok {
		return c.op == Ne
	}
	return compare(cur, c.op, c.want)
}

// RequiredField reports a missing or empty value at pointer as required.
func RequiredField(pointer string) Rule {
	p := zskema.ParsePointer(pointer)
	return func(v any, rc *dsl.RefineCtx) {
		cur, ok := valueAt(v, p)
		if ok && cur != nil && cur != "" {
			return
		}
		rc.AddIssue(zskema.Issue{
			Code:   zskema.CodeInvalidType,
			Path:   p,
			Params: map[string]any{"expected": "value", "received": "undefined"},
		})
	}
}

// FieldsMatch requires the values at two pointers to be equal; the issue is
// reported at the second pointer.
func FieldsMatch(pointer, other string, msg ...string) Rule {
	a, b := zskema.ParsePointer(pointer), zskema.ParsePointer(other)
	text := "values do not match"
	if len(msg) > 0 {
		text = msg[0]
	}
	return func(v any, rc *dsl.RefineCtx) {
		av, _ := valueAt(v, a)
		bv, _ := valueAt(v, b)
		if !reflect.DeepEqual(av, bv) {
			rc.AddIssue(zskema.CustomIssue(text, b, "other", pointer))
		}
	}
}

// AtLeastOne ensures the collection at pointer has at least 1 element.
func AtLeastOne(pointer string) Rule {
	p := zskema.ParsePointer(pointer)
	return func(v any, rc *dsl.RefineCtx) {
		cur, ok := valueAt(v, p)
		if !ok {
			return
		}
		if arr, isArr := cur.([]any); isArr && len(arr) == 0 {
			rc.AddIssue(zskema.IssueAt(p, zskema.CodeTooSmall, "",
				map[string]any{"origin": "array", "minimum": 1, "inclusive": true}))
		}
	}
}

// UniqueBy ensures elements of the collection at pointer are unique by the
// values at keyPointers (relative to each element), compared together as a
// composite key. Without keyPointers whole elements are compared.
// Duplicates are reported at the later element, or at its key when there is
// exactly one.
func UniqueBy(pointer string, keyPointers ...string) Rule {
	cp := zskema.ParsePointer(pointer)
	keys := make([]zskema.Path, len(keyPointers))
	for i, kp := range keyPointers {
		keys[i] = zskema.ParsePointer(kp)
	}
	return func(v any, rc *dsl.RefineCtx) {
		cur, ok := valueAt(v, cp)
		if !ok {
			return
		}
		arr, ok := cur.([]any)
		if !ok {
			return
		}
		seen := map[string]int{}
		for i, elem := range arr {
			key, ok := compositeKey(elem, keys)
			if !ok {
				continue
			}
			j, dup := seen[key]
			if !dup {
				seen[key] = i
				continue
			}
			at := cp.Index(i)
			if len(keys) == 1 {
				at = at.Concat(keys[0])
			}
			rc.AddIssue(zskema.CustomIssue("duplicate value", at, "first", j, "dup", i))
		}
	}
}

func compositeKey(elem any, keys []zskema.Path) (string, bool) {
	if len(keys) == 0 {
		return fmt.Sprintf("%T:%v", elem, elem), true
	}
	var b strings.Builder
	for _, k := range keys {
		kv, ok := valueAt(elem, k)
		if !ok {
			return "", false
		}
		fmt.Fprintf(&b, "%T:%v|", kv, kv)
	}
	return b.String(), true
}

// And runs every rule.
func And(rules ...Rule) Rule {
	return func(v any, rc *dsl.RefineCtx) {
		for _, r := range rules {
			if r != nil {
				r(v, rc)
			}
		}
	}
}

// Or passes when any rule reports nothing. When all fail, the branch with
// the fewest issues is reported.
func Or(rules ...Rule) Rule {
	return func(v any, rc *dsl.RefineCtx) {
		var best *dsl.RefineCtx
		for _, r := range rules {
			if r == nil {
				continue
			}
			sub := rc.Sub()
			r(v, sub)
			if len(sub.Issues()) == 0 {
				return
			}
			if best == nil || len(sub.Issues()) < len(best.Issues()) {
				best = sub
			}
		}
		if best != nil {
			rc.Merge(best)
		}
	}
}

// ------- helpers -------

func valueAt(v any, p zskema.Path) (any, bool) {
	cur := v
	for _, seg := range p {
		switch t := cur.(type) {
		case map[string]any:
			key := fmt.Sprint(seg)
			next, ok := t[key]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, ok := seg.(int)
			if !ok || idx < 0 || idx >= len(t) {
				return nil, false
			}
			cur = t[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

func compare(cur any, op Op, want any) bool {
	switch op {
	case Eq:
		return equal(cur, want)
	case Ne:
		return !equal(cur, want)
	}
	a, aok := coerce.Float(cur)
	b, bok := coerce.Float(want)
	if !aok || !bok {
		return false
	}
	switch op {
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	}
	return false
}

// equal compares numbers by value so an int literal matches decoded float64.
func equal(a, b any) bool {
	af, aok := coerce.Float(a)
	bf, bok := coerce.Float(b)
	if aok && bok {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

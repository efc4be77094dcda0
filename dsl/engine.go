package dsl

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/reoring/zskema"
	"github.com/reoring/zskema/coerce"
)

// run is the state of one validation call. It is never shared.
type run struct {
	ctx       context.Context
	cfg       zskema.Config
	async     bool
	active    map[lazyVisit]bool
	cancelled error
}

type lazyVisit struct {
	ref   *lazyRef
	depth int
}

func (r *run) message(n *node, it zskema.Issue, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if n != nil {
		if n.msgFn != nil {
			if m := n.msgFn(it); m != "" {
				return m
			}
		}
		if n.msg != "" {
			return n.msg
		}
	}
	return r.cfg.Message(it)
}

func (r *run) issue(n *node, p zskema.Path, code string, params map[string]any, input any, explicit string) zskema.Issue {
	it := zskema.Issue{Code: code, Path: p, Params: params, Input: input}
	it.Message = r.message(n, it, explicit)
	return it
}

func (r *run) invalidType(n *node, p zskema.Path, expected string, v any) zskema.Issues {
	return r.invalidTypeAs(n, p, expected, zskema.TypeName(v), v)
}

func (r *run) invalidTypeAs(n *node, p zskema.Path, expected, received string, v any) zskema.Issues {
	params := map[string]any{"expected": expected, "received": received}
	return zskema.Issues{r.issue(n, p, zskema.CodeInvalidType, params, v, "")}
}

// validate is the recursive entry for one node: preprocess, the kind's own
// algorithm, then effects in declaration order.
func (r *run) validate(n *node, v any, p zskema.Path) (any, zskema.Issues) {
	if n.preprocess != nil {
		v = n.preprocess(v)
	}
	out, iss := r.base(n, v, p)
	if len(iss) > 0 || len(n.effects) == 0 {
		return out, iss
	}
	return r.effects(n, out, p)
}

func (r *run) effects(n *node, v any, p zskema.Path) (any, zskema.Issues) {
	var iss zskema.Issues
	dirty := false
	for _, e := range n.effects {
		if r.cancelled != nil {
			break
		}
		if e.async {
			if !r.async {
				iss = append(iss, r.issue(n, p, zskema.CodeAsyncInSync, nil, v, ""))
				dirty = true
				continue
			}
			if err := r.ctx.Err(); err != nil {
				r.cancelled = err
				break
			}
		}
		switch e.kind {
		case effectRefine:
			var ok bool
			if e.async {
				ok = e.predAsync(r.ctx, v)
			} else {
				ok = e.pred(v)
			}
			if ok {
				continue
			}
			it := zskema.Issue{Code: zskema.CodeCustom, Path: p.Concat(e.spec.path), Params: e.spec.params, Input: v}
			it.Message = r.message(n, it, e.spec.msg)
			iss = append(iss, it)
			dirty = true
			if e.spec.abort {
				return v, iss
			}
		case effectSuperRefine:
			rc := &RefineCtx{ctx: r.ctx, path: p, input: v}
			if e.async {
				e.superAsync(r.ctx, v, rc)
			} else {
				e.super(v, rc)
			}
			for _, it := range rc.issues {
				if it.Message == "" {
					it.Message = r.message(n, it, "")
				}
				iss = append(iss, it)
			}
			if len(rc.issues) > 0 {
				dirty = true
				if rc.fatal {
					return v, iss
				}
			}
		case effectTransform:
			if !dirty {
				v = e.transform(v)
			}
		case effectPipe:
			if dirty {
				continue
			}
			out, piss := r.validate(e.pipe, v, p)
			if len(piss) > 0 {
				iss = append(iss, piss...)
				dirty = true
				continue
			}
			v = out
		}
	}
	return v, iss
}

func (r *run) base(n *node, v any, p zskema.Path) (any, zskema.Issues) {
	switch n.kind {
	case KindOptional:
		if zskema.IsUndefined(v) {
			return zskema.Undefined, nil
		}
		return r.validate(n.elem, v, p)
	case KindNullable:
		if v == nil {
			return nil, nil
		}
		return r.validate(n.elem, v, p)
	case KindDefault:
		if zskema.IsUndefined(v) {
			return n.defaultFn(), nil
		}
		return r.validate(n.elem, v, p)
	case KindCatch:
		out, iss := r.validate(n.elem, v, p)
		if len(iss) > 0 && r.cancelled == nil && !hasCode(iss, zskema.CodeAsyncInSync) {
			return n.catchFn(), nil
		}
		return out, iss
	case KindString:
		return r.stringValue(n, v, p)
	case KindNumber:
		return r.numberValue(n, v, p)
	case KindBoolean:
		b, ok := v.(bool)
		if !ok && n.coerce {
			b, ok = coerce.ToBoolean(v), true
		}
		if !ok {
			return nil, r.invalidType(n, p, "boolean", v)
		}
		return b, nil
	case KindDate:
		return r.dateValue(n, v, p)
	case KindBigInt:
		return r.bigIntValue(n, v, p)
	case KindLiteral:
		k := literalKey(v)
		if !containsLiteral(n.values, k) {
			var expected any = n.values
			if len(n.values) == 1 {
				expected = n.values[0]
			}
			params := map[string]any{"expected": expected, "received": v}
			return nil, zskema.Issues{r.issue(n, p, zskema.CodeInvalidLiteral, params, v, "")}
		}
		return k, nil
	case KindEnum:
		k := literalKey(v)
		if !containsLiteral(n.values, k) {
			params := map[string]any{"options": n.values, "received": v}
			return nil, zskema.Issues{r.issue(n, p, zskema.CodeInvalidEnumValue, params, v, "")}
		}
		return k, nil
	case KindNull:
		if v != nil {
			return nil, r.invalidType(n, p, "null", v)
		}
		return nil, nil
	case KindUndefined:
		if !zskema.IsUndefined(v) {
			return nil, r.invalidType(n, p, "undefined", v)
		}
		return zskema.Undefined, nil
	case KindAny, KindUnknown:
		return v, nil
	case KindNever:
		return nil, r.invalidType(n, p, "never", v)
	case KindObject:
		return r.objectValue(n, v, p)
	case KindArray:
		return r.arrayValue(n, v, p)
	case KindSet:
		return r.setValue(n, v, p)
	case KindTuple:
		return r.tupleValue(n, v, p)
	case KindRecord:
		return r.recordValue(n, v, p)
	case KindMap:
		return r.mapValue(n, v, p)
	case KindUnion:
		return r.unionValue(n, v, p)
	case KindDiscriminatedUnion:
		return r.discriminatedValue(n, v, p)
	case KindIntersection:
		return r.intersectionValue(n, v, p)
	case KindLazy:
		return r.lazyValue(n, v, p)
	}
	panic(&zskema.SchemaError{Op: "validate", Reason: "unknown kind " + string(n.kind)})
}

// ---- leaves ----

func (r *run) bound(n *node, p zskema.Path, c check, low bool, origin string, bound, input any) zskema.Issue {
	params := map[string]any{"origin": origin, "inclusive": c.inclusive || c.op == "length", "exact": c.op == "length"}
	code := zskema.CodeTooBig
	if low {
		code = zskema.CodeTooSmall
		params["minimum"] = bound
	} else {
		params["maximum"] = bound
	}
	return r.issue(n, p, code, params, input, c.msg)
}

// sizeChecks applies every min/max/length check of n to a counted quantity.
func (r *run) sizeChecks(n *node, p zskema.Path, origin string, size int, input any) zskema.Issues {
	var iss zskema.Issues
	for _, c := range n.checks {
		if it, failed := r.sizeCheck(n, p, c, origin, size, input); failed {
			iss = append(iss, it)
		}
	}
	return iss
}

func (r *run) sizeCheck(n *node, p zskema.Path, c check, origin string, size int, input any) (zskema.Issue, bool) {
	want := int(c.num)
	switch c.op {
	case "min":
		if size < want {
			return r.bound(n, p, c, true, origin, want, input), true
		}
	case "max":
		if size > want {
			return r.bound(n, p, c, false, origin, want, input), true
		}
	case "length":
		if size < want {
			return r.bound(n, p, c, true, origin, want, input), true
		}
		if size > want {
			return r.bound(n, p, c, false, origin, want, input), true
		}
	}
	return zskema.Issue{}, false
}

func (r *run) format(n *node, p zskema.Path, c check, s string, params map[string]any) zskema.Issue {
	return r.issue(n, p, zskema.CodeInvalidStringFormat, params, s, c.msg)
}

func (r *run) stringValue(n *node, v any, p zskema.Path) (any, zskema.Issues) {
	s, ok := v.(string)
	if !ok && n.coerce {
		s, ok = coerce.ToString(v), true
	}
	if !ok {
		return nil, r.invalidType(n, p, "string", v)
	}
	var iss zskema.Issues
	for _, c := range n.checks {
		switch c.op {
		case "trim":
			s = strings.TrimSpace(s)
		case "toLowerCase":
			s = strings.ToLower(s)
		case "toUpperCase":
			s = strings.ToUpper(s)
		case "min", "max", "length":
			if it, failed := r.sizeCheck(n, p, c, "string", utf8.RuneCountInString(s), s); failed {
				iss = append(iss, it)
			}
		case "regex":
			if !c.re.MatchString(s) {
				iss = append(iss, r.format(n, p, c, s, map[string]any{"validation": "regex", "pattern": c.str}))
			}
		case "email":
			if !isEmail(s) {
				iss = append(iss, r.format(n, p, c, s, map[string]any{"validation": "email"}))
			}
		case "url":
			if !isURL(s) {
				iss = append(iss, r.format(n, p, c, s, map[string]any{"validation": "url"}))
			}
		case "uuid":
			if !isUUID(s) {
				iss = append(iss, r.format(n, p, c, s, map[string]any{"validation": "uuid"}))
			}
		case "datetime":
			if !isDatetime(s) {
				iss = append(iss, r.format(n, p, c, s, map[string]any{"validation": "datetime"}))
			}
		case "includes":
			if !strings.Contains(s, c.str) {
				iss = append(iss, r.format(n, p, c, s, map[string]any{"validation": "includes", "includes": c.str}))
			}
		case "startsWith":
			if !strings.HasPrefix(s, c.str) {
				iss = append(iss, r.format(n, p, c, s, map[string]any{"validation": "startsWith", "startsWith": c.str}))
			}
		case "endsWith":
			if !strings.HasSuffix(s, c.str) {
				iss = append(iss, r.format(n, p, c, s, map[string]any{"validation": "endsWith", "endsWith": c.str}))
			}
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return s, nil
}

func (r *run) numberValue(n *node, v any, p zskema.Path) (any, zskema.Issues) {
	f, ok := coerce.Float(v)
	if !ok && n.coerce {
		if f, ok = coerce.ToNumber(v); !ok {
			return nil, r.invalidTypeAs(n, p, "number", "nan", v)
		}
	}
	if !ok {
		return nil, r.invalidType(n, p, "number", v)
	}
	if math.IsNaN(f) {
		return nil, r.invalidTypeAs(n, p, "number", "nan", v)
	}
	var iss zskema.Issues
	for _, c := range n.checks {
		switch c.op {
		case "min":
			if f < c.num || (!c.inclusive && f == c.num) {
				iss = append(iss, r.bound(n, p, c, true, "number", c.num, f))
			}
		case "max":
			if f > c.num || (!c.inclusive && f == c.num) {
				iss = append(iss, r.bound(n, p, c, false, "number", c.num, f))
			}
		case "int":
			if math.IsInf(f, 0) || f != math.Trunc(f) {
				params := map[string]any{"expected": "integer", "received": "float"}
				iss = append(iss, r.issue(n, p, zskema.CodeInvalidType, params, f, c.msg))
			}
		case "multipleOf":
			if math.IsInf(f, 0) || floatSafeRemainder(f, c.num) != 0 {
				iss = append(iss, r.issue(n, p, zskema.CodeNotMultipleOf, map[string]any{"multipleOf": c.num}, f, c.msg))
			}
		case "finite":
			if math.IsInf(f, 0) {
				iss = append(iss, r.issue(n, p, zskema.CodeNotFinite, nil, f, c.msg))
			}
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return f, nil
}

// floatSafeRemainder computes val mod step on decimal-scaled integers so
// that 0.3 is a multiple of 0.1.
func floatSafeRemainder(val, step float64) float64 {
	d := decimals(val)
	if sd := decimals(step); sd > d {
		d = sd
	}
	if d > 15 {
		d = 15
	}
	scale := math.Pow10(d)
	vi := math.Round(val * scale)
	si := math.Round(step * scale)
	if si == 0 {
		return math.Mod(val, step)
	}
	return math.Mod(vi, si) / scale
}

func decimals(f float64) int {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

func (r *run) dateValue(n *node, v any, p zskema.Path) (any, zskema.Issues) {
	t, ok := v.(time.Time)
	if !ok && n.coerce {
		if t, ok = coerce.ToDate(v); !ok {
			return nil, r.invalidTypeAs(n, p, "date", "invalid_date", v)
		}
	}
	if !ok {
		return nil, r.invalidType(n, p, "date", v)
	}
	ms := float64(t.UnixMilli())
	var iss zskema.Issues
	for _, c := range n.checks {
		limit := time.UnixMilli(int64(c.num)).UTC()
		switch c.op {
		case "min":
			if ms < c.num {
				iss = append(iss, r.bound(n, p, c, true, "date", limit, t))
			}
		case "max":
			if ms > c.num {
				iss = append(iss, r.bound(n, p, c, false, "date", limit, t))
			}
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return t, nil
}

func (r *run) bigIntValue(n *node, v any, p zskema.Path) (any, zskema.Issues) {
	var b *big.Int
	switch t := v.(type) {
	case *big.Int:
		b = t
	case big.Int:
		b = new(big.Int).Set(&t)
	}
	if b == nil && n.coerce {
		b, _ = coerce.ToBigInt(v)
	}
	if b == nil {
		return nil, r.invalidType(n, p, "bigint", v)
	}
	var iss zskema.Issues
	for _, c := range n.checks {
		limit, _ := new(big.Int).SetString(c.str, 10)
		cmp := b.Cmp(limit)
		switch c.op {
		case "min":
			if cmp < 0 || (!c.inclusive && cmp == 0) {
				iss = append(iss, r.bound(n, p, c, true, "bigint", limit, b))
			}
		case "max":
			if cmp > 0 || (!c.inclusive && cmp == 0) {
				iss = append(iss, r.bound(n, p, c, false, "bigint", limit, b))
			}
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return b, nil
}

// ---- composites ----

func (r *run) objectValue(n *node, v any, p zskema.Path) (any, zskema.Issues) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, r.invalidType(n, p, "object", v)
	}
	out := make(map[string]any, len(n.fields))
	var iss zskema.Issues
	for _, f := range n.fields {
		fv, present := m[f.name]
		if !present {
			fv = zskema.Undefined
		}
		o, fiss := r.validate(f.schema, fv, p.Field(f.name))
		if len(fiss) > 0 {
			iss = append(iss, fiss...)
			continue
		}
		if !zskema.IsUndefined(o) {
			out[f.name] = o
		}
	}

	var extra []string
	for k := range m {
		if _, declared := n.field(k); !declared {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	switch {
	case len(extra) == 0:
	case n.catchall != nil:
		for _, k := range extra {
			o, kiss := r.validate(n.catchall, m[k], p.Field(k))
			if len(kiss) > 0 {
				iss = append(iss, kiss...)
				continue
			}
			out[k] = o
		}
	case n.unknown == zskema.UnknownStrict:
		iss = append(iss, r.issue(n, p, zskema.CodeUnrecognizedKeys, map[string]any{"keys": extra}, v, ""))
	case n.unknown == zskema.UnknownPassthrough:
		for _, k := range extra {
			out[k] = m[k]
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (r *run) arrayValue(n *node, v any, p zskema.Path) (any, zskema.Issues) {
	arr, ok := v.([]any)
	if !ok {
		return nil, r.invalidType(n, p, "array", v)
	}
	iss := r.sizeChecks(n, p, "array", len(arr), v)
	out := make([]any, len(arr))
	for i, e := range arr {
		o, eiss := r.validate(n.elem, e, p.Index(i))
		iss = append(iss, eiss...)
		out[i] = o
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (r *run) setValue(n *node, v any, p zskema.Path) (any, zskema.Issues) {
	in, ok := v.(zskema.Set)
	if !ok {
		return nil, r.invalidType(n, p, "set", v)
	}
	var iss zskema.Issues
	out := make(zskema.Set, 0, len(in))
	seen := map[any]bool{}
	for i, e := range in {
		o, eiss := r.validate(n.elem, e, p.Index(i))
		if len(eiss) > 0 {
			iss = append(iss, eiss...)
			continue
		}
		if isComparable(o) {
			if seen[o] {
				continue
			}
			seen[o] = true
		}
		out = append(out, o)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	if iss = r.sizeChecks(n, p, "set", len(out), v); len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (r *run) tupleValue(n *node, v any, p zskema.Path) (any, zskema.Issues) {
	arr, ok := v.([]any)
	if !ok {
		return nil, r.invalidType(n, p, "array", v)
	}
	want := len(n.items)
	exact := n.rest == nil
	if len(arr) < want {
		c := check{op: "min", inclusive: true}
		if exact {
			c.op = "length"
		}
		return nil, zskema.Issues{r.bound(n, p, c, true, "array", want, v)}
	}
	if exact && len(arr) > want {
		return nil, zskema.Issues{r.bound(n, p, check{op: "length"}, false, "array", want, v)}
	}
	var iss zskema.Issues
	out := make([]any, len(arr))
	for i, e := range arr {
		item := n.rest
		if i < want {
			item = n.items[i]
		}
		o, eiss := r.validate(item, e, p.Index(i))
		iss = append(iss, eiss...)
		out[i] = o
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (r *run) recordValue(n *node, v any, p zskema.Path) (any, zskema.Issues) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, r.invalidType(n, p, "object", v)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]any, len(m))
	var iss zskema.Issues
	for _, k := range keys {
		kp := p.Field(k)
		ko, kiss := r.validate(n.key, k, kp)
		vo, viss := r.validate(n.value, m[k], kp)
		iss = append(iss, kiss...)
		iss = append(iss, viss...)
		if len(kiss) > 0 || len(viss) > 0 {
			continue
		}
		name, isStr := ko.(string)
		if !isStr {
			name = k
		}
		out[name] = vo
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (r *run) mapValue(n *node, v any, p zskema.Path) (any, zskema.Issues) {
	var m map[any]any
	switch t := v.(type) {
	case map[any]any:
		m = t
	case map[string]any:
		m = make(map[any]any, len(t))
		for k, e := range t {
			m[k] = e
		}
	default:
		return nil, r.invalidType(n, p, "map", v)
	}
	keys := make([]any, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j]) })
	out := make(map[any]any, len(m))
	var iss zskema.Issues
	for _, k := range keys {
		kp := p.Append(k)
		ko, kiss := r.validate(n.key, k, kp)
		vo, viss := r.validate(n.value, m[k], kp)
		iss = append(iss, kiss...)
		iss = append(iss, viss...)
		if len(kiss) > 0 || len(viss) > 0 {
			continue
		}
		if !isComparable(ko) {
			ko = k
		}
		out[ko] = vo
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (r *run) unionValue(n *node, v any, p zskema.Path) (any, zskema.Issues) {
	branches := make([]zskema.Issues, 0, len(n.options))
	for _, o := range n.options {
		out, iss := r.validate(o, v, p)
		if len(iss) == 0 {
			return out, nil
		}
		branches = append(branches, iss)
	}
	params := map[string]any{"unionErrors": branches}
	// A member that accepted the input's type is the likely intended one.
	for i, b := range branches {
		if typeMatched(b, p) {
			params["nearest"] = i
			break
		}
	}
	return nil, zskema.Issues{r.issue(n, p, zskema.CodeInvalidUnion, params, v, "")}
}

func hasCode(iss zskema.Issues, code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
		if branches, ok := it.Params["unionErrors"].([]zskema.Issues); ok {
			for _, b := range branches {
				if hasCode(b, code) {
					return true
				}
			}
		}
	}
	return false
}

func typeMatched(iss zskema.Issues, p zskema.Path) bool {
	for _, it := range iss {
		if !it.Path.Equal(p) {
			continue
		}
		switch it.Code {
		case zskema.CodeInvalidType, zskema.CodeInvalidLiteral, zskema.CodeInvalidEnumValue,
			zskema.CodeInvalidUnion, zskema.CodeInvalidUnionDiscriminator:
			return false
		}
	}
	return true
}

func (r *run) discriminatedValue(n *node, v any, p zskema.Path) (any, zskema.Issues) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, r.invalidType(n, p, "object", v)
	}
	d, present := m[n.discriminator]
	if !present {
		d = zskema.Undefined
	}
	member, ok := n.byDisc[literalKey(d)]
	if !ok {
		params := map[string]any{"options": n.values, "discriminator": n.discriminator}
		return nil, zskema.Issues{r.issue(n, p.Field(n.discriminator), zskema.CodeInvalidUnionDiscriminator, params, d, "")}
	}
	return r.validate(member, v, p)
}

func (r *run) intersectionValue(n *node, v any, p zskema.Path) (any, zskema.Issues) {
	lo, liss := r.validate(n.left, v, p)
	ro, riss := r.validate(n.right, v, p)
	if len(liss) > 0 || len(riss) > 0 {
		return nil, append(liss, riss...)
	}
	merged, ok := mergeValues(lo, ro)
	if !ok {
		return nil, zskema.Issues{r.issue(n, p, zskema.CodeInvalidIntersectionTypes, nil, v, "")}
	}
	return merged, nil
}

func mergeValues(a, b any) (any, bool) {
	switch at := a.(type) {
	case map[string]any:
		bt, ok := b.(map[string]any)
		if !ok {
			return nil, false
		}
		out := make(map[string]any, len(at)+len(bt))
		for k, av := range at {
			out[k] = av
		}
		for k, bv := range bt {
			if av, shared := at[k]; shared {
				mv, ok := mergeValues(av, bv)
				if !ok {
					return nil, false
				}
				out[k] = mv
				continue
			}
			out[k] = bv
		}
		return out, true
	case []any:
		bt, ok := b.([]any)
		if !ok || len(at) != len(bt) {
			return nil, false
		}
		out := make([]any, len(at))
		for i := range at {
			mv, ok := mergeValues(at[i], bt[i])
			if !ok {
				return nil, false
			}
			out[i] = mv
		}
		return out, true
	case time.Time:
		bt, ok := b.(time.Time)
		return a, ok && at.Equal(bt)
	case *big.Int:
		bt, ok := b.(*big.Int)
		return a, ok && at.Cmp(bt) == 0
	}
	if isComparable(a) && isComparable(b) && a == b {
		return a, true
	}
	return nil, false
}

func isComparable(v any) bool {
	return v == nil || reflect.TypeOf(v).Comparable()
}

func (r *run) lazyValue(n *node, v any, p zskema.Path) (any, zskema.Issues) {
	target := n.lazy.get()
	key := lazyVisit{ref: n.lazy, depth: len(p)}
	if r.active[key] {
		r.cfg.Logger.Debug().Str("schema", r.cfg.Name).Str("path", p.Pointer()).Msg("schema cycle detected")
		return nil, zskema.Issues{r.issue(n, p, zskema.CodeSchemaCycle, nil, v, "")}
	}
	r.active[key] = true
	defer delete(r.active, key)
	return r.validate(target, v, p)
}

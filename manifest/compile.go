package manifest

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/reoring/zskema"
	"github.com/reoring/zskema/dsl"
	"github.com/reoring/zskema/rules"
)

// annotations are accepted and ignored.
var annotations = map[string]bool{
	"$schema": true, "$id": true, "$comment": true, "title": true,
	"examples": true, "deprecated": true, "readOnly": true, "writeOnly": true,
	"$defs": true, "definitions": true,
}

// handled lists every keyword the compiler interprets.
var handled = map[string]bool{
	"$ref": true, "type": true, "const": true, "enum": true, "anyOf": true,
	"oneOf": true, "allOf": true, "not": true, "discriminator": true,
	"description": true, "default": true, "nullable": true, "coerce": true,
	"minLength": true, "maxLength": true, "pattern": true, "format": true,
	"minimum": true, "maximum": true, "exclusiveMinimum": true,
	"exclusiveMaximum": true, "multipleOf": true, "properties": true,
	"required": true, "additionalProperties": true, "propertyNames": true,
	"items": true, "prefixItems": true, "minItems": true, "maxItems": true,
	"uniqueItems": true, "x-rules": true,
	"x-kubernetes-preserve-unknown-fields": true,
	"x-kubernetes-int-or-string":           true,
	"x-kubernetes-list-type":               true,
	"x-kubernetes-list-map-keys":           true,
}

type compiler struct {
	root map[string]any
	opts Options
	diag *Diag
	defs map[string]dsl.Schema
	raw  map[string]map[string]any
}

func newCompiler(root map[string]any, opts Options, diag *Diag) *compiler {
	return &compiler{root: root, opts: opts, diag: diag, defs: map[string]dsl.Schema{}, raw: map[string]map[string]any{}}
}

func (c *compiler) errorf(ptr, f string, a ...any) error {
	return &Error{Pointer: pointer(ptr), Err: fmt.Errorf(f, a...)}
}

func pointer(ptr string) string {
	if ptr == "" {
		return "/"
	}
	return ptr
}

func (c *compiler) unsupported(ptr, kw string) error {
	if c.opts.Strict {
		return c.errorf(ptr, "unsupported keyword %q", kw)
	}
	c.diag.warnf("%s: unsupported keyword %q ignored", pointer(ptr), kw)
	return nil
}

// compileDefs compiles every definition up front. References between
// definitions resolve lazily, so order does not matter.
func (c *compiler) compileDefs() error {
	for _, section := range []string{"$defs", "definitions"} {
		m, ok := c.root[section].(map[string]any)
		if !ok {
			continue
		}
		for name, raw := range m {
			def, ok := raw.(map[string]any)
			if !ok {
				return c.errorf("/"+section+"/"+name, "definition must be an object")
			}
			c.raw["#/"+section+"/"+name] = def
		}
	}
	names := make([]string, 0, len(c.raw))
	for ref := range c.raw {
		names = append(names, ref)
	}
	sort.Strings(names)
	for _, ref := range names {
		s, err := c.compile(c.raw[ref], strings.TrimPrefix(ref, "#"))
		if err != nil {
			return err
		}
		c.defs[ref] = s
	}
	return nil
}

func (c *compiler) ref(target, ptr string) (dsl.Schema, error) {
	if target == "#" {
		return dsl.Lazy(func() dsl.Schema { return c.defs["#"] }), nil
	}
	if _, ok := c.raw[target]; !ok {
		return nil, c.errorf(ptr, "unresolved $ref %q", target)
	}
	return dsl.Lazy(func() dsl.Schema { return c.defs[target] }), nil
}

func (c *compiler) compile(m map[string]any, ptr string) (dsl.Schema, error) {
	for kw := range m {
		if !handled[kw] && !annotations[kw] {
			if err := c.unsupported(ptr, kw); err != nil {
				return nil, err
			}
		}
	}
	s, err := c.base(m, ptr)
	if err != nil {
		return nil, err
	}
	if rs, ok := m["x-rules"].([]any); ok {
		r, err := c.rules(rs, ptr+"/x-rules")
		if err != nil {
			return nil, err
		}
		s = dsl.Of(s).SuperRefine(r).Unwrap()
	}
	if d, ok := m["description"].(string); ok {
		s = dsl.Of(s).Describe(d).Unwrap()
	}
	if b, _ := m["nullable"].(bool); b {
		s = dsl.Of(s).Nullable()
	}
	if def, ok := m["default"]; ok {
		s = dsl.Of(s).Default(def)
	}
	if ptr == "" {
		c.defs["#"] = s
	}
	return s, nil
}

func (c *compiler) base(m map[string]any, ptr string) (dsl.Schema, error) {
	if target, ok := m["$ref"].(string); ok {
		return c.ref(target, ptr+"/$ref")
	}
	if v, ok := m["const"]; ok {
		return dsl.Literal(v), nil
	}
	if vals, ok := m["enum"].([]any); ok {
		if len(vals) == 0 {
			return nil, c.errorf(ptr+"/enum", "enum needs at least one value")
		}
		return dsl.Enum(vals...), nil
	}
	if b, _ := m["x-kubernetes-int-or-string"].(bool); b {
		return dsl.Union(dsl.Int(), dsl.String()), nil
	}
	if branches, ok := m["oneOf"].([]any); ok {
		return c.oneOf(m, branches, ptr)
	}
	if branches, ok := m["anyOf"].([]any); ok {
		opts, err := c.branches(branches, ptr+"/anyOf")
		if err != nil {
			return nil, err
		}
		return dsl.Union(opts...), nil
	}
	if branches, ok := m["allOf"].([]any); ok {
		opts, err := c.branches(branches, ptr+"/allOf")
		if err != nil {
			return nil, err
		}
		s := opts[0]
		for _, o := range opts[1:] {
			s = dsl.Intersection(s, o)
		}
		return s, nil
	}
	if not, ok := m["not"].(map[string]any); ok {
		if len(not) == 0 {
			return dsl.Never(), nil
		}
		if err := c.unsupported(ptr, "not"); err != nil {
			return nil, err
		}
	}

	types, nullable, err := typeList(m["type"])
	if err != nil {
		return nil, c.errorf(ptr+"/type", "%v", err)
	}
	if len(types) == 0 {
		types = inferType(m)
	}
	var out []dsl.Schema
	for _, t := range types {
		s, err := c.typed(t, m, ptr)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	var s dsl.Schema
	switch len(out) {
	case 0:
		if nullable {
			return dsl.Null(), nil
		}
		s = dsl.Unknown()
	case 1:
		s = out[0]
	default:
		s = dsl.Union(out...)
	}
	if nullable {
		s = dsl.Of(s).Nullable()
	}
	return s, nil
}

func typeList(raw any) ([]string, bool, error) {
	var names []string
	switch t := raw.(type) {
	case nil:
		return nil, false, nil
	case string:
		names = []string{t}
	case []any:
		for _, it := range t {
			s, ok := it.(string)
			if !ok {
				return nil, false, fmt.Errorf("type entries must be strings")
			}
			names = append(names, s)
		}
	default:
		return nil, false, fmt.Errorf("type must be a string or a list")
	}
	var out []string
	nullable := false
	for _, n := range names {
		if n == "null" {
			nullable = true
			continue
		}
		out = append(out, n)
	}
	return out, nullable, nil
}

// inferType guesses the type of a schema that omits "type" from its
// type-specific keywords.
func inferType(m map[string]any) []string {
	switch {
	case m["properties"] != nil || m["additionalProperties"] != nil:
		return []string{"object"}
	case m["items"] != nil || m["prefixItems"] != nil:
		return []string{"array"}
	}
	return nil
}

func (c *compiler) branches(raw []any, ptr string) ([]dsl.Schema, error) {
	if len(raw) == 0 {
		return nil, c.errorf(ptr, "needs at least one schema")
	}
	out := make([]dsl.Schema, 0, len(raw))
	for i, b := range raw {
		bm, ok := b.(map[string]any)
		if !ok {
			return nil, c.errorf(fmt.Sprintf("%s/%d", ptr, i), "expected a schema object")
		}
		s, err := c.compile(bm, fmt.Sprintf("%s/%d", ptr, i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (c *compiler) oneOf(m map[string]any, raw []any, ptr string) (dsl.Schema, error) {
	opts, err := c.branches(raw, ptr+"/oneOf")
	if err != nil {
		return nil, err
	}
	disc, ok := m["discriminator"].(map[string]any)
	if !ok {
		c.diag.warnf("%s: oneOf without discriminator accepts the first matching branch", pointer(ptr))
		return dsl.Union(opts...), nil
	}
	key, _ := disc["propertyName"].(string)
	if key == "" {
		return nil, c.errorf(ptr+"/discriminator", "propertyName is required")
	}
	objs := make([]*dsl.ObjectSchema, 0, len(opts))
	for i, o := range opts {
		obj, ok := o.(*dsl.ObjectSchema)
		if !ok {
			return nil, c.errorf(fmt.Sprintf("%s/oneOf/%d", ptr, i), "discriminated branches must be plain objects")
		}
		objs = append(objs, obj)
	}
	return dsl.DiscriminatedUnion(key, objs...), nil
}

func (c *compiler) typed(t string, m map[string]any, ptr string) (dsl.Schema, error) {
	coerce, _ := m["coerce"].(bool)
	switch t {
	case "string":
		return c.str(m, ptr, coerce)
	case "number", "integer":
		return c.number(m, ptr, coerce, t == "integer")
	case "boolean":
		if coerce {
			return dsl.Coerce.Boolean(), nil
		}
		return dsl.Boolean(), nil
	case "date":
		if coerce {
			return dsl.Coerce.Date(), nil
		}
		return dsl.Date(), nil
	case "bigint":
		if coerce {
			return dsl.Coerce.BigInt(), nil
		}
		return dsl.BigInt(), nil
	case "object":
		return c.object(m, ptr)
	case "array":
		return c.array(m, ptr)
	}
	return nil, c.errorf(ptr+"/type", "unknown type %q", t)
}

func (c *compiler) str(m map[string]any, ptr string, coerce bool) (dsl.Schema, error) {
	s := dsl.String()
	if coerce {
		s = dsl.Coerce.String()
	}
	if n, ok := intKeyword(m, "minLength"); ok {
		s = s.Min(n)
	}
	if n, ok := intKeyword(m, "maxLength"); ok {
		s = s.Max(n)
	}
	if p, ok := m["pattern"].(string); ok {
		s = s.Regex(p)
	}
	if f, ok := m["format"].(string); ok {
		switch f {
		case "email":
			s = s.Email()
		case "uri", "url":
			s = s.URL()
		case "uuid":
			s = s.UUID()
		case "date-time":
			s = s.Datetime()
		default:
			c.diag.warnf("%s: format %q is not checked", pointer(ptr), f)
		}
	}
	return s, nil
}

func (c *compiler) number(m map[string]any, ptr string, coerce, integer bool) (dsl.Schema, error) {
	s := dsl.Number()
	if coerce {
		s = dsl.Coerce.Number()
	}
	if integer {
		s = s.Int()
	}
	// Draft 4 spells exclusive bounds as booleans next to minimum/maximum.
	exMin, _ := m["exclusiveMinimum"].(bool)
	exMax, _ := m["exclusiveMaximum"].(bool)
	if v, ok := floatKeyword(m, "minimum"); ok {
		if exMin {
			s = s.Gt(v)
		} else {
			s = s.Min(v)
		}
	}
	if v, ok := floatKeyword(m, "maximum"); ok {
		if exMax {
			s = s.Lt(v)
		} else {
			s = s.Max(v)
		}
	}
	if v, ok := floatKeyword(m, "exclusiveMinimum"); ok {
		s = s.Gt(v)
	}
	if v, ok := floatKeyword(m, "exclusiveMaximum"); ok {
		s = s.Lt(v)
	}
	if v, ok := floatKeyword(m, "multipleOf"); ok {
		if v <= 0 {
			return nil, c.errorf(ptr+"/multipleOf", "must be positive")
		}
		s = s.MultipleOf(v)
	}
	return s, nil
}

func (c *compiler) object(m map[string]any, ptr string) (dsl.Schema, error) {
	props, _ := m["properties"].(map[string]any)
	required := map[string]bool{}
	if req, ok := m["required"].([]any); ok {
		for _, r := range req {
			if name, ok := r.(string); ok {
				required[name] = true
			}
		}
	}
	var extra dsl.Schema
	preserve, _ := m["x-kubernetes-preserve-unknown-fields"].(bool)
	strict := false
	switch ap := m["additionalProperties"].(type) {
	case bool:
		preserve = preserve || ap
		strict = !ap
	case map[string]any:
		s, err := c.compile(ap, ptr+"/additionalProperties")
		if err != nil {
			return nil, err
		}
		extra = s
	}

	if len(props) == 0 && extra != nil {
		key := dsl.Schema(dsl.String())
		if pn, ok := m["propertyNames"].(map[string]any); ok {
			s, err := c.compile(pn, ptr+"/propertyNames")
			if err != nil {
				return nil, err
			}
			key = s
		}
		return dsl.Record(key, extra), nil
	}
	if _, ok := m["propertyNames"]; ok {
		if err := c.unsupported(ptr, "propertyNames"); err != nil {
			return nil, err
		}
	}

	fields := dsl.Fields{}
	for name, raw := range props {
		pm, ok := raw.(map[string]any)
		if !ok {
			return nil, c.errorf(ptr+"/properties/"+name, "expected a schema object")
		}
		s, err := c.compile(pm, ptr+"/properties/"+name)
		if err != nil {
			return nil, err
		}
		if !required[name] && s.Kind() != dsl.KindDefault {
			s = dsl.Of(s).Optional()
		}
		fields[name] = s
	}
	for name := range required {
		if _, ok := props[name]; !ok {
			c.diag.warnf("%s: required property %q is not declared", pointer(ptr), name)
		}
	}
	obj := dsl.Object(fields)
	switch {
	case extra != nil:
		obj = obj.Catchall(extra)
	case preserve:
		obj = obj.Passthrough()
	case strict:
		obj = obj.Strict()
	}
	return obj, nil
}

func (c *compiler) array(m map[string]any, ptr string) (dsl.Schema, error) {
	var items dsl.Schema
	if im, ok := m["items"].(map[string]any); ok {
		s, err := c.compile(im, ptr+"/items")
		if err != nil {
			return nil, err
		}
		items = s
	}
	var s dsl.Schema
	if prefix, ok := m["prefixItems"].([]any); ok {
		opts, err := c.branches(prefix, ptr+"/prefixItems")
		if err != nil {
			return nil, err
		}
		t := dsl.Tuple(opts...)
		if items != nil {
			t = t.Rest(items)
		} else if b, ok := m["items"].(bool); !ok || b {
			t = t.Rest(dsl.Unknown())
		}
		s = t
	} else {
		if items == nil {
			items = dsl.Unknown()
		}
		a := dsl.Array(items)
		if n, ok := intKeyword(m, "minItems"); ok {
			a = a.Min(n)
		}
		if n, ok := intKeyword(m, "maxItems"); ok {
			a = a.Max(n)
		}
		s = a
	}

	listType, _ := m["x-kubernetes-list-type"].(string)
	unique, _ := m["uniqueItems"].(bool)
	switch {
	case listType == "map":
		keys, err := stringList(m["x-kubernetes-list-map-keys"])
		if err != nil || len(keys) == 0 {
			return nil, c.errorf(ptr+"/x-kubernetes-list-map-keys", "list-type map needs key names")
		}
		ptrs := make([]string, len(keys))
		for i, k := range keys {
			ptrs[i] = zskema.Path{k}.Pointer()
		}
		s = dsl.Of(s).SuperRefine(rules.UniqueBy("", ptrs...)).Unwrap()
	case listType == "set" || unique:
		s = dsl.Of(s).SuperRefine(rules.UniqueBy("")).Unwrap()
	}
	return s, nil
}

func intKeyword(m map[string]any, kw string) (int, bool) {
	f, ok := floatKeyword(m, kw)
	return int(f), ok
}

func floatKeyword(m map[string]any, kw string) (float64, bool) {
	switch v := m[kw].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func stringList(raw any) ([]string, error) {
	arr, ok := raw.([]any)
	if !ok {
		return nil, errors.New("expected a list of strings")
	}
	out := make([]string, 0, len(arr))
	for _, it := range arr {
		s, ok := it.(string)
		if !ok {
			return nil, errors.New("expected a list of strings")
		}
		out = append(out, s)
	}
	return out, nil
}

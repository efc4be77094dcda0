package dsl

import (
	"context"
	"regexp"
	"sync"

	"github.com/reoring/zskema"
)

// Kind tags the shape a schema node describes.
type Kind string

const (
	KindString             Kind = "string"
	KindNumber             Kind = "number"
	KindBoolean            Kind = "boolean"
	KindDate               Kind = "date"
	KindBigInt             Kind = "bigint"
	KindLiteral            Kind = "literal"
	KindEnum               Kind = "enum"
	KindNull               Kind = "null"
	KindUndefined          Kind = "undefined"
	KindAny                Kind = "any"
	KindUnknown            Kind = "unknown"
	KindNever              Kind = "never"
	KindObject             Kind = "object"
	KindArray              Kind = "array"
	KindSet                Kind = "set"
	KindTuple              Kind = "tuple"
	KindRecord             Kind = "record"
	KindMap                Kind = "map"
	KindUnion              Kind = "union"
	KindDiscriminatedUnion Kind = "discriminated_union"
	KindIntersection       Kind = "intersection"
	KindLazy               Kind = "lazy"
	KindOptional           Kind = "optional"
	KindNullable           Kind = "nullable"
	KindDefault            Kind = "default"
	KindCatch              Kind = "catch"
)

// Schema is implemented by every builder in this package. Schemas are
// immutable: each fluent method returns a new schema and leaves the
// receiver untouched, so a schema may be shared between goroutines.
type Schema interface {
	// Kind reports the outermost node kind.
	Kind() Kind
	// Description returns the text set with Describe.
	Description() string
	// SafeParse validates v with the default configuration.
	SafeParse(ctx context.Context, v any) zskema.Result[any]
	// Parse validates v and returns zskema.Issues as the error on failure.
	Parse(ctx context.Context, v any) (any, error)

	schemaNode() *node
}

type field struct {
	name   string
	schema *node
}

// check is one ordered constraint of a leaf or collection node.
type check struct {
	op        string
	num       float64
	inclusive bool
	str       string
	re        *regexp.Regexp
	msg       string
}

// node is the immutable schema representation shared by all builders.
type node struct {
	kind   Kind
	checks []check
	coerce bool

	desc  string
	msg   string
	msgFn func(zskema.Issue) string

	// literal and enum values
	values []any

	// object
	fields   []field
	unknown  zskema.UnknownPolicy
	catchall *node

	// array, set, optional, nullable, default, catch
	elem *node

	// tuple
	items []*node
	rest  *node

	// record, map
	key, value *node

	// union, discriminated union
	options       []*node
	discriminator string
	byDisc        map[any]*node

	// intersection
	left, right *node

	lazy *lazyRef

	defaultFn func() any
	catchFn   func() any

	preprocess func(any) any
	effects    []effect
}

type lazyRef struct {
	once    sync.Once
	resolve func() Schema
	target  *node
}

func (r *lazyRef) get() *node {
	r.once.Do(func() {
		s := r.resolve()
		if s == nil {
			panic(&zskema.SchemaError{Op: "lazy", Reason: "resolver returned nil"})
		}
		r.target = s.schemaNode()
	})
	return r.target
}

// clone returns a shallow copy whose slices can be appended to without
// affecting the original.
func (n *node) clone() *node {
	c := *n
	c.checks = append([]check(nil), n.checks...)
	c.effects = append([]effect(nil), n.effects...)
	c.fields = append([]field(nil), n.fields...)
	return &c
}

func (n *node) withCheck(c check) *node {
	out := n.clone()
	out.checks = append(out.checks, c)
	return out
}

func (n *node) withEffect(e effect) *node {
	out := n.clone()
	out.effects = append(out.effects, e)
	return out
}

func (n *node) field(name string) (*node, bool) {
	for _, f := range n.fields {
		if f.name == name {
			return f.schema, true
		}
	}
	return nil, false
}

func nodeOf(op string, s Schema) *node {
	if s == nil {
		panic(&zskema.SchemaError{Op: op, Reason: "nil schema"})
	}
	n := s.schemaNode()
	if n == nil {
		panic(&zskema.SchemaError{Op: op, Reason: "nil schema"})
	}
	return n
}

// common carries the methods shared by every builder type. S is the
// concrete builder so refinements keep the receiver's type.
type common[S any] struct {
	n  *node
	mk func(*node) S
}

func (c common[S]) schemaNode() *node   { return c.n }
func (c common[S]) Kind() Kind          { return c.n.kind }
func (c common[S]) Description() string { return c.n.desc }

// SafeParse validates v with the default configuration.
func (c common[S]) SafeParse(ctx context.Context, v any) zskema.Result[any] {
	return validateNode(ctx, c.n, v, nil)
}

// Parse validates v and returns the output or zskema.Issues.
func (c common[S]) Parse(ctx context.Context, v any) (any, error) {
	return validateNode(ctx, c.n, v, nil).Unwrap()
}

// Describe attaches a human-readable description (exported to JSON Schema).
func (c common[S]) Describe(text string) S {
	out := c.n.clone()
	out.desc = text
	return c.mk(out)
}

// Message overrides the default message of every issue this node raises
// itself. Explicit per-check messages still win.
func (c common[S]) Message(msg string) S {
	out := c.n.clone()
	out.msg = msg
	out.msgFn = nil
	return c.mk(out)
}

// MessageFunc is like Message but computes the text from the issue,
// including the offending input.
func (c common[S]) MessageFunc(fn func(zskema.Issue) string) S {
	out := c.n.clone()
	out.msgFn = fn
	out.msg = ""
	return c.mk(out)
}

// Refine appends a predicate. A false result records one custom issue.
func (c common[S]) Refine(fn func(v any) bool, opts ...RefineOption) S {
	return c.mk(c.n.withEffect(newRefine(fn, nil, opts)))
}

// RefineAsync is Refine for predicates that may block. It only runs under
// ValidateAsync; synchronous validation reports async_in_sync instead.
func (c common[S]) RefineAsync(fn func(ctx context.Context, v any) bool, opts ...RefineOption) S {
	return c.mk(c.n.withEffect(newRefine(nil, fn, opts)))
}

// SuperRefine appends a hook that may report any number of issues.
func (c common[S]) SuperRefine(fn func(v any, rc *RefineCtx)) S {
	return c.mk(c.n.withEffect(effect{kind: effectSuperRefine, super: fn}))
}

// SuperRefineAsync is the blocking variant of SuperRefine.
func (c common[S]) SuperRefineAsync(fn func(ctx context.Context, v any, rc *RefineCtx)) S {
	return c.mk(c.n.withEffect(effect{kind: effectSuperRefine, async: true, superAsync: fn}))
}

// Transform maps the validated value. It is skipped once any earlier
// refinement failed.
func (c common[S]) Transform(fn func(v any) any) *Wrapper {
	return newWrapper(c.n.withEffect(effect{kind: effectTransform, transform: fn}))
}

// Pipe validates the current output against target and continues with
// target's output.
func (c common[S]) Pipe(target Schema) *Wrapper {
	return newWrapper(c.n.withEffect(effect{kind: effectPipe, pipe: nodeOf("pipe", target)}))
}

// Optional accepts Undefined (a missing field) in addition to the schema.
func (c common[S]) Optional() *Wrapper {
	return newWrapper(&node{kind: KindOptional, elem: c.n})
}

// Nullable accepts nil in addition to the schema.
func (c common[S]) Nullable() *Wrapper {
	return newWrapper(&node{kind: KindNullable, elem: c.n})
}

// Nullish accepts both nil and Undefined.
func (c common[S]) Nullish() *Wrapper {
	return newWrapper(&node{kind: KindOptional, elem: &node{kind: KindNullable, elem: c.n}})
}

// Default substitutes v when the input is Undefined. The default is
// returned as-is, without validation.
func (c common[S]) Default(v any) *Wrapper {
	return c.DefaultFunc(func() any { return v })
}

// DefaultFunc is Default with a factory evaluated per call.
func (c common[S]) DefaultFunc(fn func() any) *Wrapper {
	return newWrapper(&node{kind: KindDefault, elem: c.n, defaultFn: fn})
}

// Catch replaces any failure of this schema with v, discarding the issues.
func (c common[S]) Catch(v any) *Wrapper {
	return c.CatchFunc(func() any { return v })
}

// CatchFunc is Catch with a factory evaluated per failure.
func (c common[S]) CatchFunc(fn func() any) *Wrapper {
	return newWrapper(&node{kind: KindCatch, elem: c.n, catchFn: fn})
}

// Or is shorthand for Union(receiver, other).
func (c common[S]) Or(other Schema) *UnionSchema { return Union(wrap(c.n), other) }

// And is shorthand for Intersection(receiver, other).
func (c common[S]) And(other Schema) *IntersectionSchema { return Intersection(wrap(c.n), other) }

// Array wraps the receiver as the element schema of an array.
func (c common[S]) Array() *ArraySchema { return Array(wrap(c.n)) }

// Wrapper is the builder returned by modifiers that change the node kind
// (Optional, Default, Transform, Pipe, ...). It exposes the common methods.
type Wrapper struct{ common[*Wrapper] }

func newWrapper(n *node) *Wrapper {
	w := &Wrapper{}
	w.common = common[*Wrapper]{n: n, mk: newWrapper}
	return w
}

// Of exposes the common modifiers of any schema, for code that only holds
// the Schema interface: Of(s).Optional(), Of(s).Describe("...").
func Of(s Schema) *Wrapper { return newWrapper(nodeOf("of", s)) }

// Unwrap returns the schema wrapped by Optional, Nullable, Default or
// Catch. For other kinds it returns the receiver as its kind's builder,
// e.g. Of(obj).Describe("x").Unwrap() is an *ObjectSchema again.
func (w *Wrapper) Unwrap() Schema {
	switch w.n.kind {
	case KindOptional, KindNullable, KindDefault, KindCatch:
		return wrap(w.n.elem)
	}
	return wrap(w.n)
}

// wrap returns the builder type matching n's kind.
func wrap(n *node) Schema {
	switch n.kind {
	case KindString:
		return newString(n)
	case KindNumber:
		return newNumber(n)
	case KindBoolean:
		return newBoolean(n)
	case KindDate:
		return newDate(n)
	case KindBigInt:
		return newBigInt(n)
	case KindEnum:
		return newEnum(n)
	case KindObject:
		return newObject(n)
	case KindArray:
		return newArray(n)
	case KindSet:
		return newSet(n)
	case KindTuple:
		return newTuple(n)
	case KindUnion, KindDiscriminatedUnion:
		return newUnion(n)
	case KindIntersection:
		return newIntersection(n)
	}
	return newWrapper(n)
}

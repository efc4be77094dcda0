package dsl

import (
	"context"

	"github.com/reoring/zskema"
)

type effectKind int

const (
	effectRefine effectKind = iota
	effectSuperRefine
	effectTransform
	effectPipe
)

// effect is one post-validation step. Effects run in declaration order.
type effect struct {
	kind  effectKind
	async bool

	pred      func(any) bool
	predAsync func(context.Context, any) bool
	spec      refineSpec

	super      func(any, *RefineCtx)
	superAsync func(context.Context, any, *RefineCtx)

	transform func(any) any
	pipe      *node
}

type refineSpec struct {
	msg    string
	path   zskema.Path
	params map[string]any
	abort  bool
}

// RefineOption customizes the issue produced by a failing Refine.
type RefineOption func(*refineSpec)

// WithMessage sets the issue message.
func WithMessage(msg string) RefineOption {
	return func(s *refineSpec) { s.msg = msg }
}

// WithPath places the issue below the refined value, e.g. WithPath("confirm")
// on an object-level refinement.
func WithPath(segments ...any) RefineOption {
	return func(s *refineSpec) { s.path = zskema.Path(segments) }
}

// WithParams attaches metadata to the issue.
func WithParams(params map[string]any) RefineOption {
	return func(s *refineSpec) { s.params = params }
}

// Abort stops the remaining effects of the schema when this refinement fails.
func Abort() RefineOption {
	return func(s *refineSpec) { s.abort = true }
}

func newRefine(fn func(any) bool, afn func(context.Context, any) bool, opts []RefineOption) effect {
	if fn == nil && afn == nil {
		panic(&zskema.SchemaError{Op: "refine", Reason: "nil predicate"})
	}
	e := effect{kind: effectRefine, pred: fn, predAsync: afn, async: afn != nil}
	for _, o := range opts {
		o(&e.spec)
	}
	return e
}

// RefineCtx collects the issues reported by a SuperRefine hook.
type RefineCtx struct {
	ctx    context.Context
	path   zskema.Path
	input  any
	issues zskema.Issues
	fatal  bool
}

// AddIssue records an issue. Its Path is relative to the refined value; an
// empty Code becomes custom.
func (rc *RefineCtx) AddIssue(it zskema.Issue) {
	if it.Code == "" {
		it.Code = zskema.CodeCustom
	}
	it.Path = rc.path.Concat(it.Path)
	if it.Input == nil {
		it.Input = rc.input
	}
	rc.issues = append(rc.issues, it)
}

// Addf is a shortcut for a custom issue with a message at a relative path.
func (rc *RefineCtx) Addf(msg string, segments ...any) {
	rc.AddIssue(zskema.Issue{Code: zskema.CodeCustom, Message: msg, Path: zskema.Path(segments)})
}

// Fatal stops the remaining effects of the schema once the hook returns.
func (rc *RefineCtx) Fatal() { rc.fatal = true }

// Path is the absolute location of the refined value.
func (rc *RefineCtx) Path() zskema.Path { return rc.path.Concat(nil) }

// Context returns the call context.
func (rc *RefineCtx) Context() context.Context { return rc.ctx }

// Sub returns an empty context at the same location. Issues recorded on it
// stay separate until passed to Merge.
func (rc *RefineCtx) Sub() *RefineCtx {
	return &RefineCtx{ctx: rc.ctx, path: rc.path, input: rc.input}
}

// Issues lists what has been recorded so far.
func (rc *RefineCtx) Issues() zskema.Issues { return rc.issues }

// Merge adopts the issues and fatal flag of a context obtained from Sub.
func (rc *RefineCtx) Merge(sub *RefineCtx) {
	rc.issues = append(rc.issues, sub.issues...)
	rc.fatal = rc.fatal || sub.fatal
}

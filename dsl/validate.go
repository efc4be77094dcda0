package dsl

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/reoring/zskema"
)

// Option configures one validation call.
type Option func(*callOptions)

type callOptions struct {
	cfg  zskema.Config
	base zskema.Path
}

// WithConfig sets locale, error map, logger and observer for the call.
func WithConfig(cfg zskema.Config) Option {
	return func(o *callOptions) { o.cfg = cfg }
}

// WithBasePath prefixes every issue path, for validating a value that lives
// inside a larger document.
func WithBasePath(prefix zskema.Path) Option {
	return func(o *callOptions) { o.base = prefix }
}

// Validate checks v against schema and returns the output or every issue
// found. It never blocks; asynchronous refinements are reported as
// async_in_sync issues.
func Validate(ctx context.Context, schema Schema, v any, opts ...Option) zskema.Result[any] {
	return validateNode(ctx, nodeOf("validate", schema), v, opts)
}

// ValidateAsync is Validate with asynchronous refinements enabled. The
// error is non-nil only when ctx ends before an asynchronous refinement; it
// then wraps both zskema.ErrCancelled and ctx.Err().
func ValidateAsync(ctx context.Context, schema Schema, v any, opts ...Option) (zskema.Result[any], error) {
	return execute(ctx, nodeOf("validateAsync", schema), v, true, opts)
}

func validateNode(ctx context.Context, n *node, v any, opts []Option) zskema.Result[any] {
	res, _ := execute(ctx, n, v, false, opts)
	return res
}

func execute(ctx context.Context, n *node, v any, async bool, opts []Option) (zskema.Result[any], error) {
	o := callOptions{cfg: zskema.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	r := &run{ctx: ctx, cfg: o.cfg, async: async, active: map[lazyVisit]bool{}}

	start := time.Now()
	out, iss := r.validate(n, v, o.base)
	elapsed := time.Since(start)

	if r.cancelled != nil {
		r.cfg.Logger.Debug().Str("schema", r.cfg.Name).Err(r.cancelled).Msg("validation cancelled")
		return zskema.Result[any]{}, fmt.Errorf("%w: %w", zskema.ErrCancelled, r.cancelled)
	}
	r.cfg.Logger.Debug().
		Str("schema", r.cfg.Name).
		Str("kind", string(n.kind)).
		Bool("async", async).
		Int("issues", len(iss)).
		Dur("elapsed", elapsed).
		Msg("validated")
	if r.cfg.Observer != nil {
		r.cfg.Observer.ObserveValidation(r.cfg.Name, iss, elapsed)
	}
	if len(iss) > 0 {
		return zskema.Failure[any](iss), nil
	}
	return zskema.Success(out), nil
}

// ParseInto validates v and decodes the output into T through JSON. The
// error is zskema.Issues when validation fails.
func ParseInto[T any](ctx context.Context, schema Schema, v any, opts ...Option) (T, error) {
	var out T
	res := Validate(ctx, schema, v, opts...)
	if !res.OK() {
		return out, res.Issues
	}
	b, err := json.Marshal(res.Value)
	if err != nil {
		return out, fmt.Errorf("dsl: encode validated value: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("dsl: decode into %T: %w", out, err)
	}
	return out, nil
}

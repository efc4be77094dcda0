package dsl_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/zskema"
	"github.com/reoring/zskema/dsl"
)

func TestSuperRefine_MultipleIssues(t *testing.T) {
	s := dsl.String().SuperRefine(func(v any, rc *dsl.RefineCtx) {
		str := v.(string)
		if !strings.ContainsFunc(str, unicode.IsUpper) {
			rc.Addf("needs an uppercase letter")
		}
		if !strings.ContainsFunc(str, unicode.IsDigit) {
			rc.Addf("needs a digit")
		}
		if !strings.ContainsAny(str, "!@#$%") {
			rc.AddIssue(zskema.Issue{Message: "needs a symbol"})
		}
	})
	res := dsl.Validate(context.Background(), s, "password")
	require.Len(t, res.Issues, 3)
	for _, it := range res.Issues {
		assert.Equal(t, zskema.CodeCustom, it.Code)
		assert.Empty(t, it.Path)
	}
	assert.Equal(t, "needs a symbol", res.Issues[2].Message)
}

func TestSuperRefine_RelativePaths(t *testing.T) {
	s := dsl.Object(dsl.Fields{"list": dsl.Array(dsl.String())}).SuperRefine(func(v any, rc *dsl.RefineCtx) {
		rc.Addf("duplicate", "list", 1)
	})
	res := dsl.Validate(context.Background(), dsl.Object(dsl.Fields{"outer": s}), map[string]any{
		"outer": map[string]any{"list": []any{"a", "a"}},
	})
	require.Len(t, res.Issues, 1)
	assert.Equal(t, zskema.Path{"outer", "list", 1}, res.Issues[0].Path)
}

func TestEffects_Order(t *testing.T) {
	ctx := context.Background()
	var trace []string
	s := dsl.String().
		Refine(func(any) bool { trace = append(trace, "r1"); return false }, dsl.WithMessage("first")).
		Refine(func(any) bool { trace = append(trace, "r2"); return true }).
		Transform(func(v any) any { trace = append(trace, "t"); return v }).
		Refine(func(any) bool { trace = append(trace, "r3"); return false }, dsl.WithMessage("third"))

	res := dsl.Validate(ctx, s, "x")
	assert.Equal(t, []string{"r1", "r2", "r3"}, trace)
	require.Len(t, res.Issues, 2)
	assert.Equal(t, "first", res.Issues[0].Message)
	assert.Equal(t, "third", res.Issues[1].Message)
}

func TestEffects_Abort(t *testing.T) {
	ran := false
	s := dsl.Number().
		Refine(func(any) bool { return false }, dsl.Abort()).
		Refine(func(any) bool { ran = true; return true })
	res := dsl.Validate(context.Background(), s, 1)
	assert.Len(t, res.Issues, 1)
	assert.False(t, ran)
}

func TestTransformAndPipe(t *testing.T) {
	ctx := context.Background()
	length := dsl.String().Transform(func(v any) any { return float64(len(v.(string))) })
	res := dsl.Validate(ctx, length, "hello")
	require.True(t, res.OK())
	assert.Equal(t, 5.0, res.Value)

	piped := length.Pipe(dsl.Number().Max(3))
	res = dsl.Validate(ctx, piped, "hello")
	assert.Equal(t, []string{zskema.CodeTooBig}, res.Issues.Codes())
	assert.True(t, dsl.Validate(ctx, piped, "abc").OK())

	trimmedInt := dsl.String().Trim().Pipe(dsl.Coerce.Number().Int())
	res = dsl.Validate(ctx, trimmedInt, " 12 ")
	require.True(t, res.OK())
	assert.Equal(t, 12.0, res.Value)
}

func TestRefine_OptionsAndParams(t *testing.T) {
	s := dsl.Number().Refine(func(v any) bool { return v.(float64) != 13 },
		dsl.WithMessage("unlucky"), dsl.WithParams(map[string]any{"n": 13}))
	res := dsl.Validate(context.Background(), s, 13)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "unlucky", res.Issues[0].Message)
	assert.Equal(t, 13, res.Issues[0].Param("n"))
	assert.Equal(t, 13.0, res.Issues[0].Input)
}

func TestPreprocess(t *testing.T) {
	s := dsl.Preprocess(func(v any) any {
		if str, ok := v.(string); ok {
			return strings.Split(str, ",")
		}
		return v
	}, dsl.Array(dsl.String()).Min(2))
	res := dsl.Validate(context.Background(), s, "a,b")
	// strings.Split yields []string, which is not []any
	assert.Equal(t, []string{zskema.CodeInvalidType}, res.Issues.Codes())

	s = dsl.Preprocess(func(v any) any {
		str, ok := v.(string)
		if !ok {
			return v
		}
		var out []any
		for _, p := range strings.Split(str, ",") {
			out = append(out, p)
		}
		return out
	}, dsl.Array(dsl.String()).Min(2))
	res = dsl.Validate(context.Background(), s, "a,b")
	require.True(t, res.OK())
	assert.Equal(t, []any{"a", "b"}, res.Value)
}

func TestAsync_RefineRunsOnlyInAsync(t *testing.T) {
	taken := map[string]bool{"ann": true}
	s := dsl.Object(dsl.Fields{
		"user": dsl.String().RefineAsync(func(ctx context.Context, v any) bool {
			return !taken[v.(string)]
		}, dsl.WithMessage("username taken")),
	})
	ctx := context.Background()

	res := dsl.Validate(ctx, s, map[string]any{"user": "bob"})
	require.Len(t, res.Issues, 1)
	assert.Equal(t, zskema.CodeAsyncInSync, res.Issues[0].Code)

	res, err := dsl.ValidateAsync(ctx, s, map[string]any{"user": "bob"})
	require.NoError(t, err)
	assert.True(t, res.OK())

	res, err = dsl.ValidateAsync(ctx, s, map[string]any{"user": "ann"})
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "username taken", res.Issues[0].Message)
	assert.Equal(t, zskema.Path{"user"}, res.Issues[0].Path)
}

func TestAsync_CatchDoesNotHideSyncRejection(t *testing.T) {
	ctx := context.Background()
	always := func(context.Context, any) bool { return true }
	s := dsl.String().RefineAsync(always).Catch("fallback")

	res := dsl.Validate(ctx, s, "x")
	assert.Equal(t, []string{zskema.CodeAsyncInSync}, res.Issues.Codes())

	inUnion := dsl.Union(dsl.Number(), dsl.String().RefineAsync(always)).Catch("fallback")
	res = dsl.Validate(ctx, inUnion, "x")
	assert.False(t, res.OK())

	res, err := dsl.ValidateAsync(ctx, s, "x")
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, "x", res.Value)

	res, err = dsl.ValidateAsync(ctx, s, 1)
	require.NoError(t, err)
	assert.Equal(t, "fallback", res.Value)
}

func TestAsync_Cancellation(t *testing.T) {
	calls := 0
	s := dsl.String().SuperRefineAsync(func(ctx context.Context, v any, rc *dsl.RefineCtx) {
		calls++
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := dsl.ValidateAsync(ctx, s, "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, zskema.ErrCancelled))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, res.Issues)
	assert.Equal(t, 0, calls)

	// structural failures happen before any suspension point
	res, err = dsl.ValidateAsync(ctx, s, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{zskema.CodeInvalidType}, res.Issues.Codes())
}

func TestAsync_CancelBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	second := false
	s := dsl.String().
		RefineAsync(func(context.Context, any) bool { cancel(); return true }).
		RefineAsync(func(context.Context, any) bool { second = true; return true })

	_, err := dsl.ValidateAsync(ctx, s, "x")
	require.ErrorIs(t, err, zskema.ErrCancelled)
	assert.False(t, second)
}

package dsl_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/reoring/zskema"
	"github.com/reoring/zskema/dsl"
)

func TestMessages_ResolutionOrder(t *testing.T) {
	ctx := context.Background()
	errorMap := func(it zskema.Issue) string {
		if it.Code == zskema.CodeTooSmall {
			return "mapped"
		}
		return ""
	}
	cfg := zskema.DefaultConfig()
	cfg.ErrorMap = errorMap

	// per-check message beats everything
	res := dsl.Validate(ctx, dsl.String().Min(3, "check").Message("schema"), "a", dsl.WithConfig(cfg))
	assert.Equal(t, "check", res.Issues[0].Message)

	// per-schema message beats the error map
	res = dsl.Validate(ctx, dsl.String().Min(3).Message("schema"), "a", dsl.WithConfig(cfg))
	assert.Equal(t, "schema", res.Issues[0].Message)

	// error map beats the catalog
	res = dsl.Validate(ctx, dsl.String().Min(3), "a", dsl.WithConfig(cfg))
	assert.Equal(t, "mapped", res.Issues[0].Message)

	// error map may defer
	res = dsl.Validate(ctx, dsl.String(), 1, dsl.WithConfig(cfg))
	assert.Equal(t, "Expected string, received number", res.Issues[0].Message)
}

func TestMessages_FuncSeesInput(t *testing.T) {
	s := dsl.Number().Max(10).MessageFunc(func(it zskema.Issue) string {
		return fmt.Sprintf("%v is too large", it.Input)
	})
	res := dsl.Validate(context.Background(), s, 11)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "11 is too large", res.Issues[0].Message)
}

func TestMessages_Locale(t *testing.T) {
	cfg := zskema.DefaultConfig()
	cfg.Locale = language.Japanese
	s := dsl.Object(dsl.Fields{"name": dsl.String().Min(2)})

	res := dsl.Validate(context.Background(), s, map[string]any{}, dsl.WithConfig(cfg))
	assert.Equal(t, "必須項目です", res.Issues[0].Message)

	res = dsl.Validate(context.Background(), s, map[string]any{"name": "a"}, dsl.WithConfig(cfg))
	assert.Equal(t, "2文字以上で入力してください", res.Issues[0].Message)
}

func TestWithBasePath(t *testing.T) {
	res := dsl.Validate(context.Background(), dsl.String(), 1, dsl.WithBasePath(zskema.Path{"doc", 2}))
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "/doc/2", res.Issues[0].Path.Pointer())
}

type recordingObserver struct {
	names  []string
	issues []int
}

func (o *recordingObserver) ObserveValidation(name string, iss zskema.Issues, _ time.Duration) {
	o.names = append(o.names, name)
	o.issues = append(o.issues, len(iss))
}

func TestObserver(t *testing.T) {
	obs := &recordingObserver{}
	cfg := zskema.DefaultConfig()
	cfg.Observer = obs
	cfg.Name = "user"

	dsl.Validate(context.Background(), userSchema(), map[string]any{}, dsl.WithConfig(cfg))
	dsl.Validate(context.Background(), dsl.String(), "ok", dsl.WithConfig(cfg))
	assert.Equal(t, []string{"user", "user"}, obs.names)
	assert.Equal(t, []int{2, 0}, obs.issues)
}

func TestParseInto(t *testing.T) {
	type user struct {
		Name string  `json:"name"`
		Age  float64 `json:"age"`
	}
	s := dsl.Object(dsl.Fields{"name": dsl.String().Trim(), "age": dsl.Coerce.Number()})

	u, err := dsl.ParseInto[user](context.Background(), s, map[string]any{"name": " Ann ", "age": "30"})
	require.NoError(t, err)
	assert.Equal(t, user{Name: "Ann", Age: 30}, u)

	_, err = dsl.ParseInto[user](context.Background(), s, map[string]any{"name": "Ann"})
	iss, ok := zskema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, zskema.Path{"age"}, iss[0].Path)
}

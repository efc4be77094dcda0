package dsl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/zskema"
	"github.com/reoring/zskema/dsl"
)

func TestStaticConstraints(t *testing.T) {
	called := false
	s := dsl.Object(dsl.Fields{
		"username": dsl.String().Min(3).Max(20).Regex(`^[a-z]+$`),
		"age":      dsl.Coerce.Number().Min(18).Max(99).Step(1).Optional(),
		"bio":      dsl.String().Nullable(),
		"plan":     dsl.Enum("free", "pro").Default("free"),
		"tags":     dsl.Array(dsl.String()),
		"code":     dsl.String().Length(4).Refine(func(any) bool { called = true; return true }),
	}).Refine(func(any) bool { called = true; return true })

	c := dsl.StaticConstraints(s)
	require.Len(t, c, 6)
	assert.False(t, called)

	three, twenty := 3, 20
	assert.Equal(t, zskema.Constraint{Required: true, MinLength: &three, MaxLength: &twenty, Pattern: "^[a-z]+$"}, c["username"])

	lo, hi, step := 18.0, 99.0, 1.0
	assert.Equal(t, zskema.Constraint{Min: &lo, Max: &hi, Step: &step}, c["age"])

	assert.Equal(t, zskema.Constraint{}, c["bio"])
	assert.Equal(t, zskema.Constraint{Pattern: "free|pro"}, c["plan"])
	assert.Equal(t, zskema.Constraint{Required: true, Multiple: true}, c["tags"])

	four := 4
	assert.Equal(t, zskema.Constraint{Required: true, MinLength: &four, MaxLength: &four}, c["code"])
}

func TestStaticConstraints_NonObject(t *testing.T) {
	assert.Empty(t, dsl.StaticConstraints(dsl.String().Min(2)))
	assert.Empty(t, dsl.StaticConstraints(dsl.Array(userSchema())))
}

func TestStaticConstraints_ImmediateFieldsOnly(t *testing.T) {
	s := dsl.Object(dsl.Fields{
		"address": dsl.Object(dsl.Fields{"zip": dsl.String().Length(7)}),
	})
	c := dsl.StaticConstraints(s)
	require.Len(t, c, 1)
	assert.Equal(t, zskema.Constraint{Required: true}, c["address"])
}

package coerce_test

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/zskema"
	"github.com/reoring/zskema/coerce"
)

func TestToNumber(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{"25", 25, true},
		{"  3.5 ", 3.5, true},
		{"-1e3", -1000, true},
		{true, 1, true},
		{false, 0, true},
		{int32(7), 7, true},
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{math.NaN(), 0, false},
		{nil, 0, false},
		{zskema.Undefined, 0, false},
		{map[string]any{}, 0, false},
	}
	for _, tc := range cases {
		got, ok := coerce.ToNumber(tc.in)
		assert.Equal(t, tc.ok, ok, "input %#v", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %#v", tc.in)
		}
	}

	for _, s := range []string{"Infinity", "-Infinity", "+Inf", "1e400", "-1e400"} {
		_, ok := coerce.ToNumber(s)
		assert.False(t, ok, "input %q", s)
	}
	inf, ok := coerce.ToNumber(math.Inf(1))
	require.True(t, ok)
	assert.True(t, math.IsInf(inf, 1))
}

func TestToBoolean(t *testing.T) {
	falsy := []any{"", 0, 0.0, math.NaN(), nil, zskema.Undefined, false}
	for _, v := range falsy {
		assert.False(t, coerce.ToBoolean(v), "input %#v", v)
	}
	truthy := []any{"false", "0", "on", 1, -2.5, true, []any{}, map[string]any{}}
	for _, v := range truthy {
		assert.True(t, coerce.ToBoolean(v), "input %#v", v)
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "null", coerce.ToString(nil))
	assert.Equal(t, "undefined", coerce.ToString(zskema.Undefined))
	assert.Equal(t, "25", coerce.ToString(25))
	assert.Equal(t, "0.1", coerce.ToString(0.1))
	assert.Equal(t, "1e+21", coerce.ToString(1e21))
	assert.Equal(t, "true", coerce.ToString(true))
	assert.Equal(t, "1,2", coerce.ToString([]any{1, 2}))
	d := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "2024-01-02T03:04:05Z", coerce.ToString(d))
}

func TestToDate(t *testing.T) {
	got, ok := coerce.ToDate("2024-03-01")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, ok = coerce.ToDate("2024-03-01T10:00:00+09:00")
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)))

	got, ok = coerce.ToDate(float64(0))
	require.True(t, ok)
	assert.Equal(t, int64(0), got.UnixMilli())

	_, ok = coerce.ToDate("not a date")
	assert.False(t, ok)
	_, ok = coerce.ToDate(true)
	assert.False(t, ok)
}

func TestToBigInt(t *testing.T) {
	b, ok := coerce.ToBigInt("12345678901234567890")
	require.True(t, ok)
	want, _ := new(big.Int).SetString("12345678901234567890", 10)
	assert.Equal(t, 0, want.Cmp(b))

	b, ok = coerce.ToBigInt(true)
	require.True(t, ok)
	assert.Equal(t, int64(1), b.Int64())

	_, ok = coerce.ToBigInt(1.5)
	assert.False(t, ok)
	_, ok = coerce.ToBigInt("1.5")
	assert.False(t, ok)
}

func TestTo_DispatchesByKind(t *testing.T) {
	v, ok := coerce.To(coerce.Number, "42")
	require.True(t, ok)
	assert.Equal(t, 42.0, v)

	v, ok = coerce.To(coerce.Boolean, "false")
	require.True(t, ok)
	assert.Equal(t, true, v)

	_, ok = coerce.To(coerce.Kind("unknown"), "x")
	assert.False(t, ok)
}

package dsl

import (
	"math"
	"math/big"
	"regexp"
	"time"

	"github.com/reoring/zskema"
)

func firstMsg(msg []string) string {
	if len(msg) > 0 {
		return msg[0]
	}
	return ""
}

// ---- string ----

// StringSchema validates strings.
type StringSchema struct{ common[*StringSchema] }

func newString(n *node) *StringSchema {
	s := &StringSchema{}
	s.common = common[*StringSchema]{n: n, mk: newString}
	return s
}

// String returns a schema accepting strings.
func String() *StringSchema { return newString(&node{kind: KindString}) }

func (s *StringSchema) add(c check) *StringSchema { return newString(s.n.withCheck(c)) }

// Min requires at least n characters (runes).
func (s *StringSchema) Min(n int, msg ...string) *StringSchema {
	return s.add(check{op: "min", num: float64(n), inclusive: true, msg: firstMsg(msg)})
}

// Max allows at most n characters (runes).
func (s *StringSchema) Max(n int, msg ...string) *StringSchema {
	return s.add(check{op: "max", num: float64(n), inclusive: true, msg: firstMsg(msg)})
}

// Length requires exactly n characters (runes).
func (s *StringSchema) Length(n int, msg ...string) *StringSchema {
	return s.add(check{op: "length", num: float64(n), msg: firstMsg(msg)})
}

// NonEmpty is Min(1).
func (s *StringSchema) NonEmpty(msg ...string) *StringSchema { return s.Min(1, msg...) }

// Regex requires a match of pattern. An invalid pattern is a schema error.
func (s *StringSchema) Regex(pattern string, msg ...string) *StringSchema {
	re, err := regexp.Compile(pattern)
	if err != nil {
		panic(&zskema.SchemaError{Op: "regex", Reason: err.Error()})
	}
	return s.add(check{op: "regex", re: re, str: pattern, msg: firstMsg(msg)})
}

// Email requires an e-mail address.
func (s *StringSchema) Email(msg ...string) *StringSchema {
	return s.add(check{op: "email", msg: firstMsg(msg)})
}

// URL requires an absolute URL with scheme and host.
func (s *StringSchema) URL(msg ...string) *StringSchema {
	return s.add(check{op: "url", msg: firstMsg(msg)})
}

// UUID requires a canonical hyphenated UUID.
func (s *StringSchema) UUID(msg ...string) *StringSchema {
	return s.add(check{op: "uuid", msg: firstMsg(msg)})
}

// Datetime requires an RFC 3339 timestamp.
func (s *StringSchema) Datetime(msg ...string) *StringSchema {
	return s.add(check{op: "datetime", msg: firstMsg(msg)})
}

// Includes requires sub to occur in the value.
func (s *StringSchema) Includes(sub string, msg ...string) *StringSchema {
	return s.add(check{op: "includes", str: sub, msg: firstMsg(msg)})
}

// StartsWith requires prefix.
func (s *StringSchema) StartsWith(prefix string, msg ...string) *StringSchema {
	return s.add(check{op: "startsWith", str: prefix, msg: firstMsg(msg)})
}

// EndsWith requires suffix.
func (s *StringSchema) EndsWith(suffix string, msg ...string) *StringSchema {
	return s.add(check{op: "endsWith", str: suffix, msg: firstMsg(msg)})
}

// Trim strips surrounding whitespace; later checks see the trimmed value.
func (s *StringSchema) Trim() *StringSchema { return s.add(check{op: "trim"}) }

// ToLowerCase lowercases the value for later checks and the output.
func (s *StringSchema) ToLowerCase() *StringSchema { return s.add(check{op: "toLowerCase"}) }

// ToUpperCase uppercases the value for later checks and the output.
func (s *StringSchema) ToUpperCase() *StringSchema { return s.add(check{op: "toUpperCase"}) }

// ---- number ----

// NumberSchema validates numbers. Outputs are float64.
type NumberSchema struct{ common[*NumberSchema] }

func newNumber(n *node) *NumberSchema {
	s := &NumberSchema{}
	s.common = common[*NumberSchema]{n: n, mk: newNumber}
	return s
}

// Number returns a schema accepting numbers (not NaN).
func Number() *NumberSchema { return newNumber(&node{kind: KindNumber}) }

// Int returns a number schema restricted to integers.
func Int() *NumberSchema { return Number().Int() }

func (s *NumberSchema) add(c check) *NumberSchema { return newNumber(s.n.withCheck(c)) }

// Min (alias Gte) requires v >= n.
func (s *NumberSchema) Min(n float64, msg ...string) *NumberSchema {
	return s.add(check{op: "min", num: n, inclusive: true, msg: firstMsg(msg)})
}

// Gte is Min.
func (s *NumberSchema) Gte(n float64, msg ...string) *NumberSchema { return s.Min(n, msg...) }

// Gt requires v > n.
func (s *NumberSchema) Gt(n float64, msg ...string) *NumberSchema {
	return s.add(check{op: "min", num: n, msg: firstMsg(msg)})
}

// Max (alias Lte) requires v <= n.
func (s *NumberSchema) Max(n float64, msg ...string) *NumberSchema {
	return s.add(check{op: "max", num: n, inclusive: true, msg: firstMsg(msg)})
}

// Lte is Max.
func (s *NumberSchema) Lte(n float64, msg ...string) *NumberSchema { return s.Max(n, msg...) }

// Lt requires v < n.
func (s *NumberSchema) Lt(n float64, msg ...string) *NumberSchema {
	return s.add(check{op: "max", num: n, msg: firstMsg(msg)})
}

// Int requires an integral value.
func (s *NumberSchema) Int(msg ...string) *NumberSchema {
	return s.add(check{op: "int", msg: firstMsg(msg)})
}

// Positive requires v > 0.
func (s *NumberSchema) Positive(msg ...string) *NumberSchema { return s.Gt(0, msg...) }

// Negative requires v < 0.
func (s *NumberSchema) Negative(msg ...string) *NumberSchema { return s.Lt(0, msg...) }

// NonNegative requires v >= 0.
func (s *NumberSchema) NonNegative(msg ...string) *NumberSchema { return s.Min(0, msg...) }

// NonPositive requires v <= 0.
func (s *NumberSchema) NonPositive(msg ...string) *NumberSchema { return s.Max(0, msg...) }

// MultipleOf requires v to be a multiple of step.
func (s *NumberSchema) MultipleOf(step float64, msg ...string) *NumberSchema {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		panic(&zskema.SchemaError{Op: "multipleOf", Reason: "step must be a positive finite number"})
	}
	return s.add(check{op: "multipleOf", num: step, msg: firstMsg(msg)})
}

// Step is MultipleOf.
func (s *NumberSchema) Step(step float64, msg ...string) *NumberSchema {
	return s.MultipleOf(step, msg...)
}

// Finite rejects ±Inf.
func (s *NumberSchema) Finite(msg ...string) *NumberSchema {
	return s.add(check{op: "finite", msg: firstMsg(msg)})
}

// ---- boolean ----

// BooleanSchema validates booleans.
type BooleanSchema struct{ common[*BooleanSchema] }

func newBoolean(n *node) *BooleanSchema {
	s := &BooleanSchema{}
	s.common = common[*BooleanSchema]{n: n, mk: newBoolean}
	return s
}

// Boolean returns a schema accepting true and false.
func Boolean() *BooleanSchema { return newBoolean(&node{kind: KindBoolean}) }

// ---- date ----

// DateSchema validates time.Time values.
type DateSchema struct{ common[*DateSchema] }

func newDate(n *node) *DateSchema {
	s := &DateSchema{}
	s.common = common[*DateSchema]{n: n, mk: newDate}
	return s
}

// Date returns a schema accepting time.Time.
func Date() *DateSchema { return newDate(&node{kind: KindDate}) }

// Min requires the date to be at or after t.
func (s *DateSchema) Min(t time.Time, msg ...string) *DateSchema {
	return newDate(s.n.withCheck(check{op: "min", num: float64(t.UnixMilli()), inclusive: true, msg: firstMsg(msg)}))
}

// Max requires the date to be at or before t.
func (s *DateSchema) Max(t time.Time, msg ...string) *DateSchema {
	return newDate(s.n.withCheck(check{op: "max", num: float64(t.UnixMilli()), inclusive: true, msg: firstMsg(msg)}))
}

// ---- bigint ----

// BigIntSchema validates *big.Int values.
type BigIntSchema struct{ common[*BigIntSchema] }

func newBigInt(n *node) *BigIntSchema {
	s := &BigIntSchema{}
	s.common = common[*BigIntSchema]{n: n, mk: newBigInt}
	return s
}

// BigInt returns a schema accepting *big.Int.
func BigInt() *BigIntSchema { return newBigInt(&node{kind: KindBigInt}) }

func (s *BigIntSchema) bound(op string, b *big.Int, inclusive bool, msg []string) *BigIntSchema {
	if b == nil {
		panic(&zskema.SchemaError{Op: op, Reason: "nil bound"})
	}
	return newBigInt(s.n.withCheck(check{op: op, str: b.String(), inclusive: inclusive, msg: firstMsg(msg)}))
}

// Min requires v >= b.
func (s *BigIntSchema) Min(b *big.Int, msg ...string) *BigIntSchema {
	return s.bound("min", b, true, msg)
}

// Max requires v <= b.
func (s *BigIntSchema) Max(b *big.Int, msg ...string) *BigIntSchema {
	return s.bound("max", b, true, msg)
}

// Positive requires v > 0.
func (s *BigIntSchema) Positive(msg ...string) *BigIntSchema {
	return s.bound("min", big.NewInt(0), false, msg)
}

// Negative requires v < 0.
func (s *BigIntSchema) Negative(msg ...string) *BigIntSchema {
	return s.bound("max", big.NewInt(0), false, msg)
}

// ---- coercion ----

type coerceBuilders struct{}

// Coerce builds primitive schemas that convert mismatched input types
// before checking, e.g. Coerce.Number() accepts "25".
var Coerce coerceBuilders

func (coerceBuilders) String() *StringSchema {
	return newString(&node{kind: KindString, coerce: true})
}

func (coerceBuilders) Number() *NumberSchema {
	return newNumber(&node{kind: KindNumber, coerce: true})
}

func (coerceBuilders) Boolean() *BooleanSchema {
	return newBoolean(&node{kind: KindBoolean, coerce: true})
}

func (coerceBuilders) Date() *DateSchema {
	return newDate(&node{kind: KindDate, coerce: true})
}

func (coerceBuilders) BigInt() *BigIntSchema {
	return newBigInt(&node{kind: KindBigInt, coerce: true})
}

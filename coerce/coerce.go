// Package coerce converts raw input values toward a target primitive kind
// before validation. Conversions never panic; a false ok result means the
// value could not be converted.
package coerce

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/reoring/zskema"
)

// Kind is a coercion target.
type Kind string

const (
	String  Kind = "string"
	Number  Kind = "number"
	Boolean Kind = "boolean"
	Date    Kind = "date"
	BigInt  Kind = "bigint"
)

// To converts v to the canonical Go representation of kind:
// string, float64, bool, time.Time, or *big.Int.
func To(kind Kind, v any) (any, bool) {
	switch kind {
	case String:
		return ToString(v), true
	case Number:
		f, ok := ToNumber(v)
		return f, ok
	case Boolean:
		return ToBoolean(v), true
	case Date:
		t, ok := ToDate(v)
		return t, ok
	case BigInt:
		b, ok := ToBigInt(v)
		return b, ok
	}
	return nil, false
}

// Float reports the float64 value of a native Go numeric value without any
// string parsing. NaN is returned as-is.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// ToNumber parses trimmed numeric strings and maps booleans to 1/0. Dates
// become epoch milliseconds. Empty strings, strings that parse to NaN or
// ±Inf, null and composite values are not coercible.
func ToNumber(v any) (float64, bool) {
	if f, ok := Float(v); ok {
		return f, !math.IsNaN(f)
	}
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		low := strings.ToLower(strings.TrimLeft(s, "+-"))
		if strings.HasPrefix(low, "nan") || strings.HasPrefix(low, "inf") {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case time.Time:
		return float64(t.UnixMilli()), true
	case *big.Int:
		if t == nil {
			return 0, false
		}
		f, _ := new(big.Float).SetInt(t).Float64()
		return f, true
	}
	return 0, false
}

// ToBoolean applies truthiness: "", 0, NaN, null, Undefined and false are
// false; every other value is true, including the string "false".
func ToBoolean(v any) bool {
	if f, ok := Float(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	switch t := v.(type) {
	case nil:
		return false
	case zskema.UndefinedType:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case *big.Int:
		return t != nil && t.Sign() != 0
	}
	return true
}

// ToString renders v as canonical text.
func ToString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case zskema.UndefinedType:
		return "undefined"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *big.Int:
		if t == nil {
			return "null"
		}
		return t.String()
	case json.Number:
		return t.String()
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			if e == nil || zskema.IsUndefined(e) {
				continue
			}
			parts[i] = ToString(e)
		}
		return strings.Join(parts, ",")
	case map[string]any, map[any]any:
		return "[object Object]"
	}
	if f, ok := Float(v); ok {
		return FormatNumber(f)
	}
	return fmt.Sprint(v)
}

// FormatNumber renders f in the shortest round-trip form, switching to
// exponent notation outside [1e-7, 1e21).
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-7 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ToDate parses RFC 3339 / ISO-8601 strings (date-only and local forms are
// read as UTC) and epoch milliseconds.
func ToDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		return ParseDate(strings.TrimSpace(t))
	}
	if f, ok := Float(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(f)).UTC(), true
	}
	return time.Time{}, false
}

// ParseDate parses one of the accepted date layouts.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToBigInt parses integer strings and integral numbers; booleans map to 1/0.
func ToBigInt(v any) (*big.Int, bool) {
	switch t := v.(type) {
	case *big.Int:
		if t == nil {
			return nil, false
		}
		return t, true
	case string:
		b, ok := new(big.Int).SetString(strings.TrimSpace(t), 10)
		return b, ok
	case bool:
		if t {
			return big.NewInt(1), true
		}
		return big.NewInt(0), true
	case int64:
		return big.NewInt(t), true
	case uint64:
		return new(big.Int).SetUint64(t), true
	}
	f, ok := Float(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, false
	}
	b, _ := big.NewFloat(f).Int(nil)
	return b, true
}

package zskema

import (
	"encoding/json"
	"math"
	"math/big"
	"time"
)

// UnknownPolicy controls how object schemas treat keys they do not declare.
type UnknownPolicy int

const (
	UnknownStrip       UnknownPolicy = iota // Drop unknown keys (default).
	UnknownStrict                           // Reject unknown keys with unrecognized_keys.
	UnknownPassthrough                      // Copy unknown keys verbatim.
)

func (p UnknownPolicy) String() string {
	switch p {
	case UnknownStrict:
		return "strict"
	case UnknownPassthrough:
		return "passthrough"
	default:
		return "strip"
	}
}

// UndefinedType is the type of Undefined.
type UndefinedType struct{}

// Undefined marks an absent value. Object fields missing from the input are
// presented to their schema as Undefined; nil always means null.
var Undefined = UndefinedType{}

// IsUndefined reports whether v is the absent marker.
func IsUndefined(v any) bool {
	_, ok := v.(UndefinedType)
	return ok
}

// Set is the value variant validated by set schemas. Elements are unique by
// Go equality for comparable values.
type Set []any

// TypeName names the runtime type of v using the vocabulary reported in
// invalid_type issues ("string", "number", "nan", "object", ...).
func TypeName(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case UndefinedType:
		return "undefined"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		if math.IsNaN(t) {
			return "nan"
		}
		return "number"
	case float32:
		if math.IsNaN(float64(t)) {
			return "nan"
		}
		return "number"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return "number"
	case *big.Int, big.Int:
		return "bigint"
	case time.Time:
		return "date"
	case []any:
		return "array"
	case Set:
		return "set"
	case map[string]any:
		return "object"
	case map[any]any:
		return "map"
	default:
		return "unknown"
	}
}

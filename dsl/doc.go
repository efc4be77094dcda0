// Package dsl builds schemas and validates untyped values against them.
//
// Overview
//   - Builders: String/Number/Boolean/Date/BigInt, Literal/Enum, Object,
//     Array/Set/Tuple, Record/Map, Union/DiscriminatedUnion/Intersection,
//     Lazy, Preprocess and the Coerce.* variants.
//   - Modifiers: Optional/Nullable/Nullish/Default/Catch, Refine/SuperRefine
//     (and their Async forms), Transform, Pipe, Describe, Message.
//   - Derivation: Pick/Omit/Extend/Merge/Partial/Required/KeyOf on objects.
//   - Entry points: Validate, ValidateAsync, ParseInto, StaticConstraints,
//     ToJSONSchema.
//
// # Input model
//
// Values are plain Go trees as produced by a JSON or YAML decoder:
// map[string]any objects, []any arrays, float64/int numbers, string, bool
// and nil. zskema.Undefined stands for an absent value; missing object keys
// are presented to their field schema as Undefined.
//
// Quickstart
//
//	signup := dsl.Object(dsl.Fields{
//		"email":    dsl.String().Email(),
//		"password": dsl.String().Min(8),
//		"confirm":  dsl.String(),
//	}).Refine(func(v any) bool {
//		m := v.(map[string]any)
//		return m["password"] == m["confirm"]
//	}, dsl.WithPath("confirm"), dsl.WithMessage("Passwords do not match"))
//
//	res := dsl.Validate(ctx, signup, input)
//	if !res.OK() {
//		fmt.Println(res.Flatten().FieldErrors)
//	}
//
// Schemas are immutable and safe for concurrent use. Each call owns its
// own issue list; nothing is cached between calls except the memoized
// resolution of Lazy schemas.
package dsl

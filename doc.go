// Package zskema holds the value-level vocabulary shared by the schema
// engine in package dsl: validation issues with stable codes and paths,
// the per-call Result, Config, and the two error projections (Flatten and
// Treeify) used by form and API layers.
//
// Typical usage:
//
//	user := dsl.Object(dsl.Fields{
//		"name": dsl.String().Min(1),
//		"age":  dsl.Coerce.Number().Min(0).Max(150),
//	})
//	res := dsl.Validate(ctx, user, input)
//	if !res.OK() {
//		fe := res.Flatten()
//		_ = fe.FieldErrors["age"]
//	}
//
// Validation failures are values (Issues implements error); only a
// malformed schema panics, with *SchemaError, at construction time.
package zskema

package manifest_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/zskema"
	"github.com/reoring/zskema/dsl"
	"github.com/reoring/zskema/manifest"
	"github.com/reoring/zskema/source"
)

func load(t *testing.T, doc string) dsl.Schema {
	t.Helper()
	s, diag, err := manifest.Load(strings.NewReader(doc), source.FormatYAML, manifest.Options{})
	require.NoError(t, err)
	require.False(t, diag.HasWarnings(), "warnings: %v", diag.Warnings())
	return s
}

const userManifest = `
type: object
properties:
  name: {type: string, minLength: 1}
  age: {type: integer, minimum: 0}
  email: {type: string, format: email}
  role: {enum: [admin, member], default: member}
required: [name, age]
additionalProperties: false
`

func TestCompile_Object(t *testing.T) {
	s := load(t, userManifest)
	ctx := context.Background()

	res := dsl.Validate(ctx, s, map[string]any{"name": "Ann", "age": 30.0})
	require.True(t, res.OK(), "%v", res.Issues)
	assert.Equal(t, map[string]any{"name": "Ann", "age": 30.0, "role": "member"}, res.Value)

	res = dsl.Validate(ctx, s, map[string]any{"name": "", "age": 1.5, "email": "x", "extra": true})
	assert.ElementsMatch(t, []string{
		zskema.CodeUnrecognizedKeys,
		zskema.CodeInvalidType,
		zskema.CodeInvalidStringFormat,
		zskema.CodeTooSmall,
	}, res.Issues.Codes())
}

func TestCompile_RecursiveDefs(t *testing.T) {
	s := load(t, `
$defs:
  Category:
    type: object
    properties:
      name: {type: string}
      subcategories: {type: array, items: {$ref: "#/$defs/Category"}}
    required: [name, subcategories]
$ref: "#/$defs/Category"
`)
	in := map[string]any{"name": "root", "subcategories": []any{
		map[string]any{"name": "leaf", "subcategories": []any{}},
		map[string]any{"name": 3, "subcategories": []any{}},
	}}
	res := dsl.Validate(context.Background(), s, in)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, zskema.Path{"subcategories", 1, "name"}, res.Issues[0].Path)
}

func TestCompile_DiscriminatedOneOf(t *testing.T) {
	s := load(t, `
oneOf:
  - type: object
    properties:
      kind: {const: email}
      address: {type: string, format: email}
    required: [kind, address]
  - type: object
    properties:
      kind: {const: phone}
      number: {type: string, minLength: 5}
    required: [kind, number]
discriminator: {propertyName: kind}
`)
	assert.Equal(t, dsl.KindDiscriminatedUnion, s.Kind())

	res := dsl.Validate(context.Background(), s, map[string]any{"kind": "fax"})
	require.Len(t, res.Issues, 1)
	assert.Equal(t, zskema.CodeInvalidUnionDiscriminator, res.Issues[0].Code)
	assert.Equal(t, zskema.Path{"kind"}, res.Issues[0].Path)
}

func TestCompile_TypesAndCollections(t *testing.T) {
	s := load(t, `
type: object
properties:
  tags: {type: array, items: {type: string}, uniqueItems: true, maxItems: 3}
  point: {type: array, prefixItems: [{type: number}, {type: number}], items: false}
  labels: {type: object, additionalProperties: {type: string}}
  note: {type: [string, "null"]}
  port: {type: integer, coerce: true, exclusiveMinimum: 0, maximum: 65535}
  size: {x-kubernetes-int-or-string: true}
`)
	ctx := context.Background()
	res := dsl.Validate(ctx, s, map[string]any{
		"tags":   []any{"a", "b"},
		"point":  []any{1.0, 2.0},
		"labels": map[string]any{"env": "prod"},
		"note":   nil,
		"port":   "8080",
		"size":   "10Gi",
	})
	require.True(t, res.OK(), "%v", res.Issues)
	assert.Equal(t, 8080.0, res.Value.(map[string]any)["port"])

	res = dsl.Validate(ctx, s, map[string]any{
		"tags":   []any{"a", "a"},
		"point":  []any{1.0, 2.0, 3.0},
		"labels": map[string]any{"env": 1.0},
		"port":   "0",
	})
	paths := map[string]string{}
	for _, it := range res.Issues {
		paths[it.Path.Pointer()] = it.Code
	}
	assert.Equal(t, map[string]string{
		"/tags/1":     zskema.CodeCustom,
		"/point":      zskema.CodeTooBig,
		"/labels/env": zskema.CodeInvalidType,
		"/port":       zskema.CodeTooSmall,
	}, paths)
}

func TestCompile_Rules(t *testing.T) {
	s := load(t, `
type: object
properties:
  password: {type: string}
  confirm: {type: string}
  contact: {enum: [email, sms]}
  email: {type: string}
required: [password, confirm, contact]
x-rules:
  - fieldsMatch: [/password, /confirm]
    message: Passwords don't match
  - if: {path: /contact, op: eq, value: email}
    then:
      - required: /email
`)
	res := dsl.Validate(context.Background(), s, map[string]any{
		"password": "a", "confirm": "b", "contact": "email",
	})
	require.Len(t, res.Issues, 2)
	assert.Equal(t, "Passwords don't match", res.Issues[0].Message)
	assert.Equal(t, zskema.Path{"confirm"}, res.Issues[0].Path)
	assert.Equal(t, zskema.Path{"email"}, res.Issues[1].Path)
}

func TestCompile_CRD(t *testing.T) {
	s := load(t, `
apiVersion: apiextensions.k8s.io/v1
kind: CustomResourceDefinition
spec:
  versions:
    - name: v1
      served: true
      schema:
        openAPIV3Schema:
          type: object
          properties:
            spec:
              type: object
              properties:
                ports:
                  type: array
                  x-kubernetes-list-type: map
                  x-kubernetes-list-map-keys: [name]
                  items:
                    type: object
                    properties:
                      name: {type: string}
                      port: {type: integer}
                extra:
                  type: object
                  x-kubernetes-preserve-unknown-fields: true
`)
	res := dsl.Validate(context.Background(), s, map[string]any{"spec": map[string]any{
		"ports": []any{
			map[string]any{"name": "http", "port": 80.0},
			map[string]any{"name": "http", "port": 8080.0},
		},
		"extra": map[string]any{"anything": true},
	}})
	require.Len(t, res.Issues, 1)
	assert.Equal(t, zskema.Path{"spec", "ports", 1, "name"}, res.Issues[0].Path)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  any
		ptr  string
	}{
		{"not an object", []any{}, "/"},
		{"bad ref", map[string]any{"$ref": "#/$defs/Missing"}, "/$ref"},
		{"bad type", map[string]any{"type": "text"}, "/type"},
		{"bad regex", map[string]any{"type": "string", "pattern": "("}, "/"},
		{"empty enum", map[string]any{"enum": []any{}}, "/enum"},
		{"bad rule", map[string]any{"type": "object", "x-rules": []any{map[string]any{"nope": 1}}}, "/x-rules/0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := manifest.Compile(tt.doc, manifest.Options{})
			var me *manifest.Error
			require.True(t, errors.As(err, &me), "got %v", err)
			assert.Equal(t, tt.ptr, me.Pointer)
		})
	}
}

func TestCompile_UnsupportedKeywords(t *testing.T) {
	doc := map[string]any{"type": "string", "contentEncoding": "base64"}

	_, diag, err := manifest.Compile(doc, manifest.Options{})
	require.NoError(t, err)
	assert.Len(t, diag.Warnings(), 1)

	_, _, err = manifest.Compile(doc, manifest.Options{Strict: true})
	assert.Error(t, err)
}

func TestLoadFile_RoundTripsThroughJSONSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.yaml")
	require.NoError(t, os.WriteFile(path, []byte(userManifest), 0o600))

	s, _, err := manifest.LoadFile(path, manifest.Options{})
	require.NoError(t, err)
	out, err := dsl.ToJSONSchema(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "name"}, out.Required)
}

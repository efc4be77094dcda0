package app

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userSchema = `
type: object
properties:
  name: {type: string, minLength: 1}
  age: {type: integer, minimum: 0}
  role: {enum: [admin, member], default: member}
required: [name, age]
additionalProperties: false
`

// writeFiles creates name->content files in a fresh directory and returns it.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func run(t *testing.T, environ map[string]string, args ...string) (string, string, error) {
	t.Helper()
	if environ == nil {
		environ = map[string]string{}
	}
	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), append([]string{"zskema"}, args...), &stdout, &stderr, environ)
	return stdout.String(), stderr.String(), err
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("help", func(t *testing.T) {
		t.Parallel()
		err := Run(context.Background(), []string{"zskema", "--help"}, io.Discard, io.Discard, map[string]string{})
		require.NoError(t, err)
	})

	t.Run("invalid command", func(t *testing.T) {
		t.Parallel()
		_, stderr, err := run(t, nil, "invalid-command")
		require.Error(t, err)
		assert.Contains(t, stderr, "Error:")
	})

	t.Run("invalid env config", func(t *testing.T) {
		t.Parallel()
		_, _, err := run(t, map[string]string{"ZSKEMA_CONCURRENCY": "0"}, "--help")
		require.Error(t, err)
	})

	t.Run("invalid log level", func(t *testing.T) {
		t.Parallel()
		dir := writeFiles(t, map[string]string{"user.yaml": userSchema})
		_, _, err := run(t, nil, "constraints", "--log-level", "loud", "--schema", filepath.Join(dir, "user.yaml"))
		require.ErrorContains(t, err, "invalid log level")
	})

	t.Run("missing schema flag", func(t *testing.T) {
		t.Parallel()
		_, _, err := run(t, nil, "validate", "doc.json")
		require.ErrorContains(t, err, "schema")
	})
}

func TestValidateCmd(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"user.yaml":  userSchema,
		"good.json":  `{"name":"Ann","age":30}`,
		"bad.json":   `{"name":"","age":-1,"extra":true}`,
		"dup.json":   `{"name":"Ann","name":"Bob","age":1}`,
		"many.yaml":  "name: A\nage: 1\n---\nname: B\n",
		"pod.json":   `{"spec":{"owner":{"name":"Ann","age":"x"}}}`,
		"broken.txt": `{"name":`,
	})
	schema := filepath.Join(dir, "user.yaml")
	path := func(name string) string { return filepath.Join(dir, name) }

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()
		out, _, err := run(t, nil, "validate", "--schema", schema, path("good.json"))
		require.NoError(t, err)
		assert.Contains(t, out, "ok    "+path("good.json"))
		assert.Contains(t, out, "1 document(s), 0 invalid")
	})

	t.Run("invalid document", func(t *testing.T) {
		t.Parallel()
		out, _, err := run(t, nil, "validate", "--schema", schema, path("good.json"), path("bad.json"))
		require.ErrorIs(t, err, ErrInvalid)
		assert.Contains(t, out, "FAIL  "+path("bad.json"))
		assert.Contains(t, out, "/name: String must contain at least 1 character(s) (too_small)")
		assert.Contains(t, out, "(unrecognized_keys)")
		assert.Contains(t, out, "2 document(s), 1 invalid")
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()
		out, _, err := run(t, nil, "validate", "-o", "json", "--schema", schema, path("bad.json"))
		require.ErrorIs(t, err, ErrInvalid)
		var results []docResult
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.Len(t, results, 1)
		assert.False(t, results[0].Valid)
		var paths []string
		for _, it := range results[0].Issues {
			paths = append(paths, it.Path)
		}
		assert.Contains(t, paths, "/name")
		assert.Contains(t, paths, "/age")
	})

	t.Run("flatten output", func(t *testing.T) {
		t.Parallel()
		out, _, err := run(t, nil, "validate", "--output", "flatten", "--schema", schema, path("bad.json"))
		require.ErrorIs(t, err, ErrInvalid)
		var results []docResult
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.NotNil(t, results[0].Flatten)
		assert.Contains(t, results[0].Flatten.FieldErrors, "name")
		assert.NotEmpty(t, results[0].Flatten.FormErrors)
	})

	t.Run("tree output in japanese", func(t *testing.T) {
		t.Parallel()
		out, _, err := run(t, map[string]string{"ZSKEMA_LANG": "ja"},
			"validate", "-o", "tree", "--schema", schema, path("many.yaml"))
		require.ErrorIs(t, err, ErrInvalid)
		var results []docResult
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.Len(t, results, 2)
		assert.True(t, results[0].Valid)
		require.NotNil(t, results[1].Tree)
		assert.Equal(t, []string{"必須項目です"}, results[1].Tree.Properties["age"].Errors)
	})

	t.Run("unknown output format", func(t *testing.T) {
		t.Parallel()
		_, _, err := run(t, nil, "validate", "-o", "xml", "--schema", schema, path("good.json"))
		require.ErrorContains(t, err, "must be one of")
	})

	t.Run("duplicate keys", func(t *testing.T) {
		t.Parallel()
		out, _, err := run(t, nil, "validate", "--schema", schema, path("dup.json"))
		require.ErrorIs(t, err, ErrInvalid)
		assert.Contains(t, out, "(duplicate_key)")

		_, _, err = run(t, nil, "validate", "--allow-duplicate-keys", "--schema", schema, path("dup.json"))
		require.NoError(t, err)
	})

	t.Run("malformed document", func(t *testing.T) {
		t.Parallel()
		out, _, err := run(t, nil, "validate", "--schema", schema, path("broken.txt"))
		require.ErrorIs(t, err, ErrInvalid)
		assert.Contains(t, out, "(parse_error)")
	})

	t.Run("missing document", func(t *testing.T) {
		t.Parallel()
		_, _, err := run(t, nil, "validate", "--schema", schema, path("nope.json"))
		require.ErrorContains(t, err, "read document")
	})

	t.Run("select", func(t *testing.T) {
		t.Parallel()
		out, _, err := run(t, nil, "validate", "--select", "spec.owner", "--schema", schema, path("pod.json"))
		require.ErrorIs(t, err, ErrInvalid)
		assert.Contains(t, out, "/spec/owner/age: Expected number, received string (invalid_type)")

		out, _, err = run(t, nil, "validate", "--select", "spec.nobody", "--schema", schema, path("pod.json"))
		require.ErrorIs(t, err, ErrInvalid)
		assert.Contains(t, out, "ERROR")
	})

	t.Run("metrics file", func(t *testing.T) {
		t.Parallel()
		mf := filepath.Join(t.TempDir(), "zskema.prom")
		_, _, err := run(t, map[string]string{"ZSKEMA_METRICS_FILE": mf},
			"validate", "-j", "2", "--schema", schema, path("good.json"), path("bad.json"))
		require.ErrorIs(t, err, ErrInvalid)
		b, err := os.ReadFile(mf)
		require.NoError(t, err)
		assert.Contains(t, string(b), `zskema_validations_total{outcome="valid",schema="user.yaml"} 1`)
		assert.Contains(t, string(b), `zskema_validations_total{outcome="invalid",schema="user.yaml"} 1`)
	})

	t.Run("json logs", func(t *testing.T) {
		t.Parallel()
		_, stderr, err := run(t, map[string]string{"ZSKEMA_LOG_FORMAT": "json"},
			"validate", "--schema", schema, path("good.json"))
		require.NoError(t, err)
		assert.Contains(t, stderr, `"message":"validation finished"`)
	})

	t.Run("watch rejects stdin", func(t *testing.T) {
		t.Parallel()
		_, _, err := run(t, nil, "validate", "--watch", "--schema", schema, "-")
		require.ErrorContains(t, err, "stdin")
	})
}

func TestConstraintsCmd(t *testing.T) {
	t.Parallel()
	dir := writeFiles(t, map[string]string{"user.yaml": userSchema})

	out, _, err := run(t, nil, "constraints", "--schema", filepath.Join(dir, "user.yaml"))
	require.NoError(t, err)
	var got map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, true, got["name"]["required"])
	assert.Equal(t, float64(1), got["name"]["minLength"])
	assert.Equal(t, float64(0), got["age"]["min"])
	assert.NotContains(t, got["role"], "required")
}

func TestJSONSchemaCmd(t *testing.T) {
	t.Parallel()
	dir := writeFiles(t, map[string]string{
		"user.yaml": userSchema,
		"good.json": `{"name":"Ann","age":30}`,
		"bad.yaml":  "name: Ann\n",
	})
	schema := filepath.Join(dir, "user.yaml")

	out, _, err := run(t, nil, "jsonschema", "--schema", schema)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, []any{"age", "name"}, doc["required"])

	out, _, err = run(t, nil, "jsonschema", "--check", "--schema", schema)
	require.NoError(t, err)
	assert.Contains(t, out, "schema compiles")

	out, _, err = run(t, nil, "jsonschema", "--check", "--schema", schema,
		filepath.Join(dir, "good.json"), filepath.Join(dir, "bad.yaml"))
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, out, "ok    "+filepath.Join(dir, "good.json"))
	assert.Contains(t, out, "FAIL  "+filepath.Join(dir, "bad.yaml"))

	_, _, err = run(t, nil, "jsonschema", "--schema", schema, filepath.Join(dir, "good.json"))
	require.ErrorContains(t, err, "--check")
}

package source_test

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/zskema"
	"github.com/reoring/zskema/source"
)

func TestDecodeJSON_ValueModel(t *testing.T) {
	v, err := source.DecodeJSON(strings.NewReader(`{"a":1,"b":[true,null,"x"],"c":{"d":2.5}}`), source.Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": float64(1),
		"b": []any{true, nil, "x"},
		"c": map[string]any{"d": 2.5},
	}, v)
}

func TestDecodeJSON_UseNumber(t *testing.T) {
	v, err := source.DecodeJSON(strings.NewReader(`[12345678901234567890]`), source.Options{UseNumber: true})
	require.NoError(t, err)
	assert.Equal(t, []any{json.Number("12345678901234567890")}, v)
}

func TestDecodeJSON_DuplicateKeys(t *testing.T) {
	in := `{"a":1,"nested":{"k":1,"k":2},"a":3}`
	v, err := source.DecodeJSON(strings.NewReader(in), source.Options{})
	iss, ok := zskema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 2)
	assert.Equal(t, zskema.CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, zskema.Path{"nested", "k"}, iss[0].Path)
	assert.Equal(t, "Duplicate key 'k'", iss[0].Message)
	assert.Equal(t, zskema.Path{"a"}, iss[1].Path)
	// The decoded value is still returned; the last occurrence wins.
	assert.Equal(t, float64(3), v.(map[string]any)["a"])

	_, err = source.DecodeJSON(strings.NewReader(in), source.Options{AllowDuplicateKeys: true})
	assert.NoError(t, err)
}

func TestDecodeJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opt  source.Options
	}{
		{"syntax", `{"a":}`, source.Options{}},
		{"empty", ``, source.Options{}},
		{"trailing", `{} {}`, source.Options{}},
		{"depth", `[[[1]]]`, source.Options{MaxDepth: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := source.DecodeJSON(strings.NewReader(tt.in), tt.opt)
			iss, ok := zskema.AsIssues(err)
			require.True(t, ok, "got %v", err)
			require.NotEmpty(t, iss)
			assert.Equal(t, zskema.CodeParseError, iss[0].Code)
		})
	}
}

func TestDecodeYAML_MultiDocument(t *testing.T) {
	in := `
name: a
count: 3
tags: [x, y]
when: 2024-01-02
---
name: b
enabled: yes
empty: ~
`
	docs, err := source.DecodeYAML(strings.NewReader(in), source.Options{})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, map[string]any{
		"name":  "a",
		"count": float64(3),
		"tags":  []any{"x", "y"},
		"when":  "2024-01-02",
	}, docs[0].Value)
	assert.Equal(t, 1, docs[1].Index)
	// yaml.v3 follows YAML 1.2: "yes" is a string.
	assert.Equal(t, "yes", docs[1].Value.(map[string]any)["enabled"])
	assert.Nil(t, docs[1].Value.(map[string]any)["empty"])
}

func TestDecodeYAML_DuplicateKeysAndMerge(t *testing.T) {
	in := `
base: &base
  a: 1
  b: 2
item:
  <<: *base
  b: 3
  c: 4
  c: 5
`
	docs, err := source.DecodeYAML(strings.NewReader(in), source.Options{})
	iss, ok := zskema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, zskema.Path{"item", "c"}, iss[0].Path)

	docs, err = source.DecodeYAML(strings.NewReader(in), source.Options{AllowDuplicateKeys: true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1), "b": float64(3), "c": float64(5)},
		docs[0].Value.(map[string]any)["item"])
}

func TestDecode_ByFormat(t *testing.T) {
	assert.Equal(t, source.FormatYAML, source.FormatOf("a/b.YML"))
	assert.Equal(t, source.FormatJSON, source.FormatOf("a/b.json"))
	assert.Equal(t, source.FormatJSON, source.FormatOf("stdin"))

	docs, err := source.DecodeBytes([]byte(`{"x":1}`), source.FormatJSON, source.Options{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, map[string]any{"x": float64(1)}, docs[0].Value)
}

func TestSelect(t *testing.T) {
	data := []byte(`{"spec":{"items":[{"name":"a"},{"name":"b"}]}}`)

	v, err := source.Select(data, "spec.items.1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "b"}, v)

	v, err = source.Select(data, "spec.items.#.name")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, v)

	_, err = source.Select(data, "spec.missing")
	assert.ErrorIs(t, err, source.ErrNoMatch)

	_, err = source.Select([]byte(`{`), "a")
	assert.Error(t, err)
}

func TestSelectPath(t *testing.T) {
	assert.Equal(t, zskema.Path{"spec", "items", 1}, source.SelectPath("spec.items.1"))
	assert.Nil(t, source.SelectPath("spec.items.#.name"))
	assert.Nil(t, source.SelectPath(""))
}

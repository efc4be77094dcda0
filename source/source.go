// Package source turns JSON and YAML input into the untyped value trees the
// dsl engine validates: map[string]any objects, []any arrays, float64
// numbers, string, bool and nil.
package source

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/reoring/zskema"
)

// Format names an input encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf guesses the format from a file name; anything that is not .yaml
// or .yml is treated as JSON.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Options control decoding.
type Options struct {
	// AllowDuplicateKeys keeps the last value of a repeated object key
	// instead of reporting duplicate_key.
	AllowDuplicateKeys bool
	// MaxDepth limits container nesting; zero means unlimited.
	MaxDepth int
	// UseNumber keeps JSON numbers as json.Number instead of float64.
	UseNumber bool
	// Config resolves issue messages. The zero value means English.
	Config zskema.Config
}

// Document is one decoded value. YAML streams may hold several.
type Document struct {
	Index int
	Value any
}

// Decode reads every document in r.
func Decode(r io.Reader, format Format, opt Options) ([]Document, error) {
	if format == FormatYAML {
		return DecodeYAML(r, opt)
	}
	v, err := DecodeJSON(r, opt)
	if err != nil {
		return nil, err
	}
	return []Document{{Value: v}}, nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(b []byte, format Format, opt Options) ([]Document, error) {
	return Decode(bytes.NewReader(b), format, opt)
}

// collector accumulates decode issues with resolved messages.
type collector struct {
	opt    Options
	issues zskema.Issues
}

func (c *collector) add(p zskema.Path, code string, params map[string]any, detail string) {
	it := zskema.IssueAt(p.Concat(nil), code, "", params)
	it.Message = c.opt.Config.Message(it)
	if detail != "" {
		it.Message += ": " + detail
	}
	c.issues = append(c.issues, it)
}

func (c *collector) duplicate(p zskema.Path, key string) {
	c.add(p.Field(key), zskema.CodeDuplicateKey, map[string]any{"key": key}, "")
}

func (c *collector) tooDeep(p zskema.Path, depth int) bool {
	if c.opt.MaxDepth <= 0 || depth <= c.opt.MaxDepth {
		return false
	}
	c.add(p, zskema.CodeParseError, map[string]any{"maxDepth": c.opt.MaxDepth},
		fmt.Sprintf("max depth %d exceeded", c.opt.MaxDepth))
	return true
}

func (c *collector) err() error {
	if len(c.issues) == 0 {
		return nil
	}
	return c.issues
}

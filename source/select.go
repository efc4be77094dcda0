package source

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/reoring/zskema"
)

// ErrNoMatch is returned by Select when the path matches nothing.
var ErrNoMatch = errors.New("source: path matched nothing")

// Select extracts a sub-document from raw JSON using a gjson path such as
// "spec.template" or "items.#.name". The result uses the same value model
// as DecodeJSON.
func Select(data []byte, path string) (any, error) {
	if path == "" {
		return nil, fmt.Errorf("source: empty select path")
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("source: select %q: invalid JSON", path)
	}
	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, path)
	}
	return res.Value(), nil
}

// SelectPath converts a simple dotted gjson path into an issue path so
// issues found in a selected sub-document point into the full document.
// Paths using modifiers or queries yield nil.
func SelectPath(path string) zskema.Path {
	if path == "" || strings.ContainsAny(path, "#*?|@\\") {
		return nil
	}
	var out zskema.Path
	for _, seg := range strings.Split(path, ".") {
		if i, err := strconv.Atoi(seg); err == nil && i >= 0 {
			out = append(out, i)
			continue
		}
		out = append(out, seg)
	}
	return out
}

package zskema

import (
	"fmt"
	"strconv"
	"strings"
)

// Path locates a value inside the original input. Segments are object field
// names (string), array/tuple indices (int), or map keys (any comparable).
type Path []any

// Field returns a new path extended with an object field name.
func (p Path) Field(name string) Path { return p.Append(name) }

// Index returns a new path extended with an array index.
func (p Path) Index(i int) Path { return p.Append(i) }

// Append returns a new path with seg appended. The receiver is never shared
// with the result, so sibling paths built from the same prefix stay independent.
func (p Path) Append(seg any) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// Concat returns p followed by q.
func (p Path) Concat(q Path) Path {
	if len(q) == 0 {
		return p.clone()
	}
	out := make(Path, 0, len(p)+len(q))
	out = append(out, p...)
	return append(out, q...)
}

func (p Path) clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Equal reports whether both paths have identical segments.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Pointer renders the path as an RFC 6901 JSON Pointer ("/" for the root).
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, seg := range p {
		b.WriteByte('/')
		// escape '~' -> '~0', '/' -> '~1' per RFC6901
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(segmentString(seg), "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// String renders the path in dotted form, e.g. items[2].price.
func (p Path) String() string {
	b := &strings.Builder{}
	for i, seg := range p {
		if n, ok := seg.(int); ok {
			fmt.Fprintf(b, "[%d]", n)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(segmentString(seg))
	}
	return b.String()
}

// ParsePointer splits a JSON Pointer into a Path. Numeric segments become int.
func ParsePointer(ptr string) Path {
	if ptr == "" || ptr == "/" {
		return Path{}
	}
	var out Path
	for _, raw := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		seg := strings.ReplaceAll(strings.ReplaceAll(raw, "~1", "/"), "~0", "~")
		if n, err := strconv.Atoi(seg); err == nil && n >= 0 {
			out = append(out, n)
			continue
		}
		out = append(out, seg)
	}
	return out
}

func segmentString(seg any) string {
	switch s := seg.(type) {
	case string:
		return s
	case int:
		return strconv.Itoa(s)
	default:
		return fmt.Sprint(s)
	}
}

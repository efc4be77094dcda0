package zskema

import "strconv"

// FlattenedError is the flat projection of an issue list for single-level
// forms. Issues deeper than one segment are attributed to their first
// segment.
type FlattenedError struct {
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

// Flatten projects issues into root-level messages and per-field messages.
func Flatten(iss Issues) FlattenedError {
	out := FlattenedError{FormErrors: []string{}, FieldErrors: map[string][]string{}}
	for _, it := range iss {
		if len(it.Path) == 0 {
			out.FormErrors = append(out.FormErrors, it.Message)
			continue
		}
		k := segmentString(it.Path[0])
		out.FieldErrors[k] = append(out.FieldErrors[k], it.Message)
	}
	return out
}

// ErrorTree mirrors the shape of the input: each node carries the messages
// reported exactly at its location plus children keyed by field name
// (Properties) or index (Items). Items may contain nil holes.
type ErrorTree struct {
	Errors     []string              `json:"errors"`
	Properties map[string]*ErrorTree `json:"properties,omitempty"`
	Items      []*ErrorTree          `json:"items,omitempty"`
}

// Treeify projects issues into a nested tree. It is lossless with respect
// to message placement.
func Treeify(iss Issues) *ErrorTree {
	root := &ErrorTree{Errors: []string{}}
	for _, it := range iss {
		n := root
		for _, seg := range it.Path {
			n = n.child(seg)
		}
		n.Errors = append(n.Errors, it.Message)
	}
	return root
}

func (t *ErrorTree) child(seg any) *ErrorTree {
	if i, ok := seg.(int); ok && i >= 0 {
		for len(t.Items) <= i {
			t.Items = append(t.Items, nil)
		}
		if t.Items[i] == nil {
			t.Items[i] = &ErrorTree{Errors: []string{}}
		}
		return t.Items[i]
	}
	k := segmentString(seg)
	if t.Properties == nil {
		t.Properties = map[string]*ErrorTree{}
	}
	c, ok := t.Properties[k]
	if !ok {
		c = &ErrorTree{Errors: []string{}}
		t.Properties[k] = c
	}
	return c
}

// Flatten collapses the tree the same way Flatten collapses an issue list.
func (t *ErrorTree) Flatten() FlattenedError {
	out := FlattenedError{FormErrors: []string{}, FieldErrors: map[string][]string{}}
	if t == nil {
		return out
	}
	out.FormErrors = append(out.FormErrors, t.Errors...)
	for k, c := range t.Properties {
		if msgs := c.collect(nil); len(msgs) > 0 {
			out.FieldErrors[k] = msgs
		}
	}
	for i, c := range t.Items {
		if c == nil {
			continue
		}
		if msgs := c.collect(nil); len(msgs) > 0 {
			out.FieldErrors[strconv.Itoa(i)] = msgs
		}
	}
	return out
}

func (t *ErrorTree) collect(dst []string) []string {
	dst = append(dst, t.Errors...)
	for _, c := range t.Properties {
		dst = c.collect(dst)
	}
	for _, c := range t.Items {
		if c != nil {
			dst = c.collect(dst)
		}
	}
	return dst
}

// Empty reports whether the tree carries no messages at all.
func (t *ErrorTree) Empty() bool {
	return t == nil || len(t.collect(nil)) == 0
}

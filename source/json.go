package source

import (
	"errors"
	"io"

	"github.com/goccy/go-json"

	"github.com/reoring/zskema"
)

// DecodeJSON reads exactly one JSON value from r. Duplicate object keys and
// depth violations are returned as zskema.Issues; syntax errors become a
// single parse_error issue.
func DecodeJSON(r io.Reader, opt Options) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	d := &jsonDecoder{dec: dec, collector: collector{opt: opt}}

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		d.syntax(zskema.Path{}, err)
		return nil, d.err()
	}
	v, err := d.value(tok, zskema.Path{}, 0)
	if err != nil {
		d.syntax(zskema.Path{}, err)
		return nil, d.err()
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		d.add(zskema.Path{}, zskema.CodeParseError, nil, "unexpected data after top-level value")
	}
	if e := d.err(); e != nil {
		return v, e
	}
	return v, nil
}

type jsonDecoder struct {
	dec *json.Decoder
	collector
}

var errDepth = errors.New("max depth exceeded")

func (d *jsonDecoder) syntax(p zskema.Path, err error) {
	if errors.Is(err, errDepth) {
		return
	}
	d.add(p, zskema.CodeParseError, map[string]any{"offset": d.dec.InputOffset()}, err.Error())
}

func (d *jsonDecoder) value(tok json.Token, p zskema.Path, depth int) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		if d.tooDeep(p, depth+1) {
			return nil, errDepth
		}
		switch t {
		case '{':
			return d.object(p, depth+1)
		case '[':
			return d.array(p, depth+1)
		}
		return nil, errors.New("unexpected delimiter " + t.String())
	case json.Number:
		if d.opt.UseNumber {
			return t, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		// string, bool, nil
		return t, nil
	}
}

func (d *jsonDecoder) object(p zskema.Path, depth int) (any, error) {
	out := map[string]any{}
	for d.dec.More() {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("object key must be a string")
		}
		if _, dup := out[key]; dup && !d.opt.AllowDuplicateKeys {
			d.duplicate(p, key)
		}
		tok, err = d.dec.Token()
		if err != nil {
			return nil, err
		}
		v, err := d.value(tok, p.Field(key), depth)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	if _, err := d.dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *jsonDecoder) array(p zskema.Path, depth int) (any, error) {
	out := []any{}
	for i := 0; d.dec.More(); i++ {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		v, err := d.value(tok, p.Index(i), depth)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if _, err := d.dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

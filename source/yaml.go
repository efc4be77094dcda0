package source

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/reoring/zskema"
)

// DecodeYAML reads every document of a YAML stream. Mappings become
// map[string]any, numbers float64, and timestamps stay strings so that
// Coerce.Date decides how to read them. Repeated keys in a mapping are
// reported as duplicate_key issues unless Options.AllowDuplicateKeys is set.
func DecodeYAML(r io.Reader, opt Options) ([]Document, error) {
	dec := yaml.NewDecoder(r)
	c := &yamlConverter{collector: collector{opt: opt}}
	var docs []Document
	for i := 0; ; i++ {
		var root yaml.Node
		if err := dec.Decode(&root); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			c.add(zskema.Path{}, zskema.CodeParseError, map[string]any{"document": i}, err.Error())
			return docs, c.err()
		}
		v, err := c.convert(&root, zskema.Path{}, 0)
		if err != nil {
			if !errors.Is(err, errDepth) {
				c.add(zskema.Path{}, zskema.CodeParseError, map[string]any{"document": i}, err.Error())
			}
			return docs, c.err()
		}
		docs = append(docs, Document{Index: i, Value: v})
	}
	return docs, c.err()
}

type yamlConverter struct {
	collector
}

func (c *yamlConverter) convert(n *yaml.Node, p zskema.Path, depth int) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.convert(n.Content[0], p, depth)
	case yaml.AliasNode:
		return c.convert(n.Alias, p, depth)
	case yaml.SequenceNode:
		if c.tooDeep(p, depth+1) {
			return nil, errDepth
		}
		out := make([]any, 0, len(n.Content))
		for i, item := range n.Content {
			v, err := c.convert(item, p.Index(i), depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		if c.tooDeep(p, depth+1) {
			return nil, errDepth
		}
		return c.mapping(n, p, depth+1)
	case yaml.ScalarNode:
		return scalar(n)
	}
	return nil, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
}

func (c *yamlConverter) mapping(n *yaml.Node, p zskema.Path, depth int) (map[string]any, error) {
	out := make(map[string]any, len(n.Content)/2)
	var merged []map[string]any
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
		}
		if k.ShortTag() == "!!merge" {
			m, err := c.mergeSources(v, p, depth)
			if err != nil {
				return nil, err
			}
			merged = append(merged, m...)
			continue
		}
		key := k.Value
		if _, dup := out[key]; dup && !c.opt.AllowDuplicateKeys {
			c.duplicate(p, key)
		}
		val, err := c.convert(v, p.Field(key), depth)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	// Explicit keys win over merged ones; earlier merge sources win over later.
	for _, m := range merged {
		for k, v := range m {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return out, nil
}

func (c *yamlConverter) mergeSources(v *yaml.Node, p zskema.Path, depth int) ([]map[string]any, error) {
	if v.Kind == yaml.AliasNode {
		v = v.Alias
	}
	switch v.Kind {
	case yaml.MappingNode:
		m, err := c.mapping(v, p, depth)
		if err != nil {
			return nil, err
		}
		return []map[string]any{m}, nil
	case yaml.SequenceNode:
		var out []map[string]any
		for _, item := range v.Content {
			ms, err := c.mergeSources(item, p, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, ms...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("line %d: merge value must be a mapping", v.Line)
}

func scalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	default:
		return n.Value, nil
	}
}

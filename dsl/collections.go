package dsl

// ArraySchema validates []any element by element.
type ArraySchema struct{ common[*ArraySchema] }

func newArray(n *node) *ArraySchema {
	s := &ArraySchema{}
	s.common = common[*ArraySchema]{n: n, mk: newArray}
	return s
}

// Array builds an array schema for elem.
func Array(elem Schema) *ArraySchema {
	return newArray(&node{kind: KindArray, elem: nodeOf("array", elem)})
}

// Element returns the element schema.
func (s *ArraySchema) Element() Schema { return wrap(s.n.elem) }

// Min requires at least n elements.
func (s *ArraySchema) Min(n int, msg ...string) *ArraySchema {
	return newArray(s.n.withCheck(check{op: "min", num: float64(n), inclusive: true, msg: firstMsg(msg)}))
}

// Max allows at most n elements.
func (s *ArraySchema) Max(n int, msg ...string) *ArraySchema {
	return newArray(s.n.withCheck(check{op: "max", num: float64(n), inclusive: true, msg: firstMsg(msg)}))
}

// Length requires exactly n elements.
func (s *ArraySchema) Length(n int, msg ...string) *ArraySchema {
	return newArray(s.n.withCheck(check{op: "length", num: float64(n), msg: firstMsg(msg)}))
}

// NonEmpty is Min(1).
func (s *ArraySchema) NonEmpty(msg ...string) *ArraySchema { return s.Min(1, msg...) }

// SetSchema validates zskema.Set values.
type SetSchema struct{ common[*SetSchema] }

func newSet(n *node) *SetSchema {
	s := &SetSchema{}
	s.common = common[*SetSchema]{n: n, mk: newSet}
	return s
}

// Set builds a set schema for elem.
func Set(elem Schema) *SetSchema {
	return newSet(&node{kind: KindSet, elem: nodeOf("set", elem)})
}

// Min requires at least n elements.
func (s *SetSchema) Min(n int, msg ...string) *SetSchema {
	return newSet(s.n.withCheck(check{op: "min", num: float64(n), inclusive: true, msg: firstMsg(msg)}))
}

// Max allows at most n elements.
func (s *SetSchema) Max(n int, msg ...string) *SetSchema {
	return newSet(s.n.withCheck(check{op: "max", num: float64(n), inclusive: true, msg: firstMsg(msg)}))
}

// Size requires exactly n elements.
func (s *SetSchema) Size(n int, msg ...string) *SetSchema {
	return newSet(s.n.withCheck(check{op: "length", num: float64(n), msg: firstMsg(msg)}))
}

// TupleSchema validates fixed-position arrays.
type TupleSchema struct{ common[*TupleSchema] }

func newTuple(n *node) *TupleSchema {
	s := &TupleSchema{}
	s.common = common[*TupleSchema]{n: n, mk: newTuple}
	return s
}

// Tuple builds a tuple of items.
func Tuple(items ...Schema) *TupleSchema {
	ns := make([]*node, len(items))
	for i, it := range items {
		ns[i] = nodeOf("tuple", it)
	}
	return newTuple(&node{kind: KindTuple, items: ns})
}

// Rest validates elements beyond the declared items with schema.
func (s *TupleSchema) Rest(schema Schema) *TupleSchema {
	out := s.n.clone()
	out.rest = nodeOf("tuple.rest", schema)
	return newTuple(out)
}

// Record validates map[string]any with a key schema and a value schema.
func Record(key, value Schema) *Wrapper {
	return newWrapper(&node{kind: KindRecord, key: nodeOf("record.key", key), value: nodeOf("record.value", value)})
}

// Map validates map[any]any with a key schema and a value schema.
func Map(key, value Schema) *Wrapper {
	return newWrapper(&node{kind: KindMap, key: nodeOf("map.key", key), value: nodeOf("map.value", value)})
}

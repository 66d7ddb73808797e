// Package document models the loosely-typed result documents produced by a
// pipeline stage as a closed tagged union.
//
// A Value is one of null, bool, number, string, sequence or record. Values are
// immutable: constructors copy their inputs, so a Value is always a finite tree
// and can be shared freely between goroutines.
package document

import (
	"math"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Field is a single named entry of a record.
type Field struct {
	Name  string
	Value Value
}

// Value is a document. The zero Value is null.
type Value struct {
	kind  Kind
	b     bool
	n     float64
	s     string
	items []Value
	keys  []string
	index map[string]int
	depth int
}

// Null returns the null document.
func Null() Value { return Value{} }

// Bool returns a boolean document.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric document.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns a string document.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Sequence returns an ordered sequence of documents. The slice is copied.
func Sequence(items ...Value) Value {
	v := Value{kind: KindSequence, items: make([]Value, len(items))}
	copy(v.items, items)
	for _, item := range items {
		if item.Depth() > v.depth {
			v.depth = item.Depth()
		}
	}
	v.depth++
	return v
}

// Record returns a record holding fields in the order given. A repeated name
// overwrites the earlier value but keeps its original position.
func Record(fields ...Field) Value {
	v := Value{
		kind:  KindRecord,
		items: make([]Value, 0, len(fields)),
		index: make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if pos, ok := v.index[f.Name]; ok {
			v.items[pos] = f.Value
			continue
		}
		v.index[f.Name] = len(v.items)
		v.items = append(v.items, f.Value)
		v.keys = append(v.keys, f.Name)
	}
	for _, item := range v.items {
		if item.Depth() > v.depth {
			v.depth = item.Depth()
		}
	}
	v.depth++
	return v
}

// F is shorthand for building a Field.
func F(name string, value Value) Field {
	return Field{Name: name, Value: value}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsContainer reports whether v is a sequence or a record.
func (v Value) IsContainer() bool {
	return v.kind == KindSequence || v.kind == KindRecord
}

// Depth returns the nesting depth of v. Scalars and empty containers have
// depth 1.
func (v Value) Depth() int {
	if v.depth == 0 {
		return 1
	}
	return v.depth
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns the number held by v.
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// Len returns the number of elements of a sequence or fields of a record, and
// zero for scalars.
func (v Value) Len() int {
	if !v.IsContainer() {
		return 0
	}
	return len(v.items)
}

// Items returns a copy of the elements of a sequence, or nil for any other kind.
func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	out := make([]Value, len(v.items))
	copy(out, v.items)
	return out
}

// Index returns the i-th element of a sequence.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindSequence || i < 0 || i >= len(v.items) {
		return Value{}, false
	}
	return v.items[i], true
}

// Fields returns the fields of a record in order, or nil for any other kind.
func (v Value) Fields() []Field {
	if v.kind != KindRecord {
		return nil
	}
	out := make([]Field, len(v.items))
	for i, item := range v.items {
		out[i] = Field{Name: v.keys[i], Value: item}
	}
	return out
}

// Keys returns the field names of a record in order.
func (v Value) Keys() []string {
	if v.kind != KindRecord {
		return nil
	}
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

// Get returns the value of the named field of a record.
func (v Value) Get(name string) (Value, bool) {
	if v.kind != KindRecord {
		return Value{}, false
	}
	pos, ok := v.index[name]
	if !ok {
		return Value{}, false
	}
	return v.items[pos], true
}

// Has reports whether a record has the named field.
func (v Value) Has(name string) bool {
	_, ok := v.Get(name)
	return ok
}

// Text returns the display form of a scalar: "" for null, "true"/"false",
// the shortest decimal form of a number, or the string itself. Containers are
// rendered as compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return FormatNumber(v.n)
	case KindString:
		return v.s
	default:
		data, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.kind == KindString {
		return strconv.Quote(v.s)
	}
	if v.kind == KindNull {
		return "null"
	}
	return v.Text()
}

// FormatNumber renders n the way a JSON encoder would: integers without a
// fractional part, everything else in the shortest round-tripping form.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	}
	abs := math.Abs(n)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(n, 'e', -1, 64)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

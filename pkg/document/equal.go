package document

import "math"

// Equal reports whether v and other are structurally equal. Sequences are
// compared element by element in order; records must hold the same set of
// field names with pairwise equal values, regardless of field order.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.n == other.n || (math.IsNaN(v.n) && math.IsNaN(other.n))
	case KindString:
		return v.s == other.s
	case KindSequence:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case KindRecord:
		if len(v.items) != len(other.items) {
			return false
		}
		for i, name := range v.keys {
			o, ok := other.Get(name)
			if !ok || !v.items[i].Equal(o) {
				return false
			}
		}
		return true
	}
	return false
}

package document

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// FromAny converts already-decoded Go data into a Value. It accepts the shapes
// produced by encoding/json and gopkg.in/yaml.v3 along with the common numeric
// types. Go maps carry no order, so record fields are sorted by name.
//
// Maps and slices may reference themselves; such input is rejected by the
// depth guard rather than walked forever.
func FromAny(x any) (Value, error) {
	return fromAny(x, DefaultMaxDepth, 1)
}

// FromAnyLimit is FromAny with an explicit depth limit.
func FromAnyLimit(x any, maxDepth int) (Value, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return fromAny(x, maxDepth, 1)
}

// MustFromAny is FromAny for literals known to be valid. It panics on error.
func MustFromAny(x any) Value {
	v, err := FromAny(x)
	if err != nil {
		panic(err)
	}
	return v
}

func fromAny(x any, limit, depth int) (Value, error) {
	if depth > limit {
		return Value{}, &DepthError{Limit: limit, Depth: depth}
	}

	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		if err := CheckDepth(limit-depth+1, t); err != nil {
			return Value{}, &DepthError{Limit: limit, Depth: depth - 1 + t.Depth()}
		}
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int8:
		return Number(float64(t)), nil
	case int16:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint:
		return Number(float64(t)), nil
	case uint8:
		return Number(float64(t)), nil
	case uint16:
		return Number(float64(t)), nil
	case uint32:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("converting number %q: %w", t.String(), err)
		}
		return Number(n), nil
	case time.Time:
		return String(t.Format(time.RFC3339Nano)), nil
	case []Value:
		for _, item := range t {
			if _, err := fromAny(item, limit, depth+1); err != nil {
				return Value{}, err
			}
		}
		return Sequence(t...), nil
	case []any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			v, err := fromAny(item, limit, depth+1)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return Sequence(items...), nil
	case []map[string]any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			v, err := fromAny(item, limit, depth+1)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return Sequence(items...), nil
	case []string:
		items := make([]Value, len(t))
		for i, s := range t {
			items[i] = String(s)
		}
		return Sequence(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, 0, len(keys))
		for _, k := range keys {
			v, err := fromAny(t[k], limit, depth+1)
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, F(k, v))
		}
		return Record(fields...), nil
	case map[any]any:
		keyed := make(map[string]any, len(t))
		for k, v := range t {
			keyed[fmt.Sprint(k)] = v
		}
		return fromAny(keyed, limit, depth)
	default:
		return Value{}, fmt.Errorf("unsupported document type %T", x)
	}
}

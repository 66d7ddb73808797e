package document

import (
	"strconv"
	"strings"
)

// Paths address a position inside a document. The root is the empty string,
// a record field appends ".name" (bare "name" at the root) and a sequence
// element appends "[i]". Field names containing '.' or '[' cannot be
// addressed unambiguously.

// FieldPath returns the path of field name below parent.
func FieldPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// IndexPath returns the path of element i below parent.
func IndexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}

// Segment is one step of a parsed path: a field name or a sequence index.
type Segment struct {
	Field   string
	Index   int
	IsIndex bool
}

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Field
}

// ParsePath splits path into segments. It reports false when a bracketed
// index is unterminated or not a non-negative integer.
func ParsePath(path string) ([]Segment, bool) {
	if path == "" {
		return nil, true
	}

	var segments []Segment
	for _, part := range splitOutsideBrackets(path) {
		name := part
		rest := ""
		if open := strings.IndexByte(part, '['); open >= 0 {
			name, rest = part[:open], part[open:]
		}
		// An empty name before a bracket is the index-only case "[1].b";
		// anywhere else it addresses an empty field name.
		if name != "" || rest == "" {
			segments = append(segments, Segment{Field: name})
		}
		for rest != "" {
			if rest[0] != '[' {
				return nil, false
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, false
			}
			idx, err := strconv.Atoi(rest[1:end])
			if err != nil || idx < 0 {
				return nil, false
			}
			segments = append(segments, Segment{Index: idx, IsIndex: true})
			rest = rest[end+1:]
		}
	}
	return segments, true
}

func splitOutsideBrackets(path string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '.':
			if depth == 0 {
				parts = append(parts, path[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, path[start:])
}

// GetValueAtPath resolves path against doc. It reports false when any segment
// is missing, an index is out of range, or the path is malformed.
func GetValueAtPath(doc Value, path string) (Value, bool) {
	segments, ok := ParsePath(path)
	if !ok {
		return Value{}, false
	}
	return ValueAtSegments(doc, segments)
}

// ValueAtSegments resolves already parsed segments against doc.
func ValueAtSegments(doc Value, segments []Segment) (Value, bool) {
	current := doc
	for _, seg := range segments {
		var (
			next Value
			ok   bool
		)
		if seg.IsIndex {
			next, ok = current.Index(seg.Index)
		} else {
			next, ok = current.Get(seg.Field)
		}
		if !ok {
			return Value{}, false
		}
		current = next
	}
	return current, true
}

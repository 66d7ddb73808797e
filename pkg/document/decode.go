package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decoder turns encoded documents into Values. The zero Decoder uses
// DefaultMaxDepth.
type Decoder struct {
	MaxDepth int
}

func (d Decoder) limit() int {
	if d.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return d.MaxDepth
}

// DecodeJSON decodes a single JSON document.
func DecodeJSON(data []byte) (Value, error) { return Decoder{}.JSON(data) }

// DecodeYAML decodes a single YAML document.
func DecodeYAML(data []byte) (Value, error) { return Decoder{}.YAML(data) }

// Decode decodes JSON or YAML, choosing by content.
func Decode(data []byte) (Value, error) { return Decoder{}.Auto(data) }

// DecodeFile reads and decodes a document file. Files ending in .json are
// decoded as JSON, everything else by content.
func DecodeFile(path string) (Value, error) { return Decoder{}.File(path) }

// JSON decodes a single JSON document, keeping object keys in source order.
func (d Decoder) JSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	p := &jsonParser{dec: dec, limit: d.limit()}
	v, err := p.value(1)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("decoding JSON: unexpected data after top-level value")
	}
	return v, nil
}

// YAML decodes a single YAML document, keeping mapping keys in source order.
// An empty document decodes to null.
func (d Decoder) YAML(data []byte) (Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return Value{}, fmt.Errorf("decoding YAML: %w", err)
	}
	return fromYAMLNode(&node, d.limit(), 1)
}

// Auto decodes data as JSON when it looks like JSON and as YAML otherwise.
// JSON that fails to parse is retried as YAML, which accepts flow syntax.
func (d Decoder) Auto(data []byte) (Value, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		v, err := d.JSON(trimmed)
		if err == nil || IsDepthError(err) {
			return v, err
		}
	}
	return d.YAML(data)
}

// File reads and decodes the document stored at path.
func (d Decoder) File(path string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Value{}, fmt.Errorf("reading document '%s': %w", path, err)
	}
	var v Value
	if strings.EqualFold(filepath.Ext(path), ".json") {
		v, err = d.JSON(data)
	} else {
		v, err = d.Auto(data)
	}
	if err != nil {
		return Value{}, fmt.Errorf("decoding document '%s': %w", path, err)
	}
	return v, nil
}

type jsonParser struct {
	dec   *json.Decoder
	limit int
}

func (p *jsonParser) value(depth int) (Value, error) {
	if depth > p.limit {
		return Value{}, &DepthError{Limit: p.limit, Depth: depth}
	}
	tok, err := p.dec.Token()
	if err != nil {
		return Value{}, fmt.Errorf("decoding JSON: %w", err)
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("decoding JSON number %q: %w", t.String(), err)
		}
		return Number(n), nil
	case json.Delim:
		switch t {
		case '[':
			var items []Value
			for p.dec.More() {
				item, err := p.value(depth + 1)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := p.dec.Token(); err != nil {
				return Value{}, fmt.Errorf("decoding JSON: %w", err)
			}
			return Sequence(items...), nil
		case '{':
			var fields []Field
			for p.dec.More() {
				keyTok, err := p.dec.Token()
				if err != nil {
					return Value{}, fmt.Errorf("decoding JSON: %w", err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("decoding JSON: unexpected object key %v", keyTok)
				}
				val, err := p.value(depth + 1)
				if err != nil {
					return Value{}, err
				}
				fields = append(fields, F(key, val))
			}
			if _, err := p.dec.Token(); err != nil {
				return Value{}, fmt.Errorf("decoding JSON: %w", err)
			}
			return Record(fields...), nil
		}
	}
	return Value{}, fmt.Errorf("decoding JSON: unexpected token %v", tok)
}

func fromYAMLNode(node *yaml.Node, limit, depth int) (Value, error) {
	if depth > limit {
		return Value{}, &DepthError{Limit: limit, Depth: depth}
	}

	switch node.Kind {
	case 0:
		return Null(), nil
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return fromYAMLNode(node.Content[0], limit, depth)
	case yaml.AliasNode:
		if node.Alias == nil {
			return Null(), nil
		}
		return fromYAMLNode(node.Alias, limit, depth)
	case yaml.ScalarNode:
		return fromYAMLScalar(node)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := fromYAMLNode(child, limit, depth+1)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Sequence(items...), nil
	case yaml.MappingNode:
		fields := make([]Field, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, err := yamlKey(node.Content[i], limit, depth)
			if err != nil {
				return Value{}, err
			}
			val, err := fromYAMLNode(node.Content[i+1], limit, depth+1)
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, F(key, val))
		}
		return Record(fields...), nil
	}
	return Value{}, fmt.Errorf("decoding YAML: unsupported node kind %d at line %d", node.Kind, node.Line)
}

func fromYAMLScalar(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, fmt.Errorf("decoding YAML bool at line %d: %w", node.Line, err)
		}
		return Bool(b), nil
	case "!!int", "!!float":
		var n float64
		if err := node.Decode(&n); err != nil {
			return Value{}, fmt.Errorf("decoding YAML number at line %d: %w", node.Line, err)
		}
		return Number(n), nil
	default:
		return String(node.Value), nil
	}
}

// yamlKey renders a mapping key as a field name. Non-scalar keys fall back to
// their compact JSON form.
func yamlKey(node *yaml.Node, limit, depth int) (string, error) {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind == yaml.ScalarNode {
		return node.Value, nil
	}
	key, err := fromYAMLNode(node, limit, depth+1)
	if err != nil {
		return "", err
	}
	return key.Text(), nil
}

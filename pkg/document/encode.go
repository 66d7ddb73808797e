package document

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalJSON encodes v as compact JSON, keeping record fields in order.
// Non-finite numbers have no JSON form and are written as null.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			buf.WriteString("null")
			return nil
		}
		buf.WriteString(FormatNumber(v.n))
	case KindString:
		return writeJSONString(buf, v.s)
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindRecord:
		buf.WriteByte('{')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, v.keys[i]); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encoder.Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// UnmarshalJSON decodes JSON into v, preserving record field order.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// MarshalYAML returns a node tree so that record fields keep their order.
func (v Value) MarshalYAML() (interface{}, error) {
	return v.yamlNode(), nil
}

func (v Value) yamlNode() *yaml.Node {
	switch v.kind {
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	case KindNumber:
		tag := "!!float"
		if v.n == math.Trunc(v.n) && math.Abs(v.n) < 1e21 {
			tag = "!!int"
		}
		text := FormatNumber(v.n)
		switch {
		case math.IsNaN(v.n):
			text = ".nan"
		case math.IsInf(v.n, 1):
			text = ".inf"
		case math.IsInf(v.n, -1):
			text = "-.inf"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: text}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.s}
	case KindSequence:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.items {
			node.Content = append(node.Content, item.yamlNode())
		}
		return node
	case KindRecord:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for i, item := range v.items {
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.keys[i]}
			node.Content = append(node.Content, key, item.yamlNode())
		}
		return node
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// UnmarshalYAML decodes a YAML node into v, preserving mapping key order.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	decoded, err := fromYAMLNode(node, DefaultMaxDepth, 1)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

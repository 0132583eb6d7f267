package document

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidJSON is returned when a payload is not well-formed JSON.
	ErrInvalidJSON = errors.New("invalid JSON")
	// ErrEmptyInput is returned when there is nothing to parse.
	ErrEmptyInput = errors.New("empty input")
)

// Parse decodes a JSON payload, keeping object keys in document order.
func Parse(data []byte) (Value, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Value{}, ErrEmptyInput
	}
	if !gjson.ValidBytes(data) {
		return Value{}, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return NullValue()
	case gjson.False:
		return BoolValue(false)
	case gjson.True:
		return BoolValue(true)
	case gjson.Number:
		return NumberValue(r.Num)
	case gjson.String:
		return StringValue(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			items := []Value{}
			r.ForEach(func(_, item gjson.Result) bool {
				items = append(items, fromResult(item))
				return true
			})
			return ArrayValue(items...)
		}
		obj := NewObject()
		r.ForEach(func(key, item gjson.Result) bool {
			obj.Set(key.Str, fromResult(item))
			return true
		})
		return obj
	}
	return NullValue()
}

// ParseYAML decodes a single YAML document, keeping mapping order.
func ParseYAML(data []byte) (Value, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Value{}, ErrEmptyInput
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Value{}, fmt.Errorf("invalid YAML: %w", err)
	}
	return fromNode(&root)
}

func fromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NullValue(), nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return NullValue(), nil
		}
		return fromNode(n.Alias)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := fromNode(c)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return ArrayValue(items...), nil
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			val, err := fromNode(n.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			obj.Set(n.Content[i].Value, val)
		}
		return obj, nil
	case yaml.ScalarNode:
		return fromScalar(n)
	}
	return NullValue(), nil
}

func fromScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return NullValue(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return BoolValue(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return NumberValue(f), nil
	default:
		return StringValue(n.Value), nil
	}
}

// LoadBytes parses data, detecting JSON by its leading brace or bracket and
// falling back to YAML otherwise.
func LoadBytes(data []byte) (Value, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return Value{}, ErrEmptyInput
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return Parse([]byte(trimmed))
	}
	return ParseYAML([]byte(trimmed))
}

// Load reads a JSON or YAML file.
func Load(path string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Value{}, err
	}
	v, err := LoadBytes(data)
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

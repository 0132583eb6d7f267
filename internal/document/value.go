// Package document holds the raw document model: a JSON-shaped tree whose
// objects keep their keys in document order.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is one node of a raw document. The zero Value is Null.
type Value struct {
	kind  Kind
	b     bool
	n     float64
	s     string
	items []Value
	obj   *orderedmap.OrderedMap[string, Value]
}

// Member is one key/value pair of an object, in document order.
type Member struct {
	Key   string
	Value Value
}

// NullValue returns the null value.
func NullValue() Value { return Value{} }

// BoolValue wraps b.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// NumberValue wraps n.
func NumberValue(n float64) Value { return Value{kind: Number, n: n} }

// StringValue wraps s.
func StringValue(s string) Value { return Value{kind: String, s: s} }

// ArrayValue builds an array from items.
func ArrayValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: Array, items: items}
}

// NewObject builds an object from members. Later duplicates overwrite the
// value but keep the position of the first occurrence.
func NewObject(members ...Member) Value {
	om := orderedmap.New[string, Value]()
	for _, m := range members {
		om.Set(m.Key, m.Value)
	}
	return Value{kind: Object, obj: om}
}

// M is shorthand for Member{Key: key, Value: v}.
func M(key string, v Value) Member {
	return Member{Key: key, Value: v}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool   { return v.kind == Null }
func (v Value) IsObject() bool { return v.kind == Object }
func (v Value) IsArray() bool  { return v.kind == Array }

// Bool returns the boolean payload; false for other kinds.
func (v Value) Bool() bool { return v.kind == Bool && v.b }

// Float returns the numeric payload; 0 for other kinds.
func (v Value) Float() float64 {
	if v.kind != Number {
		return 0
	}
	return v.n
}

// Str returns the string payload; "" for other kinds.
func (v Value) Str() string {
	if v.kind != String {
		return ""
	}
	return v.s
}

// Items returns the array elements; nil for other kinds.
func (v Value) Items() []Value {
	if v.kind != Array {
		return nil
	}
	return v.items
}

// Len reports the number of array elements or object members.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.items)
	case Object:
		if v.obj == nil {
			return 0
		}
		return v.obj.Len()
	default:
		return 0
	}
}

// Members returns object members in document order; nil for other kinds.
func (v Value) Members() []Member {
	if v.kind != Object || v.obj == nil {
		return nil
	}
	out := make([]Member, 0, v.obj.Len())
	for pair := v.obj.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Member{Key: pair.Key, Value: pair.Value})
	}
	return out
}

// Get looks up key in an object.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object || v.obj == nil {
		return Value{}, false
	}
	return v.obj.Get(key)
}

// Set adds or replaces key on an object in place. It is a no-op for other kinds.
func (v Value) Set(key string, val Value) {
	if v.kind != Object || v.obj == nil {
		return
	}
	v.obj.Set(key, val)
}

// Equal reports deep equality, including member order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.b == o.b
	case Number:
		if math.IsNaN(v.n) && math.IsNaN(o.n) {
			return true
		}
		return v.n == o.n
	case String:
		return v.s == o.s
	case Array:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case Object:
		a, b := v.Members(), o.Members()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i].Key != b[i].Key || !a[i].Value.Equal(b[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON encodes the value keeping object members in document order.
// Non-finite numbers have no JSON form and are written as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.b))
	case Number:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			buf.WriteString(strconv.Quote(FormatFloat(v.n)))
			return nil
		}
		buf.WriteString(strconv.FormatFloat(v.n, 'f', -1, 64))
	case String:
		b, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(b)
	case Array:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range v.Members() {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := m.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown kind %s", v.kind)
	}
	return nil
}

// String renders the value as compact JSON.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s>", v.kind)
	}
	return string(b)
}

// FormatFloat renders n the way a browser would print it: shortest decimal,
// with NaN, Infinity and -Infinity spelled out.
func FormatFloat(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	}
	if n == 0 {
		return "0"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

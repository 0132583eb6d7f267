package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/propdash/internal/document"
)

// ResultKey wraps selections that are not objects so they still produce
// sections.
const ResultKey = "result"

// Selector evaluates CEL expressions against a document bound to "_", as in
// `_.zoning` or `_.overlays.filter(o, o.applies)`.
type Selector struct {
	env *cel.Env
}

// NewSelector creates a selector with the strings, encoders, lists and math
// extensions loaded.
func NewSelector() (*Selector, error) {
	env, err := cel.NewEnv(
		cel.Variable("_", cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Selector{env: env}, nil
}

// Check compiles expr without running it.
func (s *Selector) Check(expr string) error {
	_, err := s.program(expr)
	return err
}

// Select evaluates expr against doc. Objects come back as they are; any
// other result is wrapped as {"result": value}. CEL maps carry no order, so a
// result map takes the key order of the first object in doc with the same
// key set, and falls back to sorted keys when there is none.
func (s *Selector) Select(expr string, doc document.Value) (document.Value, error) {
	prg, err := s.program(expr)
	if err != nil {
		return document.Value{}, err
	}
	out, _, err := prg.Eval(map[string]any{"_": doc.Native()})
	if err != nil {
		return document.Value{}, fmt.Errorf("eval error: %w", err)
	}
	v, err := keyOrders(doc).toValue(out)
	if err != nil {
		return document.Value{}, err
	}
	if !v.IsObject() {
		v = document.NewObject(document.M(ResultKey, v))
	}
	return v, nil
}

func (s *Selector) program(expr string) (cel.Program, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("empty expression")
	}
	ast, issues := s.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := s.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return prg, nil
}

// orders maps a key-set signature to the key order seen in the source.
type orders map[string][]string

func keyOrders(doc document.Value) orders {
	o := orders{}
	o.collect(doc)
	return o
}

func (o orders) collect(v document.Value) {
	switch {
	case v.IsObject():
		members := v.Members()
		keys := make([]string, len(members))
		for i, m := range members {
			keys[i] = m.Key
			o.collect(m.Value)
		}
		sig := signature(keys)
		if _, seen := o[sig]; !seen {
			o[sig] = keys
		}
	case v.IsArray():
		for _, item := range v.Items() {
			o.collect(item)
		}
	}
}

func signature(keys []string) string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}

// toValue converts a CEL result back into a document value.
func (o orders) toValue(val ref.Val) (document.Value, error) {
	if val == nil {
		return document.NullValue(), nil
	}
	if types.IsError(val) {
		return document.Value{}, fmt.Errorf("eval error: %v", val)
	}

	switch v := val.(type) {
	case types.Null:
		return document.NullValue(), nil
	case types.Bool:
		return document.BoolValue(bool(v)), nil
	case types.Int:
		return document.NumberValue(float64(v)), nil
	case types.Uint:
		return document.NumberValue(float64(v)), nil
	case types.Double:
		return document.NumberValue(float64(v)), nil
	case types.String:
		return document.StringValue(string(v)), nil
	case types.Bytes:
		return document.StringValue(string(v)), nil
	case traits.Mapper:
		return o.mapToValue(v)
	case traits.Lister:
		var items []document.Value
		it := v.Iterator()
		for it.HasNext() == types.True {
			item, err := o.toValue(it.Next())
			if err != nil {
				return document.Value{}, err
			}
			items = append(items, item)
		}
		return document.ArrayValue(items...), nil
	}

	// timestamps, durations and anything else print as text
	native := val.Value()
	if v, err := document.FromNative(native); err == nil {
		return v, nil
	}
	return document.StringValue(fmt.Sprint(native)), nil
}

func (o orders) mapToValue(m traits.Mapper) (document.Value, error) {
	vals := map[string]ref.Val{}
	var keys []string
	it := m.Iterator()
	for it.HasNext() == types.True {
		k := it.Next()
		key := fmt.Sprint(k.Value())
		keys = append(keys, key)
		vals[key] = m.Get(k)
	}
	if known, ok := o[signature(keys)]; ok && len(known) == len(vals) {
		keys = known
	} else {
		sort.Strings(keys)
	}

	obj := document.NewObject()
	for _, key := range keys {
		v, err := o.toValue(vals[key])
		if err != nil {
			return document.Value{}, err
		}
		obj.Set(key, v)
	}
	return obj, nil
}

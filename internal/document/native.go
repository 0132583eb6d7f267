package document

import (
	"fmt"
	"reflect"
	"sort"
)

// Native converts the value into plain Go types (map[string]any, []any,
// float64, string, bool, nil) for consumers such as expression engines.
func (v Value) Native() any {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		return v.n
	case String:
		return v.s
	case Array:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Native()
		}
		return out
	case Object:
		out := make(map[string]any, v.Len())
		for _, m := range v.Members() {
			out[m.Key] = m.Value.Native()
		}
		return out
	default:
		return nil
	}
}

// FromNative converts plain Go data back into a Value. Go maps carry no order,
// so their keys are sorted.
func FromNative(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return NullValue(), nil
	case Value:
		return t, nil
	case bool:
		return BoolValue(t), nil
	case string:
		return StringValue(t), nil
	case float64:
		return NumberValue(t), nil
	case float32:
		return NumberValue(float64(t)), nil
	case int:
		return NumberValue(float64(t)), nil
	case int32:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case uint64:
		return NumberValue(float64(t)), nil
	case []byte:
		return StringValue(string(t)), nil
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			item, err := FromNative(e)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = item
		}
		return ArrayValue(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			val, err := FromNative(t[k])
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			obj.Set(k, val)
		}
		return obj, nil
	}
	return fromReflect(reflect.ValueOf(x))
}

// fromReflect handles typed containers such as []string or map[string]int.
func fromReflect(rv reflect.Value) (Value, error) {
	//exhaustive:ignore // only containers and pointers need reflection
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
		return FromNative(items)
	case reflect.Map:
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
		return FromNative(m)
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return NullValue(), nil
		}
		return FromNative(rv.Elem().Interface())
	case reflect.Int8, reflect.Int16, reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return NumberValue(rv.Convert(reflect.TypeOf(float64(0))).Float()), nil
	}
	return Value{}, fmt.Errorf("unsupported type %s", rv.Type())
}

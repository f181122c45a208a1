// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package value

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"time"
)

// UnsupportedTypeError occurs when a Go value has no Value representation.
type UnsupportedTypeError struct {
	Type reflect.Type
}

// Error implements the [builtin.error] interface.
func (e UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported config value type: %v", e.Type)
}

// FromAny converts plain Go data into a Value. String keyed maps are
// converted with their keys sorted since Go maps carry no order.
func FromAny(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v.Clone(), nil
	case *Map:
		return MapOf(v.Clone()), nil
	case string:
		return StringOf(v), nil
	case bool:
		return BoolOf(v), nil
	case int:
		return IntOf(int64(v)), nil
	case int8:
		return IntOf(int64(v)), nil
	case int16:
		return IntOf(int64(v)), nil
	case int32:
		return IntOf(int64(v)), nil
	case int64:
		return IntOf(v), nil
	case uint:
		return fromUint(uint64(v)), nil
	case uint8:
		return IntOf(int64(v)), nil
	case uint16:
		return IntOf(int64(v)), nil
	case uint32:
		return IntOf(int64(v)), nil
	case uint64:
		return fromUint(v), nil
	case float32:
		return FloatOf(float64(v)), nil
	case float64:
		return FloatOf(v), nil
	case time.Time:
		return StringOf(v.Format(time.RFC3339Nano)), nil
	case []any:
		return fromSlice(len(v), func(i int) any { return v[i] })
	case map[string]any:
		return fromStringMap(v)
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, elem := range v {
			m[fmt.Sprint(k)] = elem
		}
		return fromStringMap(m)
	}
	return fromReflect(reflect.ValueOf(x))
}

func fromUint(n uint64) Value {
	if n > math.MaxInt64 {
		return FloatOf(float64(n))
	}
	return IntOf(int64(n))
}

func fromSlice(n int, at func(int) any) (Value, error) {
	list := make([]Value, n)
	for i := range n {
		elem, err := FromAny(at(i))
		if err != nil {
			return Value{}, err
		}
		list[i] = elem
	}
	return ListOf(list...), nil
}

func fromStringMap(src map[string]any) (Value, error) {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	m := NewMap()
	for _, k := range keys {
		elem, err := FromAny(src[k])
		if err != nil {
			return Value{}, err
		}
		m.Set(k, elem)
	}
	return MapOf(m), nil
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return FromAny(rv.Elem().Interface())
	case reflect.String:
		return StringOf(rv.String()), nil
	case reflect.Bool:
		return BoolOf(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntOf(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return FloatOf(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		return fromSlice(rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return fromStringMap(m)
	}
	return Value{}, UnsupportedTypeError{Type: rv.Type()}
}

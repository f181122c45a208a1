// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package value provides the tagged union used to represent parsed configuration data.
package value

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
	KindMap
)

var kindNames = [...]string{
	KindNull:   "null",
	KindString: "string",
	KindInt:    "int",
	KindFloat:  "float",
	KindBool:   "bool",
	KindList:   "list",
	KindMap:    "map",
}

// String implements the [fmt.Stringer] interface.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is a single node of a configuration tree. The zero Value is null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	list []Value
	m    *Map
}

// Null returns the null Value.
func Null() Value {
	return Value{}
}

// StringOf returns a string Value.
func StringOf(s string) Value {
	return Value{kind: KindString, s: s}
}

// IntOf returns an integer Value.
func IntOf(n int64) Value {
	return Value{kind: KindInt, i: n}
}

// FloatOf returns a floating point Value.
func FloatOf(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// BoolOf returns a boolean Value.
func BoolOf(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// ListOf returns a list Value holding the given elements.
func ListOf(vs ...Value) Value {
	if vs == nil {
		vs = []Value{}
	}
	return Value{kind: KindList, list: vs}
}

// MapOf returns a map Value. A nil *Map is treated as an empty map.
func MapOf(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsString returns the underlying string if v is a string.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// AsInt returns the underlying integer if v is an integer.
func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInt
}

// AsFloat returns the underlying float if v is a float.
func (v Value) AsFloat() (float64, bool) {
	return v.f, v.kind == KindFloat
}

// AsBool returns the underlying boolean if v is a boolean.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsList returns the elements of v if v is a list. The returned slice
// is shared with v and must not be modified.
func (v Value) AsList() ([]Value, bool) {
	return v.list, v.kind == KindList
}

// AsMap returns the underlying map if v is a map. The returned map
// is shared with v.
func (v Value) AsMap() (*Map, bool) {
	return v.m, v.kind == KindMap
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		list := make([]Value, len(v.list))
		for i, elem := range v.list {
			list[i] = elem.Clone()
		}
		return Value{kind: KindList, list: list}
	case KindMap:
		return Value{kind: KindMap, m: v.m.Clone()}
	default:
		return v
	}
}

// Equal reports whether v and other hold the same data. Map key order is ignored.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.s == other.s
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindBool:
		return v.b == other.b
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.m.Equal(other.m)
	}
	return false
}

// Any converts v into plain Go values: nil, string, int64, float64, bool,
// []any and map[string]any.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindList:
		list := make([]any, len(v.list))
		for i, elem := range v.list {
			list[i] = elem.Any()
		}
		return list
	case KindMap:
		return v.m.Any()
	default:
		return nil
	}
}

// String implements the [fmt.Stringer] interface by returning [Value.Text].
func (v Value) String() string {
	return v.Text()
}

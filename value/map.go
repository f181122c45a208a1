// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package value

// Map is a string keyed mapping which remembers key insertion order.
type Map struct {
	keys    []string
	entries map[string]Value
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{entries: make(map[string]Value)}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Get returns the value stored under k.
func (m *Map) Get(k string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.entries[k]
	return v, ok
}

// Set stores v under k. Setting an existing key keeps its original position.
func (m *Map) Set(k string, v Value) {
	if m.entries == nil {
		m.entries = make(map[string]Value)
	}
	if _, ok := m.entries[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.entries[k] = v
}

// Range calls f for every entry in insertion order until f returns false.
func (m *Map) Range(f func(string, Value) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !f(k, m.entries[k]) {
			return
		}
	}
}

// Lookup walks the map one segment at a time. It stops with false as soon as
// a segment is missing or an intermediate node is not a map. An empty path is
// never found.
func (m *Map) Lookup(path ...string) (Value, bool) {
	if len(path) == 0 {
		return Value{}, false
	}

	cur := m
	for i, seg := range path {
		v, ok := cur.Get(seg)
		if !ok {
			return Value{}, false
		}
		if i == len(path)-1 {
			return v, true
		}
		cur, ok = v.AsMap()
		if !ok {
			return Value{}, false
		}
	}
	return Value{}, false
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	c := NewMap()
	m.Range(func(k string, v Value) bool {
		c.Set(k, v.Clone())
		return true
	})
	return c
}

// Equal reports whether both maps hold equal values under the same keys,
// regardless of insertion order.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	equal := true
	m.Range(func(k string, v Value) bool {
		ov, ok := other.Get(k)
		equal = ok && v.Equal(ov)
		return equal
	})
	return equal
}

// Any converts m into a map[string]any.
func (m *Map) Any() map[string]any {
	out := make(map[string]any, m.Len())
	m.Range(func(k string, v Value) bool {
		out[k] = v.Any()
		return true
	})
	return out
}

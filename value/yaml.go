// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package value

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const mergeTag = "!!merge"

// RecursiveAliasError occurs when a YAML alias refers to a node containing itself.
type RecursiveAliasError struct {
	Anchor string
	Line   int
}

// Error implements the [builtin.error] interface.
func (e RecursiveAliasError) Error() string {
	return fmt.Sprintf("yaml alias *%s at line %d refers to a node containing itself", e.Anchor, e.Line)
}

// YAMLDocuments decodes every document of the YAML stream read from r. An
// empty stream yields no documents.
func YAMLDocuments(r io.Reader) ([]Value, error) {
	dec := yaml.NewDecoder(r)

	var docs []Value
	for {
		var n yaml.Node
		err := dec.Decode(&n)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}

		v, err := FromYAMLNode(&n)
		if err != nil {
			return nil, err
		}
		docs = append(docs, v)
	}
}

// FromYAMLNode converts a parsed YAML node into a Value. Scalars are typed
// following the YAML literal rules, aliases are expanded and "<<" merge keys
// contribute every key which is not set explicitly.
func FromYAMLNode(n *yaml.Node) (Value, error) {
	d := &nodeDecoder{active: make(map[*yaml.Node]struct{})}
	return d.decode(n)
}

type nodeDecoder struct {
	active map[*yaml.Node]struct{}
}

func (d *nodeDecoder) decode(n *yaml.Node) (Value, error) {
	if n == nil {
		return Null(), nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return d.decode(n.Content[0])
	case yaml.AliasNode:
		return d.alias(n)
	case yaml.SequenceNode:
		list := make([]Value, len(n.Content))
		for i, c := range n.Content {
			v, err := d.decode(c)
			if err != nil {
				return Value{}, err
			}
			list[i] = v
		}
		return ListOf(list...), nil
	case yaml.MappingNode:
		m, err := d.mapping(n)
		if err != nil {
			return Value{}, err
		}
		return MapOf(m), nil
	case yaml.ScalarNode:
		var x any
		err := n.Decode(&x)
		if err != nil {
			return Value{}, err
		}
		return FromAny(x)
	}
	return Null(), nil
}

func (d *nodeDecoder) alias(n *yaml.Node) (Value, error) {
	if _, ok := d.active[n.Alias]; ok {
		return Value{}, RecursiveAliasError{Anchor: n.Value, Line: n.Line}
	}
	d.active[n.Alias] = struct{}{}
	defer delete(d.active, n.Alias)

	return d.decode(n.Alias)
}

func (d *nodeDecoder) mapping(n *yaml.Node) (*Map, error) {
	d.active[n] = struct{}{}
	defer delete(d.active, n)

	m := NewMap()
	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		kn, vn := n.Content[i], n.Content[i+1]
		if kn.Kind == yaml.ScalarNode && kn.ShortTag() == mergeTag {
			merges = append(merges, vn)
			continue
		}

		k, err := d.key(kn)
		if err != nil {
			return nil, err
		}
		v, err := d.decode(vn)
		if err != nil {
			return nil, err
		}
		m.Set(k, v)
	}

	for _, mn := range merges {
		err := d.merge(m, mn)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (d *nodeDecoder) key(n *yaml.Node) (string, error) {
	if n.Kind == yaml.ScalarNode {
		return n.Value, nil
	}
	v, err := d.decode(n)
	if err != nil {
		return "", err
	}
	return v.Text(), nil
}

// merge adds the keys of the merge source mn to m unless they are already set.
func (d *nodeDecoder) merge(m *Map, mn *yaml.Node) error {
	sources := []*yaml.Node{mn}
	if mn.Kind == yaml.SequenceNode {
		sources = mn.Content
	}

	for _, src := range sources {
		v, err := d.decode(src)
		if err != nil {
			return err
		}
		sm, ok := v.AsMap()
		if !ok {
			return fmt.Errorf("yaml merge key at line %d must refer to a mapping", src.Line)
		}
		sm.Range(func(k string, v Value) bool {
			if _, exists := m.Get(k); !exists {
				m.Set(k, v)
			}
			return true
		})
	}
	return nil
}

// MarshalYAML implements the [yaml.Marshaler] interface.
func (v Value) MarshalYAML() (any, error) {
	return v.node()
}

// MarshalYAML implements the [yaml.Marshaler] interface.
func (m *Map) MarshalYAML() (any, error) {
	return MapOf(m).node()
}

func (v Value) node() (*yaml.Node, error) {
	switch v.kind {
	case KindList:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, elem := range v.list {
			c, err := elem.node()
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	case KindMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		v.m.Range(func(k string, elem Value) bool {
			kn := &yaml.Node{}
			err = kn.Encode(k)
			if err != nil {
				return false
			}

			var vn *yaml.Node
			vn, err = elem.node()
			if err != nil {
				return false
			}
			n.Content = append(n.Content, kn, vn)
			return true
		})
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		n := &yaml.Node{}
		err := n.Encode(v.Any())
		if err != nil {
			return nil, err
		}
		return n, nil
	}
}

// ParseScalar types s using the YAML literal rules, e.g. "true" becomes a
// bool and "234" an integer. Text which is empty or which does not parse
// as a single scalar is returned as a string.
func ParseScalar(s string) Value {
	if strings.TrimSpace(s) == "" {
		return StringOf(s)
	}

	var x any
	err := yaml.Unmarshal([]byte(s), &x)
	if err != nil {
		return StringOf(s)
	}

	v, err := FromAny(x)
	if err != nil {
		return StringOf(s)
	}
	switch v.Kind() {
	case KindList, KindMap:
		return StringOf(s)
	}
	return v
}

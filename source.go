// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bindings

import (
	"bytes"
	"io"

	"github.com/z5labs/bindings/internal/try"
	"github.com/z5labs/bindings/value"
)

// Store represents anything config maps can be layered onto.
type Store interface {
	Merge(*value.Map)
}

// Source defines valid config sources as those who can
// serialize themselves into one or more config maps.
type Source interface {
	Apply(Store) error
}

// SourceFunc is a functional implementation of the [Source] interface.
type SourceFunc func(Store) error

// Apply implements the [Source] interface.
func (f SourceFunc) Apply(store Store) error {
	return f(store)
}

// layers is a Store which only records maps so they can be merged later.
type layers []*value.Map

func (l *layers) Merge(m *value.Map) {
	*l = append(*l, m)
}

func (l layers) Apply(store Store) error {
	for _, m := range l {
		store.Merge(m)
	}
	return nil
}

// Dict is an ordinary map[string]any but implements the [Source] interface.
type Dict map[string]any

// Apply implements the [Source] interface.
func (d Dict) Apply(store Store) error {
	v, err := value.FromAny(map[string]any(d))
	if err != nil {
		return err
	}
	m, _ := v.AsMap()
	store.Merge(m)
	return nil
}

// Yaml represents a Source where its underlying format is YAML.
// Every document of the stream is layered in order.
type Yaml struct {
	r io.Reader
}

// FromYaml returns a source which will apply its config
// from YAML values parsed from the given io.Reader.
func FromYaml(r io.Reader) Yaml {
	return Yaml{r: r}
}

// Apply implements the [Source] interface.
func (src Yaml) Apply(store Store) (err error) {
	defer try.Close(&err, src.r)

	b, err := io.ReadAll(src.r)
	if err != nil {
		return err
	}

	docs, err := value.YAMLDocuments(bytes.NewReader(b))
	if err != nil {
		return InvalidYamlError{Cause: err}
	}

	maps := make([]*value.Map, 0, len(docs))
	for _, doc := range docs {
		m, err := rootMap(doc)
		if err != nil {
			return err
		}
		maps = append(maps, m)
	}
	return layers(maps).Apply(store)
}

// Json represents a Source where its underlying format is JSON.
type Json struct {
	r io.Reader
}

// FromJson returns a source which will apply its config
// from JSON values parsed from the given io.Reader.
func FromJson(r io.Reader) Json {
	return Json{r: r}
}

// Apply implements the [Source] interface.
func (src Json) Apply(store Store) (err error) {
	defer try.Close(&err, src.r)

	b, err := io.ReadAll(src.r)
	if err != nil {
		return err
	}

	doc, err := value.DecodeJSON(bytes.NewReader(b))
	if err != nil {
		return InvalidJsonError{Cause: err}
	}

	m, err := rootMap(doc)
	if err != nil {
		return err
	}
	store.Merge(m)
	return nil
}

// rootMap treats a null document as an empty map.
func rootMap(doc value.Value) (*value.Map, error) {
	if doc.IsNull() {
		return value.NewMap(), nil
	}
	m, ok := doc.AsMap()
	if !ok {
		return nil, NotMapError{Kind: doc.Kind()}
	}
	return m, nil
}

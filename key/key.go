// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package key provides types for addressing nodes of a configuration tree.
package key

import (
	"strings"
)

// Separator is the delimiter between segments of a dotted path.
const Separator = "."

// Keyer is a common interface all value key types must implement.
type Keyer interface {
	Key() string
}

// Chain represents nested keys.
type Chain []Keyer

// Key implements the [Keyer] interface.
func (k Chain) Key() string {
	ss := make([]string, len(k))
	for i := range len(k) {
		ss[i] = k[i].Key()
	}
	return strings.Join(ss, Separator)
}

// Names returns the segment names of the chain, flattening any nested chains.
func (k Chain) Names() []string {
	names := make([]string, 0, len(k))
	for _, kr := range k {
		switch x := kr.(type) {
		case Chain:
			names = append(names, x.Names()...)
		default:
			names = append(names, x.Key())
		}
	}
	return names
}

// Name represents a single key. Name can be used other keys.
type Name string

// Key implements the [Keyer] interface.
func (k Name) Key() string {
	return string(k)
}

// Parse splits a dotted path, e.g. "a.b.c", into a Chain.
// An empty path results in an empty Chain.
func Parse(path string) Chain {
	if path == "" {
		return Chain{}
	}
	parts := strings.Split(path, Separator)
	chain := make(Chain, len(parts))
	for i, p := range parts {
		chain[i] = Name(p)
	}
	return chain
}

// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package bindings layers configuration from multiple sources into a single
// tree and resolves placeholders which reference other configuration values,
// environment variables or fallback defaults.
//
// # Layering
//
// Every import is deep merged on top of the previous ones: maps are merged
// key by key while any other value, lists included, is replaced wholesale.
//
//	b := bindings.New()
//	err := b.ImportPath("defaults.yaml")
//	err = b.ImportPath("production.yaml")
//
// # Placeholders
//
// String values may contain "${path}" or "${path:default}" expressions. A
// placeholder is looked up as a dotted path in the tree, then as a single
// name in the [Environment], then falls back to its default. Placeholders
// which cannot be resolved are kept verbatim since a later import may still
// provide their target.
//
// A string consisting of a single placeholder resolves to the referenced
// value with its type intact, e.g. a bool or a list. Placeholders embedded
// in other text are rendered as text.
//
// The default is everything after the first colon up to the matching
// closing brace. It is used as is: placeholders inside it are not expanded
// and there is no escaping.
//
//	v, err := b.Get("server.port")
//	s, err := b.Replace("http://${server.host}:${server.port}")
package bindings

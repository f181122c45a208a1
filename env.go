// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bindings

import (
	"os"
	"strings"
)

// Environment provides the flat namespace placeholders fall back to when
// their path is not present in the binding tree.
type Environment interface {
	Lookup(name string) (string, bool)
}

// EnvFunc is a functional implementation of the [Environment] interface.
type EnvFunc func(string) (string, bool)

// Lookup implements the [Environment] interface.
func (f EnvFunc) Lookup(name string) (string, bool) {
	return f(name)
}

// OSEnv returns an Environment backed by the environment variables
// of the current process.
func OSEnv() Environment {
	return EnvFunc(os.LookupEnv)
}

// EnvMap is an Environment backed by a fixed set of names.
type EnvMap map[string]string

// Lookup implements the [Environment] interface.
func (m EnvMap) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Environ builds an EnvMap from "NAME=value" pairs, as returned by [os.Environ].
// Pairs without a "=" are skipped.
func Environ(pairs []string) EnvMap {
	m := make(EnvMap, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		m[k] = v
	}
	return m
}

type noEnv struct{}

func (noEnv) Lookup(string) (string, bool) {
	return "", false
}

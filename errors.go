// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bindings

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/z5labs/bindings/value"
)

// KeyNotFoundError occurs when a requested path does not designate
// any node of the binding tree.
type KeyNotFoundError struct {
	Path string
}

// Error implements the [builtin.error] interface.
func (e KeyNotFoundError) Error() string {
	return fmt.Sprintf("key not found: %q", e.Path)
}

// CyclicReferenceError occurs when resolving a placeholder leads back
// to a path which is still being resolved.
type CyclicReferenceError struct {
	Path string

	// Chain lists the paths in the order they were entered, ending with Path.
	Chain []string
}

// Error implements the [builtin.error] interface.
func (e CyclicReferenceError) Error() string {
	return fmt.Sprintf("cyclic reference to %q: %s", e.Path, strings.Join(e.Chain, " -> "))
}

// NotMapError occurs when imported config data is not a map at its root.
type NotMapError struct {
	Kind value.Kind
}

// Error implements the [builtin.error] interface.
func (e NotMapError) Error() string {
	return fmt.Sprintf("config root must be a map but got %s", e.Kind)
}

// EmptyKeyChainError occurs when setting a value on an empty path.
type EmptyKeyChainError struct {
	Value any
}

// Error implements the [builtin.error] interface.
func (e EmptyKeyChainError) Error() string {
	return fmt.Sprintf("attempted to set value to an empty key chain: %v", e.Value)
}

// InvalidYamlError occurs if the underlying io.Reader contains invalid YAML.
type InvalidYamlError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e InvalidYamlError) Error() string {
	return fmt.Sprintf("invalid yaml: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e InvalidYamlError) Unwrap() error {
	return e.Cause
}

// InvalidJsonError occurs if the underlying io.Reader contains invalid JSON.
type InvalidJsonError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e InvalidJsonError) Error() string {
	return fmt.Sprintf("invalid json: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e InvalidJsonError) Unwrap() error {
	return e.Cause
}

// TypeCoercionError occurs when attempting to unmarshal a config
// value to a struct field whose type does not match the config
// value type, up to, coercion.
type TypeCoercionError struct {
	from  reflect.Value
	to    reflect.Value
	Cause error
}

// Error implements the [builtin.error] interface.
func (e TypeCoercionError) Error() string {
	return fmt.Sprintf("failed to coerce value from %s to %s: %s", e.from.Type(), e.to.Type(), e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e TypeCoercionError) Unwrap() error {
	return e.Cause
}

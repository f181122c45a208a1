// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cli

import "fmt"

// UnsupportedFormatError is returned for an unknown --output value.
type UnsupportedFormatError struct {
	Format string
}

// Error implements the [builtin.error] interface.
func (e UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported output format: %q", e.Format)
}

// UnknownExporterError is returned for an unknown --trace value.
type UnknownExporterError struct {
	Name string
}

// Error implements the [builtin.error] interface.
func (e UnknownExporterError) Error() string {
	return fmt.Sprintf("unknown span exporter: %q", e.Name)
}

// InvalidOverrideError is returned for a --set value which is not path=value.
type InvalidOverrideError struct {
	Arg string
}

// Error implements the [builtin.error] interface.
func (e InvalidOverrideError) Error() string {
	return fmt.Sprintf("invalid override, expected path=value: %q", e.Arg)
}

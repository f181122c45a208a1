// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/z5labs/bindings/value"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"
)

func getCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "get PATH...",
		Short: "Print the resolved values at the given dotted paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, span := otel.Tracer("bindings").Start(cmd.Context(), "get", trace.WithAttributes(
				attribute.StringSlice("paths", args),
			))
			defer span.End()

			for _, path := range args {
				v, err := s.b.Get(path)
				if err != nil {
					span.RecordError(err)
					return err
				}
				err = s.write(cmd.OutOrStdout(), v)
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func replaceCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "replace TEMPLATE",
		Short: "Expand every placeholder of the template, or of stdin if TEMPLATE is -",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, span := otel.Tracer("bindings").Start(cmd.Context(), "replace")
			defer span.End()

			tmpl := args[0]
			fromStdin := tmpl == "-"
			if fromStdin {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				tmpl = string(b)
			}

			out, err := s.b.Replace(tmpl)
			if err != nil {
				span.RecordError(err)
				return err
			}
			if fromStdin {
				_, err = io.WriteString(cmd.OutOrStdout(), out)
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func dumpCmd(s *session) *cobra.Command {
	var resolved bool
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the whole merged tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, span := otel.Tracer("bindings").Start(cmd.Context(), "dump", trace.WithAttributes(
				attribute.Bool("resolved", resolved),
			))
			defer span.End()

			m := s.b.Map()
			if resolved {
				var err error
				m, err = s.b.Resolved()
				if err != nil {
					span.RecordError(err)
					return err
				}
			}
			return s.encode(cmd.OutOrStdout(), value.MapOf(m))
		},
	}
	cmd.Flags().BoolVar(&resolved, "resolved", false, "resolve every placeholder before printing")
	return cmd
}

// write prints scalars as plain text and lists and maps in the output format.
func (s *session) write(w io.Writer, v value.Value) error {
	switch v.Kind() {
	case value.KindList, value.KindMap:
		return s.encode(w, v)
	default:
		_, err := fmt.Fprintln(w, v.Text())
		return err
	}
}

func (s *session) encode(w io.Writer, v value.Value) error {
	if s.output == "json" {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}

	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	err := enc.Encode(v)
	if err != nil {
		return err
	}
	err = enc.Close()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, sb.String())
	return err
}

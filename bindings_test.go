// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bindings

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/z5labs/bindings/value"

	"github.com/stretchr/testify/require"
)

const sampleYaml = `
a: A
b: 0
c:
  - A
  - B
d:
  child:
    grandchild: x
e:
`

var sampleMap = map[string]any{
	"a": "A",
	"b": int64(0),
	"c": []any{"A", "B"},
	"d": map[string]any{"child": map[string]any{"grandchild": "x"}},
	"e": nil,
}

func newBindings(t *testing.T, opts ...Option) *Bindings {
	t.Helper()
	return New(append([]Option{WithEnvironment(EnvMap{})}, opts...)...)
}

func mustGet(t *testing.T, b *Bindings, path string) value.Value {
	t.Helper()
	v, err := b.Get(path)
	require.NoError(t, err)
	return v
}

func TestBindings_Import(t *testing.T) {
	t.Run("will load", func(t *testing.T) {
		t.Run("a dict", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportDict(map[string]any{
				"a": "A",
				"b": 0,
				"c": []any{"A", "B"},
				"d": map[string]any{"child": map[string]any{"grandchild": "x"}},
				"e": nil,
			}))
			require.Equal(t, sampleMap, b.Map().Any())
		})

		t.Run("a string", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportString(sampleYaml))
			require.Equal(t, sampleMap, b.Map().Any())
		})

		t.Run("a path", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(sampleYaml), 0o600))

			b := newBindings(t)
			require.NoError(t, b.ImportPath(path))
			require.Equal(t, sampleMap, b.Map().Any())
		})

		t.Run("a path from the configured fs.FS", func(t *testing.T) {
			fsys := fstest.MapFS{
				"config.yaml": &fstest.MapFile{Data: []byte(sampleYaml)},
			}

			b := newBindings(t, WithFS(fsys))
			require.NoError(t, b.ImportPath("config.yaml"))
			require.Equal(t, sampleMap, b.Map().Any())
		})

		t.Run("every document of a yaml stream in order", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportString("a: A\nb: B\n---\nb: X\n"))
			require.Equal(t, map[string]any{"a": "A", "b": "X"}, b.Map().Any())
		})

		t.Run("an empty string as an empty map", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportString(""))
			require.Equal(t, 0, b.Map().Len())
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the yaml is malformed", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportDict(map[string]any{"a": "A"}))

			err := b.ImportString("a: [B\n")

			var yerr InvalidYamlError
			require.ErrorAs(t, err, &yerr)
			require.NotEmpty(t, yerr.Error())
			require.Equal(t, map[string]any{"a": "A"}, b.Map().Any())
		})

		t.Run("if the root is not a map", func(t *testing.T) {
			b := newBindings(t)
			err := b.ImportString("- a\n- b\n")

			var nerr NotMapError
			require.ErrorAs(t, err, &nerr)
			require.Equal(t, value.KindList, nerr.Kind)
		})

		t.Run("if any document of a stream is not a map without merging the others", func(t *testing.T) {
			b := newBindings(t)
			err := b.ImportString("a: A\n---\nplain\n")

			var nerr NotMapError
			require.ErrorAs(t, err, &nerr)
			require.Equal(t, 0, b.Map().Len())
		})

		t.Run("if the file does not exist", func(t *testing.T) {
			b := newBindings(t, WithFS(fstest.MapFS{}))
			err := b.ImportPath("missing.yaml")
			require.ErrorIs(t, err, os.ErrNotExist)
		})

		t.Run("if the dict holds unsupported values", func(t *testing.T) {
			b := newBindings(t)
			err := b.ImportDict(map[string]any{"f": func() {}})

			var uerr value.UnsupportedTypeError
			require.ErrorAs(t, err, &uerr)
		})
	})
}

func TestBindings_ImportSources(t *testing.T) {
	t.Run("will not merge anything", func(t *testing.T) {
		t.Run("if a later source fails", func(t *testing.T) {
			b := newBindings(t)
			err := b.ImportSources(
				Dict{"a": "A"},
				FromYaml(strings.NewReader("{")),
			)
			require.Error(t, err)
			require.Equal(t, 0, b.Map().Len())
		})
	})
}

func TestBindings_ImportPaths(t *testing.T) {
	fsys := fstest.MapFS{
		"base.yaml":     &fstest.MapFile{Data: []byte("parent:\n  a: A\n  b: B\n")},
		"override.yaml": &fstest.MapFile{Data: []byte("parent:\n  b: Y\n  z: Z\n")},
		"bad.yaml":      &fstest.MapFile{Data: []byte("parent: [\n")},
		"multi.yaml":    &fstest.MapFile{Data: []byte("parent:\n  a: M1\n---\nparent:\n  a: M2\n  m: M\n")},
	}

	t.Run("will merge files in the given order", func(t *testing.T) {
		b := newBindings(t, WithFS(fsys))
		err := b.ImportPaths(context.Background(), "base.yaml", "override.yaml")
		require.NoError(t, err)
		require.Equal(t, map[string]any{
			"parent": map[string]any{"a": "A", "b": "Y", "z": "Z"},
		}, b.Map().Any())
	})

	t.Run("will merge every document of every file in order", func(t *testing.T) {
		b := newBindings(t, WithFS(fsys))
		err := b.ImportPaths(context.Background(), "base.yaml", "multi.yaml", "override.yaml")
		require.NoError(t, err)
		require.Equal(t, map[string]any{
			"parent": map[string]any{"a": "M2", "b": "Y", "m": "M", "z": "Z"},
		}, b.Map().Any())
	})

	t.Run("will not merge anything", func(t *testing.T) {
		t.Run("if any file fails to parse", func(t *testing.T) {
			b := newBindings(t, WithFS(fsys))
			err := b.ImportPaths(context.Background(), "base.yaml", "bad.yaml")

			var yerr InvalidYamlError
			require.ErrorAs(t, err, &yerr)
			require.Equal(t, 0, b.Map().Len())
		})

		t.Run("if the context is already cancelled", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			b := newBindings(t, WithFS(fsys))
			err := b.ImportPaths(ctx, "base.yaml")
			require.ErrorIs(t, err, context.Canceled)
			require.Equal(t, 0, b.Map().Len())
		})
	})
}

func TestBindings_Merge(t *testing.T) {
	t.Run("will union disjoint keys", func(t *testing.T) {
		b := newBindings(t)
		require.NoError(t, b.ImportDict(map[string]any{"a": "A"}))
		require.NoError(t, b.ImportDict(map[string]any{"b": "B"}))
		require.Equal(t, map[string]any{"a": "A", "b": "B"}, b.Map().Any())
	})

	t.Run("will union child keys", func(t *testing.T) {
		b := newBindings(t)
		require.NoError(t, b.ImportDict(map[string]any{
			"parent1": map[string]any{"a": "A"},
			"parent2": map[string]any{"x": "X"},
		}))
		require.NoError(t, b.ImportDict(map[string]any{
			"parent1": map[string]any{"b": "B"},
		}))
		require.Equal(t, map[string]any{
			"parent1": map[string]any{"a": "A", "b": "B"},
			"parent2": map[string]any{"x": "X"},
		}, b.Map().Any())
	})

	t.Run("will override leaves and union branches", func(t *testing.T) {
		b := newBindings(t)
		require.NoError(t, b.ImportDict(map[string]any{
			"parent": map[string]any{"a": "A", "b": "B", "c": "C"},
		}))
		require.NoError(t, b.ImportDict(map[string]any{
			"parent": map[string]any{"a": "X", "b": "Y", "z": "Z"},
		}))
		require.Equal(t, map[string]any{
			"parent": map[string]any{"a": "X", "b": "Y", "z": "Z", "c": "C"},
		}, b.Map().Any())
	})

	t.Run("will be idempotent", func(t *testing.T) {
		once := newBindings(t)
		require.NoError(t, once.ImportString(sampleYaml))

		twice := newBindings(t)
		require.NoError(t, twice.ImportString(sampleYaml))
		require.NoError(t, twice.ImportString(sampleYaml))

		require.True(t, once.Map().Equal(twice.Map()))
	})
}

func TestBindings_Map(t *testing.T) {
	t.Run("will return a copy", func(t *testing.T) {
		b := newBindings(t)
		require.NoError(t, b.ImportDict(map[string]any{"parent": map[string]any{"a": "A"}}))

		m := b.Map()
		parent, _ := m.Get("parent")
		pm, _ := parent.AsMap()
		pm.Set("a", value.StringOf("changed"))

		require.Equal(t, value.StringOf("A"), mustGet(t, b, "parent.a"))
	})

	t.Run("will keep placeholders literal", func(t *testing.T) {
		b := newBindings(t)
		require.NoError(t, b.ImportDict(map[string]any{"a": "A", "test": "${a}"}))

		v, ok := b.Map().Get("test")
		require.True(t, ok)
		require.Equal(t, value.StringOf("${a}"), v)
	})
}

func TestBindings_Get(t *testing.T) {
	t.Run("will resolve", func(t *testing.T) {
		t.Run("a composite value", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportDict(map[string]any{"a": "A", "b": "B"}))
			require.NoError(t, b.ImportString("test: ${a}/${b}"))
			require.Equal(t, value.StringOf("A/B"), mustGet(t, b, "test"))
		})

		t.Run("a default", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportDict(map[string]any{"field": "${injected.value:HELLO}"}))
			require.Equal(t, value.StringOf("HELLO"), mustGet(t, b, "field"))
		})

		t.Run("an environment variable", func(t *testing.T) {
			b := newBindings(t, WithEnvironment(EnvMap{"TEST_VARIABLE": "TEST_VALUE"}))
			require.NoError(t, b.ImportDict(map[string]any{"field": "${TEST_VARIABLE}"}))
			require.Equal(t, value.StringOf("TEST_VALUE"), mustGet(t, b, "field"))
		})

		t.Run("a process environment variable", func(t *testing.T) {
			t.Setenv("TEST_VARIABLE", "TEST_VALUE")

			b := New()
			require.NoError(t, b.ImportDict(map[string]any{"field": "${TEST_VARIABLE}"}))
			require.Equal(t, value.StringOf("TEST_VALUE"), mustGet(t, b, "field"))
		})

		t.Run("a dotted environment name as a single name", func(t *testing.T) {
			b := newBindings(t, WithEnvironment(EnvMap{"injected.value": "FROM_ENV"}))
			require.NoError(t, b.ImportDict(map[string]any{"field": "${injected.value}"}))
			require.Equal(t, value.StringOf("FROM_ENV"), mustGet(t, b, "field"))
		})

		t.Run("the tree before the environment", func(t *testing.T) {
			b := newBindings(t, WithEnvironment(EnvMap{"a": "ENV"}))
			require.NoError(t, b.ImportDict(map[string]any{"a": "TREE", "field": "${a:DEFAULT}"}))
			require.Equal(t, value.StringOf("TREE"), mustGet(t, b, "field"))
		})

		t.Run("the environment before the default", func(t *testing.T) {
			b := newBindings(t, WithEnvironment(EnvMap{"a": "ENV"}))
			require.NoError(t, b.ImportDict(map[string]any{"field": "${a:DEFAULT}"}))
			require.Equal(t, value.StringOf("ENV"), mustGet(t, b, "field"))
		})

		t.Run("transitively after a later import", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportDict(map[string]any{"field": "${injected.value}"}))
			require.NoError(t, b.ImportDict(map[string]any{"injected": map[string]any{"value": "HELLO"}}))
			require.Equal(t, value.StringOf("HELLO"), mustGet(t, b, "field"))
		})

		t.Run("transitively through an indirect reference", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportDict(map[string]any{"field": "${injected.value}", "found": "FOUND"}))
			require.NoError(t, b.ImportDict(map[string]any{"injected": map[string]any{"value": "${found}"}}))
			require.Equal(t, value.StringOf("FOUND"), mustGet(t, b, "field"))
		})

		t.Run("a default literally without expanding it", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportDict(map[string]any{"a": "A", "field": "${missing:${a}}"}))
			require.Equal(t, value.StringOf("${a}"), mustGet(t, b, "field"))
		})

		t.Run("the same path twice in one value", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportDict(map[string]any{"a": "A", "field": "${a}${a}"}))
			require.Equal(t, value.StringOf("AA"), mustGet(t, b, "field"))
		})

		t.Run("nested maps deeply", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportString(`
host: localhost
server:
  url: http://${host}:${server.port}
  port: 8080
  tags: ["${host}", plain]
`))
			v := mustGet(t, b, "server")
			require.Equal(t, map[string]any{
				"url":  "http://localhost:8080",
				"port": int64(8080),
				"tags": []any{"localhost", "plain"},
			}, v.Any())
		})
	})

	t.Run("will leave a placeholder unresolved", func(t *testing.T) {
		t.Run("if its target does not exist", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportDict(map[string]any{"field": "${injected.value}"}))
			require.Equal(t, value.StringOf("${injected.value}"), mustGet(t, b, "field"))
		})

		t.Run("if only the head of its target exists", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportDict(map[string]any{"field": "${injected.value}", "injected": map[string]any{}}))
			require.Equal(t, value.StringOf("${injected.value}"), mustGet(t, b, "field"))
		})

		t.Run("if it is embedded in other text", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportDict(map[string]any{"a": "A", "field": "${a} and ${missing}"}))
			require.Equal(t, value.StringOf("A and ${missing}"), mustGet(t, b, "field"))
		})
	})

	t.Run("will preserve the type of a bare placeholder", func(t *testing.T) {
		t.Run("for booleans", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportString("t: true\nf: false\nindirect: ${f}"))
			require.Equal(t, value.BoolOf(true), mustGet(t, b, "t"))
			require.Equal(t, value.BoolOf(false), mustGet(t, b, "f"))
			require.Equal(t, value.BoolOf(false), mustGet(t, b, "indirect"))
		})

		t.Run("for numbers", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportString("scalar: 123\nneg: -321\nindirect: ${scalar}"))
			require.Equal(t, value.IntOf(123), mustGet(t, b, "scalar"))
			require.Equal(t, value.IntOf(-321), mustGet(t, b, "neg"))
			require.Equal(t, value.IntOf(123), mustGet(t, b, "indirect"))
		})

		t.Run("for null", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportString("nothing:\nindirect: ${nothing}"))
			require.True(t, mustGet(t, b, "indirect").IsNull())
		})

		t.Run("for lists", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportString("root:\n - elem: 'first'\n - elem: 2\ncopy: ${root}"))

			root := mustGet(t, b, "root")
			require.Equal(t, []any{
				map[string]any{"elem": "first"},
				map[string]any{"elem": int64(2)},
			}, root.Any())
			require.True(t, root.Equal(mustGet(t, b, "copy")))
		})

		t.Run("for maps", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportString("src:\n  a: ${other}\nother: 1\ncopy: ${src}"))
			require.Equal(t, map[string]any{"a": int64(1)}, mustGet(t, b, "copy").Any())
		})
	})

	t.Run("will stringify resolved values embedded in text", func(t *testing.T) {
		b := newBindings(t)
		require.NoError(t, b.ImportString("f: false\nn: 7\nfield: ${f}-${n}"))
		require.Equal(t, value.StringOf("false-7"), mustGet(t, b, "field"))
	})

	t.Run("will keep defaults as strings", func(t *testing.T) {
		t.Run("by default", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportString("def: ${unknown:true}\nnum: ${unknown:234}"))
			require.Equal(t, value.StringOf("true"), mustGet(t, b, "def"))
			require.Equal(t, value.StringOf("234"), mustGet(t, b, "num"))
		})
	})

	t.Run("will type defaults of bare placeholders", func(t *testing.T) {
		t.Run("if TypedDefaults is set", func(t *testing.T) {
			b := newBindings(t, TypedDefaults())
			require.NoError(t, b.ImportString("def: ${unknown:true}\nnum: ${unknown:234}\ntext: x${unknown:234}\nword: ${unknown:HELLO}"))
			require.Equal(t, value.BoolOf(true), mustGet(t, b, "def"))
			require.Equal(t, value.IntOf(234), mustGet(t, b, "num"))
			require.Equal(t, value.StringOf("x234"), mustGet(t, b, "text"))
			require.Equal(t, value.StringOf("HELLO"), mustGet(t, b, "word"))
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the key is not found", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportDict(map[string]any{"field": "${injected.value}", "injected": map[string]any{}}))

			_, err := b.Get("unknown")

			var kerr KeyNotFoundError
			require.ErrorAs(t, err, &kerr)
			require.Equal(t, "unknown", kerr.Path)
			require.NotEmpty(t, kerr.Error())
		})

		t.Run("if an intermediate node is not a map", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportDict(map[string]any{"a": "A"}))

			_, err := b.Get("a.b")
			require.ErrorAs(t, err, new(KeyNotFoundError))
		})

		t.Run("if there is a cyclic reference", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportDict(map[string]any{
				"field":    "${injected.value}",
				"injected": map[string]any{"value": "${field}"},
			}))

			_, err := b.Get("field")

			var cerr CyclicReferenceError
			require.ErrorAs(t, err, &cerr)
			require.Equal(t, "field", cerr.Path)
			require.Equal(t, []string{"field", "injected.value", "field"}, cerr.Chain)
		})

		t.Run("if a value references itself", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportDict(map[string]any{"self": "x${self}"}))

			_, err := b.Get("self")
			require.ErrorAs(t, err, new(CyclicReferenceError))
		})

		t.Run("if a map references its parent", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportDict(map[string]any{
				"parent": map[string]any{"child": "${parent}"},
			}))

			_, err := b.Get("parent")
			require.ErrorAs(t, err, new(CyclicReferenceError))
		})
	})
}

func TestBindings_Replace(t *testing.T) {
	t.Run("will replace placeholders in free text", func(t *testing.T) {
		b := newBindings(t)
		require.NoError(t, b.ImportDict(map[string]any{"a": "A", "container": map[string]any{"b": "B"}}))

		s, err := b.Replace("This is ${a} ${container.b} or ${c:C}")
		require.NoError(t, err)
		require.Equal(t, "This is A B or C", s)
	})

	t.Run("will render a single placeholder as text", func(t *testing.T) {
		b := newBindings(t)
		require.NoError(t, b.ImportString("n: 123\nlist: [a, b]"))

		s, err := b.Replace("${n}")
		require.NoError(t, err)
		require.Equal(t, "123", s)

		s, err = b.Replace("${list}")
		require.NoError(t, err)
		require.Equal(t, "[a, b]", s)
	})

	t.Run("will keep unresolved placeholders and unterminated text", func(t *testing.T) {
		b := newBindings(t)

		s, err := b.Replace("${missing} costs $5 ${oops")
		require.NoError(t, err)
		require.Equal(t, "${missing} costs $5 ${oops", s)
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if there is a cyclic reference", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportDict(map[string]any{"a": "${b}", "b": "${a}"}))

			_, err := b.Replace("value: ${a}")
			require.ErrorAs(t, err, new(CyclicReferenceError))
		})
	})
}

func TestBindings_Set(t *testing.T) {
	t.Run("will create intermediate maps", func(t *testing.T) {
		b := newBindings(t)
		require.NoError(t, b.Set("a.b.c", 1))
		require.Equal(t, value.IntOf(1), mustGet(t, b, "a.b.c"))
	})

	t.Run("will keep sibling keys", func(t *testing.T) {
		b := newBindings(t)
		require.NoError(t, b.ImportDict(map[string]any{"a": map[string]any{"x": "X"}}))
		require.NoError(t, b.Set("a.y", "Y"))
		require.Equal(t, map[string]any{"a": map[string]any{"x": "X", "y": "Y"}}, b.Map().Any())
	})

	t.Run("will replace a scalar intermediate node", func(t *testing.T) {
		b := newBindings(t)
		require.NoError(t, b.ImportDict(map[string]any{"a": "A"}))
		require.NoError(t, b.Set("a.b", true))
		require.Equal(t, map[string]any{"a": map[string]any{"b": true}}, b.Map().Any())
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the path is empty", func(t *testing.T) {
			b := newBindings(t)
			err := b.Set("", 1)

			var eerr EmptyKeyChainError
			require.ErrorAs(t, err, &eerr)
			require.NotEmpty(t, eerr.Error())
		})
	})
}

func TestBindings_Has(t *testing.T) {
	b := newBindings(t)
	require.NoError(t, b.ImportDict(map[string]any{"injected": map[string]any{}}))

	require.True(t, b.Has("injected"))
	require.False(t, b.Has("injected.value"))
	require.False(t, b.Has(""))
}

func TestBindings_Resolved(t *testing.T) {
	t.Run("will resolve every value", func(t *testing.T) {
		b := newBindings(t)
		require.NoError(t, b.ImportString("a: A\nb: ${a}\nc:\n  d: ${b}/${missing}\n"))

		m, err := b.Resolved()
		require.NoError(t, err)
		require.Equal(t, map[string]any{
			"a": "A",
			"b": "A",
			"c": map[string]any{"d": "A/${missing}"},
		}, m.Any())
		require.Equal(t, []string{"a", "b", "c"}, m.Keys())
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if there is a cyclic reference", func(t *testing.T) {
			b := newBindings(t)
			require.NoError(t, b.ImportDict(map[string]any{"a": "${b}", "b": "${a}"}))

			_, err := b.Resolved()
			require.ErrorAs(t, err, new(CyclicReferenceError))
		})
	})
}

// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bindings

import (
	"context"
	"io"
	"io/fs"
	"strings"

	"github.com/z5labs/bindings/key"
	"github.com/z5labs/bindings/value"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Option are used to configure Bindings.
type Option func(*Bindings)

// WithEnvironment sets the Environment placeholders fall back to.
// Default: [OSEnv].
func WithEnvironment(env Environment) Option {
	return func(b *Bindings) {
		if env == nil {
			env = noEnv{}
		}
		b.env = env
	}
}

// WithFS sets the filesystem paths are imported from.
// Default: the operating system filesystem.
func WithFS(fsys fs.FS) Option {
	return func(b *Bindings) {
		b.fs = fsys
	}
}

// Logger sets the logger used for reporting imports and resolution details.
func Logger(logger *zap.Logger) Option {
	return func(b *Bindings) {
		b.log = logger
	}
}

// TypedDefaults makes a default clause standing alone, e.g. "${port:8080}",
// resolve to a typed value following the YAML literal rules instead of a string.
func TypedDefaults() Option {
	return func(b *Bindings) {
		b.typedDefaults = true
	}
}

// Bindings owns a layered config tree. Every import is deep merged on top of
// the previous ones and values are resolved on access. Bindings is meant to
// be loaded and then queried; it is not safe for concurrent mutation.
type Bindings struct {
	root          *value.Map
	env           Environment
	fs            fs.FS
	log           *zap.Logger
	typedDefaults bool
}

// New returns empty Bindings.
func New(opts ...Option) *Bindings {
	b := &Bindings{
		root: value.NewMap(),
		env:  OSEnv(),
		fs:   osFS{},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Merge implements the [Store] interface.
func (b *Bindings) Merge(m *value.Map) {
	merge(b.root, m)
	b.log.Debug("merged config layer", zap.Int("keys", m.Len()))
}

// ImportSources applies the given sources in order. Subsequent sources
// override previous sources. Nothing is merged unless every source succeeds.
func (b *Bindings) ImportSources(srcs ...Source) error {
	var staged layers
	for _, src := range srcs {
		err := src.Apply(&staged)
		if err != nil {
			return err
		}
	}
	return staged.Apply(b)
}

// ImportDict merges an already built map.
func (b *Bindings) ImportDict(m map[string]any) error {
	return b.ImportSources(Dict(m))
}

// ImportString parses s as YAML and merges it.
func (b *Bindings) ImportString(s string) error {
	return b.ImportSources(FromYaml(strings.NewReader(s)))
}

// ImportReader parses the YAML read from r and merges it.
func (b *Bindings) ImportReader(r io.Reader) error {
	return b.ImportSources(FromYaml(r))
}

// ImportJSON parses the JSON read from r and merges it.
func (b *Bindings) ImportJSON(r io.Reader) error {
	return b.ImportSources(FromJson(r))
}

// ImportPath reads and parses the YAML file at path and merges it.
func (b *Bindings) ImportPath(path string) error {
	b.log.Debug("importing config file", zap.String("path", path))
	return b.ImportSources(FromYaml(NewFileReader(b.fs, path)))
}

// ImportPaths reads and parses the given YAML files concurrently and then
// merges them in the given order. Nothing is merged if any file fails.
func (b *Bindings) ImportPaths(ctx context.Context, paths ...string) error {
	staged := make([]layers, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b.log.Debug("importing config file", zap.String("path", path))
			return FromYaml(NewFileReader(b.fs, path)).Apply(&staged[i])
		})
	}
	err := g.Wait()
	if err != nil {
		return err
	}

	for _, l := range staged {
		err := l.Apply(b)
		if err != nil {
			return err
		}
	}
	return nil
}

// Set overrides the value at the dotted path, creating intermediate maps
// and replacing any non-map node found along the way.
func (b *Bindings) Set(path string, v any) error {
	names := key.Parse(path).Names()
	if len(names) == 0 {
		return EmptyKeyChainError{Value: v}
	}

	leaf, err := value.FromAny(v)
	if err != nil {
		return err
	}
	for i := len(names) - 1; i >= 0; i-- {
		m := value.NewMap()
		m.Set(names[i], leaf)
		leaf = value.MapOf(m)
	}

	m, _ := leaf.AsMap()
	b.Merge(m)
	return nil
}

// Has reports whether path designates a node of the tree.
func (b *Bindings) Has(path string) bool {
	_, ok := b.root.Lookup(key.Parse(path).Names()...)
	return ok
}

// Get returns the fully resolved value at the dotted path. It fails with
// [KeyNotFoundError] if the path is absent from the tree and with
// [CyclicReferenceError] if resolving it leads back to itself. Placeholders
// which cannot be resolved are returned verbatim.
func (b *Bindings) Get(path string) (value.Value, error) {
	chain := key.Parse(path)
	v, ok := b.root.Lookup(chain.Names()...)
	if !ok {
		return value.Value{}, KeyNotFoundError{Path: path}
	}
	return b.resolver().follow(chain.Key(), v)
}

// Replace expands every placeholder of the free text template and returns
// the result as a string, even if the template is a single placeholder.
func (b *Bindings) Replace(template string) (string, error) {
	return b.resolver().concat(scan(template))
}

// Map returns a copy of the merged, unresolved tree.
func (b *Bindings) Map() *value.Map {
	return b.root.Clone()
}

// Resolved returns a copy of the whole tree with every placeholder resolved.
func (b *Bindings) Resolved() (*value.Map, error) {
	r := b.resolver()
	out := value.NewMap()

	var err error
	b.root.Range(func(k string, v value.Value) bool {
		var rv value.Value
		rv, err = r.follow(k, v)
		if err != nil {
			return false
		}
		out.Set(k, rv)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Bindings) resolver() *resolver {
	return &resolver{
		root:          b.root,
		env:           b.env,
		log:           b.log,
		typedDefaults: b.typedDefaults,
	}
}

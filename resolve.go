// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bindings

import (
	"slices"
	"strings"

	"github.com/z5labs/bindings/key"
	"github.com/z5labs/bindings/value"

	"go.uber.org/zap"
)

// resolver expands placeholders for a single top-level request. The
// pending stack holds the paths currently being resolved and is the
// only state carried between recursive calls.
type resolver struct {
	root          *value.Map
	env           Environment
	log           *zap.Logger
	typedDefaults bool

	pending []string
}

// resolve returns v with every placeholder expanded. Strings are scanned,
// lists and maps are resolved element by element and other values pass
// through unchanged.
func (r *resolver) resolve(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindString:
		s, _ := v.AsString()
		return r.resolveString(s)
	case value.KindList:
		elems, _ := v.AsList()
		out := make([]value.Value, len(elems))
		for i, elem := range elems {
			rv, err := r.resolve(elem)
			if err != nil {
				return value.Value{}, err
			}
			out[i] = rv
		}
		return value.ListOf(out...), nil
	case value.KindMap:
		m, _ := v.AsMap()
		out := value.NewMap()
		var err error
		m.Range(func(k string, elem value.Value) bool {
			var rv value.Value
			rv, err = r.resolve(elem)
			if err != nil {
				return false
			}
			out.Set(k, rv)
			return true
		})
		if err != nil {
			return value.Value{}, err
		}
		return value.MapOf(out), nil
	default:
		return v, nil
	}
}

// resolveString keeps the native type of the referenced value when s is a
// single placeholder and nothing else.
func (r *resolver) resolveString(s string) (value.Value, error) {
	segs := scan(s)
	if ph, ok := bare(segs); ok {
		v, found, err := r.lookup(ph, true)
		if err != nil {
			return value.Value{}, err
		}
		if !found {
			return value.StringOf(s), nil
		}
		return v, nil
	}

	text, err := r.concat(segs)
	if err != nil {
		return value.Value{}, err
	}
	return value.StringOf(text), nil
}

// concat resolves every placeholder of segs into its textual form.
// Unresolved placeholders are kept verbatim.
func (r *resolver) concat(segs []segment) (string, error) {
	var sb strings.Builder
	for _, seg := range segs {
		if seg.ph == nil {
			sb.WriteString(seg.literal)
			continue
		}

		v, found, err := r.lookup(seg.ph, false)
		if err != nil {
			return "", err
		}
		if !found {
			sb.WriteString(seg.ph.raw)
			continue
		}
		sb.WriteString(v.Text())
	}
	return sb.String(), nil
}

// lookup tries the binding tree, then the environment, then the default.
func (r *resolver) lookup(ph *placeholder, bare bool) (value.Value, bool, error) {
	chain := key.Parse(ph.path)
	if v, ok := r.root.Lookup(chain.Names()...); ok {
		rv, err := r.follow(chain.Key(), v)
		if err != nil {
			return value.Value{}, false, err
		}
		return rv, true, nil
	}

	if s, ok := r.env.Lookup(ph.path); ok {
		r.log.Debug("resolved placeholder from environment", zap.String("name", ph.path))
		return value.StringOf(s), true, nil
	}

	if ph.hasDefault {
		if bare && r.typedDefaults {
			return value.ParseScalar(ph.def), true, nil
		}
		return value.StringOf(ph.def), true, nil
	}

	r.log.Debug("placeholder left unresolved", zap.String("placeholder", ph.raw))
	return value.Value{}, false, nil
}

// follow resolves the value found at path, failing if path is already pending.
func (r *resolver) follow(path string, v value.Value) (value.Value, error) {
	if slices.Contains(r.pending, path) {
		chain := append(slices.Clone(r.pending), path)
		r.log.Warn("cyclic reference detected", zap.Strings("chain", chain))
		return value.Value{}, CyclicReferenceError{Path: path, Chain: chain}
	}

	r.pending = append(r.pending, path)
	defer func() {
		r.pending = r.pending[:len(r.pending)-1]
	}()

	return r.resolve(v)
}

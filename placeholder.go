// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bindings

import "strings"

const (
	placeholderOpen  = "${"
	placeholderClose = '}'
	defaultSep       = ":"
)

// placeholder is a single "${path}" or "${path:default}" expression.
type placeholder struct {
	raw        string
	path       string
	def        string
	hasDefault bool
}

// segment is either literal text or a placeholder.
type segment struct {
	literal string
	ph      *placeholder
}

// scan splits s into literal text and placeholders, left to right. The first
// colon inside the braces separates the path from the default, which runs to
// the matching closing brace. An unterminated "${" is kept as literal text.
func scan(s string) []segment {
	var segs []segment
	var lit strings.Builder
	flush := func() {
		if lit.Len() == 0 {
			return
		}
		segs = append(segs, segment{literal: lit.String()})
		lit.Reset()
	}

	rest := s
	for len(rest) > 0 {
		start := strings.Index(rest, placeholderOpen)
		if start < 0 {
			break
		}
		end := closingBrace(rest, start+len(placeholderOpen))
		if end < 0 {
			break
		}

		lit.WriteString(rest[:start])
		flush()

		body := rest[start+len(placeholderOpen) : end]
		path, def, hasDefault := strings.Cut(body, defaultSep)
		segs = append(segs, segment{
			ph: &placeholder{
				raw:        rest[start : end+1],
				path:       strings.TrimSpace(path),
				def:        def,
				hasDefault: hasDefault,
			},
		})
		rest = rest[end+1:]
	}
	lit.WriteString(rest)
	flush()
	return segs
}

func closingBrace(s string, from int) int {
	depth := 0
	for i := from; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case placeholderClose:
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// bare reports whether segs is exactly one placeholder with no surrounding text.
func bare(segs []segment) (*placeholder, bool) {
	if len(segs) != 1 || segs[0].ph == nil {
		return nil, false
	}
	return segs[0].ph, true
}

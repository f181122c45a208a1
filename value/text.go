// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package value

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Text returns the textual form of v used when it is concatenated with
// other text. Lists and maps are rendered in YAML flow style.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList, KindMap:
		return flowText(v)
	default:
		return "null"
	}
}

func flowText(v Value) string {
	n, err := v.node()
	if err != nil {
		return fmt.Sprint(v.Any())
	}
	n.Style |= yaml.FlowStyle

	b, err := yaml.Marshal(n)
	if err != nil {
		return fmt.Sprint(v.Any())
	}
	return strings.TrimSpace(string(b))
}

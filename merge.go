// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bindings

import "github.com/z5labs/bindings/value"

// merge layers incoming on top of target, in place. Keys missing from
// target are inserted, maps present on both sides are merged recursively
// and any other pairing is replaced wholesale by the incoming value.
// Lists are never merged element-wise.
//
// Values taken from incoming are deep copies so target never aliases it.
func merge(target, incoming *value.Map) {
	incoming.Range(func(k string, in value.Value) bool {
		cur, ok := target.Get(k)
		if !ok {
			target.Set(k, in.Clone())
			return true
		}

		curMap, curIsMap := cur.AsMap()
		inMap, inIsMap := in.AsMap()
		if curIsMap && inIsMap {
			merge(curMap, inMap)
			return true
		}

		target.Set(k, in.Clone())
		return true
	})
}

// Package sortkey orders selected nodes by a pluggable priority function.
// Keys are sortable tuples compared element-wise; the sort is stable so
// equal keys preserve the original selection order.
package sortkey

import (
	"fmt"
	"sort"
)

// Item carries the per-node inputs a key function may consult.
type Item struct {
	// Name is the node's display name.
	Name string
	// Index is the position in the original selection order.
	Index int
	// Depth is the node's nesting depth within the selection.
	Depth int
}

// Tuple is a sortable key. Elements are compared pairwise; a shorter tuple
// that is a prefix of a longer one sorts first.
type Tuple []any

// Key computes a Tuple for one node.
type Key func(name string, index, depth int) Tuple

// Default returns the identity ordering key (0, index): stable on the
// original selection order.
func Default() Key {
	return func(_ string, index, _ int) Tuple {
		return Tuple{0, index}
	}
}

// Order evaluates key over items and returns the stable ascending
// permutation: out[i] is the input index of the i-th sorted item.
func Order(items []Item, key Key) []int {
	if key == nil {
		key = Default()
	}
	tuples := make([]Tuple, len(items))
	for i, it := range items {
		tuples[i] = key(it.Name, it.Index, it.Depth)
	}
	out := make([]int, len(items))
	for i := range out {
		out[i] = i
	}
	sort.SliceStable(out, func(a, b int) bool {
		return Compare(tuples[out[a]], tuples[out[b]]) < 0
	})
	return out
}

// Compare orders two tuples element-wise. Numeric elements compare as
// numbers, strings lexically, bools false-first. Mismatched element types
// fall back to their formatted representation so an ill-typed custom key
// degrades to a deterministic order instead of panicking.
func Compare(a, b Tuple) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := compareElem(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func compareElem(a, b any) int {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			switch {
			case as < bs:
				return -1
			case as > bs:
				return 1
			}
			return 0
		}
	}
	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch {
			case !ab && bb:
				return -1
			case ab && !bb:
				return 1
			}
			return 0
		}
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

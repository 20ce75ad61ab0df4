// Package detect computes the set of paths whose value differs between two
// state snapshots.
//
// Comparison is shallow per leaf: primitives compare by value, maps and
// slices compare by reference. Replacing a slice with a structurally equal
// copy therefore still counts as a change, while mutating a slice in place
// without replacing it is invisible. The store relies on snapshot
// replacement, never in-place mutation.
package detect

import (
	"reflect"
	"sort"

	"github.com/dshills/prism/internal/state/path"
)

// Changed returns every path whose resolved value differs between old and
// new, in lexicographic order. When both sides of a changed key hold nested
// maps or slices the walk descends into them, so a single deep edit reports
// both the ancestor path and the precise leaf path; subscribers to either
// fire.
func Changed(old, new map[string]any) []string {
	var paths []string
	diffMap("", old, new, &paths)
	sort.Strings(paths)
	return paths
}

func diffMap(prefix string, old, new map[string]any, out *[]string) {
	for _, key := range unionKeys(old, new) {
		oldVal, oldOK := old[key]
		newVal, newOK := new[key]
		diffValue(path.Join(prefix, key), oldVal, oldOK, newVal, newOK, out)
	}
}

func diffSlice(prefix string, old, new []any, out *[]string) {
	n := len(old)
	if len(new) > n {
		n = len(new)
	}
	for i := 0; i < n; i++ {
		var oldVal, newVal any
		oldOK := i < len(old)
		newOK := i < len(new)
		if oldOK {
			oldVal = old[i]
		}
		if newOK {
			newVal = new[i]
		}
		diffValue(path.JoinIndex(prefix, i), oldVal, oldOK, newVal, newOK, out)
	}
}

func diffValue(p string, oldVal any, oldOK bool, newVal any, newOK bool, out *[]string) {
	if oldOK != newOK || !Same(oldVal, newVal) {
		*out = append(*out, p)
	}

	// Descend whenever both sides are container-shaped so deep subscribers
	// are notified without subscribing to every ancestor.
	if oldMap, ok := oldVal.(map[string]any); ok {
		if newMap, ok := newVal.(map[string]any); ok {
			diffMap(p, oldMap, newMap, out)
			return
		}
	}
	if oldSlice, ok := oldVal.([]any); ok {
		if newSlice, ok := newVal.([]any); ok {
			diffSlice(p, oldSlice, newSlice, out)
		}
	}
}

// Same reports whether two values are unchanged under the store's
// comparison: nil matches only nil, maps/slices/funcs/pointers match by
// identity, everything else by value. Values of differing dynamic types are
// never the same.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if av.Type() != bv.Type() {
		return false
	}

	switch av.Kind() {
	case reflect.Map, reflect.Func, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return av.Pointer() == bv.Pointer()
	case reflect.Slice:
		if av.Len() != bv.Len() {
			return false
		}
		if av.Len() == 0 {
			// Two empty slices only match when both or neither are nil.
			return av.IsNil() == bv.IsNil()
		}
		return av.Pointer() == bv.Pointer()
	default:
		if !av.Comparable() {
			return false
		}
		return a == b
	}
}

func unionKeys(old, new map[string]any) []string {
	keys := make([]string, 0, len(old)+len(new))
	for k := range old {
		keys = append(keys, k)
	}
	for k := range new {
		if _, ok := old[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

package reconcile

import (
	"github.com/dshills/prism/internal/vdom"
	"github.com/dshills/prism/internal/vdom/host"
)

// patchChildren reconciles a node's child list. Children are paired
// old-to-new first (by key for keyed children, by position among the
// unkeyed remainder), unpaired old children are removed, then one
// left-to-right walk patches each pair and relocates or inserts live nodes
// so the final order matches the new child sequence.
func (r *Reconciler) patchChildren(ln *liveNode, oldKids, newKids []any) {
	old := vdom.Normalize(oldKids)
	new := vdom.Normalize(newKids)

	pairs := pairChildren(old, new)

	// Remove old children nothing in the new list claimed.
	claimed := make([]bool, len(old))
	for _, j := range pairs {
		if j >= 0 {
			claimed[j] = true
		}
	}
	rest := make([]*liveNode, 0, len(old))
	for j := range old {
		if claimed[j] {
			rest = append(rest, ln.children[j])
		} else {
			r.unmount(ln.handle, ln.children[j])
		}
	}

	// Patch and place left to right. rest holds the surviving live nodes
	// in their current order; a paired node already at the front needs no
	// move, anything else is inserted before the current front.
	next := make([]*liveNode, 0, len(new))
	for i, child := range new {
		j := pairs[i]
		if j < 0 {
			fresh := r.mountChild(child)
			r.adapter.Insert(ln.handle, fresh.handle, frontHandle(rest))
			next = append(next, fresh)
			continue
		}

		live := ln.children[j]
		inPlace := len(rest) > 0 && rest[0] == live
		if inPlace {
			rest = rest[1:]
		} else {
			rest = dropLive(rest, live)
		}

		patched := r.patchChild(ln.handle, live, old[j], child)
		if !inPlace {
			r.adapter.Insert(ln.handle, patched.handle, frontHandle(rest))
		}
		next = append(next, patched)
	}

	ln.children = next
}

// patchChild reconciles one paired child, replacing it when its kind
// changed.
func (r *Reconciler) patchChild(parent host.Handle, live *liveNode, oldChild, newChild any) *liveNode {
	oldText, oldIsText := vdom.Text(oldChild)
	newText, newIsText := vdom.Text(newChild)

	switch {
	case oldIsText && newIsText:
		if oldText != newText {
			r.adapter.SetText(live.handle, newText)
			live.text = newText
		}
		return live
	case !oldIsText && !newIsText:
		return r.patch(parent, live, oldChild.(*vdom.Node), newChild.(*vdom.Node))
	default:
		return r.replace(parent, live, newChild)
	}
}

// pairChildren maps each new child to the index of the old child it reuses,
// or -1 for a fresh insertion. Keyed children match by exact key anywhere
// in the list; only the first occurrence of a duplicate new key matches,
// the rest degrade to insertions. Unkeyed children then pair positionally
// against the unkeyed old remainder.
func pairChildren(old, new []any) []int {
	pairs := make([]int, len(new))
	for i := range pairs {
		pairs[i] = -1
	}

	oldKeyed := make(map[string]int)
	for j, c := range old {
		if k := childKey(c); k != "" {
			if _, dup := oldKeyed[k]; !dup {
				oldKeyed[k] = j
			}
		}
	}

	used := make(map[int]bool)
	seenKeys := make(map[string]bool)
	for i, c := range new {
		k := childKey(c)
		if k == "" {
			continue
		}
		if seenKeys[k] {
			continue // duplicate key, treated as an insertion
		}
		seenKeys[k] = true
		if j, ok := oldKeyed[k]; ok && !used[j] {
			pairs[i] = j
			used[j] = true
		}
	}

	// Positional pairing for the unkeyed remainders.
	var oldUnkeyed []int
	for j, c := range old {
		if childKey(c) == "" {
			oldUnkeyed = append(oldUnkeyed, j)
		}
	}
	cursor := 0
	for i, c := range new {
		if childKey(c) != "" {
			continue
		}
		if cursor < len(oldUnkeyed) {
			pairs[i] = oldUnkeyed[cursor]
			cursor++
		}
	}

	return pairs
}

func childKey(child any) string {
	if n, ok := child.(*vdom.Node); ok {
		return n.Key()
	}
	return ""
}

func frontHandle(rest []*liveNode) host.Handle {
	if len(rest) == 0 {
		return nil
	}
	return rest[0].handle
}

func dropLive(rest []*liveNode, target *liveNode) []*liveNode {
	for i, ln := range rest {
		if ln == target {
			return append(rest[:i], rest[i+1:]...)
		}
	}
	return rest
}

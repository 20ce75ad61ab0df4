// Package reconcile turns successive virtual tree snapshots into minimal
// mutations against the live tree.
//
// A Reconciler is bound to one host adapter and one container handle. Each
// Render call diffs the new tree against the tree from the immediately
// preceding call and patches the live tree through the adapter: attribute
// updates and text updates in place, subtree replacement on tag mismatch,
// and child insertion, removal, and relocation. Children are matched by
// position, or by reconciliation key where keys are present, so keyed lists
// survive reordering without losing their live nodes.
package reconcile

import (
	"reflect"
	"sort"

	"github.com/dshills/prism/internal/vdom"
	"github.com/dshills/prism/internal/vdom/host"
)

// liveNode shadows one live-tree node the reconciler has materialized.
type liveNode struct {
	handle   host.Handle
	isText   bool
	text     string
	events   map[string]host.ReleaseToken
	children []*liveNode
}

// Reconciler owns the live subtree under one container handle.
type Reconciler struct {
	adapter   host.Adapter
	container host.Handle

	// Tree and shadow from the previous Render, nil before the first.
	tree *vdom.Node
	live *liveNode
}

// New creates a Reconciler rendering into container through adapter.
func New(adapter host.Adapter, container host.Handle) *Reconciler {
	return &Reconciler{adapter: adapter, container: container}
}

// Tree returns the most recently rendered tree.
func (r *Reconciler) Tree() *vdom.Node {
	return r.tree
}

// Render mutates the live tree to match next. The first call mounts the
// tree; later calls diff against the previous render. Rendering nil
// unmounts everything.
func (r *Reconciler) Render(next *vdom.Node) {
	switch {
	case r.live == nil && next != nil:
		r.live = r.mountNode(next)
		r.adapter.Insert(r.container, r.live.handle, nil)
	case r.live != nil && next == nil:
		r.unmount(r.container, r.live)
		r.live = nil
	case r.live != nil && next != nil:
		r.live = r.patch(r.container, r.live, r.tree, next)
	}
	r.tree = next
}

// patch reconciles one node pair sharing a live node. It returns the
// (possibly replaced) shadow node.
func (r *Reconciler) patch(parent host.Handle, ln *liveNode, old, new *vdom.Node) *liveNode {
	if old.Tag != new.Tag {
		// Node kind changed: replace the whole subtree, no deeper diff.
		return r.replace(parent, ln, new)
	}
	r.patchAttrs(ln, old.Props, new.Props)
	r.patchChildren(ln, old.Children, new.Children)
	return ln
}

// replace swaps a live subtree for a freshly mounted one at the same
// position.
func (r *Reconciler) replace(parent host.Handle, ln *liveNode, newChild any) *liveNode {
	fresh := r.mountChild(newChild)
	r.adapter.Insert(parent, fresh.handle, ln.handle)
	r.unmount(parent, ln)
	return fresh
}

// mountNode materializes a fresh live subtree for an element node.
func (r *Reconciler) mountNode(n *vdom.Node) *liveNode {
	ln := &liveNode{
		handle: r.adapter.CreateNode(n.Tag),
		events: make(map[string]host.ReleaseToken),
	}
	for _, key := range sortedPropKeys(n.Props) {
		r.setAttr(ln, key, n.Props[key])
	}
	for _, child := range vdom.Normalize(n.Children) {
		c := r.mountChild(child)
		r.adapter.Insert(ln.handle, c.handle, nil)
		ln.children = append(ln.children, c)
	}
	return ln
}

// mountChild materializes either an element or a text child.
func (r *Reconciler) mountChild(child any) *liveNode {
	if text, ok := vdom.Text(child); ok {
		return &liveNode{
			handle: r.adapter.CreateText(text),
			isText: true,
			text:   text,
		}
	}
	return r.mountNode(child.(*vdom.Node))
}

// unmount releases the subtree's event registrations and detaches its root
// from the parent.
func (r *Reconciler) unmount(parent host.Handle, ln *liveNode) {
	r.releaseEvents(ln)
	r.adapter.Remove(parent, ln.handle)
}

func (r *Reconciler) releaseEvents(ln *liveNode) {
	for _, token := range ln.events {
		r.adapter.ReleaseEvent(token)
	}
	ln.events = nil
	for _, c := range ln.children {
		r.releaseEvents(c)
	}
}

// setAttr applies one classified attribute. Event attributes release any
// previous registration first so a handler is never delivered twice.
func (r *Reconciler) setAttr(ln *liveNode, key string, value any) {
	if key == vdom.PropKey {
		return
	}
	attr := vdom.ClassifyAttr(key, value)
	switch attr.Kind {
	case vdom.AttrEvent:
		if token, ok := ln.events[attr.Key]; ok {
			r.adapter.ReleaseEvent(token)
		}
		handler := attr.Value.(vdom.EventHandler)
		ln.events[attr.Key] = r.adapter.RegisterEvent(ln.handle, attr.Key, host.EventCallback(handler))
	case vdom.AttrBool:
		if attr.Value.(bool) {
			r.adapter.ApplyAttr(ln.handle, attr.Key, "")
		} else {
			r.adapter.RemoveAttr(ln.handle, attr.Key)
		}
	default:
		r.adapter.ApplyAttr(ln.handle, attr.Key, attr.Value)
	}
}

// clearAttr undoes an attribute that disappeared from the props.
func (r *Reconciler) clearAttr(ln *liveNode, key string, oldValue any) {
	if key == vdom.PropKey {
		return
	}
	attr := vdom.ClassifyAttr(key, oldValue)
	if attr.Kind == vdom.AttrEvent {
		if token, ok := ln.events[attr.Key]; ok {
			r.adapter.ReleaseEvent(token)
			delete(ln.events, attr.Key)
		}
		return
	}
	r.adapter.RemoveAttr(ln.handle, attr.Key)
}

// patchAttrs diffs two prop sets against the same live node.
func (r *Reconciler) patchAttrs(ln *liveNode, oldProps, newProps map[string]any) {
	for _, key := range sortedPropKeys(oldProps) {
		if _, kept := newProps[key]; !kept {
			r.clearAttr(ln, key, oldProps[key])
		}
	}
	for _, key := range sortedPropKeys(newProps) {
		newVal := newProps[key]
		if oldVal, had := oldProps[key]; had && attrEqual(oldVal, newVal) {
			continue
		}
		r.setAttr(ln, key, newVal)
	}
}

// attrEqual compares prop values the way the store compares state leaves:
// primitives by value, references by identity. Handlers compare by function
// pointer, so a stable handler value avoids re-registration churn.
func attrEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if av.Type() != bv.Type() {
		return false
	}
	switch av.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		if av.Kind() == reflect.Slice && av.Len() != bv.Len() {
			return false
		}
		if av.Kind() == reflect.Slice && av.Len() == 0 {
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

func sortedPropKeys(props map[string]any) []string {
	if len(props) == 0 {
		return nil
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

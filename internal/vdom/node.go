// Package vdom defines the declarative tree snapshot consumed by the
// reconciler.
//
// A Node is a pure description of one UI node: tag, props, ordered
// children. Nodes are created fresh on every render and never mutated;
// reconciliation only mutates the live tree. Children may be *Node values,
// text-like values (string, int, float64), or nil; nil children are skipped
// during reconciliation.
package vdom

import "strconv"

// PropKey is the prop read as the reconciliation key for keyed child
// diffing.
const PropKey = "key"

// Node is one declarative UI node.
type Node struct {
	Tag      string
	Props    map[string]any
	Children []any
}

// New builds a Node. The reconciliation key, if any, lives in props under
// PropKey.
func New(tag string, props map[string]any, children ...any) *Node {
	return &Node{Tag: tag, Props: props, Children: children}
}

// Key returns the node's reconciliation key, or "" when it has none.
// Non-string key props are ignored.
func (n *Node) Key() string {
	if n == nil || n.Props == nil {
		return ""
	}
	if k, ok := n.Props[PropKey].(string); ok {
		return k
	}
	return ""
}

// Text converts a text-like child to its rendered string form.
// The second return value is false for *Node children and nil.
func Text(child any) (string, bool) {
	switch v := child.(type) {
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// Normalize filters nil entries out of a child list, preserving order.
func Normalize(children []any) []any {
	out := make([]any, 0, len(children))
	for _, c := range children {
		if c == nil {
			continue
		}
		if n, ok := c.(*Node); ok && n == nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

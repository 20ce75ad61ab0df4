package host

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// OpKind identifies one recorded adapter operation.
type OpKind int

const (
	OpCreateNode OpKind = iota
	OpCreateText
	OpSetText
	OpApplyAttr
	OpRemoveAttr
	OpInsert
	OpRemove
	OpRegisterEvent
	OpReleaseEvent
)

// String returns the operation name.
func (k OpKind) String() string {
	switch k {
	case OpCreateNode:
		return "create-node"
	case OpCreateText:
		return "create-text"
	case OpSetText:
		return "set-text"
	case OpApplyAttr:
		return "apply-attr"
	case OpRemoveAttr:
		return "remove-attr"
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	case OpRegisterEvent:
		return "register-event"
	case OpReleaseEvent:
		return "release-event"
	default:
		return "unknown"
	}
}

// Op is one recorded adapter call.
type Op struct {
	Kind   OpKind
	Target *MemNode
	Key    string
	Value  any
}

// MemNode is one node of the in-memory live tree.
type MemNode struct {
	Tag      string
	Text     string
	IsText   bool
	Attrs    map[string]any
	Children []*MemNode
	Parent   *MemNode
}

type memEvent struct {
	node  *MemNode
	event string
	cb    EventCallback
}

// Memory is an in-memory Adapter. It maintains a real mutable tree and
// records every operation applied to it, so tests can assert both the final
// structure and the exact mutation sequence.
type Memory struct {
	mu     sync.Mutex
	Root   *MemNode
	ops    []Op
	events map[ReleaseToken]*memEvent
}

// NewMemory creates a Memory adapter with an empty root container.
func NewMemory() *Memory {
	return &Memory{
		Root:   &MemNode{Tag: "root", Attrs: make(map[string]any)},
		events: make(map[ReleaseToken]*memEvent),
	}
}

func (m *Memory) record(op Op) {
	m.ops = append(m.ops, op)
}

// CreateNode creates a detached element node.
func (m *Memory) CreateNode(tag string) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	node := &MemNode{Tag: tag, Attrs: make(map[string]any)}
	m.record(Op{Kind: OpCreateNode, Target: node, Key: tag})
	return node
}

// CreateText creates a detached text node.
func (m *Memory) CreateText(text string) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	node := &MemNode{IsText: true, Text: text}
	m.record(Op{Kind: OpCreateText, Target: node, Value: text})
	return node
}

// SetText replaces a text node's content.
func (m *Memory) SetText(h Handle, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	node := h.(*MemNode)
	node.Text = text
	m.record(Op{Kind: OpSetText, Target: node, Value: text})
}

// ApplyAttr sets an attribute.
func (m *Memory) ApplyAttr(h Handle, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	node := h.(*MemNode)
	node.Attrs[key] = value
	m.record(Op{Kind: OpApplyAttr, Target: node, Key: key, Value: value})
}

// RemoveAttr removes an attribute.
func (m *Memory) RemoveAttr(h Handle, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	node := h.(*MemNode)
	delete(node.Attrs, key)
	m.record(Op{Kind: OpRemoveAttr, Target: node, Key: key})
}

// Insert places child before the given sibling under parent, detaching it
// from any previous position first.
func (m *Memory) Insert(parent, child, before Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := parent.(*MemNode)
	c := child.(*MemNode)

	m.detach(c)

	idx := len(p.Children)
	if before != nil {
		b := before.(*MemNode)
		for i, existing := range p.Children {
			if existing == b {
				idx = i
				break
			}
		}
	}

	p.Children = append(p.Children, nil)
	copy(p.Children[idx+1:], p.Children[idx:])
	p.Children[idx] = c
	c.Parent = p

	m.record(Op{Kind: OpInsert, Target: c})
}

// Remove detaches child from parent.
func (m *Memory) Remove(parent, child Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := child.(*MemNode)
	m.detach(c)
	m.record(Op{Kind: OpRemove, Target: c})
}

func (m *Memory) detach(c *MemNode) {
	p := c.Parent
	if p == nil {
		return
	}
	for i, existing := range p.Children {
		if existing == c {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	c.Parent = nil
}

// RegisterEvent installs a handler and returns its release token.
func (m *Memory) RegisterEvent(h Handle, event string, cb EventCallback) ReleaseToken {
	m.mu.Lock()
	defer m.mu.Unlock()

	node := h.(*MemNode)
	token := ReleaseToken(uuid.NewString())
	m.events[token] = &memEvent{node: node, event: event, cb: cb}
	m.record(Op{Kind: OpRegisterEvent, Target: node, Key: event})
	return token
}

// ReleaseEvent removes a handler registration.
func (m *Memory) ReleaseEvent(token ReleaseToken) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.events[token]
	if !ok {
		return
	}
	delete(m.events, token)
	m.record(Op{Kind: OpReleaseEvent, Target: reg.node, Key: reg.event})
}

// Dispatch delivers an event to every handler registered for it on the
// given node. It returns the number of handlers invoked.
func (m *Memory) Dispatch(h Handle, event string, payload any) int {
	m.mu.Lock()
	var cbs []EventCallback
	for _, reg := range m.events {
		if reg.node == h && reg.event == event {
			cbs = append(cbs, reg.cb)
		}
	}
	m.mu.Unlock()

	for _, cb := range cbs {
		cb(payload)
	}
	return len(cbs)
}

// Ops returns the recorded operation log.
func (m *Memory) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Op, len(m.ops))
	copy(out, m.ops)
	return out
}

// CountOps returns how many recorded operations have the given kind.
func (m *Memory) CountOps(kind OpKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, op := range m.ops {
		if op.Kind == kind {
			count++
		}
	}
	return count
}

// ResetOps clears the operation log without touching the tree.
func (m *Memory) ResetOps() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = nil
}

// EventCount returns the number of live event registrations.
func (m *Memory) EventCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// Render returns a compact one-line rendering of the tree under h, for
// test assertions. Elements render as tag(children), text renders
// verbatim.
func (m *Memory) Render(h Handle) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return renderNode(h.(*MemNode))
}

func renderNode(n *MemNode) string {
	if n.IsText {
		return n.Text
	}
	var b strings.Builder
	b.WriteString(n.Tag)
	b.WriteByte('(')
	for i, c := range n.Children {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(renderNode(c))
	}
	b.WriteByte(')')
	return b.String()
}

var _ Adapter = (*Memory)(nil)

// String describes an op for test failure messages.
func (o Op) String() string {
	switch {
	case o.Key != "" && o.Value != nil:
		return fmt.Sprintf("%s %s=%v", o.Kind, o.Key, o.Value)
	case o.Key != "":
		return fmt.Sprintf("%s %s", o.Kind, o.Key)
	default:
		return o.Kind.String()
	}
}

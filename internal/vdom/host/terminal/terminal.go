// Package terminal renders the live tree to a terminal screen.
//
// It implements the host adapter contract on top of tcell with a
// deliberately small layout model: every element node is a block occupying
// one or more rows, its text children flow left to right within the row,
// and nested elements stack vertically. Styling comes from the "fg", "bg",
// and "bold" attributes. Key events are delivered to every node registered
// for "key"; mouse clicks hit-test the clicked row and walk up to the
// nearest node registered for "click".
package terminal

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"github.com/dshills/prism/internal/vdom/host"
)

// Event is the payload delivered to registered handlers.
type Event struct {
	// Name is "key" or "click".
	Name string

	// Rune is the pressed key's rune for key events.
	Rune rune

	// Key is the tcell key code for non-rune keys.
	Key tcell.Key

	// X, Y are screen coordinates for click events.
	X, Y int
}

// termNode is one node of the terminal live tree.
type termNode struct {
	tag      string
	text     string
	isText   bool
	attrs    map[string]any
	children []*termNode
	parent   *termNode

	// Row span from the last draw, for click hit-testing.
	top, bottom int
}

type registration struct {
	node  *termNode
	event string
	cb    host.EventCallback
}

// Terminal is a tcell-backed host adapter.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
	root   *termNode
	events map[host.ReleaseToken]*registration
	quit   chan struct{}
	once   sync.Once
}

// New creates a terminal adapter with a fresh tcell screen.
func New() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(screen)
}

var _ host.Adapter = (*Terminal)(nil)

// NewWithScreen creates a terminal adapter over an existing screen.
// Simulation screens make the adapter testable without a tty.
func NewWithScreen(screen tcell.Screen) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()

	return &Terminal{
		screen: screen,
		root:   &termNode{tag: "root", attrs: map[string]any{}},
		events: make(map[host.ReleaseToken]*registration),
		quit:   make(chan struct{}),
	}, nil
}

// Root returns the container handle components mount into.
func (t *Terminal) Root() host.Handle {
	return t.root
}

// Fini releases the screen. Call after Run returns.
func (t *Terminal) Fini() {
	t.screen.Fini()
}

// Stop makes Run return.
func (t *Terminal) Stop() {
	t.once.Do(func() {
		close(t.quit)
		// Wake the poll loop.
		t.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
}

// CreateNode creates a detached element node.
func (t *Terminal) CreateNode(tag string) host.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return &termNode{tag: tag, attrs: map[string]any{}}
}

// CreateText creates a detached text node.
func (t *Terminal) CreateText(text string) host.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return &termNode{isText: true, text: text}
}

// SetText replaces a text node's content.
func (t *Terminal) SetText(h host.Handle, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h.(*termNode).text = text
}

// ApplyAttr sets an attribute.
func (t *Terminal) ApplyAttr(h host.Handle, key string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h.(*termNode).attrs[key] = value
}

// RemoveAttr removes an attribute.
func (t *Terminal) RemoveAttr(h host.Handle, key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(h.(*termNode).attrs, key)
}

// Insert places child before the given sibling, moving it if already
// attached.
func (t *Terminal) Insert(parent, child, before host.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := parent.(*termNode)
	c := child.(*termNode)
	detach(c)

	idx := len(p.children)
	if before != nil {
		b := before.(*termNode)
		for i, existing := range p.children {
			if existing == b {
				idx = i
				break
			}
		}
	}
	p.children = append(p.children, nil)
	copy(p.children[idx+1:], p.children[idx:])
	p.children[idx] = c
	c.parent = p
}

// Remove detaches child.
func (t *Terminal) Remove(parent, child host.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	detach(child.(*termNode))
}

func detach(c *termNode) {
	p := c.parent
	if p == nil {
		return
	}
	for i, existing := range p.children {
		if existing == c {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	c.parent = nil
}

// RegisterEvent installs a handler for "key" or "click" on a node.
func (t *Terminal) RegisterEvent(h host.Handle, event string, cb host.EventCallback) host.ReleaseToken {
	t.mu.Lock()
	defer t.mu.Unlock()

	token := host.ReleaseToken(uuid.NewString())
	t.events[token] = &registration{node: h.(*termNode), event: event, cb: cb}
	return token
}

// ReleaseEvent removes a handler registration.
func (t *Terminal) ReleaseEvent(token host.ReleaseToken) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.events, token)
}

// Run polls terminal events, dispatches them, and redraws after each
// dispatch. It returns when Stop is called.
func (t *Terminal) Run() {
	t.Draw()
	for {
		select {
		case <-t.quit:
			return
		default:
		}

		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			t.dispatchKey(ev)
		case *tcell.EventMouse:
			if ev.Buttons()&tcell.Button1 != 0 {
				x, y := ev.Position()
				t.dispatchClick(x, y)
			}
		case *tcell.EventResize:
			t.screen.Sync()
		case *tcell.EventInterrupt:
			// Stop or an external redraw request.
		case nil:
			return
		}

		select {
		case <-t.quit:
			return
		default:
			t.Draw()
		}
	}
}

// Wake asks a running Run loop to redraw, e.g. after reconciliation
// triggered by a timer rather than an input event.
func (t *Terminal) Wake() {
	t.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func (t *Terminal) dispatchKey(ev *tcell.EventKey) {
	payload := Event{Name: "key", Rune: ev.Rune(), Key: ev.Key()}

	t.mu.Lock()
	var cbs []host.EventCallback
	for _, reg := range t.events {
		if reg.event == "key" {
			cbs = append(cbs, reg.cb)
		}
	}
	t.mu.Unlock()

	for _, cb := range cbs {
		cb(payload)
	}
}

func (t *Terminal) dispatchClick(x, y int) {
	payload := Event{Name: "click", X: x, Y: y}

	t.mu.Lock()
	target := hitTest(t.root, y)
	var cbs []host.EventCallback
	for n := target; n != nil; n = n.parent {
		for _, reg := range t.events {
			if reg.node == n && reg.event == "click" {
				cbs = append(cbs, reg.cb)
			}
		}
		if len(cbs) > 0 {
			break
		}
	}
	t.mu.Unlock()

	for _, cb := range cbs {
		cb(payload)
	}
}

// hitTest finds the deepest element node whose row span covers y.
func hitTest(n *termNode, y int) *termNode {
	if n.isText || y < n.top || y >= n.bottom {
		return nil
	}
	for _, c := range n.children {
		if hit := hitTest(c, y); hit != nil {
			return hit
		}
	}
	return n
}

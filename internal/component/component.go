// Package component binds a render function to store subscriptions.
//
// A Component is plain composition: the paths it watches, a render function
// producing a virtual tree from state, and an optional change predicate.
// Mount acquires the subscription set and performs the first render;
// Unmount releases everything. Release is guaranteed on every exit path,
// including a panicking render.
package component

import (
	"github.com/dshills/prism/internal/state"
	"github.com/dshills/prism/internal/vdom"
	"github.com/dshills/prism/internal/vdom/reconcile"
)

// RenderFunc produces a virtual tree from the current state. It must be a
// pure function of the snapshot it is given.
type RenderFunc func(s state.State) *vdom.Node

// UpdatePredicate decides whether a path change should trigger a
// re-render.
type UpdatePredicate func(newValue, oldValue any) bool

// Component describes one reactive view.
type Component struct {
	// Paths the component re-renders on. Empty means every state change.
	Paths []string

	// Render produces the component's tree. Required.
	Render RenderFunc

	// ShouldUpdate, when set, filters path changes. It is not consulted
	// for whole-state subscriptions.
	ShouldUpdate UpdatePredicate
}

// RenderReporter receives a value recovered from a panicking render.
type RenderReporter func(recovered any)

// Mounted is a component with live subscriptions and a live subtree.
type Mounted struct {
	store      *state.Store
	reconciler *reconcile.Reconciler
	comp       Component
	report     RenderReporter
	subs       []*state.Subscription
	unmounted  bool
}

// Mount renders the component and subscribes it to the store. The render
// callback failing at mount time releases any acquired subscriptions and
// returns the error; the live tree is left untouched.
func Mount(st *state.Store, rec *reconcile.Reconciler, comp Component, report RenderReporter) (*Mounted, error) {
	if st == nil || rec == nil {
		return nil, ErrNilStore
	}
	if comp.Render == nil {
		return nil, ErrNilRender
	}

	m := &Mounted{store: st, reconciler: rec, comp: comp, report: report}

	if !m.render() {
		return nil, ErrRenderFailed
	}

	if len(comp.Paths) == 0 {
		m.subs = append(m.subs, st.Subscribe(func(_, _ state.State) {
			m.render()
		}))
		return m, nil
	}

	for _, p := range comp.Paths {
		m.subs = append(m.subs, st.SubscribeTo(p, func(newVal, oldVal any) {
			if comp.ShouldUpdate != nil && !comp.ShouldUpdate(newVal, oldVal) {
				return
			}
			m.render()
		}))
	}
	return m, nil
}

// render produces and reconciles a new tree. A panicking render is
// reported and leaves the previous live tree untouched.
func (m *Mounted) render() (ok bool) {
	if m.unmounted {
		return false
	}

	tree, ok := m.buildTree()
	if !ok {
		return false
	}
	m.reconciler.Render(tree)
	return true
}

// buildTree runs the render callback under a recover so a failing render
// never hands a partial tree to the reconciler.
func (m *Mounted) buildTree() (tree *vdom.Node, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if m.report != nil {
				m.report(r)
			}
			tree, ok = nil, false
		}
	}()
	return m.comp.Render(m.store.State()), true
}

// Unmount releases the subscription set and removes the live subtree. It
// is idempotent.
func (m *Mounted) Unmount() {
	if m.unmounted {
		return
	}
	m.unmounted = true

	for _, sub := range m.subs {
		sub.Unsubscribe()
	}
	m.subs = nil
	m.reconciler.Render(nil)
}

// Active reports whether the component still holds its subscriptions.
func (m *Mounted) Active() bool {
	return !m.unmounted
}

// Package host defines the narrow contract between the reconciler and the
// environment that owns the live, mutable UI tree.
//
// An Adapter knows how to create, mutate, and remove live nodes and how to
// register event handlers against them. The reconciler drives an Adapter;
// it never touches the live tree any other way. The package also provides
// Memory, an in-memory adapter that records every operation, used both as a
// headless host and as the test double for reconciliation assertions.
package host

// Handle is an opaque reference to one live node. Handles are comparable;
// the reconciler uses them as map keys.
type Handle any

// ReleaseToken identifies one event registration for later release.
type ReleaseToken string

// EventCallback is invoked when the host delivers an event to a node.
type EventCallback func(payload any)

// Adapter is the live-tree mutation contract.
type Adapter interface {
	// CreateNode creates a detached element node.
	CreateNode(tag string) Handle

	// CreateText creates a detached text node.
	CreateText(text string) Handle

	// SetText replaces the content of a text node.
	SetText(h Handle, text string)

	// ApplyAttr sets an attribute on an element node.
	ApplyAttr(h Handle, key string, value any)

	// RemoveAttr removes an attribute from an element node.
	RemoveAttr(h Handle, key string)

	// Insert places child under parent immediately before the given
	// sibling, or at the end when before is nil. Inserting a child that is
	// already attached moves it.
	Insert(parent, child, before Handle)

	// Remove detaches child from parent.
	Remove(parent, child Handle)

	// RegisterEvent installs a handler for the named event on a node.
	RegisterEvent(h Handle, event string, cb EventCallback) ReleaseToken

	// ReleaseEvent removes a previously registered handler.
	ReleaseEvent(token ReleaseToken)
}

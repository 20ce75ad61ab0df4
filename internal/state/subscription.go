package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Listener receives whole-state notifications.
type Listener func(newState, oldState State)

// PathListener receives per-path notifications.
type PathListener func(newValue, oldValue any)

// Subscription is one active listener registration. Unsubscribing from
// inside a firing listener is safe; the listener simply does not fire
// again.
type Subscription struct {
	id        string
	path      string
	store     *Store
	cancelled atomic.Bool
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Path returns the subscribed path, or "" for whole-state subscriptions.
func (s *Subscription) Path() string {
	return s.path
}

// Active reports whether the subscription can still fire.
func (s *Subscription) Active() bool {
	return !s.cancelled.Load()
}

// Unsubscribe removes the listener. It is idempotent.
func (s *Subscription) Unsubscribe() {
	if s.cancelled.Swap(true) {
		return
	}
	if s.store != nil {
		s.store.remove(s)
	}
}

// newSubscription creates a registration bound to a store. An inert
// subscription (nil store) is returned for listeners that can never fire,
// so malformed subscribe calls degrade to a no-op instead of failing.
func newSubscription(store *Store, path string) *Subscription {
	sub := &Subscription{id: uuid.NewString(), path: path, store: store}
	if store == nil {
		sub.cancelled.Store(true)
	}
	return sub
}

type pathEntry struct {
	sub *Subscription
	fn  PathListener
}

type globalEntry struct {
	sub *Subscription
	fn  Listener
}

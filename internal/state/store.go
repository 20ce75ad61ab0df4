package state

import (
	"sync"

	"github.com/dshills/prism/internal/schedule"
	"github.com/dshills/prism/internal/state/detect"
	"github.com/dshills/prism/internal/state/path"
)

// State is one snapshot of application state. Snapshots are replaced, never
// mutated in place; readers must treat the returned map as read-only.
type State = map[string]any

// UpdateFunc replaces the snapshot outright. It must be pure: derive the
// next snapshot from prev without mutating it.
type UpdateFunc func(prev State) State

// PanicHandler receives a value recovered from a panicking listener.
type PanicHandler func(recovered any)

// Store is the reactive state container.
type Store struct {
	mu    sync.Mutex
	state State

	pathSubs   map[string][]*pathEntry
	globalSubs []*globalEntry

	scheduler    schedule.Scheduler
	panicHandler PanicHandler

	// Open batch window, nil between windows.
	window *batchWindow
	cancel schedule.CancelFunc
}

// Option configures a Store.
type Option func(*Store)

// WithInitialState seeds the store's first snapshot.
func WithInitialState(initial State) Option {
	return func(s *Store) {
		if initial != nil {
			s.state = initial
		}
	}
}

// WithScheduler sets the scheduler driving batch flushes.
func WithScheduler(sched schedule.Scheduler) Option {
	return func(s *Store) {
		if sched != nil {
			s.scheduler = sched
		}
	}
}

// WithPanicHandler sets the handler receiving recovered listener panics.
func WithPanicHandler(h PanicHandler) Option {
	return func(s *Store) {
		s.panicHandler = h
	}
}

// New creates a Store. Without options it starts empty and batches on a
// default frame scheduler.
func New(opts ...Option) *Store {
	s := &Store{
		state:     State{},
		pathSubs:  make(map[string][]*pathEntry),
		scheduler: schedule.NewFrame(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot by reference.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ValueAt resolves a path against the current snapshot. Unresolvable or
// malformed paths yield nil.
func (s *Store) ValueAt(p string) any {
	s.mu.Lock()
	snapshot := s.state
	s.mu.Unlock()

	val, _ := path.Resolve(snapshot, p)
	return val
}

// Set merges partial shallowly into the top level of the snapshot and
// notifies synchronously: every changed path's listeners fire once, then
// whole-state listeners, all before Set returns. A nil partial is a no-op.
func (s *Store) Set(partial map[string]any) {
	if partial == nil {
		return
	}
	s.apply(mergeFunc(partial), false)
}

// Update replaces the snapshot with fn(prev) and notifies synchronously.
// A nil fn is a no-op.
func (s *Store) Update(fn UpdateFunc) {
	if fn == nil {
		return
	}
	s.apply(fn, false)
}

// SetBatched merges partial like Set but defers notification to the
// current batch window.
func (s *Store) SetBatched(partial map[string]any) {
	if partial == nil {
		return
	}
	s.apply(mergeFunc(partial), true)
}

// UpdateBatched replaces the snapshot like Update but defers notification
// to the current batch window.
func (s *Store) UpdateBatched(fn UpdateFunc) {
	if fn == nil {
		return
	}
	s.apply(fn, true)
}

// Subscribe registers a whole-state listener. A nil listener returns an
// inert subscription.
func (s *Store) Subscribe(fn Listener) *Subscription {
	if fn == nil {
		return newSubscription(nil, "")
	}

	sub := newSubscription(s, "")

	s.mu.Lock()
	s.globalSubs = append(s.globalSubs, &globalEntry{sub: sub, fn: fn})
	s.mu.Unlock()

	return sub
}

// SubscribeTo registers a listener for one path. Nil listeners and
// malformed paths return an inert subscription.
func (s *Store) SubscribeTo(p string, fn PathListener) *Subscription {
	if fn == nil {
		return newSubscription(nil, p)
	}
	if _, ok := path.Parse(p); !ok {
		return newSubscription(nil, p)
	}

	sub := newSubscription(s, p)

	s.mu.Lock()
	s.pathSubs[p] = append(s.pathSubs[p], &pathEntry{sub: sub, fn: fn})
	s.mu.Unlock()

	return sub
}

// remove drops a cancelled subscription from the bookkeeping.
func (s *Store) remove(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.path != "" {
		entries := s.pathSubs[sub.path]
		for i, e := range entries {
			if e.sub == sub {
				s.pathSubs[sub.path] = append(entries[:i], entries[i+1:]...)
				break
			}
		}
		if len(s.pathSubs[sub.path]) == 0 {
			delete(s.pathSubs, sub.path)
		}
		return
	}

	for i, e := range s.globalSubs {
		if e.sub == sub {
			s.globalSubs = append(s.globalSubs[:i], s.globalSubs[i+1:]...)
			break
		}
	}
}

func mergeFunc(partial map[string]any) UpdateFunc {
	return func(prev State) State {
		next := make(State, len(prev)+len(partial))
		for k, v := range prev {
			next[k] = v
		}
		for k, v := range partial {
			next[k] = v
		}
		return next
	}
}

// apply runs a mutation and routes it to synchronous or batched
// notification.
func (s *Store) apply(fn UpdateFunc, batched bool) {
	s.mu.Lock()
	old := s.state
	next := fn(old)
	if next == nil {
		next = State{}
	}
	s.state = next

	if batched {
		opened := s.openWindowLocked(old)
		s.mu.Unlock()
		if opened {
			s.scheduleFlush()
		}
		return
	}
	s.mu.Unlock()

	s.notify(old, next)
}

// notify computes changed paths and fires listeners: path listeners first,
// in path order, then whole-state listeners. Listener panics are contained.
func (s *Store) notify(old, new State) {
	changed := detect.Changed(old, new)
	if len(changed) == 0 {
		return
	}

	for _, p := range changed {
		s.mu.Lock()
		entries := make([]*pathEntry, len(s.pathSubs[p]))
		copy(entries, s.pathSubs[p])
		s.mu.Unlock()

		if len(entries) == 0 {
			continue
		}

		newVal, _ := path.Resolve(new, p)
		oldVal, _ := path.Resolve(old, p)
		for _, e := range entries {
			if !e.sub.Active() {
				continue
			}
			s.safeCallPath(e.fn, newVal, oldVal)
		}
	}

	s.mu.Lock()
	globals := make([]*globalEntry, len(s.globalSubs))
	copy(globals, s.globalSubs)
	s.mu.Unlock()

	for _, g := range globals {
		if !g.sub.Active() {
			continue
		}
		s.safeCallGlobal(g.fn, new, old)
	}
}

func (s *Store) safeCallPath(fn PathListener, newVal, oldVal any) {
	defer s.recoverListener()
	fn(newVal, oldVal)
}

func (s *Store) safeCallGlobal(fn Listener, newState, oldState State) {
	defer s.recoverListener()
	fn(newState, oldState)
}

func (s *Store) recoverListener() {
	if r := recover(); r != nil {
		if s.panicHandler != nil {
			s.panicHandler(r)
		}
	}
}

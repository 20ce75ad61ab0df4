// Package state provides the path-addressable reactive state container.
//
// A Store owns one state snapshot: a nested map of maps, slices, and
// primitives. Mutations replace the snapshot (shallow merge or wholesale
// replacement); the store never mutates a snapshot in place and assumes its
// callers do not either. After each mutation the store computes the set of
// changed paths and notifies subscribers.
//
// # Subscriptions
//
// Two kinds of listeners exist:
//
//   - Whole-state listeners (Subscribe) receive (newState, oldState) after
//     every mutation that changed anything.
//   - Path listeners (SubscribeTo) receive (newValue, oldValue) when the
//     value resolved at their path changed. Change is shallow per leaf:
//     primitives by value, maps and slices by reference.
//
// Within one mutation, path listeners fire before whole-state listeners,
// and everything fires before the mutation call returns.
//
// # Batching
//
// SetBatched and UpdateBatched defer notification to one coalescing window
// per scheduling opportunity: however many batched mutations land before
// the scheduled flush, subscribers see a single notification pass comparing
// the state before the window opened to the state after the last mutation.
// FlushSync forces the pending flush to run immediately, which tests and
// any caller needing the live tree current rely on.
//
// # Failure containment
//
// A listener that panics does not stop the remaining listeners in the same
// pass and never propagates to the mutation caller; the panic is handed to
// the store's panic handler.
package state

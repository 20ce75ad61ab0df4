package state

// batchWindow accumulates batched mutations between two flushes. It holds
// the snapshot that existed before the window opened; the flush compares it
// against whatever the snapshot is by flush time.
type batchWindow struct {
	before State
}

// openWindowLocked opens a batch window anchored at the pre-mutation
// snapshot if none is open. It reports whether a flush needs scheduling.
// Caller holds s.mu.
func (s *Store) openWindowLocked(before State) bool {
	if s.window != nil {
		return false
	}
	s.window = &batchWindow{before: before}
	return true
}

// scheduleFlush arranges the window's flush. Called without holding s.mu
// because an immediate scheduler runs the flush inline.
func (s *Store) scheduleFlush() {
	cancel := s.scheduler.Schedule(s.flush)

	s.mu.Lock()
	if s.window != nil {
		// Still pending; remember how to cancel it. With an inline
		// scheduler the window is already gone and the cancel is stale.
		s.cancel = cancel
	}
	s.mu.Unlock()
}

// flush closes the current window and notifies, comparing the pre-window
// snapshot to the current one. The window is cleared before any listener
// runs, so a listener calling SetBatched opens a fresh window rather than
// folding into this flush.
func (s *Store) flush() {
	s.mu.Lock()
	w := s.window
	if w == nil {
		s.mu.Unlock()
		return
	}
	s.window = nil
	s.cancel = nil
	current := s.state
	s.mu.Unlock()

	s.notify(w.before, current)
}

// FlushSync cancels any pending scheduled flush and flushes immediately.
// When no window is open it is a no-op. On return, every listener affected
// by the window's mutations has fired and no flush remains pending.
func (s *Store) FlushSync() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.flush()
}

// Pending reports whether a batch window is currently open.
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window != nil
}

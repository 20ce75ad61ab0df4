// Package engine wires one application's rendering stack together: the
// state store, batch scheduler, host adapter, and mounted components.
//
// There is no package-level shared store; the application entry point
// constructs one Engine and passes it (or its store) to every consumer.
// One store per application is a deployment choice, not a structural
// requirement.
package engine

import (
	"io"

	"github.com/dshills/prism/internal/component"
	"github.com/dshills/prism/internal/config"
	"github.com/dshills/prism/internal/schedule"
	"github.com/dshills/prism/internal/state"
	"github.com/dshills/prism/internal/vdom/host"
	"github.com/dshills/prism/internal/vdom/reconcile"
)

// Engine owns the reactive rendering stack for one application.
type Engine struct {
	store   *state.Store
	adapter host.Adapter
	log     *Logger
	mounts  []*component.Mounted
	closed  bool
}

// Options configure engine construction.
type Options struct {
	// Adapter is the live-tree host. Required.
	Adapter host.Adapter

	// Config tunes the scheduler and logging. Zero value means defaults.
	Config config.Config

	// Scheduler overrides the config-derived frame scheduler, mainly for
	// tests.
	Scheduler schedule.Scheduler

	// Initial seeds the store's first snapshot.
	Initial state.State

	// LogOutput overrides the config-derived log destination.
	LogOutput io.Writer
}

// New constructs an engine.
func New(opts Options) (*Engine, error) {
	if opts.Adapter == nil {
		return nil, ErrNilAdapter
	}

	cfg := opts.Config
	if cfg == (config.Config{}) {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := newConfiguredLogger(cfg.Log, opts.LogOutput)
	if err != nil {
		return nil, err
	}

	sched := opts.Scheduler
	if sched == nil {
		sched = schedule.NewFrame(cfg.FrameInterval())
	}

	e := &Engine{adapter: opts.Adapter, log: log}
	e.store = state.New(
		state.WithInitialState(opts.Initial),
		state.WithScheduler(sched),
		state.WithPanicHandler(func(r any) {
			log.WithComponent("store").Error("listener panic: %v", r)
		}),
	)
	return e, nil
}

func newConfiguredLogger(cfg config.LogConfig, override io.Writer) (*Logger, error) {
	level := ParseLogLevel(cfg.Level)
	if override != nil {
		return NewLogger(level, override), nil
	}
	if cfg.File != "" {
		return NewFileLogger(level, cfg.File)
	}
	return NewLogger(level, nil), nil
}

// Store returns the engine's state store.
func (e *Engine) Store() *state.Store {
	return e.store
}

// Log returns the engine's logger.
func (e *Engine) Log() *Logger {
	return e.log
}

// Mount renders a component into container and subscribes it to the
// store. Each mount gets its own reconciler, so sibling components patch
// independent subtrees.
func (e *Engine) Mount(comp component.Component, container host.Handle) (*component.Mounted, error) {
	if e.closed {
		return nil, ErrEngineClosed
	}

	rec := reconcile.New(e.adapter, container)
	m, err := component.Mount(e.store, rec, comp, func(r any) {
		e.log.WithComponent("render").Error("render panic: %v", r)
	})
	if err != nil {
		return nil, err
	}
	e.mounts = append(e.mounts, m)
	return m, nil
}

// FlushSync forces any pending batched notifications (and the re-renders
// they trigger) to complete before returning.
func (e *Engine) FlushSync() {
	e.store.FlushSync()
}

// Close unmounts every component. The engine cannot be reused.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true

	for _, m := range e.mounts {
		m.Unmount()
	}
	e.mounts = nil
	e.log.Debug("engine closed")
}

package workbook

import (
	"context"
	"sync"
	"time"
)

// AutosaveState is the auto-save controller's state.
type AutosaveState int

const (
	// AutosaveIdle means no watcher is running; nothing persists.
	AutosaveIdle AutosaveState = iota
	// AutosaveWatching means the debounce loop is running and dirty state
	// is persisted on each interval.
	AutosaveWatching
)

// DefaultAutosaveInterval is the debounce interval between dirty checks.
const DefaultAutosaveInterval = 2000 * time.Millisecond

// AutosaveOptions configures the auto-save controller.
type AutosaveOptions struct {
	// Interval between dirty checks. Defaults to DefaultAutosaveInterval.
	Interval time.Duration
}

// AutoSaver persists a session's dirty state on a debounced interval.
//
// It is a two-state machine: Idle and Watching. Enable transitions
// Idle -> Watching and starts the watch loop; Disable transitions back and
// stops it. Pause is a manual override flag checked inside the loop, not a
// state: a paused watcher keeps ticking but skips the save.
type AutoSaver struct {
	session  *Session
	interval time.Duration

	mu     sync.Mutex
	state  AutosaveState
	paused bool
	stop   chan struct{}
	done   chan struct{}
}

func newAutoSaver(s *Session, opts AutosaveOptions) *AutoSaver {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	return &AutoSaver{session: s, interval: interval}
}

// State returns the current state.
func (a *AutoSaver) State() AutosaveState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Paused reports whether saves are currently suppressed.
func (a *AutoSaver) Paused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.paused
}

// Enable starts watching. Enabling an already-watching controller is a
// no-op. The watch loop stops when Disable is called or ctx is cancelled.
func (a *AutoSaver) Enable(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == AutosaveWatching {
		return
	}
	a.state = AutosaveWatching
	a.stop = make(chan struct{})
	a.done = make(chan struct{})
	go a.watch(ctx, a.stop, a.done)
}

// Disable stops watching and waits for the loop to exit. Disabling an idle
// controller is a no-op.
func (a *AutoSaver) Disable() {
	a.mu.Lock()
	if a.state == AutosaveIdle {
		a.mu.Unlock()
		return
	}
	a.state = AutosaveIdle
	stop, done := a.stop, a.done
	a.stop, a.done = nil, nil
	a.mu.Unlock()

	close(stop)
	<-done
}

// Pause suppresses saves without leaving the Watching state.
func (a *AutoSaver) Pause() {
	a.mu.Lock()
	a.paused = true
	a.mu.Unlock()
}

// Resume lifts a previous Pause.
func (a *AutoSaver) Resume() {
	a.mu.Lock()
	a.paused = false
	a.mu.Unlock()
}

// reset returns the controller to Idle after a context-cancelled watch
// loop exits. If Disable already claimed the shutdown (a.done no longer
// matches), the state is left alone.
func (a *AutoSaver) reset(done chan struct{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.done != done {
		return
	}
	a.state = AutosaveIdle
	a.stop, a.done = nil, nil
}

func (a *AutoSaver) watch(ctx context.Context, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			// Nobody will call Disable for us; return to Idle so a later
			// Enable starts a fresh watcher.
			a.reset(done)
			return
		case <-ticker.C:
			if a.Paused() {
				continue
			}
			if !a.session.IsDirty() {
				continue
			}
			if err := a.session.Save(ctx); err != nil {
				// Keep watching: the next tick retries.
				a.session.logger.Error("auto-save failed",
					"workbook", a.session.Name(), "error", err)
				a.session.toast.Error("Failed to save workbook")
			}
		}
	}
}

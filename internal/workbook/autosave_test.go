package workbook

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testInterval keeps autosave tests fast while leaving room for slow CI.
const testInterval = 10 * time.Millisecond

func newAutosaveSession(store *fakeStore) *Session {
	return NewSession(testWorkbook("wb1"), Options{
		Store:    store,
		Autosave: AutosaveOptions{Interval: testInterval},
	})
}

// waitFor polls until cond is true or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal(msg)
}

func TestAutoSaver_PersistsDirtyState(t *testing.T) {
	store := newFakeStore()
	s := newAutosaveSession(store)
	defer s.AutoSave().Disable()

	s.AutoSave().Enable(context.Background())
	assert.Equal(t, AutosaveWatching, s.AutoSave().State())

	s.AddQuery()
	waitFor(t, func() bool { return store.saves() >= 1 }, "dirty workbook was never persisted")
	assert.False(t, s.IsDirty())
}

func TestAutoSaver_CleanStateNotPersisted(t *testing.T) {
	store := newFakeStore()
	s := newAutosaveSession(store)
	defer s.AutoSave().Disable()

	s.AutoSave().Enable(context.Background())
	time.Sleep(5 * testInterval)
	assert.Equal(t, 0, store.saves(), "clean workbook must never be persisted")
}

func TestAutoSaver_DisableStopsAndReenableResumes(t *testing.T) {
	store := newFakeStore()
	s := newAutosaveSession(store)

	s.AutoSave().Enable(context.Background())
	s.AddQuery()
	waitFor(t, func() bool { return store.saves() >= 1 }, "first save never happened")

	s.AutoSave().Disable()
	assert.Equal(t, AutosaveIdle, s.AutoSave().State())

	savesBefore := store.saves()
	s.AddQuery()
	time.Sleep(5 * testInterval)
	assert.Equal(t, savesBefore, store.saves(), "disabled watcher must not persist")
	assert.True(t, s.IsDirty())

	s.AutoSave().Enable(context.Background())
	defer s.AutoSave().Disable()
	waitFor(t, func() bool { return store.saves() > savesBefore }, "re-enabled watcher never resumed saving")
}

func TestAutoSaver_PauseSkipsSavesWithoutLeavingWatching(t *testing.T) {
	store := newFakeStore()
	s := newAutosaveSession(store)
	defer s.AutoSave().Disable()

	s.AutoSave().Enable(context.Background())
	s.AutoSave().Pause()
	assert.Equal(t, AutosaveWatching, s.AutoSave().State(), "pause is a flag, not a state")

	s.AddQuery()
	time.Sleep(5 * testInterval)
	assert.Equal(t, 0, store.saves(), "paused watcher must not persist")

	s.AutoSave().Resume()
	waitFor(t, func() bool { return store.saves() >= 1 }, "resumed watcher never persisted")
}

func TestAutoSaver_EnableIsIdempotent(t *testing.T) {
	store := newFakeStore()
	s := newAutosaveSession(store)
	defer s.AutoSave().Disable()

	ctx := context.Background()
	s.AutoSave().Enable(ctx)
	s.AutoSave().Enable(ctx)
	s.AutoSave().Enable(ctx)
	assert.Equal(t, AutosaveWatching, s.AutoSave().State())

	// A single Disable must fully stop it.
	s.AutoSave().Disable()
	assert.Equal(t, AutosaveIdle, s.AutoSave().State())
	s.AutoSave().Disable() // and disabling again is a no-op
}

func TestAutoSaver_SaveErrorKeepsWatching(t *testing.T) {
	store := newFakeStore()
	store.saveErr = assert.AnError
	s := newAutosaveSession(store)
	defer s.AutoSave().Disable()

	s.AutoSave().Enable(context.Background())
	s.AddQuery()
	time.Sleep(5 * testInterval)

	require.Equal(t, AutosaveWatching, s.AutoSave().State(), "save errors must not stop the watcher")

	// Once the store recovers, the next tick succeeds.
	store.mu.Lock()
	store.saveErr = nil
	store.mu.Unlock()
	waitFor(t, func() bool { return store.saves() >= 1 }, "watcher never recovered after save error")
}

func TestAutoSaver_ContextCancelReturnsToIdle(t *testing.T) {
	store := newFakeStore()
	s := newAutosaveSession(store)

	ctx, cancel := context.WithCancel(context.Background())
	s.AutoSave().Enable(ctx)
	cancel()

	// The loop exits on its own and reports Idle, not a stale Watching.
	waitFor(t, func() bool { return s.AutoSave().State() == AutosaveIdle },
		"cancelled watcher never returned to Idle")

	s.AddQuery()
	time.Sleep(5 * testInterval)
	assert.Equal(t, 0, store.saves(), "cancelled watcher must not persist")

	// A fresh Enable starts a new watcher rather than no-opping on the
	// stale state.
	s.AutoSave().Enable(context.Background())
	defer s.AutoSave().Disable()
	assert.Equal(t, AutosaveWatching, s.AutoSave().State())
	waitFor(t, func() bool { return store.saves() >= 1 }, "re-enabled watcher never persisted")

	// Disabling after a cancelled run is still a clean no-op path.
	s.AutoSave().Disable()
	assert.Equal(t, AutosaveIdle, s.AutoSave().State())
	s.AutoSave().Disable()
}

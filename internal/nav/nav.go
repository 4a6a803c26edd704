// Package nav provides path-based navigation for the workbook UI.
// The state layer computes where the client should go after a mutation
// (sibling tab, entity root, application home) and pushes the path onto
// whatever router implementation is wired in.
package nav

import (
	"fmt"
	"sync"
)

// Router navigates the client to a path.
type Router interface {
	Push(path string)
}

// Noop discards navigation. The HTTP API uses it: redirects are reported in
// responses instead of executed server-side.
type Noop struct{}

// Push implements Router.
func (Noop) Push(string) {}

// Recorder captures pushed paths. Safe for concurrent use: a session's
// router can be pushed to from request handlers and the auto-save watcher
// at the same time.
type Recorder struct {
	mu    sync.Mutex
	paths []string
}

// Push implements Router.
func (r *Recorder) Push(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

// Last returns the most recently pushed path, or "" if none.
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.paths) == 0 {
		return ""
	}
	return r.paths[len(r.paths)-1]
}

// Paths returns a copy of everything pushed so far.
func (r *Recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// Home is the application root.
const Home = "/"

// WorkbookPath returns the workbook root path.
func WorkbookPath(workbook string) string {
	return fmt.Sprintf("/workbook/%s", workbook)
}

// ItemPath returns the tab path for an item within a workbook.
// Kind is the entity segment: "query", "chart", or "dashboard".
func ItemPath(workbook, kind, name string) string {
	return fmt.Sprintf("/workbook/%s/%s/%s", workbook, kind, name)
}

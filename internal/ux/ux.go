// Package ux defines the user-facing collaborators the state layer depends
// on: a confirmation prompt and a toast display. The actual UI lives
// elsewhere; these interfaces exist so destructive operations stay
// confirmation-gated and remote failures have somewhere to surface.
package ux

import "log/slog"

// Confirmer answers a yes/no prompt before a destructive operation runs.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(message string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(message string) bool { return f(message) }

// Always confirms every prompt. Used where the caller has already obtained
// user confirmation (e.g. the HTTP API, where the client shows the dialog).
var Always = ConfirmFunc(func(string) bool { return true })

// Never declines every prompt.
var Never = ConfirmFunc(func(string) bool { return false })

// Toaster displays transient success and error messages.
type Toaster interface {
	Success(message string)
	Error(message string)
}

// LogToaster writes toasts to a slog.Logger. It is the default sink when no
// interactive display is wired up.
type LogToaster struct {
	Logger *slog.Logger
}

// Success implements Toaster.
func (t *LogToaster) Success(message string) {
	t.logger().Info(message)
}

// Error implements Toaster.
func (t *LogToaster) Error(message string) {
	t.logger().Error(message)
}

func (t *LogToaster) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

// CaptureToaster records toasts for inspection in tests.
type CaptureToaster struct {
	Successes []string
	Errors    []string
}

// Success implements Toaster.
func (t *CaptureToaster) Success(message string) {
	t.Successes = append(t.Successes, message)
}

// Error implements Toaster.
func (t *CaptureToaster) Error(message string) {
	t.Errors = append(t.Errors, message)
}

// Package docstore provides the document resource abstraction the workbook
// state layer persists through: generic load/save/delete plus named method
// calls on a document. Two implementations exist: an HTTP client against a
// remote document API, and a local SQLite store.
package docstore

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
)

// Document types known to the state layer.
const (
	DoctypeWorkbook  = "Workbook"
	DoctypeQuery     = "Query"
	DoctypeChart     = "Chart"
	DoctypeDashboard = "Dashboard"
)

// Sharing method names.
const (
	MethodGetShares    = "get_sharing_permissions"
	MethodUpdateShares = "update_sharing_permissions"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Resource is a generic document store. Save upserts; Call invokes a named
// server-side method on a document.
type Resource interface {
	Load(ctx context.Context, doctype, name string) (json.RawMessage, error)
	Save(ctx context.Context, doctype, name string, doc any) error
	Delete(ctx context.Context, doctype, name string) error
	Call(ctx context.Context, doctype, name, method string, args map[string]any) (json.RawMessage, error)
}

// SharePermission is one user's access to a document, expressed as the
// backend's read/write flags.
type SharePermission struct {
	User  string `json:"user"`
	Read  bool   `json:"read"`
	Write bool   `json:"write"`
}

package workbook

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/slatehq/workbench/internal/docstore"
	"github.com/slatehq/workbench/internal/nav"
	"github.com/slatehq/workbench/internal/ux"
)

// Options holds the collaborators a session depends on. Zero-value fields
// get safe defaults: a no-op router, an always-yes confirmer, and a
// slog-backed toaster.
type Options struct {
	Store    docstore.Resource
	Router   nav.Router
	Confirm  ux.Confirmer
	Toast    ux.Toaster
	Logger   *slog.Logger
	Autosave AutosaveOptions
}

func (o *Options) applyDefaults() {
	if o.Router == nil {
		o.Router = nav.Noop{}
	}
	if o.Confirm == nil {
		o.Confirm = ux.Always
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Toast == nil {
		o.Toast = &ux.LogToaster{Logger: o.Logger}
	}
}

// Session is the in-memory instance of one workbook. There is at most one
// session per workbook name per process (see Registry). All mutations go
// through the session so dirty tracking stays accurate.
type Session struct {
	mu    sync.Mutex
	doc   *Workbook
	saved []byte // serialized snapshot of the last persisted state

	store    docstore.Resource
	router   nav.Router
	confirm  ux.Confirmer
	toast    ux.Toaster
	logger   *slog.Logger
	autosave *AutoSaver
}

// NewSession wraps a workbook document in a session. The document is
// considered clean: the current state becomes the persisted snapshot.
func NewSession(doc *Workbook, opts Options) *Session {
	opts.applyDefaults()

	s := &Session{
		doc:     doc,
		store:   opts.Store,
		router:  opts.Router,
		confirm: opts.Confirm,
		toast:   opts.Toast,
		logger:  opts.Logger,
	}
	s.saved = s.snapshot()
	s.autosave = newAutoSaver(s, opts.Autosave)
	return s
}

// LoadSession loads a workbook document from the store and wraps it.
func LoadSession(ctx context.Context, name string, opts Options) (*Session, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("no document store configured")
	}

	raw, err := opts.Store.Load(ctx, docstore.DoctypeWorkbook, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load workbook %s: %w", name, err)
	}

	var doc Workbook
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode workbook %s: %w", name, err)
	}
	doc.Name = name

	return NewSession(&doc, opts), nil
}

// Doc returns a copy of the current document state.
func (s *Session) Doc() Workbook {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := *s.doc
	doc.Queries = append([]QueryRef(nil), s.doc.Queries...)
	doc.Charts = append([]ChartRef(nil), s.doc.Charts...)
	doc.Dashboards = append([]DashboardRef(nil), s.doc.Dashboards...)
	return doc
}

// Name returns the workbook identifier.
func (s *Session) Name() string {
	return s.doc.Name
}

// AutoSave returns the session's auto-save controller.
func (s *Session) AutoSave() *AutoSaver {
	return s.autosave
}

func (s *Session) snapshot() []byte {
	data, err := json.Marshal(s.doc)
	if err != nil {
		// A workbook document is plain data; marshaling cannot fail on
		// well-formed input. Treat a failure as an always-dirty state.
		s.logger.Error("failed to snapshot workbook", "workbook", s.doc.Name, "error", err)
		return nil
	}
	return data
}

// IsDirty reports whether the in-memory state diverges from the last
// persisted snapshot.
func (s *Session) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isDirtyLocked()
}

func (s *Session) isDirtyLocked() bool {
	return !bytes.Equal(s.snapshot(), s.saved)
}

// Save persists the workbook when it is dirty and refreshes the snapshot.
// Saving a clean workbook is a no-op.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isDirtyLocked() {
		return nil
	}

	if err := s.store.Save(ctx, docstore.DoctypeWorkbook, s.doc.Name, s.doc); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", s.doc.Name, err)
	}
	s.saved = s.snapshot()
	return nil
}

// Delete removes the workbook after user confirmation. It returns false
// when the user declines. On success it navigates to the application root;
// the caller is responsible for evicting the session from the registry.
func (s *Session) Delete(ctx context.Context) (bool, error) {
	if !s.confirm.Confirm("Are you sure you want to delete this workbook?") {
		return false, nil
	}

	s.autosave.Disable()

	if err := s.store.Delete(ctx, docstore.DoctypeWorkbook, s.doc.Name); err != nil {
		return false, fmt.Errorf("failed to delete workbook %s: %w", s.doc.Name, err)
	}

	s.router.Push(nav.Home)
	return true, nil
}

// newName generates a document name for a freshly added item.
func newName() string {
	return uuid.New().String()
}

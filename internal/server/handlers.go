package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/slatehq/workbench/internal/docstore"
	"github.com/slatehq/workbench/internal/nav"
	"github.com/slatehq/workbench/internal/query"
	"github.com/slatehq/workbench/internal/server/notifier"
	"github.com/slatehq/workbench/internal/workbook"
)

// Handlers holds the collaborators shared by all route handlers.
type Handlers struct {
	registry *workbook.Registry
	store    docstore.Resource
	notifier *notifier.Notifier
	logger   *slog.Logger
	watchCtx context.Context
}

func newHandlers(
	registry *workbook.Registry,
	store docstore.Resource,
	notify *notifier.Notifier,
	logger *slog.Logger,
	watchCtx context.Context,
) *Handlers {
	return &Handlers{
		registry: registry,
		store:    store,
		notifier: notify,
		logger:   logger,
		watchCtx: watchCtx,
	}
}

// itemResponse reports a mutation result plus the redirect the client
// should follow.
type itemResponse struct {
	Name     string `json:"name,omitempty"`
	Title    string `json:"title,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

type addChartRequest struct {
	Query     string `json:"query"`
	ChartType string `json:"chart_type"`
}

// session materializes the workbook session and makes sure its auto-save
// watcher is running. Enable is idempotent, so calling it on every request
// is safe.
func (h *Handlers) session(ctx context.Context, name string) (*workbook.Session, error) {
	s, err := h.registry.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	s.AutoSave().Enable(h.watchCtx)
	return s, nil
}

// GetWorkbook returns the workbook document, loading it on first access.
func (h *Handlers) GetWorkbook(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r.Context(), chi.URLParam(r, "workbook"))
	if err != nil {
		h.error(w, err)
		return
	}
	h.json(w, http.StatusOK, s.Doc())
}

// DeleteWorkbook deletes the workbook and evicts its session.
func (h *Handlers) DeleteWorkbook(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "workbook")
	s, err := h.session(r.Context(), name)
	if err != nil {
		h.error(w, err)
		return
	}

	deleted, err := s.Delete(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}
	if !deleted {
		h.json(w, http.StatusConflict, map[string]string{"error": "deletion declined"})
		return
	}

	h.registry.Evict(name)
	h.notifier.Broadcast(name)
	h.json(w, http.StatusOK, itemResponse{Redirect: nav.Home})
}

// AddQuery appends a new query to the workbook.
func (h *Handlers) AddQuery(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "workbook")
	s, err := h.session(r.Context(), name)
	if err != nil {
		h.error(w, err)
		return
	}

	ref := s.AddQuery()
	h.notifier.Broadcast(name)
	h.json(w, http.StatusCreated, itemResponse{
		Name: ref.Name, Title: ref.Title,
		Redirect: nav.ItemPath(name, workbook.KindQuery, ref.Name),
	})
}

// RemoveQuery removes a query (and its linked charts) from the workbook.
func (h *Handlers) RemoveQuery(w http.ResponseWriter, r *http.Request) {
	h.removeItem(w, r, func(ctx context.Context, s *workbook.Session) (string, bool, error) {
		return s.RemoveQuery(ctx, chi.URLParam(r, "query"))
	})
}

// AddChart appends a chart bound to a query.
func (h *Handlers) AddChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "workbook")
	s, err := h.session(r.Context(), name)
	if err != nil {
		h.error(w, err)
		return
	}

	var req addChartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.json(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	ref := s.AddChart(req.Query, req.ChartType)
	h.notifier.Broadcast(name)
	h.json(w, http.StatusCreated, itemResponse{
		Name: ref.Name, Title: ref.Title,
		Redirect: nav.ItemPath(name, workbook.KindChart, ref.Name),
	})
}

// RemoveChart removes a chart from the workbook.
func (h *Handlers) RemoveChart(w http.ResponseWriter, r *http.Request) {
	h.removeItem(w, r, func(ctx context.Context, s *workbook.Session) (string, bool, error) {
		return s.RemoveChart(ctx, chi.URLParam(r, "chart"))
	})
}

// AddDashboard appends a new dashboard to the workbook.
func (h *Handlers) AddDashboard(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "workbook")
	s, err := h.session(r.Context(), name)
	if err != nil {
		h.error(w, err)
		return
	}

	ref := s.AddDashboard()
	h.notifier.Broadcast(name)
	h.json(w, http.StatusCreated, itemResponse{
		Name: ref.Name, Title: ref.Title,
		Redirect: nav.ItemPath(name, workbook.KindDashboard, ref.Name),
	})
}

// RemoveDashboard removes a dashboard from the workbook.
func (h *Handlers) RemoveDashboard(w http.ResponseWriter, r *http.Request) {
	h.removeItem(w, r, func(ctx context.Context, s *workbook.Session) (string, bool, error) {
		return s.RemoveDashboard(ctx, chi.URLParam(r, "dashboard"))
	})
}

func (h *Handlers) removeItem(
	w http.ResponseWriter,
	r *http.Request,
	remove func(context.Context, *workbook.Session) (string, bool, error),
) {
	name := chi.URLParam(r, "workbook")
	s, err := h.session(r.Context(), name)
	if err != nil {
		h.error(w, err)
		return
	}

	redirect, removed, err := remove(r.Context(), s)
	if err != nil {
		h.error(w, err)
		return
	}
	if !removed {
		h.json(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.notifier.Broadcast(name)
	h.json(w, http.StatusOK, itemResponse{Redirect: redirect})
}

// GetShare returns who the workbook is shared with, as UI roles.
func (h *Handlers) GetShare(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r.Context(), chi.URLParam(r, "workbook"))
	if err != nil {
		h.error(w, err)
		return
	}

	shares, err := s.SharePermissions(r.Context())
	if err != nil {
		h.error(w, err)
		return
	}
	h.json(w, http.StatusOK, shares)
}

// UpdateShare replaces the workbook's share list. Remote failures surface
// through the session's toast sink, so this always acknowledges.
func (h *Handlers) UpdateShare(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r.Context(), chi.URLParam(r, "workbook"))
	if err != nil {
		h.error(w, err)
		return
	}

	var shares []workbook.UserShare
	if err := json.NewDecoder(r.Body).Decode(&shares); err != nil {
		h.json(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	s.UpdateShare(r.Context(), shares)
	w.WriteHeader(http.StatusNoContent)
}

// LinkedQueries returns the transitive linked-query closure of a query.
func (h *Handlers) LinkedQueries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "query")

	q, err := h.loadQuery(ctx, name)
	if err != nil {
		h.error(w, err)
		return
	}

	// Per-request cache: each referenced query document loads once.
	cache := map[string]*query.Query{name: q}
	lookup := func(ref string) (*query.Query, bool) {
		if cached, ok := cache[ref]; ok {
			return cached, cached != nil
		}
		loaded, err := h.loadQuery(ctx, ref)
		if err != nil {
			if !errors.Is(err, docstore.ErrNotFound) {
				h.logger.Warn("failed to load linked query", "query", ref, "error", err)
			}
			cache[ref] = nil
			return nil, false
		}
		cache[ref] = loaded
		return loaded, true
	}

	linked := query.LinkedQueries(q, lookup)
	if linked == nil {
		linked = []string{}
	}
	h.json(w, http.StatusOK, linked)
}

// Events streams change pings for a workbook as server-sent events.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "workbook")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Subscribe before the headers go out: once the client sees the stream
	// open, no change may slip between the two.
	ch := h.notifier.Subscribe(name)
	defer h.notifier.Unsubscribe(name, ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", name)
			flusher.Flush()
		}
	}
}

func (h *Handlers) loadQuery(ctx context.Context, name string) (*query.Query, error) {
	raw, err := h.store.Load(ctx, docstore.DoctypeQuery, name)
	if err != nil {
		return nil, err
	}
	q := query.New(name)
	if err := json.Unmarshal(raw, q); err != nil {
		return nil, fmt.Errorf("failed to decode query %s: %w", name, err)
	}
	q.Name = name
	return q, nil
}

func (h *Handlers) json(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, docstore.ErrNotFound) {
		status = http.StatusNotFound
	} else {
		h.logger.Error("request failed", "error", err)
	}
	h.json(w, status, map[string]string{"error": err.Error()})
}

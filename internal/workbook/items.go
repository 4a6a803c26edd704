package workbook

import (
	"context"
	"errors"
	"fmt"

	"github.com/slatehq/workbench/internal/docstore"
	"github.com/slatehq/workbench/internal/nav"
)

// AddQuery appends a new query reference with a generated name and default
// title, marks the workbook dirty, and navigates to the new query's tab.
func (s *Session) AddQuery() QueryRef {
	s.mu.Lock()
	ref := QueryRef{
		Name:  newName(),
		Title: fmt.Sprintf("Query %d", len(s.doc.Queries)+1),
	}
	s.doc.Queries = append(s.doc.Queries, ref)
	s.mu.Unlock()

	s.router.Push(nav.ItemPath(s.doc.Name, KindQuery, ref.Name))
	return ref
}

// AddChart appends a chart reference bound to the given query.
func (s *Session) AddChart(queryName, chartType string) ChartRef {
	s.mu.Lock()
	ref := ChartRef{
		Name:      newName(),
		Title:     fmt.Sprintf("Chart %d", len(s.doc.Charts)+1),
		Query:     queryName,
		ChartType: chartType,
	}
	s.doc.Charts = append(s.doc.Charts, ref)
	s.mu.Unlock()

	s.router.Push(nav.ItemPath(s.doc.Name, KindChart, ref.Name))
	return ref
}

// AddDashboard appends a new dashboard reference.
func (s *Session) AddDashboard() DashboardRef {
	s.mu.Lock()
	ref := DashboardRef{
		Name:  newName(),
		Title: fmt.Sprintf("Dashboard %d", len(s.doc.Dashboards)+1),
	}
	s.doc.Dashboards = append(s.doc.Dashboards, ref)
	s.mu.Unlock()

	s.router.Push(nav.ItemPath(s.doc.Name, KindDashboard, ref.Name))
	return ref
}

// RemoveQuery removes a query reference after confirmation. Charts linked to
// the query are removed with it, and the underlying documents are deleted
// from the store. Returns the redirect path pushed onto the router, and
// false when the user declines or the query is not in the workbook.
func (s *Session) RemoveQuery(ctx context.Context, name string) (string, bool, error) {
	if !s.confirm.Confirm("Are you sure you want to delete this query?") {
		return "", false, nil
	}

	s.mu.Lock()
	idx := indexOf(s.doc.Queries, func(q QueryRef) bool { return q.Name == name })
	if idx < 0 {
		s.mu.Unlock()
		return "", false, nil
	}
	s.doc.Queries = removeAt(s.doc.Queries, idx)

	var orphanedCharts []string
	kept := s.doc.Charts[:0]
	for _, c := range s.doc.Charts {
		if c.Query == name {
			orphanedCharts = append(orphanedCharts, c.Name)
			continue
		}
		kept = append(kept, c)
	}
	s.doc.Charts = kept
	redirect := s.redirectAfterRemoveLocked(KindQuery, idx)
	s.mu.Unlock()

	if err := s.deleteDoc(ctx, docstore.DoctypeQuery, name); err != nil {
		return redirect, true, err
	}
	for _, chart := range orphanedCharts {
		if err := s.deleteDoc(ctx, docstore.DoctypeChart, chart); err != nil {
			return redirect, true, err
		}
	}

	s.router.Push(redirect)
	return redirect, true, nil
}

// RemoveChart removes a chart reference after confirmation.
func (s *Session) RemoveChart(ctx context.Context, name string) (string, bool, error) {
	if !s.confirm.Confirm("Are you sure you want to delete this chart?") {
		return "", false, nil
	}

	s.mu.Lock()
	idx := indexOf(s.doc.Charts, func(c ChartRef) bool { return c.Name == name })
	if idx < 0 {
		s.mu.Unlock()
		return "", false, nil
	}
	s.doc.Charts = removeAt(s.doc.Charts, idx)
	redirect := s.redirectAfterRemoveLocked(KindChart, idx)
	s.mu.Unlock()

	if err := s.deleteDoc(ctx, docstore.DoctypeChart, name); err != nil {
		return redirect, true, err
	}

	s.router.Push(redirect)
	return redirect, true, nil
}

// RemoveDashboard removes a dashboard reference after confirmation.
func (s *Session) RemoveDashboard(ctx context.Context, name string) (string, bool, error) {
	if !s.confirm.Confirm("Are you sure you want to delete this dashboard?") {
		return "", false, nil
	}

	s.mu.Lock()
	idx := indexOf(s.doc.Dashboards, func(d DashboardRef) bool { return d.Name == name })
	if idx < 0 {
		s.mu.Unlock()
		return "", false, nil
	}
	s.doc.Dashboards = removeAt(s.doc.Dashboards, idx)
	redirect := s.redirectAfterRemoveLocked(KindDashboard, idx)
	s.mu.Unlock()

	if err := s.deleteDoc(ctx, docstore.DoctypeDashboard, name); err != nil {
		return redirect, true, err
	}

	s.router.Push(redirect)
	return redirect, true, nil
}

// redirectAfterRemoveLocked computes where the client goes after removing
// the item that was at idx: the item that slid into its place, the new last
// item when the removed one was at the end, or the workbook root when the
// list is now empty. Caller holds s.mu.
func (s *Session) redirectAfterRemoveLocked(kind string, idx int) string {
	var names []string
	switch kind {
	case KindQuery:
		for _, q := range s.doc.Queries {
			names = append(names, q.Name)
		}
	case KindChart:
		for _, c := range s.doc.Charts {
			names = append(names, c.Name)
		}
	case KindDashboard:
		for _, d := range s.doc.Dashboards {
			names = append(names, d.Name)
		}
	}

	if len(names) == 0 {
		return nav.WorkbookPath(s.doc.Name)
	}
	if idx >= len(names) {
		idx = len(names) - 1
	}
	return nav.ItemPath(s.doc.Name, kind, names[idx])
}

// deleteDoc deletes an item document, tolerating documents that were never
// persisted (added and removed within one editing session).
func (s *Session) deleteDoc(ctx context.Context, doctype, name string) error {
	err := s.store.Delete(ctx, doctype, name)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("failed to delete %s %s: %w", doctype, name, err)
	}
	return nil
}

func indexOf[T any](list []T, match func(T) bool) int {
	for i, v := range list {
		if match(v) {
			return i
		}
	}
	return -1
}

func removeAt[T any](list []T, idx int) []T {
	return append(list[:idx], list[idx+1:]...)
}

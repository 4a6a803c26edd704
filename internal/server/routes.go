package server

import (
	"context"

	"github.com/go-chi/chi/v5"
)

// setupRoutes registers all API routes. watchCtx bounds the lifetime of
// auto-save watchers started for sessions the API materializes.
func (s *Server) setupRoutes(r chi.Router, watchCtx context.Context) {
	h := newHandlers(s.registry, s.store, s.notifier, s.logger, watchCtx)

	r.Route("/api", func(r chi.Router) {
		r.Route("/workbooks/{workbook}", func(r chi.Router) {
			r.Get("/", h.GetWorkbook)
			r.Delete("/", h.DeleteWorkbook)

			r.Post("/queries", h.AddQuery)
			r.Delete("/queries/{query}", h.RemoveQuery)
			r.Post("/charts", h.AddChart)
			r.Delete("/charts/{chart}", h.RemoveChart)
			r.Post("/dashboards", h.AddDashboard)
			r.Delete("/dashboards/{dashboard}", h.RemoveDashboard)

			r.Get("/share", h.GetShare)
			r.Put("/share", h.UpdateShare)

			r.Get("/events", h.Events)
		})

		r.Get("/queries/{query}/linked", h.LinkedQueries)
	})
}

// Package server exposes the workbook state layer over HTTP: document CRUD
// orchestration, sharing, linked-query resolution, and SSE change
// notifications.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/slatehq/workbench/internal/docstore"
	"github.com/slatehq/workbench/internal/nav"
	"github.com/slatehq/workbench/internal/server/notifier"
	"github.com/slatehq/workbench/internal/ux"
	"github.com/slatehq/workbench/internal/workbook"
)

// Server is the HTTP API server.
type Server struct {
	registry *workbook.Registry
	store    docstore.Resource
	notifier *notifier.Notifier
	listen   string
	logger   *slog.Logger
}

// Config holds configuration for the server.
type Config struct {
	Store            docstore.Resource
	Listen           string
	AutosaveInterval time.Duration
	Logger           *slog.Logger
}

// NewServer creates a new API server instance. Sessions it materializes
// confirm destructive operations automatically (the client shows the dialog
// before calling) and navigate nowhere: handlers report the redirect path
// in responses instead.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := workbook.NewRegistry(workbook.Options{
		Store:   cfg.Store,
		Router:  nav.Noop{},
		Confirm: ux.Always,
		Toast:   &ux.LogToaster{Logger: logger},
		Logger:  logger,
		Autosave: workbook.AutosaveOptions{
			Interval: cfg.AutosaveInterval,
		},
	})

	return &Server{
		registry: registry,
		store:    cfg.Store,
		notifier: notifier.New(),
		listen:   cfg.Listen,
		logger:   logger,
	}
}

// Registry exposes the workbook registry (used by tests and the CLI).
func (s *Server) Registry() *workbook.Registry {
	return s.registry
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting workbench server", "addr", s.listen)

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)
	s.setupRoutes(r, egctx)

	srv := &http.Server{
		Addr:    s.listen,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down workbench server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

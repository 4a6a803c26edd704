// Package commands implements the Workbench CLI commands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/slatehq/workbench/internal/config"
	"github.com/slatehq/workbench/internal/docstore"
	"github.com/slatehq/workbench/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the workbook API server",
		Long: `Start the HTTP API server backing the workbook UI.

Documents persist to a local SQLite store by default, or to a remote
document API when remote_url is configured.`,
		RunE: runServe,
	}

	cmd.Flags().String("listen", "", "listen address (default :8060)")
	cmd.Flags().String("state-path", "", "path to the local document store")
	cmd.Flags().String("remote-url", "", "remote document API base URL")
	cmd.Flags().Int("autosave-interval-ms", 0, "auto-save debounce interval in milliseconds")
	cmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)

	store, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := server.NewServer(server.Config{
		Store:            store,
		Listen:           cfg.Listen,
		AutosaveInterval: cfg.AutosaveInterval(),
		Logger:           logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx)
}

// openStore opens the configured document store: remote when remote_url is
// set, local SQLite otherwise.
func openStore(cfg *config.Config) (docstore.Resource, func(), error) {
	if cfg.RemoteURL != "" {
		return docstore.NewClient(cfg.RemoteURL), func() {}, nil
	}

	if dir := filepath.Dir(cfg.StatePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := docstore.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	cleaner "github.com/rflorenc/databricks-resource-cleaner"
	"github.com/rflorenc/databricks-resource-cleaner/internal/api"
	"github.com/rflorenc/databricks-resource-cleaner/internal/config"
	"github.com/rflorenc/databricks-resource-cleaner/internal/models"
	"github.com/rflorenc/databricks-resource-cleaner/internal/platform"
)

func NewServeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the cleanup page and API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	webFS, err := fs.Sub(cleaner.WebFS, "web")
	if err != nil {
		return fmt.Errorf("embedded web FS: %w", err)
	}
	page, err := api.ParsePage(webFS)
	if err != nil {
		return fmt.Errorf("parsing page template: %w", err)
	}

	server := api.NewServer(ctx, page)
	seedWorkspaces(ctx, server, cfg.Workspaces)

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.NewRouter(server, webFS),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("version", version).Str("listen", cfg.Listen).Msg("dbcleaner starting")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// seedWorkspaces loads the configured workspaces and checks their credentials.
func seedWorkspaces(ctx context.Context, server *api.Server, workspaces []config.WorkspaceConfig) {
	for _, wc := range workspaces {
		ws := &models.Workspace{
			Name:     wc.Name,
			Host:     platform.NormalizeHost(wc.Host),
			Token:    wc.Token,
			Insecure: wc.Insecure,
		}
		ws.Cloud = platform.DetectCloud(ws.Host)
		server.Workspaces.Create(ws)
		log.Info().Str("workspace", ws.Name).Str("host", ws.Host).Msg("loaded workspace")

		if ws.Token == "" {
			server.Workspaces.SetHealth(ws.ID, "error", "no token configured", "")
			log.Warn().Str("workspace", ws.Name).Msg("no token configured")
			continue
		}
		platform.DiscoverAndStore(ctx, server.NewAPI, ws, server.Workspaces)
	}
}

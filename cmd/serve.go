package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bardbit/stremio-mdblist-importer/api"
	"github.com/bardbit/stremio-mdblist-importer/config"
	"github.com/bardbit/stremio-mdblist-importer/handlers"
	"github.com/bardbit/stremio-mdblist-importer/internal/logging"
	"github.com/bardbit/stremio-mdblist-importer/services/catalog"
	"github.com/bardbit/stremio-mdblist-importer/services/mdblist"
	"github.com/bardbit/stremio-mdblist-importer/utils"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(load settingsLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the addon HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := load()
			if err != nil {
				return err
			}
			closer, err := logging.Configure(settings.Log)
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}
			defer closer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, settings)
		},
	}
}

// newHandler assembles the addon HTTP handler from settings.
func newHandler(settings config.Settings) http.Handler {
	client := mdblist.NewClient(settings.MDBList, nil)
	catalogs := catalog.NewService(client, settings.Catalog)

	router := utils.NewRouter()
	handlers.Register(router,
		handlers.NewAddonHandler(catalogs, client, settings),
		handlers.NewStaticHandler(),
		handlers.NewVersionHandler(settings.Addon.Version),
	)
	return api.RequestLogger(router)
}

func runServer(ctx context.Context, settings config.Settings) error {
	server := &http.Server{
		Addr:              settings.Server.Addr(),
		Handler:           newHandler(settings),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] %s %s listening on %s", settings.Addon.Name, settings.Addon.Version, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", server.Addr, err)
		}
	case <-ctx.Done():
	}

	log.Printf("[server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Printf("[server] stopped")
	return nil
}

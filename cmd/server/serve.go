package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amiyamandal-dev/inkwell/internal/api"
	"github.com/amiyamandal-dev/inkwell/internal/api/handlers"
	"github.com/amiyamandal-dev/inkwell/internal/validator"
)

func newServeCommand(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configDir)
		},
	}
}

func runServe(ctx context.Context, configDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, log, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting inkwell server",
		"version", version,
		"mode", cfg.Server.Mode,
		"store", cfg.Database.Mode,
	)

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialise", "error", err)
		return err
	}
	defer a.Close(context.Background())

	if count, err := a.index.Count(); err == nil {
		log.Info("Search index opened", "path", cfg.Search.IndexPath, "document_count", count)
	}

	if err := a.categories.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := validator.RegisterGin(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	router := api.NewRouter(api.Handlers{
		Auth:       handlers.NewAuthHandler(a.users, a.verifications, log),
		Article:    handlers.NewArticleHandler(a.articles, a.uploads, log),
		Category:   handlers.NewCategoryHandler(a.categories, log),
		Tag:        handlers.NewTagHandler(a.tags, log),
		Comment:    handlers.NewCommentHandler(a.comments, log),
		Like:       handlers.NewLikeHandler(a.likes, log),
		Profile:    handlers.NewProfileHandler(a.profiles, log),
		Search:     handlers.NewSearchHandler(a.search, log),
		Share:      handlers.NewShareHandler(a.share, log),
		Statistics: handlers.NewStatisticsHandler(a.stats, log),
		Upload:     handlers.NewUploadHandler(a.uploads, log),
		Admin:      handlers.NewAdminHandler(a.admin, log),
		Health:     handlers.NewHealthHandler(a.store.Backend, a.index, log),
	}, a.jwt, a.store.Users, cfg, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error("Server failed", "error", err)
			return err
		}
	case <-quit:
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		return err
	}

	log.Info("Server stopped gracefully")
	return nil
}

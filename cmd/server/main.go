package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/movie-wallet/internal/api"
	"github.com/dom/movie-wallet/internal/config"
	"github.com/dom/movie-wallet/internal/logger"
	"github.com/dom/movie-wallet/internal/metrics"
	"github.com/dom/movie-wallet/internal/repository"
	"github.com/dom/movie-wallet/internal/repository/postgres"
	"github.com/dom/movie-wallet/internal/service"
	"github.com/dom/movie-wallet/internal/storage/localfs"
	"github.com/dom/movie-wallet/internal/storage/s3store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.LogLevel, cfg.LogFormat)

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL, logger.GormLevel(cfg.Environment))
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Initialize image storage
	images, mediaRoot, err := newImageStore(context.Background(), cfg.Storage)
	if err != nil {
		log.Error("failed to initialize image storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}

	// Initialize services
	services, err := service.NewServices(repos, metrics.InstrumentImageStore(images), cfg)
	if err != nil {
		log.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	// Initialize router
	router := api.NewRouter(services, cfg, mediaRoot)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server starting", "port", cfg.Port, "environment", cfg.Environment, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info("server stopped")
}

// newImageStore returns the configured backend and, for the local backend,
// the directory the router should serve under /media/.
func newImageStore(ctx context.Context, cfg config.StorageConfig) (repository.ImageStore, string, error) {
	switch cfg.Backend {
	case config.StorageS3:
		store, err := s3store.New(ctx, cfg.S3)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	case config.StorageLocal:
		store, err := localfs.New(cfg.Local.Root, cfg.Local.PublicURL)
		if err != nil {
			return nil, "", err
		}
		return store, store.Root(), nil
	default:
		return nil, "", fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

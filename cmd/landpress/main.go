// Package main is the entry point for the landpress API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"landpress/internal/cache"
	"landpress/internal/config"
	"landpress/internal/database"
	"landpress/internal/handlers"
	"landpress/internal/router"
	"landpress/internal/session"
	"landpress/internal/storage"
	"landpress/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	// Connect to PostgreSQL and run pending migrations.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed a default super admin in development (no-op if users exist).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions + public response cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Session cookies are HTTPS-only outside development.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Data stores.
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	contentStore := store.NewContentStore(db)
	settingStore := store.NewSiteSettingStore(db)
	mediaStore := store.NewMediaStore(db)

	// Media storage: S3 when configured, local disk otherwise.
	var backend storage.Backend
	var localFiles *storage.LocalBackend
	if cfg.HasS3() {
		s3Backend, err := storage.NewS3(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize s3 storage", "error", err)
			os.Exit(1)
		}
		backend = s3Backend
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		localFiles, err = storage.NewLocal(cfg.UploadDir, "")
		if err != nil {
			slog.Error("failed to initialize local storage", "error", err)
			os.Exit(1)
		}
		backend = localFiles
		slog.Info("local storage ready", "dir", cfg.UploadDir)
	}

	responseCache := cache.NewResponseCache(valkeyClient, cache.DefaultResponseTTL)

	// Handler groups.
	deps := router.Deps{
		Sessions:   sessionStore,
		Auth:       handlers.NewAuth(sessionStore, userStore),
		Categories: handlers.NewCategories(categoryStore, responseCache),
		Content:    handlers.NewContent(contentStore, categoryStore, responseCache),
		Users:      handlers.NewUsers(userStore),
		Public:     handlers.NewPublic(contentStore, categoryStore, settingStore, responseCache),
		Upload:     handlers.NewUpload(backend, mediaStore),
		Settings:   handlers.NewSettings(settingStore, responseCache),
		LocalFiles: localFiles,
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.New(deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

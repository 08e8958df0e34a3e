// Package main is the entry point for the autopublicador API server.
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

	"autopublicador/internal/ai"
	"autopublicador/internal/cache"
	"autopublicador/internal/config"
	"autopublicador/internal/coordinator"
	"autopublicador/internal/database"
	"autopublicador/internal/handlers"
	"autopublicador/internal/router"
	"autopublicador/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"ai_provider", cfg.AIProvider,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the default theme (no-op if themes already exist).
	if err := database.Seed(db); err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey. The service runs without it; article reads just
	// skip the cache.
	var contentCache *cache.ContentCache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, running without content cache", "error", err)
	} else {
		defer valkeyClient.Close()
		contentCache = cache.NewContentCache(valkeyClient, cache.DefaultContentTTL)
	}

	// Initialize data stores.
	keywordStore := store.NewKeywordStore(db)
	contentStore := store.NewContentStore(db)
	historyStore := store.NewHistoryStore(db)
	themeStore := store.NewThemeStore(db)

	// Initialize the AI provider registry with all configured providers.
	aiRegistry, err := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openai":   {APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		"deepseek": {APIKey: cfg.DeepSeekAPIKey, Model: cfg.DeepSeekModel, BaseURL: cfg.DeepSeekURL},
		"gemini":   {APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel, ModelImage: cfg.GeminiImgModel},
	})
	if err != nil {
		slog.Error("failed to initialize ai providers", "error", err)
		os.Exit(1)
	}

	if cfg.ImageEnabled && !aiRegistry.SupportsImageGeneration(cfg.ImageProvider) {
		slog.Error("image generation enabled but the image provider is not usable",
			"provider", cfg.ImageProvider, "error", ai.ErrProviderUnavailable)
		os.Exit(1)
	}

	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)

	// The coordinator drives the keyword-to-article pipeline.
	coord := coordinator.New(keywordStore, contentStore, historyStore, aiRegistry, coordinator.Options{
		MaxAttempts:      cfg.MaxAttempts,
		JobTimeout:       cfg.JobTimeout,
		MaxContentLength: cfg.MaxContentLength,
		Language:         cfg.ContentLanguage,
		Style:            cfg.WritingStyle,
		ImageEnabled:     cfg.ImageEnabled,
		ImageProvider:    cfg.ImageProvider,
		ImageSize:        cfg.ImageSize,
	})

	api := handlers.NewAPI(keywordStore, contentStore, historyStore, themeStore, coord, contentCache)

	// Set up the Chi router with all middleware and routes.
	r := router.New(api, router.Options{
		RateLimitEnabled: cfg.RateLimitEnabled,
		RequestsPerMin:   cfg.RequestsPerMin,
		RequestsPerHour:  cfg.RequestsPerHour,
	})

	// WriteTimeout must accommodate the worst-case generation request:
	// every retry attempt at the full per-attempt budget, plus backoff
	// slack. A shorter timeout would drop the response of a job that
	// succeeded on its final attempt.
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: time.Duration(attempts)*cfg.JobTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
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

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

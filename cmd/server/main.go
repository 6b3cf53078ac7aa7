package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clairon-backend/internal/config"
	"clairon-backend/internal/database"
	"clairon-backend/internal/handlers"
	"clairon-backend/internal/logging"
	"clairon-backend/internal/middleware"
	"clairon-backend/internal/repository"
	"clairon-backend/internal/router"
	"clairon-backend/internal/services"
	"clairon-backend/internal/supabase"
	"clairon-backend/migrations"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	logger, closeLog := logging.Setup(cfg.LogFile, cfg.LogLevel)
	defer closeLog()
	logger.Info("🚀 Starting Clairon Backend...", "env", cfg.Env)
	logger.Info("✓ Environment variables loaded")

	fatal := func(msg string, err error) {
		logger.Error(msg, "error", err)
		closeLog()
		os.Exit(1)
	}

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		fatal("✗ PostgreSQL connection failed", err)
	}
	defer pool.Close()
	logger.Info("✓ PostgreSQL connected")

	// ──── Step 3: Run Database Migrations ────
	if err := database.RunMigrations(pool, migrations.FS, logger); err != nil {
		fatal("✗ Database migration failed", err)
	}
	logger.Info("✓ Database migrations applied")

	// ──── Step 4: Initialize Redis Client ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		fatal("✗ Redis connection failed", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		logger.Info("✓ Redis connected")
	} else {
		logger.Warn("REDIS_URL not set, magic-link cooldown disabled")
	}

	// ──── Step 5: Initialize Supabase Client ────
	supabaseClient, err := supabase.New(supabase.Config{URL: cfg.SupabaseURL, APIKey: cfg.SupabaseKey})
	if err != nil {
		fatal("✗ Supabase client initialization failed", err)
	}
	defer supabaseClient.Close()
	logger.Info("✓ Supabase client initialized")

	// ──── Step 6: Initialize Chat Completion Client ────
	completionService := services.NewCompletionService(services.CompletionConfig{
		APIKey:    cfg.OpenRouterAPIKey,
		BaseURL:   cfg.OpenRouterBaseURL,
		Model:     cfg.OpenRouterModel,
		SiteURL:   cfg.SiteURL,
		AppTitle:  cfg.AppTitle,
		MaxTokens: cfg.ChatMaxTokens,
		Timeout:   cfg.OpenRouterTimeout,
	}, &http.Client{Timeout: cfg.OpenRouterTimeout}, logger)
	if completionService.Configured() {
		logger.Info("✓ Chat completion client initialized", "model", cfg.OpenRouterModel)
	} else {
		logger.Warn("OPENROUTER_API_KEY not set, support chat runs in demo mode")
	}

	// ──── Initialize Repositories & Services ────
	journalRepo := repository.NewJournalRepo(pool)
	supabaseAuth := middleware.NewSupabaseAuth(cfg.SupabaseJWTSecret)
	authService := services.NewAuthService(supabaseClient, redisClient, logger)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService, logger)
	supportHandler := handlers.NewSupportHandler(completionService, logger)
	journalHandler := handlers.NewJournalHandler(journalRepo, logger)
	moodHandler := handlers.NewMoodHandler(supabaseClient, logger)

	// ──── Step 7: Start HTTP Server ────
	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	r := router.New(
		supabaseAuth,
		authLimiter,
		authHandler,
		supportHandler,
		journalHandler,
		moodHandler,
		cfg.FrontendURL,
	)

	// WriteTimeout leaves headroom over the provider timeout.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.OpenRouterTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down...")
		authLimiter.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	logger.Info(fmt.Sprintf("✓ Clairon Backend ready on http://localhost:%s", cfg.Port))
	logger.Info(fmt.Sprintf("  API: http://localhost:%s/api", cfg.Port))

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		fatal("Server error", err)
	}
}

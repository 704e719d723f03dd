package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eschool/internal/api/v1/router"
	"eschool/internal/config"
	"eschool/internal/logger"
	"eschool/internal/secrets"

	"github.com/joho/godotenv"
)

// @title eSchool API
// @version 1.0
// @description Course marketplace API documentation
// @host localhost:8080
// @BasePath /v1
// @Schemes http https

func main() {
	logger := logger.New()

	// 1. Load configuration
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}

	// 2. Resolve the Stripe key from Secret Manager when not set directly
	if cfg.StripeSecretKey == "" && cfg.GCPProjectID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		resolver, err := secrets.NewResolver(ctx, cfg)
		if err != nil {
			cancel()
			logger.Fatal().Msgf("Failed to create secrets resolver: %v", err)
		}
		key, err := resolver.Resolve(ctx, cfg.StripeSecretName)
		resolver.Close()
		cancel()
		if err != nil {
			logger.Fatal().Msgf("Failed to resolve Stripe secret: %v", err)
		}
		cfg.StripeSecretKey = key
	}

	// 3. Build router (and get DB connection)
	r, db, err := router.New(cfg, logger)
	if err != nil {
		logger.Fatal().Msgf("Failed to build router: %v", err)
	}
	defer db.Close()

	// 4. Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Start server in a goroutine
	go func() {
		logger.Info().Msgf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Msgf("Listen: %s\n", err)
		}
	}()

	// 6. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutdown signal received, exiting...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Msgf("Server forced to shutdown: %v", err)
	}
	logger.Info().Msg("Server shut down gracefully")
}

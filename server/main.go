package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"openai-image-gateway/internal/config"
	"openai-image-gateway/internal/http/handlers"
	"openai-image-gateway/internal/http/routes"
	"openai-image-gateway/internal/ratelimit"
	"openai-image-gateway/internal/services/events"
	"openai-image-gateway/internal/services/openai"
	"openai-image-gateway/internal/services/resolver"
	"openai-image-gateway/internal/services/storage"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Admission gate
	limiter := ratelimit.New(cfg.RateLimit.PerMinute, time.Minute)
	limiter.StartEviction(ctx, time.Minute)

	// Storage (local disk, optional supabase + redis)
	store, err := storage.New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage service", zap.Error(err))
	}

	// Optional event publisher
	var publisher *events.Publisher
	if cfg.RabbitMQ.URL != "" {
		publisher, err = events.New(cfg.RabbitMQ.URL, logger)
		if err != nil {
			logger.Warn("Failed to initialize event publisher", zap.Error(err))
			// Continue without events for basic functionality
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	res := resolver.New(
		cfg.Storage.MaxFileSize,
		cfg.Storage.AllowedContentTypes(),
		store.Redis(),
		cfg.Storage.CacheDuration,
		logger,
	)

	client := openai.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Timeout, logger)
	service := openai.NewService(client, res, store, publisher, logger)

	imageHandler := handlers.NewImageHandler(service, res, store, logger, cfg)
	router := routes.NewRouter(imageHandler, limiter, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

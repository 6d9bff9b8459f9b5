package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rental-terms-qa/internal/api"
	"rental-terms-qa/internal/api/handlers"
	"rental-terms-qa/internal/app"
	"rental-terms-qa/pkg/config"
	"rental-terms-qa/pkg/logger"

	"go.uber.org/zap"
)

// @title Rental Terms Q&A API
// @version 1.0
// @description Answers questions about car rental terms with retrieval-augmented generation

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Output); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting Rental Terms Q&A service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	if cfg.Embedding.Preload {
		application.Preload(ctx)
	}

	// Initialize handlers
	qaHandler := handlers.NewQAHandler(application.QA, appLogger)
	healthHandler := handlers.NewHealthHandler(application.QA, application.Index.Name())

	// Setup router
	server := api.SetupRouter(qaHandler, healthHandler, &cfg.Server, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := server.Listen(addr); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	if err := server.Shutdown(); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
}

// Package main is the entry point for the quantum portfolio optimization service.
// It wires the mock market data generator, the optimizer, the predictions store,
// and the backtest engine behind an HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/quantumfolio/quantumfolio/internal/config"
	"github.com/quantumfolio/quantumfolio/internal/database"
	"github.com/quantumfolio/quantumfolio/internal/modules/backtest"
	"github.com/quantumfolio/quantumfolio/internal/modules/market"
	"github.com/quantumfolio/quantumfolio/internal/modules/optimization"
	optimizationhandlers "github.com/quantumfolio/quantumfolio/internal/modules/optimization/handlers"
	"github.com/quantumfolio/quantumfolio/internal/modules/predictions"
	"github.com/quantumfolio/quantumfolio/internal/server"
	"github.com/quantumfolio/quantumfolio/pkg/logger"
)

// main orchestrates the startup sequence:
// 1. Loads configuration from environment variables
// 2. Initializes logging
// 3. Opens the predictions database
// 4. Wires the market generator, optimizer, and services
// 5. Starts the HTTP server
// 6. Waits for a shutdown signal and shuts down gracefully
func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger with config level
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Msg("Starting quantum portfolio service")

	// Open the predictions database. Optimization results are recorded here so
	// past runs can be listed and inspected via the API.
	db, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "predictions.db"),
		Profile: database.ProfileStandard,
		Name:    "predictions",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open predictions database")
	}
	defer db.Close()

	predictionsRepo, err := predictions.NewRepository(db.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize predictions repository")
	}

	// Wire services. The market generator produces the deterministic mock
	// universe the optimizer runs against; the optimization service records
	// every completed run through the predictions repository.
	generator := market.NewGenerator(cfg.MarketSeed, log)
	optimizer := optimization.NewOptimizerWithSeed(cfg.VQESeed, log)
	optimizationSvc := optimization.NewService(optimizer, log)
	optimizationSvc.SetRecorder(predictionsRepo)
	backtestSvc := backtest.NewService(log)

	srv := server.New(server.Config{
		Log:                 log,
		Port:                cfg.Port,
		DevMode:             cfg.DevMode,
		OptimizationHandler: optimizationhandlers.NewHandler(generator, optimizationSvc, log),
		BacktestHandler:     backtest.NewHandler(backtestSvc, log),
		PredictionsHandler:  predictions.NewHandler(predictionsRepo, log),
	})

	// Start server in goroutine so main can block on the shutdown signal.
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Give in-flight requests up to 10 seconds to finish.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

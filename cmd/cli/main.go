// Package main is an interactive CLI for running quantum portfolio
// predictions against the deterministic mock market. It drives the same
// optimizer and allocation pipeline as the HTTP service, with the simulated
// quantum backend pacing the progress output.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantumfolio/quantumfolio/internal/config"
	"github.com/quantumfolio/quantumfolio/internal/modules/market"
	"github.com/quantumfolio/quantumfolio/internal/modules/optimization"
	"github.com/quantumfolio/quantumfolio/internal/modules/quantum"
	"github.com/quantumfolio/quantumfolio/pkg/logger"
)

// stageLatency paces the simulated backend progress output.
const stageLatency = 500 * time.Millisecond

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("QuantumFolio - Quantum Portfolio Prediction CLI")
	fmt.Println(strings.Repeat("=", 60))

	backend := quantum.NewBackend(log).WithLatency(stageLatency)
	if err := backend.Connect(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to quantum backend")
	}

	generator := market.NewGenerator(cfg.MarketSeed, log)
	optimizer := optimization.NewOptimizerWithSeed(cfg.VQESeed, log)
	service := optimization.NewService(optimizer, log)

	fmt.Println()
	fmt.Println("Available quantum algorithms:")
	fmt.Println("1. QAOA (Quantum Approximate Optimization Algorithm)")
	fmt.Println("2. VQE (Variational Quantum Eigensolver)")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nSelect algorithm (1 for QAOA, 2 for VQE, or 'exit' to quit): ")
		if !scanner.Scan() {
			break
		}
		choice := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(choice) {
		case "exit":
			log.Info().Msg("Exiting Quantum Portfolio Predictor")
			return
		case "1":
			runPrediction(log, backend, generator, service, "QAOA")
		case "2":
			runPrediction(log, backend, generator, service, "VQE")
		default:
			fmt.Println("Invalid choice. Please enter 1, 2, or 'exit'")
		}
	}
}

// runPrediction runs one prediction end to end and prints the allocation.
func runPrediction(log zerolog.Logger, backend *quantum.Backend, generator *market.Generator, service *optimization.Service, algorithm string) {
	ctx := context.Background()

	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("STARTING QUANTUM PORTFOLIO PREDICTION")
	fmt.Println(strings.Repeat("=", 60))

	log.Info().
		Str("assets", strings.Join(market.DefaultUniverse, ", ")).
		Str("algorithm", algorithm).
		Msg("Preparing portfolio prediction")

	log.Info().Msg("Generating market data...")
	snapshot := generator.Snapshot(market.DefaultUniverse)

	backend.PrepareCircuit(algorithm, len(snapshot.Assets))
	if err := backend.RunStages(ctx, algorithm); err != nil {
		log.Error().Err(err).Msg("Quantum stages interrupted")
		return
	}

	result, err := service.Predict(snapshot.Assets, snapshot.Returns, snapshot.Covariance, 0.5, algorithm)
	if err != nil {
		log.Error().Err(err).Msg("Prediction failed")
		return
	}
	if result == nil {
		log.Error().Str("algorithm", algorithm).Msg("Unknown algorithm")
		return
	}
	if result.Status != optimization.StatusSuccess {
		log.Error().Str("error", result.Error).Msg("Optimization did not converge")
		return
	}

	allocation := service.ToAllocation(result, snapshot.Assets)

	fmt.Println()
	fmt.Println("QUANTUM PREDICTION RESULTS:")
	fmt.Println(strings.Repeat("-", 40))
	for _, entry := range allocation {
		fmt.Printf("   %s: %.1f%%\n", entry.Asset, entry.Percentage)
	}
	if result.ObjectiveValue != nil {
		fmt.Printf("   Expected Return: %.2f%%\n", *result.ObjectiveValue*100)
	}
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\n%s Prediction Complete!\n", result.Algorithm)
}

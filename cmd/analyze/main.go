package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"stocklens/pkg/core/config"
	"stocklens/pkg/core/pipeline"
	"stocklens/pkg/core/store"
	"stocklens/pkg/core/valuation"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	inputPath := flag.String("input", "", "path to fetched data JSON")
	outputDir := flag.String("output", "./output", "output directory")
	configPath := flag.String("config", "", "optional hjson config file")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("Error: --input is required")
	}

	cfg := config.FromEnv()
	if *configPath != "" {
		if err := config.LoadFile(*configPath, &cfg); err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx := context.Background()

	orchestrator := pipeline.NewOrchestrator(cfg, valuation.NewHTTPRateFetcher(logger), logger)
	if cfg.DatabaseURL != "" {
		if err := store.InitDB(ctx, cfg.DatabaseURL); err != nil {
			logger.WithError(err).Warn("database unavailable, continuing without persistence")
		} else {
			defer store.Close()
			orchestrator.SetRepository(store.NewRunRepo())
		}
	}

	raw, err := os.ReadFile(*inputPath)
	if err != nil {
		logger.Fatalf("failed to read input: %v", err)
	}

	result, err := orchestrator.Run(ctx, raw)
	if err != nil {
		logger.Fatalf("run failed: %v", err)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Fatalf("failed to create output directory: %v", err)
	}

	base := strings.ReplaceAll(result.Analysis.Symbol, ".", "_")
	if base == "" {
		base = "unknown"
	}

	if err := writeJSON(filepath.Join(*outputDir, base+"_analysis.json"), result.Analysis); err != nil {
		logger.Fatalf("failed to write analysis: %v", err)
	}
	if err := writeJSON(filepath.Join(*outputDir, base+"_valuation.json"), result.Valuation); err != nil {
		logger.Fatalf("failed to write valuation: %v", err)
	}

	logger.WithField("output", *outputDir).Info("analysis written")
}

func writeJSON(path string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

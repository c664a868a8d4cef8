// Command preprocess runs one full recompute over the market and landings
// workbooks and publishes the output tables with their manifest.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fishintel/internal/config"
	"fishintel/internal/infrastructure"
	"fishintel/internal/operations"
	"fishintel/pkg/contracts"
)

func main() {
	configFile := flag.String("config", "", "YAML config file (overrides FISH_CONFIG_FILE)")
	envFile := flag.String("env", ".env", "dotenv file loaded before the environment is read")
	baseDir := flag.String("base", "", "base directory for relative paths (defaults to the working directory)")
	timeout := flag.Duration("timeout", config.DefaultRunTimeout, "abort the run after this long")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	if err := loadEnv(*envFile, *configFile); err != nil {
		slog.Error("Failed to load environment", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *baseDir != "" {
		cfg.Paths.BaseDir = *baseDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	result, err := preprocess(ctx, cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Preprocessing failed", slog.String("error", err.Error()))
		stop()
		cancel()
		infrastructure.CloseLogFile()
		os.Exit(1)
	}

	fmt.Printf("published %d tables to %s (run %s, %s)\n",
		len(result.Manifest.Files), result.OutputDir, result.RunID, result.Duration.Round(time.Millisecond))
}

// loadEnv applies a dotenv file without overriding variables already set.
// A missing file is not an error.
func loadEnv(envFile, configFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	if configFile != "" {
		return os.Setenv(config.EnvPrefix+"_CONFIG_FILE", configFile)
	}
	return nil
}

// preprocess resolves paths, sets up telemetry and executes one pipeline run
func preprocess(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*operations.RunResult, error) {
	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.WarnContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}()

	tracer, err := operations.NewPipelineTracer(providers)
	if err != nil {
		return nil, err
	}

	pipeline, err := operations.NewPipeline(cfg.Pipeline, paths, logger, tracer)
	if err != nil {
		return nil, err
	}
	return pipeline.Run(ctx)
}

// Command web serves the published dataset read-only over HTTP.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"fishintel/internal/app"
	"fishintel/internal/config"
	"fishintel/internal/infrastructure"
	"fishintel/pkg/contracts"
)

func main() {
	configFile := flag.String("config", "", "YAML config file (overrides FISH_CONFIG_FILE)")
	envFile := flag.String("env", ".env", "dotenv file loaded before the environment is read")
	port := flag.Int("port", 0, "listen port (overrides FISH_SERVER_PORT)")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	if err := run(*envFile, *configFile, *port); err != nil {
		slog.Error("Server failed", "error", err)
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
}

func run(envFile, configFile string, port int) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	if configFile != "" {
		if err := os.Setenv(config.EnvPrefix+"_CONFIG_FILE", configFile); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if port != 0 {
		cfg.Server.Port = port
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid port: %w", err)
		}
	}
	// The server shares the pipeline's telemetry settings but reports
	// under its own service name.
	if cfg.Telemetry.ServiceName == config.ServiceName {
		cfg.Telemetry.ServiceName = config.AppName + "-web"
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return err
	}
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	application, err := app.NewApplication(cfg, paths, logger, providers)
	if err != nil {
		return err
	}
	return application.Run()
}

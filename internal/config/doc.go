// Package config loads and validates the configuration of the preprocessing
// run and the read-only server.
//
// # Configuration Sources
//
// Values are layered, later sources overriding earlier ones:
//
//  1. Default values (Default)
//  2. A YAML file named by FISH_CONFIG_FILE, or config.yaml if present
//  3. Environment variables
//
// # Environment Variables
//
// Variables follow the pattern FISH_<SECTION>_<FIELD>:
//
//	FISH_PATHS_RAW_DIR=data/raw_data
//	FISH_PATHS_PRO_DIR=data/pro_data
//	FISH_PIPELINE_TOP_N=10
//	FISH_PIPELINE_MARKET_SHEETS=鮮魚データ,冷凍魚データ,塩干データ
//	FISH_LOGGING_LEVEL=debug
//	FISH_SERVER_PORT=8080
//
// # Path Management
//
// ResolvePaths turns PathsConfig into absolute Paths. Nothing in this package
// is process-global: callers pass the resolved values down explicitly.
//
//	cfg, err := config.Load()
//	paths, err := config.ResolvePaths(cfg.Paths)
package config

package config

import (
	"time"

	"fishintel/pkg/contracts"
)

// Application constants
const (
	AppName     = "fishintel"
	ServiceName = "fishintel-preprocess"
	EnvPrefix   = "FISH"

	// Output contract
	ManifestVersion  = contracts.ManifestVersion
	ManifestFileName = "manifest.json"

	// Pipeline defaults
	DefaultTopN            = 10
	DefaultMinCorrelationN = 5
	DefaultLandingsSheet   = "水揚げデータ"

	// File Paths (relative to the base directory)
	DefaultRawDir       = "data/raw_data"
	DefaultProDir       = "data/pro_data"
	DefaultMarketFile   = "market.xlsx"
	DefaultLandingsFile = "landings.xlsx"
	DefaultLogsDir      = "logs"
	DefaultWebDir       = "web"

	// Staging directories live next to the output directory so that the
	// publish step is a same-filesystem rename.
	StagingPrefix = ".staging-"
	BackupSuffix  = ".previous"

	// Rate Limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRunTimeout = 10 * time.Minute
)

// DefaultMarketSheets lists the wholesale-market category sheets, in the
// order their categories are reported.
var DefaultMarketSheets = []string{"鮮魚データ", "冷凍魚データ", "塩干データ"}

package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// PathsConfig contains file system locations. Relative paths are resolved
// against BaseDir (or the working directory when BaseDir is empty).
type PathsConfig struct {
	BaseDir      string `yaml:"base_dir" envconfig:"BASE_DIR"`
	RawDir       string `yaml:"raw_dir" envconfig:"RAW_DIR" validate:"required"`
	ProDir       string `yaml:"pro_dir" envconfig:"PRO_DIR" validate:"required"`
	MarketFile   string `yaml:"market_file" envconfig:"MARKET_FILE" validate:"required"`
	LandingsFile string `yaml:"landings_file" envconfig:"LANDINGS_FILE" validate:"required"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
	WebDir       string `yaml:"web_dir" envconfig:"WEB_DIR"`
}

// PipelineConfig contains the tuning knobs of a preprocessing run
type PipelineConfig struct {
	TopN            int      `yaml:"top_n" envconfig:"TOP_N" validate:"gte=1"`
	MinCorrelationN int      `yaml:"min_correlation_n" envconfig:"MIN_CORRELATION_N" validate:"gte=2"`
	ManifestVersion string   `yaml:"manifest_version" envconfig:"MANIFEST_VERSION" validate:"required"`
	MarketSheets    []string `yaml:"market_sheets" envconfig:"MARKET_SHEETS" validate:"min=1,dive,required"`
	LandingsSheet   string   `yaml:"landings_sheet" envconfig:"LANDINGS_SHEET" validate:"required"`
	// Month columns of the landings sheet; empty means 数量01月..数量12月 and 金額01月..金額12月
	QtyMonthColumns []string `yaml:"qty_month_columns" envconfig:"QTY_MONTH_COLUMNS" validate:"omitempty,len=12,dive,required"`
	AmtMonthColumns []string `yaml:"amt_month_columns" envconfig:"AMT_MONTH_COLUMNS" validate:"omitempty,len=12,dive,required"`
	Parallel        bool     `yaml:"parallel" envconfig:"PARALLEL"`
	RunReport       bool     `yaml:"run_report" envconfig:"RUN_REPORT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	Enabled        bool    `yaml:"enabled" envconfig:"ENABLED"`
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// Load builds the configuration in three layers: defaults, then the YAML
// file (if any), then FISH_* environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := getConfigFilePath(); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML document onto cfg; keys absent from the
// file keep their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the explicit FISH_CONFIG_FILE, or the first
// conventional location that exists.
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG_FILE"); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report yaml key names so errors match what the operator wrote
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks the struct tags and the cross-field rules
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}

	if (len(c.Pipeline.QtyMonthColumns) == 0) != (len(c.Pipeline.AmtMonthColumns) == 0) {
		return fmt.Errorf("qty_month_columns and amt_month_columns must be set together")
	}

	seen := make(map[string]bool, len(c.Pipeline.MarketSheets))
	for _, sheet := range c.Pipeline.MarketSheets {
		if seen[sheet] {
			return fmt.Errorf("duplicate market sheet %q", sheet)
		}
		seen[sheet] = true
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			RawDir:       DefaultRawDir,
			ProDir:       DefaultProDir,
			MarketFile:   DefaultMarketFile,
			LandingsFile: DefaultLandingsFile,
			LogsDir:      DefaultLogsDir,
			WebDir:       DefaultWebDir,
		},
		Pipeline: PipelineConfig{
			TopN:            DefaultTopN,
			MinCorrelationN: DefaultMinCorrelationN,
			ManifestVersion: ManifestVersion,
			MarketSheets:    append([]string(nil), DefaultMarketSheets...),
			LandingsSheet:   DefaultLandingsSheet,
			Parallel:        true,
			RunReport:       true,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Telemetry: TelemetryConfig{
			Enabled:        false,
			ServiceName:    ServiceName,
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}

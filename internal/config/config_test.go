package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile writes a YAML document and points FISH_CONFIG_FILE at it
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("FISH_CONFIG_FILE", path)
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 10, cfg.Pipeline.TopN)
				assert.Equal(t, 5, cfg.Pipeline.MinCorrelationN)
				assert.Equal(t, "2.4", cfg.Pipeline.ManifestVersion)
				assert.Equal(t, []string{"鮮魚データ", "冷凍魚データ", "塩干データ"}, cfg.Pipeline.MarketSheets)
				assert.Equal(t, "水揚げデータ", cfg.Pipeline.LandingsSheet)
				assert.True(t, cfg.Pipeline.Parallel)

				assert.Equal(t, "data/raw_data", cfg.Paths.RawDir)
				assert.Equal(t, "data/pro_data", cfg.Paths.ProDir)
				assert.Equal(t, "market.xlsx", cfg.Paths.MarketFile)
				assert.Equal(t, "landings.xlsx", cfg.Paths.LandingsFile)

				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.True(t, cfg.Server.RateLimit.Enabled)
				assert.False(t, cfg.Telemetry.Enabled)
			},
		},
		{
			name: "environment variables override defaults",
			env: map[string]string{
				"FISH_PIPELINE_TOP_N":         "3",
				"FISH_PIPELINE_MARKET_SHEETS": "鮮魚データ,塩干データ",
				"FISH_PIPELINE_PARALLEL":      "false",
				"FISH_PATHS_PRO_DIR":          "/srv/out",
				"FISH_LOGGING_LEVEL":          "debug",
				"FISH_SERVER_READ_TIMEOUT":    "5s",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3, cfg.Pipeline.TopN)
				assert.Equal(t, []string{"鮮魚データ", "塩干データ"}, cfg.Pipeline.MarketSheets)
				assert.False(t, cfg.Pipeline.Parallel)
				assert.Equal(t, "/srv/out", cfg.Paths.ProDir)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				// untouched values keep their defaults
				assert.Equal(t, 5, cfg.Pipeline.MinCorrelationN)
			},
		},
		{
			name: "config file overlays defaults",
			file: `
pipeline:
  top_n: 7
  landings_sheet: landings
paths:
  raw_dir: in
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7, cfg.Pipeline.TopN)
				assert.Equal(t, "landings", cfg.Pipeline.LandingsSheet)
				assert.Equal(t, "in", cfg.Paths.RawDir)
				assert.Equal(t, "data/pro_data", cfg.Paths.ProDir)
				assert.Equal(t, 5, cfg.Pipeline.MinCorrelationN)
			},
		},
		{
			name: "environment overrides config file",
			env:  map[string]string{"FISH_PIPELINE_TOP_N": "4"},
			file: "pipeline:\n  top_n: 7\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 4, cfg.Pipeline.TopN)
			},
		},
		{
			name:    "top n below one is rejected",
			env:     map[string]string{"FISH_PIPELINE_TOP_N": "0"},
			wantErr: "top_n",
		},
		{
			name:    "correlation minimum below two is rejected",
			env:     map[string]string{"FISH_PIPELINE_MIN_CORRELATION_N": "1"},
			wantErr: "min_correlation_n",
		},
		{
			name:    "invalid log level",
			env:     map[string]string{"FISH_LOGGING_LEVEL": "verbose"},
			wantErr: "level",
		},
		{
			name:    "empty output directory",
			file:    "paths:\n  pro_dir: \"\"\n",
			wantErr: "pro_dir",
		},
		{
			name:    "malformed env value",
			env:     map[string]string{"FISH_PIPELINE_TOP_N": "ten"},
			wantErr: "failed to load config from env",
		},
		{
			name:    "malformed config file",
			file:    "pipeline: [unclosed",
			wantErr: "failed to load config from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FISH_CONFIG_FILE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.file != "" {
				writeConfigFile(t, tt.file)
			}

			cfg, err := Load()

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Setenv("FISH_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.yaml")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "default is valid", mutate: func(*Config) {}},
		{
			name:    "no market sheets",
			mutate:  func(c *Config) { c.Pipeline.MarketSheets = nil },
			wantErr: "market_sheets",
		},
		{
			name:    "blank market sheet",
			mutate:  func(c *Config) { c.Pipeline.MarketSheets = []string{"鮮魚データ", ""} },
			wantErr: "market_sheets",
		},
		{
			name:    "duplicate market sheet",
			mutate:  func(c *Config) { c.Pipeline.MarketSheets = []string{"鮮魚データ", "鮮魚データ"} },
			wantErr: "duplicate market sheet",
		},
		{
			name: "explicit month columns",
			mutate: func(c *Config) {
				c.Pipeline.QtyMonthColumns = monthNames("数量")
				c.Pipeline.AmtMonthColumns = monthNames("金額")
			},
		},
		{
			name: "eleven month columns",
			mutate: func(c *Config) {
				c.Pipeline.QtyMonthColumns = monthNames("数量")[:11]
				c.Pipeline.AmtMonthColumns = monthNames("金額")
			},
			wantErr: "qty_month_columns",
		},
		{
			name:    "only quantity month columns",
			mutate:  func(c *Config) { c.Pipeline.QtyMonthColumns = monthNames("数量") },
			wantErr: "must be set together",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "port",
		},
		{
			name:    "file logging without a path",
			mutate:  func(c *Config) { c.Logging.Output = "file"; c.Logging.FilePath = "" },
			wantErr: "file_path",
		},
		{
			name:   "console logging without a path",
			mutate: func(c *Config) { c.Logging.Output = "console"; c.Logging.FilePath = "" },
		},
		{
			name:    "unknown trace exporter",
			mutate:  func(c *Config) { c.Telemetry.TraceExporter = "otlp" },
			wantErr: "trace_exporter",
		},
		{
			name:    "sample ratio above one",
			mutate:  func(c *Config) { c.Telemetry.SampleRatio = 1.5 },
			wantErr: "sample_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefault_ReturnsIndependentCopies(t *testing.T) {
	a := Default()
	b := Default()
	a.Pipeline.MarketSheets[0] = "changed"

	assert.Equal(t, "鮮魚データ", b.Pipeline.MarketSheets[0])
	assert.Equal(t, "鮮魚データ", DefaultMarketSheets[0])
}

func monthNames(prefix string) []string {
	names := make([]string, 12)
	for i := range names {
		names[i] = fmt.Sprintf("%s%02d月", prefix, i+1)
	}
	return names
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the absolute locations used by a run.
// It is derived from PathsConfig by ResolvePaths and never read from globals.
type Paths struct {
	BaseDir      string
	RawDir       string
	ProDir       string
	MarketFile   string
	LandingsFile string
	LogsDir      string
	WebDir       string
}

// ResolvePaths turns the configured locations into absolute paths.
// Relative directories are joined to BaseDir, which defaults to the working
// directory; the source file names are joined to RawDir unless absolute.
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", cfg.BaseDir, err)
	}

	under := func(root, p string) string {
		if p == "" {
			return ""
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(root, p)
	}

	rawDir := under(base, cfg.RawDir)
	return &Paths{
		BaseDir:      base,
		RawDir:       rawDir,
		ProDir:       under(base, cfg.ProDir),
		MarketFile:   under(rawDir, cfg.MarketFile),
		LandingsFile: under(rawDir, cfg.LandingsFile),
		LogsDir:      under(base, cfg.LogsDir),
		WebDir:       under(base, cfg.WebDir),
	}, nil
}

// EnsureDirectories creates the output and log directories if they don't
// exist. The raw directory is input and is never created.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ProDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ManifestPath returns the published manifest location
func (p *Paths) ManifestPath() string {
	return filepath.Join(p.ProDir, ManifestFileName)
}

// OutputPath returns the published location of a table file
func (p *Paths) OutputPath(filename string) string {
	return filepath.Join(p.ProDir, filename)
}

// GetLogPath returns the path for a file in the logs directory
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LogPathResolution logs the resolved paths
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		return
	}
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("raw", p.RawDir),
			slog.String("pro", p.ProDir),
			slog.String("logs", p.LogsDir),
			slog.String("web", p.WebDir),
		),
		slog.Group("sources",
			slog.String("market", p.MarketFile),
			slog.String("landings", p.LandingsFile),
		))
}

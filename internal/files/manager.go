package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fishintel/internal/config"
	apperrors "fishintel/internal/errors"
)

// Manager owns the published output directory. Runs write into a staging
// directory created next to it and publish by rename, so readers see either
// the previous complete output set or the new one.
type Manager struct {
	outDir    string
	discovery *Discovery
	logger    *slog.Logger
}

// NewManager creates a manager for the output directory outDir
func NewManager(outDir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	outDir = filepath.Clean(outDir)
	return &Manager{
		outDir:    outDir,
		discovery: NewDiscovery(filepath.Dir(outDir)),
		logger:    logger.With("component", "file_manager"),
	}
}

// OutputDir returns the published output directory
func (m *Manager) OutputDir() string {
	return m.outDir
}

// Staging is a private directory that becomes the output directory on Publish
type Staging struct {
	Dir       string
	manager   *Manager
	published bool
}

// stagingPrefix is the name prefix of this manager's staging directories
func (m *Manager) stagingPrefix() string {
	return config.StagingPrefix + filepath.Base(m.outDir) + "-"
}

// Stage creates a fresh staging directory beside the output directory
func (m *Manager) Stage() (*Staging, error) {
	parent := filepath.Dir(m.outDir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create output parent directory", err).
			WithContext("path", parent)
	}

	dir, err := os.MkdirTemp(parent, m.stagingPrefix())
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create staging directory", err).
			WithContext("path", parent)
	}
	if err := os.Chmod(dir, 0755); err != nil {
		os.RemoveAll(dir)
		return nil, apperrors.NewStorageError("failed to set staging directory permissions", err)
	}

	m.logger.Debug("Created staging directory", slog.String("dir", dir))
	return &Staging{Dir: dir, manager: m}, nil
}

// Publish swaps the staging directory into place. The previous output
// directory is moved aside first and restored if the swap fails.
func (s *Staging) Publish() error {
	if s.published {
		return apperrors.NewAppValidationError("staging directory already published")
	}
	m := s.manager
	backup := m.outDir + config.BackupSuffix

	if err := os.RemoveAll(backup); err != nil {
		return apperrors.NewStorageError("failed to remove stale backup", err).
			WithContext("path", backup)
	}

	hadPrevious := false
	if _, err := os.Stat(m.outDir); err == nil {
		if err := os.Rename(m.outDir, backup); err != nil {
			return apperrors.NewStorageError("failed to move previous output aside", err).
				WithContext("path", m.outDir)
		}
		hadPrevious = true
	}

	if err := os.Rename(s.Dir, m.outDir); err != nil {
		if hadPrevious {
			if rerr := os.Rename(backup, m.outDir); rerr != nil {
				m.logger.Error("Failed to restore previous output",
					slog.String("backup", backup),
					slog.String("error", rerr.Error()))
			}
		}
		return apperrors.NewStorageError("failed to publish staging directory", err).
			WithContext("path", m.outDir)
	}
	s.published = true

	if hadPrevious {
		if err := os.RemoveAll(backup); err != nil {
			m.logger.Warn("Failed to remove previous output",
				slog.String("path", backup),
				slog.String("error", err.Error()))
		}
	}

	m.logger.Info("Published output directory",
		slog.String("dir", m.outDir),
		slog.Bool("replaced_previous", hadPrevious))
	return nil
}

// Discard removes the staging directory. It is a no-op after Publish, so it
// can be deferred unconditionally.
func (s *Staging) Discard() error {
	if s.published {
		return nil
	}
	if err := os.RemoveAll(s.Dir); err != nil {
		return apperrors.NewStorageError("failed to remove staging directory", err).
			WithContext("path", s.Dir)
	}
	s.manager.logger.Debug("Discarded staging directory", slog.String("dir", s.Dir))
	return nil
}

// CleanupStale removes staging directories left behind by interrupted runs
// and returns how many were removed.
func (m *Manager) CleanupStale() (int, error) {
	dirs, err := m.discovery.ListDirectories("")
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, apperrors.NewStorageError("failed to list output parent directory", err)
	}

	removed := 0
	for _, d := range dirs {
		if !strings.HasPrefix(d.Name, m.stagingPrefix()) {
			continue
		}
		if err := os.RemoveAll(d.Path); err != nil {
			return removed, apperrors.NewStorageError(fmt.Sprintf("failed to remove stale staging directory %s", d.Name), err)
		}
		removed++
	}
	if removed > 0 {
		m.logger.Warn("Removed stale staging directories", slog.Int("count", removed))
	}
	return removed, nil
}

// PublishedFiles lists the CSV files currently published
func (m *Manager) PublishedFiles() ([]FileInfo, error) {
	return m.discovery.FindCSVFiles(m.outDir)
}

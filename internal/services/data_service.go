package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fishintel/internal/config"
	apperrors "fishintel/internal/errors"
	"fishintel/internal/files"
	"fishintel/internal/operations"
	"fishintel/pkg/contracts/domain"
)

// DefaultPreviewLimit caps the rows returned by ReadTable when no limit is given
const DefaultPreviewLimit = 100

// MaxPreviewLimit is the largest accepted preview limit
const MaxPreviewLimit = 5000

// TableInfo describes one published table
type TableInfo struct {
	Name     string    `json:"name"`
	File     string    `json:"file"`
	Columns  []string  `json:"columns,omitempty"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// TableFile is an opened published table. The caller closes Content.
type TableFile struct {
	Name    string
	File    string
	ModTime time.Time
	Content *os.File
}

// TablePreview is a table decoded for JSON clients
type TablePreview struct {
	Name      string     `json:"name"`
	File      string     `json:"file"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	Total     int        `json:"total"`
	Truncated bool       `json:"truncated"`
}

// DatasetService reads the published output set: the manifest and the
// tables it names. It never writes.
type DatasetService struct {
	paths  *config.Paths
	files  *files.Manager
	logger *slog.Logger
}

// NewDatasetService creates a dataset service over paths.ProDir
func NewDatasetService(paths *config.Paths, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "dataset_service"))

	logger.Info("DatasetService initialized",
		slog.String("pro_dir", paths.ProDir))

	return &DatasetService{
		paths:  paths,
		files:  files.NewManager(paths.ProDir, logger),
		logger: logger,
	}
}

// Manifest returns the published manifest
func (ds *DatasetService) Manifest(ctx context.Context) (*domain.Manifest, error) {
	m, err := operations.LoadManifest(ds.paths.ManifestPath())
	if err != nil {
		switch {
		case apperrors.IsType(err, apperrors.ErrTypeNotFound):
			return nil, fmt.Errorf("%w: %v", ErrDataNotPublished, err)
		case apperrors.IsType(err, apperrors.ErrTypeParsing):
			ds.logger.ErrorContext(ctx, "Published manifest is unreadable",
				slog.String("path", ds.paths.ManifestPath()),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: %v", ErrManifestCorrupted, err)
		}
		return nil, err
	}
	return m, nil
}

// Tables lists the tables named by the manifest, catalog tables first in
// catalog order and any other names after them in name order
func (ds *DatasetService) Tables(ctx context.Context) ([]TableInfo, error) {
	m, err := ds.Manifest(ctx)
	if err != nil {
		return nil, err
	}

	published, err := ds.files.PublishedFiles()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list published files", err)
	}
	byName := make(map[string]files.FileInfo, len(published))
	for _, f := range published {
		byName[f.Name] = f
	}

	names := make([]string, 0, len(m.Files))
	seen := make(map[string]bool, len(m.Files))
	for _, spec := range operations.Catalog() {
		if _, ok := m.Files[spec.Name]; ok {
			names = append(names, spec.Name)
			seen[spec.Name] = true
		}
	}
	var extra []string
	for name := range m.Files {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	names = append(names, extra...)

	tables := make([]TableInfo, 0, len(names))
	for _, name := range names {
		info := TableInfo{Name: name, File: m.Files[name]}
		if spec, ok := operations.LookupTable(name); ok {
			info.Columns = spec.Header
		}
		if f, ok := byName[info.File]; ok {
			info.Size = f.Size
			info.Modified = f.ModTime
		} else {
			ds.logger.WarnContext(ctx, "Manifest names a file that is not published",
				slog.String("table", name),
				slog.String("file", info.File))
		}
		tables = append(tables, info)
	}
	return tables, nil
}

// LastPublished returns the modification time of the newest published table
func (ds *DatasetService) LastPublished(ctx context.Context) (time.Time, bool) {
	published, err := ds.files.PublishedFiles()
	if err != nil {
		return time.Time{}, false
	}
	latest, ok := files.GetLatestFile(published)
	if !ok {
		return time.Time{}, false
	}
	return latest.ModTime, true
}

// OpenTable opens the CSV whose logical name is name in the manifest.
// A publish can swap the output directory between reading the manifest and
// opening the file, so a vanished file is looked up once more.
func (ds *DatasetService) OpenTable(ctx context.Context, name string) (*TableFile, error) {
	if err := validateTableName(name); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		m, err := ds.Manifest(ctx)
		if err != nil {
			return nil, err
		}

		file, ok := m.Files[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
		}
		if file == "" || filepath.Base(file) != file || strings.ContainsAny(file, `/\`) {
			return nil, fmt.Errorf("%w: table %s points at %q", ErrManifestCorrupted, name, file)
		}

		f, err := os.Open(ds.paths.OutputPath(file))
		if err != nil {
			if os.IsNotExist(err) {
				lastErr = err
				continue
			}
			return nil, apperrors.NewStorageError("failed to open table "+name, err)
		}

		stat, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, apperrors.NewStorageError("failed to stat table "+name, err)
		}

		ds.logger.DebugContext(ctx, "Opened table",
			slog.String("table", name),
			slog.String("file", file),
			slog.Int64("size", stat.Size()))

		return &TableFile{Name: name, File: file, ModTime: stat.ModTime(), Content: f}, nil
	}

	ds.logger.ErrorContext(ctx, "Manifest names a missing file",
		slog.String("table", name),
		slog.String("error", lastErr.Error()))
	return nil, fmt.Errorf("%w: file for table %s is missing", ErrManifestCorrupted, name)
}

// ReadTable decodes up to limit rows of a table. limit <= 0 selects
// DefaultPreviewLimit; larger values are capped at MaxPreviewLimit.
func (ds *DatasetService) ReadTable(ctx context.Context, name string, limit int) (*TablePreview, error) {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	if limit > MaxPreviewLimit {
		limit = MaxPreviewLimit
	}

	table, err := ds.OpenTable(ctx, name)
	if err != nil {
		return nil, err
	}
	defer table.Content.Close()

	br := bufio.NewReader(table.Content)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}

	reader := csv.NewReader(br)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: table %s has no header", ErrManifestCorrupted, name)
		}
		return nil, apperrors.NewParsingError("failed to read header of "+name, err)
	}

	preview := &TablePreview{
		Name:    name,
		File:    table.File,
		Columns: header,
		Rows:    make([][]string, 0),
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read "+name, err)
		}
		preview.Total++
		if len(preview.Rows) < limit {
			preview.Rows = append(preview.Rows, record)
		}
	}
	preview.Truncated = preview.Total > len(preview.Rows)
	return preview, nil
}

// validateTableName accepts manifest keys only: no separators or dots
func validateTableName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return fmt.Errorf("%w: %q", ErrInvalidTableName, name)
	}
	return nil
}

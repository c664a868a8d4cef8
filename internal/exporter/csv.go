package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "fishintel/internal/errors"
)

// Table is one output file: its logical name in the manifest, its file name,
// a fixed header and already formatted rows.
type Table struct {
	Name    string
	File    string
	Header  []string
	Records [][]string
}

// CSVWriter writes CSV files under a single root directory
type CSVWriter struct {
	dir    string
	logger *slog.Logger
}

// NewCSVWriter creates a writer rooted at dir
func NewCSVWriter(dir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{dir: dir, logger: logger.With("component", "csv_writer")}
}

// Dir returns the root directory of the writer
func (w *CSVWriter) Dir() string {
	return w.dir
}

// WriteTable writes a table to its file. A table with no records still gets
// its header so that every file named in the manifest is readable.
func (w *CSVWriter) WriteTable(t Table) error {
	if len(t.Header) == 0 {
		return apperrors.NewAppValidationError(fmt.Sprintf("table %s has no header", t.Name))
	}
	for i, rec := range t.Records {
		if len(rec) != len(t.Header) {
			return apperrors.NewAppValidationError(
				fmt.Sprintf("table %s record %d has %d fields, header has %d", t.Name, i, len(rec), len(t.Header)))
		}
	}

	stream, err := w.CreateStreamWriter(t.File, t.Header)
	if err != nil {
		return err
	}
	for _, rec := range t.Records {
		if err := stream.WriteRecord(rec); err != nil {
			stream.Close()
			return apperrors.NewStorageError(fmt.Sprintf("failed to write %s", t.File), err)
		}
	}
	if err := stream.Close(); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to close %s", t.File), err)
	}

	w.logger.Debug("Wrote table",
		slog.String("table", t.Name),
		slog.String("file", t.File),
		slog.Int("rows", len(t.Records)))
	return nil
}

// StreamWriter provides streaming CSV writing for large tables
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates the file and writes its header
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create directory", err).
			WithContext("path", fullPath)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create file", err).
			WithContext("path", fullPath)
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, apperrors.NewStorageError("failed to write headers", err).
				WithContext("path", fullPath)
		}
	}

	return &StreamWriter{file: file, writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// resolvePath joins relative paths to the writer's root directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return filepath.Join(w.dir, filePath)
}

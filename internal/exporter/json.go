package exporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "fishintel/internal/errors"
)

// WriteJSON writes v as indented JSON. Non-ASCII text is written as-is.
func (w *CSVWriter) WriteJSON(filePath string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to encode %s", filePath), err)
	}

	fullPath := w.resolvePath(filePath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err)
	}
	if err := os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to write %s", filePath), err).
			WithContext("path", fullPath)
	}
	return nil
}

package services

import "errors"

// Dataset service errors
var (
	// ErrDataNotPublished means no run has published a manifest yet
	ErrDataNotPublished = errors.New("no published dataset")

	// ErrTableNotFound means the name is not a key of the published manifest
	ErrTableNotFound = errors.New("table not found")

	// ErrInvalidTableName rejects names that could address anything other
	// than a manifest key
	ErrInvalidTableName = errors.New("invalid table name")

	// ErrManifestCorrupted means the manifest exists but cannot be used
	ErrManifestCorrupted = errors.New("manifest corrupted")
)

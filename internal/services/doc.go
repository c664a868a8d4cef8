// Package services sits between the HTTP handlers and the published output
// set. Handlers never touch the filesystem directly: DatasetService resolves
// logical table names through the manifest and HealthService derives
// readiness from whether a manifest has been published.
//
// Errors are sentinel values (ErrDataNotPublished, ErrTableNotFound,
// ErrInvalidTableName, ErrManifestCorrupted) wrapped with context, so callers
// map them with errors.Is.
package services

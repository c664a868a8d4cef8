// Package shared holds code used across packages that belongs to no single
// layer. Today that is only the testutil subpackage: a capturing slog
// handler for log assertions and builders for the market and landings
// workbook fixtures.
package shared

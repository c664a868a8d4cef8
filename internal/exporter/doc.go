// Package exporter writes the published tables and the manifest.
//
// CSVWriter is rooted at one directory (normally a staging directory, see
// package files). Tables are written as UTF-8 CSV with a fixed header; empty
// tables still get their header. Values are formatted by FormatFloat and
// FormatNull: shortest round-trip digits, absent values as empty cells.
//
//	w := exporter.NewCSVWriter(stagingDir, logger)
//	err := w.WriteTable(exporter.Table{
//	    Name:    "landingsYearFish",
//	    File:    "landings_year_fish.csv",
//	    Header:  []string{"fish_key", "fish_label", "year", "qty", "amt", "price"},
//	    Records: records,
//	})
package exporter

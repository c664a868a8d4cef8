package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"fishintel/internal/errors"
	"fishintel/pkg/contracts/domain"
)

// Market workbook columns
const (
	ColMarketYear   = "販売年"
	ColMarketName   = "品名"
	ColMarketOrigin = "産地"
	ColMarketQty    = "数量"
	ColMarketAmt    = "金額"
)

// Landings workbook columns
const (
	ColLandingsYear     = "年"
	ColLandingsName     = "銘柄名"
	ColLandingsArea     = "地区名"
	ColLandingsMethod   = "漁名"
	ColLandingsYearQty  = "数量年計"
	ColLandingsYearAmt  = "金額年計"
	marketSheetSuffix   = "データ"
	thousandsSeparators = ",，"
)

// ReadStats counts what a reader kept and what it discarded
type ReadStats struct {
	Rows    int
	Dropped int
}

// OpenWorkbook opens a source workbook. A missing file is NOT_FOUND.
func OpenWorkbook(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("source workbook %s", path)).WithContext("path", path)
		}
		return nil, errors.NewStorageError("failed to stat source workbook", err).WithContext("path", path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open source workbook", err).WithContext("path", path)
	}
	return f, nil
}

// WorkbookReader extracts fact rows from an opened source workbook
type WorkbookReader struct {
	file   *excelize.File
	logger *slog.Logger
}

// NewWorkbookReader wraps an opened workbook
func NewWorkbookReader(file *excelize.File, logger *slog.Logger) *WorkbookReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookReader{file: file, logger: logger.With(slog.String("component", "workbook_reader"))}
}

// MarketCategory derives the category tag from a market sheet name
func MarketCategory(sheet string) string {
	return strings.TrimSuffix(strings.TrimSpace(sheet), marketSheetSuffix)
}

// ReadMarket reads every listed market sheet, tagging rows with the sheet's
// category. Rows with a blank or unparseable year, name, quantity or amount
// are dropped and counted.
func (r *WorkbookReader) ReadMarket(sheets []string) ([]domain.FactRecord, ReadStats, error) {
	var (
		facts []domain.FactRecord
		stats ReadStats
	)
	for _, sheet := range sheets {
		rows, index, err := r.sheetRows(sheet, ColMarketYear, ColMarketName, ColMarketOrigin, ColMarketQty, ColMarketAmt)
		if err != nil {
			return nil, stats, err
		}
		category := MarketCategory(sheet)

		kept, dropped := 0, 0
		for _, row := range rows {
			if blankRow(row) {
				continue
			}
			year, okYear := parseYear(cell(row, index[ColMarketYear]))
			qty, okQty := parseNumber(cell(row, index[ColMarketQty]))
			amt, okAmt := parseNumber(cell(row, index[ColMarketAmt]))
			label := cell(row, index[ColMarketName])
			if !okYear || !okQty || !okAmt || strings.TrimSpace(label) == "" {
				dropped++
				continue
			}

			origin := cell(row, index[ColMarketOrigin])
			facts = append(facts, domain.FactRecord{
				Source:     domain.SourceMarket,
				Year:       year,
				FishKey:    NormalizeCommodityName(label),
				FishLabel:  label,
				Origin:     origin,
				OriginPref: NormalizePrefecture(origin),
				Category:   category,
				Qty:        qty,
				Amt:        amt,
				Price:      Price(qty, amt),
			})
			kept++
		}

		r.logMalformed(sheet, kept, dropped)
		stats.Rows += kept
		stats.Dropped += dropped
	}
	return facts, stats, nil
}

// ReadLandings reads the landings sheet in its wide layout. Every column of
// the month layout must be present; blank measure cells count as zero.
func (r *WorkbookReader) ReadLandings(sheet string, months []MonthColumn) ([]domain.WideLandingsRow, ReadStats, error) {
	required := []string{ColLandingsYear, ColLandingsName, ColLandingsArea, ColLandingsMethod, ColLandingsYearQty, ColLandingsYearAmt}
	qtyCols, amtCols := Columns(months)
	required = append(required, qtyCols...)
	required = append(required, amtCols...)

	var stats ReadStats
	rows, index, err := r.sheetRows(sheet, required...)
	if err != nil {
		return nil, stats, err
	}

	measureCols := append([]string{ColLandingsYearQty, ColLandingsYearAmt}, append(qtyCols, amtCols...)...)
	var out []domain.WideLandingsRow
	for _, row := range rows {
		if blankRow(row) {
			continue
		}
		year, okYear := parseYear(cell(row, index[ColLandingsYear]))
		label := cell(row, index[ColLandingsName])
		if !okYear || strings.TrimSpace(label) == "" {
			stats.Dropped++
			continue
		}

		cells := make(map[string]float64, len(measureCols))
		malformed := false
		for _, c := range measureCols {
			raw := cell(row, index[c])
			if strings.TrimSpace(raw) == "" {
				cells[c] = 0
				continue
			}
			v, ok := parseNumber(raw)
			if !ok {
				malformed = true
				break
			}
			cells[c] = v
		}
		if malformed {
			stats.Dropped++
			continue
		}

		qty, amt := cells[ColLandingsYearQty], cells[ColLandingsYearAmt]
		out = append(out, domain.WideLandingsRow{
			Fact: domain.FactRecord{
				Source:    domain.SourceLandings,
				Year:      year,
				FishKey:   NormalizeCommodityName(label),
				FishLabel: label,
				Area:      cell(row, index[ColLandingsArea]),
				Method:    cell(row, index[ColLandingsMethod]),
				Qty:       qty,
				Amt:       amt,
				Price:     Price(qty, amt),
			},
			Cells: cells,
		})
		stats.Rows++
	}

	r.logMalformed(sheet, stats.Rows, stats.Dropped)
	return out, stats, nil
}

// YearlyLandings projects wide rows onto their yearly-total facts
func YearlyLandings(rows []domain.WideLandingsRow) []domain.FactRecord {
	out := make([]domain.FactRecord, len(rows))
	for i, row := range rows {
		out[i] = row.Fact
	}
	return out
}

// sheetRows returns the data rows of a sheet and the position of every
// required column. The header is the first row; header cells are trimmed.
func (r *WorkbookReader) sheetRows(sheet string, required ...string) ([][]string, map[string]int, error) {
	if idx, err := r.file.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil, errors.NewSchemaError(fmt.Sprintf("sheet %q not found", sheet), err).
			WithContext("sheet", sheet).
			WithContext("available", r.file.GetSheetList())
	}

	rows, err := r.file.GetRows(sheet)
	if err != nil {
		return nil, nil, errors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err).WithContext("sheet", sheet)
	}
	if len(rows) == 0 {
		return nil, nil, errors.NewSchemaError(fmt.Sprintf("sheet %q has no header row", sheet), nil).WithContext("sheet", sheet)
	}

	header := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		name := strings.TrimSpace(h)
		if _, dup := header[name]; !dup {
			header[name] = i
		}
	}

	index := make(map[string]int, len(required))
	var missing []string
	for _, col := range required {
		i, ok := header[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		index[col] = i
	}
	if len(missing) > 0 {
		return nil, nil, errors.NewSchemaError(fmt.Sprintf("sheet %q is missing required columns %v", sheet, missing), nil).
			WithContext("sheet", sheet).
			WithContext("missing", missing)
	}

	r.logger.Info("sheet loaded",
		slog.String("sheet", sheet),
		slog.Int("data_rows", len(rows)-1))
	return rows[1:], index, nil
}

func (r *WorkbookReader) logMalformed(sheet string, kept, dropped int) {
	if dropped > 0 {
		r.logger.Warn("dropped malformed rows",
			slog.String("sheet", sheet),
			slog.Int("kept", kept),
			slog.Int("dropped", dropped))
	}
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseNumber parses a numeric cell, ignoring thousands separators
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(thousandsSeparators, r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseYear accepts integral numbers only ("2024", "2024.0")
func parseYear(raw string) (int, bool) {
	v, ok := parseNumber(raw)
	if !ok || v != math.Trunc(v) || v <= 0 {
		return 0, false
	}
	return int(v), true
}

package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// MarketRow is one row of a market fixture sheet. Measures are written as
// given, so a string such as "" or "1,200" exercises the reader's parsing.
type MarketRow struct {
	Year   any
	Name   string
	Origin string
	Qty    any
	Amt    any
}

// MarketSheet is a named market sheet with its rows
type MarketSheet struct {
	Name string
	Rows []MarketRow
}

// LandingsRow is one wide landings row. Nil month cells stay blank.
type LandingsRow struct {
	Year    any
	Name    string
	Area    string
	Method  string
	YearQty any
	YearAmt any
	Qty     [12]any
	Amt     [12]any
}

// MarketHeader is the header row of every market sheet
var MarketHeader = []string{"販売年", "品名", "産地", "数量", "金額"}

// LandingsHeader is the header row of the landings sheet
func LandingsHeader() []string {
	h := []string{"年", "銘柄名", "地区名", "漁名", "数量年計", "金額年計"}
	for m := 1; m <= 12; m++ {
		h = append(h, fmt.Sprintf("数量%02d月", m))
	}
	for m := 1; m <= 12; m++ {
		h = append(h, fmt.Sprintf("金額%02d月", m))
	}
	return h
}

// WriteWorkbook saves a workbook whose sheets hold the given rows, the first
// row of each being the header, and returns its path inside dir
func WriteWorkbook(t *testing.T, dir, name string, sheets map[string][][]any, order []string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range order {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				t.Fatalf("failed to rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("failed to create sheet %s: %v", sheet, err)
		}
		for r, row := range sheets[sheet] {
			cellRef, _ := excelize.CoordinatesToCellName(1, r+1)
			values := row
			if err := f.SetSheetRow(sheet, cellRef, &values); err != nil {
				t.Fatalf("failed to write row %d of %s: %v", r+1, sheet, err)
			}
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook %s: %v", path, err)
	}
	return path
}

// WriteMarketWorkbook saves a market workbook with the standard header on every sheet
func WriteMarketWorkbook(t *testing.T, dir string, sheets ...MarketSheet) string {
	t.Helper()

	data := make(map[string][][]any, len(sheets))
	order := make([]string, 0, len(sheets))
	for _, s := range sheets {
		rows := [][]any{toAny(MarketHeader)}
		for _, r := range s.Rows {
			rows = append(rows, []any{r.Year, r.Name, r.Origin, r.Qty, r.Amt})
		}
		data[s.Name] = rows
		order = append(order, s.Name)
	}
	return WriteWorkbook(t, dir, "market.xlsx", data, order)
}

// WriteLandingsWorkbook saves a landings workbook with one sheet in the wide layout
func WriteLandingsWorkbook(t *testing.T, dir, sheet string, rows ...LandingsRow) string {
	t.Helper()

	data := [][]any{toAny(LandingsHeader())}
	for _, r := range rows {
		row := []any{r.Year, r.Name, r.Area, r.Method, r.YearQty, r.YearAmt}
		row = append(row, r.Qty[:]...)
		row = append(row, r.Amt[:]...)
		data = append(data, row)
	}
	return WriteWorkbook(t, dir, "landings.xlsx", map[string][][]any{sheet: data}, []string{sheet})
}

// MonthlyRow builds a landings row whose yearly totals equal the sum of the
// given monthly quantities and amounts
func MonthlyRow(year int, name, area, method string, qty, amt [12]float64) LandingsRow {
	row := LandingsRow{Year: year, Name: name, Area: area, Method: method}
	var sumQty, sumAmt float64
	for i := 0; i < 12; i++ {
		row.Qty[i] = qty[i]
		row.Amt[i] = amt[i]
		sumQty += qty[i]
		sumAmt += amt[i]
	}
	row.YearQty = sumQty
	row.YearAmt = sumAmt
	return row
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

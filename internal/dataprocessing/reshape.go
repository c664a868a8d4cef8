package dataprocessing

import (
	"fmt"
	"regexp"
	"strconv"

	"fishintel/internal/errors"
	"fishintel/pkg/contracts/domain"
)

// MonthColumn binds a calendar month to its quantity and amount columns
type MonthColumn struct {
	Month     int
	QtyColumn string
	AmtColumn string
}

var monthNumber = regexp.MustCompile(`\d+`)

// DefaultMonthColumns is the landings layout: 数量01月..数量12月 and 金額01月..金額12月
func DefaultMonthColumns() []MonthColumn {
	cols := make([]MonthColumn, 12)
	for m := 1; m <= 12; m++ {
		cols[m-1] = MonthColumn{
			Month:     m,
			QtyColumn: fmt.Sprintf("数量%02d月", m),
			AmtColumn: fmt.Sprintf("金額%02d月", m),
		}
	}
	return cols
}

// MonthOf extracts the month number embedded in a column name
func MonthOf(column string) (int, error) {
	digits := monthNumber.FindString(column)
	if digits == "" {
		return 0, errors.NewSchemaError(fmt.Sprintf("month column %q has no month number", column), nil)
	}
	m, err := strconv.Atoi(digits)
	if err != nil || m < 1 || m > 12 {
		return 0, errors.NewSchemaError(fmt.Sprintf("month column %q does not name a month 1-12", column), err)
	}
	return m, nil
}

// MonthColumnsFromNames pairs quantity and amount columns by the month number
// in their names. Each list must name every month exactly once.
func MonthColumnsFromNames(qtyCols, amtCols []string) ([]MonthColumn, error) {
	qty, err := indexByMonth(qtyCols)
	if err != nil {
		return nil, err
	}
	amt, err := indexByMonth(amtCols)
	if err != nil {
		return nil, err
	}

	cols := make([]MonthColumn, 12)
	for m := 1; m <= 12; m++ {
		cols[m-1] = MonthColumn{Month: m, QtyColumn: qty[m], AmtColumn: amt[m]}
	}
	return cols, nil
}

func indexByMonth(columns []string) (map[int]string, error) {
	byMonth := make(map[int]string, 12)
	for _, c := range columns {
		m, err := MonthOf(c)
		if err != nil {
			return nil, err
		}
		if prev, dup := byMonth[m]; dup {
			return nil, errors.NewSchemaError(fmt.Sprintf("month %d named by both %q and %q", m, prev, c), nil)
		}
		byMonth[m] = c
	}
	if len(byMonth) != 12 {
		return nil, errors.NewSchemaError(fmt.Sprintf("expected 12 month columns, got %d", len(byMonth)), nil)
	}
	return byMonth, nil
}

// Melt turns every wide landings row into twelve monthly facts, aligning
// quantity and amount by month.
// A missing cell counts as zero.
func Melt(rows []domain.WideLandingsRow, cols []MonthColumn) []domain.FactRecord {
	out := make([]domain.FactRecord, 0, len(rows)*len(cols))
	for _, row := range rows {
		for _, c := range cols {
			f := row.Fact
			f.Month = c.Month
			f.Qty = row.Cells[c.QtyColumn]
			f.Amt = row.Cells[c.AmtColumn]
			f.Price = Price(f.Qty, f.Amt)
			out = append(out, f)
		}
	}
	return out
}

// Columns flattens a layout into its quantity and amount column names
func Columns(cols []MonthColumn) (qty, amt []string) {
	for _, c := range cols {
		qty = append(qty, c.QtyColumn)
		amt = append(amt, c.AmtColumn)
	}
	return qty, amt
}

package dataprocessing

import (
	"fishintel/pkg/contracts/domain"
)

// Totals is the per-year grand total of both measures
type Totals struct {
	Qty float64
	Amt float64
}

// YearTotals sums qty and amt of per-(year, category) rows by year
func YearTotals(rows []domain.AggregatedRow) map[int]Totals {
	totals := make(map[int]Totals)
	for _, r := range rows {
		t := totals[r.Key.Year]
		t.Qty += r.Qty
		t.Amt += r.Amt
		totals[r.Key.Year] = t
	}
	return totals
}

// WithShare attaches each row's fraction of its year's totals. A zero or
// missing total yields an absent share.
func WithShare(rows []domain.AggregatedRow, totals map[int]Totals) []domain.ShareRow {
	out := make([]domain.ShareRow, len(rows))
	for i, r := range rows {
		t := totals[r.Key.Year]
		out[i] = domain.ShareRow{
			AggregatedRow: r,
			ShareQty:      fraction(r.Qty, t.Qty),
			ShareAmt:      fraction(r.Amt, t.Amt),
		}
	}
	return out
}

func fraction(part, whole float64) domain.NullFloat {
	if whole == 0 {
		return domain.None()
	}
	return domain.Some(part / whole)
}

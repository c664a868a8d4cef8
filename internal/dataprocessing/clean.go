package dataprocessing

import (
	"math"

	"fishintel/pkg/contracts/domain"
)

// Price returns amt/qty, or an absent value when qty is not positive
func Price(qty, amt float64) domain.NullFloat {
	if qty > 0 {
		return domain.Some(amt / qty)
	}
	return domain.None()
}

// validMeasures rejects negative, NaN and infinite measures
func validMeasures(qty, amt float64) bool {
	return qty >= 0 && amt >= 0 && !math.IsInf(qty, 1) && !math.IsInf(amt, 1)
}

// Clean drops fact rows with a negative or non-finite quantity or amount and
// recomputes the price of every surviving row. The input is not modified.
func Clean(rows []domain.FactRecord) []domain.FactRecord {
	out := make([]domain.FactRecord, 0, len(rows))
	for _, r := range rows {
		if !validMeasures(r.Qty, r.Amt) {
			continue
		}
		r.Price = Price(r.Qty, r.Amt)
		out = append(out, r)
	}
	return out
}

// CleanAggregated applies the same rule to aggregated rows
func CleanAggregated(rows []domain.AggregatedRow) []domain.AggregatedRow {
	out := make([]domain.AggregatedRow, 0, len(rows))
	for _, r := range rows {
		if !validMeasures(r.Qty, r.Amt) {
			continue
		}
		r.Price = Price(r.Qty, r.Amt)
		out = append(out, r)
	}
	return out
}

package dataprocessing

import (
	"sort"

	"fishintel/pkg/contracts/domain"
)

// Ratio returns cur/prev - 1 when prev is a present, positive value
func Ratio(cur, prev domain.NullFloat) domain.NullFloat {
	if !cur.Valid || !prev.Valid || prev.Float64 <= 0 {
		return domain.None()
	}
	return domain.Some(cur.Float64/prev.Float64 - 1)
}

// WithYoY sorts rows by entity then year and attaches, for every measure, the
// value of the previous observed year of the same entity and the ratio against
// it. The first year of an entity, and any year whose previous value is not
// positive, get an absent ratio. The result only depends on the aggregated
// part of its input, so feeding it back in recomputes the same values.
func WithYoY(rows []domain.AggregatedRow, entity []domain.Dim) []domain.YoyRow {
	sorted := make([]domain.AggregatedRow, len(rows))
	copy(sorted, rows)

	order := append(append([]domain.Dim{}, entity...), domain.DimYear)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key.Compare(sorted[j].Key, order) < 0
	})

	out := make([]domain.YoyRow, len(sorted))
	for i, r := range sorted {
		row := domain.YoyRow{AggregatedRow: r}
		if i > 0 && sorted[i-1].Key.Project(entity) == r.Key.Project(entity) {
			prev := sorted[i-1]
			row.PrevQty = domain.Some(prev.Qty)
			row.PrevAmt = domain.Some(prev.Amt)
			row.PrevPrice = prev.Price
		}
		row.YoyQty = Ratio(domain.Some(r.Qty), row.PrevQty)
		row.YoyAmt = Ratio(domain.Some(r.Amt), row.PrevAmt)
		row.YoyPrice = Ratio(r.Price, row.PrevPrice)
		out[i] = row
	}
	return out
}

// Aggregated strips the derived columns off YoY rows
func Aggregated(rows []domain.YoyRow) []domain.AggregatedRow {
	out := make([]domain.AggregatedRow, len(rows))
	for i, r := range rows {
		out[i] = r.AggregatedRow
	}
	return out
}

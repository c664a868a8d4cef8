package dataprocessing

import (
	"sort"

	"fishintel/pkg/contracts/domain"
)

// Common grouping tuples used by the output tables
var (
	ByYearFish            = []domain.Dim{domain.DimYear, domain.DimFishKey}
	ByYearFishCategory    = []domain.Dim{domain.DimYear, domain.DimFishKey, domain.DimCategory}
	ByYearFishOrigin      = []domain.Dim{domain.DimYear, domain.DimFishKey, domain.DimOriginPref}
	ByYearCategory        = []domain.Dim{domain.DimYear, domain.DimCategory}
	ByYearFishArea        = []domain.Dim{domain.DimYear, domain.DimFishKey, domain.DimArea}
	ByYearFishMethod      = []domain.Dim{domain.DimYear, domain.DimFishKey, domain.DimMethod}
	ByYearMonthFish       = []domain.Dim{domain.DimYear, domain.DimMonth, domain.DimFishKey}
	ByYearMonthFishArea   = []domain.Dim{domain.DimYear, domain.DimMonth, domain.DimFishKey, domain.DimArea}
	ByYearMonthFishMethod = []domain.Dim{domain.DimYear, domain.DimMonth, domain.DimFishKey, domain.DimMethod}
)

// Aggregate groups facts by the given dimension tuple, sums qty and amt per
// group and cleans the result. Rows come back ordered by the tuple so that
// callers relying on input order (stable ranking) see a deterministic order.
func Aggregate(rows []domain.FactRecord, dims []domain.Dim) []domain.AggregatedRow {
	if len(dims) == 0 {
		panic("dataprocessing: Aggregate called without dimensions")
	}

	index := make(map[domain.Key]int, len(rows)/4+1)
	groups := make([]domain.AggregatedRow, 0, len(rows)/4+1)
	for _, r := range rows {
		k := r.Key().Project(dims)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, domain.AggregatedRow{Key: k})
		}
		groups[i].Qty += r.Qty
		groups[i].Amt += r.Amt
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Key.Compare(groups[j].Key, dims) < 0
	})

	return CleanAggregated(groups)
}

// FilterYear returns the rows of a single year, preserving order
func FilterYear(rows []domain.AggregatedRow, year int) []domain.AggregatedRow {
	var out []domain.AggregatedRow
	for _, r := range rows {
		if r.Key.Year == year {
			out = append(out, r)
		}
	}
	return out
}

// LatestYear returns the largest year present, or 0 for no rows
func LatestYear(rows []domain.AggregatedRow) int {
	latest := 0
	for _, r := range rows {
		if r.Key.Year > latest {
			latest = r.Key.Year
		}
	}
	return latest
}

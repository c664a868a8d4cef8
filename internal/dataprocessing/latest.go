package dataprocessing

import (
	"sort"

	"fishintel/pkg/contracts/domain"
)

// LatestByCategory ranks, inside every category of the latest year, the fish
// by amount and compares each price with the same (category, fish) in the
// calendar year before. Input rows must be grouped by ByYearFishCategory.
// Categories appear in the order they are first seen in the latest year.
func LatestByCategory(rows []domain.AggregatedRow) []domain.CategoryLatestRow {
	latest := LatestYear(rows)
	if latest == 0 {
		return nil
	}

	type catFish struct{ category, fish string }
	prevPrice := make(map[catFish]domain.NullFloat)
	for _, r := range FilterYear(rows, latest-1) {
		prevPrice[catFish{r.Key.Category, r.Key.FishKey}] = r.Price
	}

	var categories []string
	byCategory := make(map[string][]domain.AggregatedRow)
	for _, r := range FilterYear(rows, latest) {
		c := r.Key.Category
		if _, seen := byCategory[c]; !seen {
			categories = append(categories, c)
		}
		byCategory[c] = append(byCategory[c], r)
	}

	var out []domain.CategoryLatestRow
	for _, c := range categories {
		group := byCategory[c]
		sort.SliceStable(group, func(i, j int) bool {
			return AmountDesc.compare(group[i], group[j]) < 0
		})
		for pos, r := range group {
			out = append(out, domain.CategoryLatestRow{
				Category: c,
				FishKey:  r.Key.FishKey,
				Year:     latest,
				Qty:      r.Qty,
				Amt:      r.Amt,
				Price:    r.Price,
				YoyPrice: Ratio(r.Price, prevPrice[catFish{c, r.Key.FishKey}]),
				RankAmt:  pos + 1,
			})
		}
	}
	return out
}

// KeepRankedPairs keeps the rows whose (fish, dim) pair appears anywhere in
// ranked, whatever the year. It narrows monthly drill-downs to the entities
// of a yearly top-N table.
func KeepRankedPairs(rows []domain.AggregatedRow, ranked []domain.RankedRow, dim domain.Dim) []domain.AggregatedRow {
	pair := []domain.Dim{domain.DimFishKey, dim}
	keep := make(map[domain.Key]struct{}, len(ranked))
	for _, r := range ranked {
		keep[r.Key.Project(pair)] = struct{}{}
	}

	out := make([]domain.AggregatedRow, 0, len(rows))
	for _, r := range rows {
		if _, ok := keep[r.Key.Project(pair)]; ok {
			out = append(out, r)
		}
	}
	return out
}

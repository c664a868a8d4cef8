package dataprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"fishintel/pkg/contracts/domain"
)

// DefaultMinCorrelationYears is the minimum joined-year count for a fish to be reported
const DefaultMinCorrelationYears = 5

type pairedYear struct {
	a, b domain.AggregatedRow
}

// Correlate inner-joins two per-(year, fish) series on (year, fish) and, for
// each fish with at least minN joined years, computes the Pearson correlation
// of quantities, amounts and prices. Coefficients are rounded to 3 decimals;
// an undefined coefficient (too few pairs, zero variance) is reported as 0.
// Fish below minN are omitted. Rows are ordered by fish key.
func Correlate(seriesA, seriesB []domain.AggregatedRow, minN int) []domain.CorrelationRow {
	if minN <= 0 {
		minN = DefaultMinCorrelationYears
	}

	lookup := make(map[domain.Key]domain.AggregatedRow, len(seriesB))
	for _, r := range seriesB {
		lookup[r.Key.Project(ByYearFish)] = r
	}

	byFish := make(map[string][]pairedYear)
	for _, a := range seriesA {
		b, ok := lookup[a.Key.Project(ByYearFish)]
		if !ok {
			continue
		}
		byFish[a.Key.FishKey] = append(byFish[a.Key.FishKey], pairedYear{a: a, b: b})
	}

	fishKeys := make([]string, 0, len(byFish))
	for k, pairs := range byFish {
		if len(pairs) >= minN {
			fishKeys = append(fishKeys, k)
		}
	}
	sort.Strings(fishKeys)

	out := make([]domain.CorrelationRow, 0, len(fishKeys))
	for _, k := range fishKeys {
		pairs := byFish[k]
		var qa, qb, aa, ab, pa, pb []float64
		for _, p := range pairs {
			qa = append(qa, p.a.Qty)
			qb = append(qb, p.b.Qty)
			aa = append(aa, p.a.Amt)
			ab = append(ab, p.b.Amt)
			// price pairs are only usable when both sides have a price
			if p.a.Price.Valid && p.b.Price.Valid {
				pa = append(pa, p.a.Price.Float64)
				pb = append(pb, p.b.Price.Float64)
			}
		}
		out = append(out, domain.CorrelationRow{
			FishKey:   k,
			NYears:    len(pairs),
			CorrQty:   Pearson(qa, qb),
			CorrAmt:   Pearson(aa, ab),
			CorrPrice: Pearson(pa, pb),
		})
	}
	return out
}

// Pearson returns the correlation coefficient of x and y rounded to 3
// decimals, or 0 when it is undefined
func Pearson(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	rounded := math.Round(r*1000) / 1000
	if rounded == 0 {
		return 0
	}
	return rounded
}

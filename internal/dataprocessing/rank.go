package dataprocessing

import (
	"cmp"
	"sort"

	"fishintel/pkg/contracts/domain"
)

// Field names a sortable column of an aggregated row: one of the measures or
// any domain.Dim
type Field string

const (
	FieldQty   Field = "qty"
	FieldAmt   Field = "amt"
	FieldPrice Field = "price"
)

// SortKey is one (field, direction) pair of a ranking comparator
type SortKey struct {
	Field Field
	Desc  bool
}

// SortSpec is an ordered comparator; later keys only break ties of earlier ones
type SortSpec []SortKey

// Ranking policies
var (
	// AmountTopOrigin picks a single origin by amount, then quantity, then name
	AmountTopOrigin = SortSpec{{FieldAmt, true}, {FieldQty, true}, {Field(domain.DimOriginPref), false}}
	// QuantityTopOrigin picks a single origin by quantity, then amount, then name
	QuantityTopOrigin = SortSpec{{FieldQty, true}, {FieldAmt, true}, {Field(domain.DimOriginPref), false}}
	// AmountDesc orders by amount only; exact ties keep input order
	AmountDesc = SortSpec{{FieldAmt, true}}
	// QuantityDesc orders by quantity only; exact ties keep input order
	QuantityDesc = SortSpec{{FieldQty, true}}
)

// Rank assigns 1-based ranks inside each partition (rows sharing the values of
// partition dims) using spec, and keeps ranks <= limit when limit > 0.
// Exact ties under spec keep their input order, so no two rows of a partition
// share a rank. Partitions are emitted in ascending partition-key order and an
// empty partition list ranks all rows together.
func Rank(rows []domain.AggregatedRow, partition []domain.Dim, spec SortSpec, limit int) []domain.RankedRow {
	index := make(map[domain.Key]int)
	var keys []domain.Key
	var members [][]domain.AggregatedRow
	for _, r := range rows {
		k := r.Key.Project(partition)
		i, ok := index[k]
		if !ok {
			i = len(keys)
			index[k] = i
			keys = append(keys, k)
			members = append(members, nil)
		}
		members[i] = append(members[i], r)
	}

	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return keys[order[a]].Compare(keys[order[b]], partition) < 0
	})

	out := make([]domain.RankedRow, 0, len(rows))
	for _, i := range order {
		group := members[i]
		sort.SliceStable(group, func(a, b int) bool {
			return spec.compare(group[a], group[b]) < 0
		})
		for pos, r := range group {
			if limit > 0 && pos >= limit {
				break
			}
			out = append(out, domain.RankedRow{AggregatedRow: r, Rank: pos + 1})
		}
	}
	return out
}

func (s SortSpec) compare(a, b domain.AggregatedRow) int {
	for _, k := range s {
		var c int
		switch k.Field {
		case FieldQty:
			c = cmp.Compare(a.Qty, b.Qty)
		case FieldAmt:
			c = cmp.Compare(a.Amt, b.Amt)
		case FieldPrice:
			// absent prices sort last in either direction
			switch {
			case !a.Price.Valid && !b.Price.Valid:
				c = 0
			case !a.Price.Valid:
				return 1
			case !b.Price.Valid:
				return -1
			default:
				c = cmp.Compare(a.Price.Float64, b.Price.Float64)
			}
		default:
			dim := []domain.Dim{domain.Dim(k.Field)}
			c = a.Key.Compare(b.Key, dim)
		}
		if k.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// TopN ranks rows inside each (year, fish) partition by amount and keeps the first n
func TopN(rows []domain.AggregatedRow, n int) []domain.RankedRow {
	return Rank(rows, ByYearFish, AmountDesc, n)
}

// RankLatest ranks every row of the latest year together
func RankLatest(rows []domain.AggregatedRow, spec SortSpec) (int, []domain.RankedRow) {
	latest := LatestYear(rows)
	return latest, Rank(FilterYear(rows, latest), nil, spec, 0)
}

// TopOrigins selects, for every (year, fish), the winning origin under the
// amount-ranked and the quantity-ranked policies. Input rows must be grouped
// by ByYearFishOrigin.
func TopOrigins(rows []domain.AggregatedRow) []domain.TopOriginRow {
	byAmt := Rank(rows, ByYearFish, AmountTopOrigin, 1)
	byQty := Rank(rows, ByYearFish, QuantityTopOrigin, 1)

	// both rankings see the same partitions in the same order
	out := make([]domain.TopOriginRow, len(byAmt))
	for i := range byAmt {
		out[i] = domain.TopOriginRow{
			Year:    byAmt[i].Key.Year,
			FishKey: byAmt[i].Key.FishKey,
			ByAmt:   byAmt[i].AggregatedRow,
			ByQty:   byQty[i].AggregatedRow,
		}
	}
	return out
}

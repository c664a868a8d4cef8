package domain

// AggregatedRow is the sum of qty and amt over one distinct Key, with price
// recomputed from the sums
type AggregatedRow struct {
	Key   Key
	Qty   float64
	Amt   float64
	Price NullFloat
}

// RankedRow is an AggregatedRow with its 1-based position inside a ranking partition
type RankedRow struct {
	AggregatedRow
	Rank int
}

// YoyRow carries the previous observed value and the year-over-year ratio of each measure
type YoyRow struct {
	AggregatedRow
	PrevQty   NullFloat
	PrevAmt   NullFloat
	PrevPrice NullFloat
	YoyQty    NullFloat
	YoyAmt    NullFloat
	YoyPrice  NullFloat
}

// ShareRow carries a category's fraction of its year's total
type ShareRow struct {
	AggregatedRow
	ShareQty NullFloat
	ShareAmt NullFloat
}

// CorrelationRow holds the per-fish correlation between market and landings series.
// Coefficients are rounded to three decimals; an undefined coefficient is 0.
type CorrelationRow struct {
	FishKey   string
	NYears    int
	CorrQty   float64
	CorrAmt   float64
	CorrPrice float64
}

// TopOriginRow is the single winning origin per (year, fish) under both
// the amount-ranked and quantity-ranked policies
type TopOriginRow struct {
	Year    int
	FishKey string
	ByAmt   AggregatedRow
	ByQty   AggregatedRow
}

// CategoryLatestRow is one fish in the latest-year ranking of a market category
type CategoryLatestRow struct {
	Category string
	FishKey  string
	Year     int
	Qty      float64
	Amt      float64
	Price    NullFloat
	YoyPrice NullFloat
	RankAmt  int
}

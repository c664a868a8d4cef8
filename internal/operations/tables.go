package operations

import (
	"fishintel/internal/dataprocessing"
	"fishintel/internal/exporter"
	"fishintel/pkg/contracts/domain"
)

// TableSpec names an output table: its manifest key, its file and its header
type TableSpec struct {
	Name   string
	File   string
	Header []string
}

// Output tables, in manifest order
var (
	MarketYearFish = TableSpec{"marketYearFish", "market_year_fish.csv",
		[]string{"fish_key", "fish_label", "year", "qty", "amt", "price", "yoy_qty", "yoy_amt", "yoy_price"}}
	MarketYearFishCategory = TableSpec{"marketYearFishCategory", "market_year_fish_category.csv",
		[]string{"fish_key", "fish_label", "year", "category", "qty", "amt", "price"}}
	MarketYearFishOriginTop = TableSpec{"marketYearFishOriginTop", "market_year_fish_origin_top.csv",
		[]string{"fish_key", "fish_label", "year", "origin_pref", "qty", "amt", "price", "rank_in_fish_year"}}
	MarketYearFishTopOrigin = TableSpec{"marketYearFishTopOrigin", "market_year_fish_top_origin.csv",
		[]string{"year", "fish_key", "fish_label",
			"top_amt_origin_pref", "top_amt_amt", "top_amt_qty", "top_amt_price",
			"top_qty_origin_pref", "top_qty_qty", "top_qty_amt", "top_qty_price"}}
	MarketYearCategoryShare = TableSpec{"marketYearCategoryShare", "market_year_category_share.csv",
		[]string{"year", "category", "qty", "amt", "price", "share_amt", "share_qty"}}
	MarketTopFishLatest = TableSpec{"marketTopFishLatest", "market_top_fish_latest.csv",
		[]string{"fish_key", "fish_label", "latest_year", "latest_qty", "latest_amt", "latest_price",
			"yoy_qty", "yoy_amt", "yoy_price", "rank_amt"}}
	MarketTopFishLatestByCategory = TableSpec{"marketTopFishLatestByCategory", "market_top_fish_latest_by_category.csv",
		[]string{"category", "fish_key", "fish_label", "latest_year", "latest_price", "yoy_price",
			"latest_qty", "latest_amt", "rank_amt"}}
	LandingsTopFishLatest = TableSpec{"landingsTopFishLatest", "landings_top_fish_latest.csv",
		[]string{"fish_key", "fish_label", "latest_year", "latest_qty", "latest_amt", "latest_price", "rank_qty"}}
	LandingsYearFish = TableSpec{"landingsYearFish", "landings_year_fish.csv",
		[]string{"fish_key", "fish_label", "year", "qty", "amt", "price"}}
	LandingsMonthFish = TableSpec{"landingsMonthFish", "landings_month_fish.csv",
		[]string{"fish_key", "fish_label", "year", "month", "qty", "amt", "price"}}
	LandingsMonthFishArea = TableSpec{"landingsMonthFishArea", "landings_month_fish_area_top.csv",
		[]string{"fish_key", "fish_label", "year", "month", "area", "qty", "amt", "price"}}
	LandingsMonthFishMethod = TableSpec{"landingsMonthFishMethod", "landings_month_fish_method_top.csv",
		[]string{"fish_key", "fish_label", "year", "month", "method", "qty", "amt", "price"}}
	LandingsYearFishAreaTop = TableSpec{"landingsYearFishAreaTop", "landings_year_fish_area_top.csv",
		[]string{"fish_key", "fish_label", "year", "area", "qty", "amt", "price", "rank_in_fish_year"}}
	LandingsYearFishMethodTop = TableSpec{"landingsYearFishMethodTop", "landings_year_fish_method_top.csv",
		[]string{"fish_key", "fish_label", "year", "method", "qty", "amt", "price", "rank_in_fish_year"}}
	CorrFish = TableSpec{"corrFish", "corr_fish_market_vs_landings.csv",
		[]string{"fish_key", "fish_label", "n_years", "corr_qty", "corr_amt", "corr_price"}}
)

// Catalog returns every output table in manifest order
func Catalog() []TableSpec {
	return []TableSpec{
		MarketYearFish,
		MarketYearFishCategory,
		MarketYearFishOriginTop,
		MarketYearFishTopOrigin,
		MarketYearCategoryShare,
		MarketTopFishLatest,
		MarketTopFishLatestByCategory,
		LandingsTopFishLatest,
		LandingsYearFish,
		LandingsMonthFish,
		LandingsMonthFishArea,
		LandingsMonthFishMethod,
		LandingsYearFishAreaTop,
		LandingsYearFishMethodTop,
		CorrFish,
	}
}

// LookupTable finds a catalog entry by manifest key
func LookupTable(name string) (TableSpec, bool) {
	for _, spec := range Catalog() {
		if spec.Name == name {
			return spec, true
		}
	}
	return TableSpec{}, false
}

func (s TableSpec) table(records [][]string) exporter.Table {
	return exporter.Table{
		Name:    s.Name,
		File:    s.File,
		Header:  s.Header,
		Records: records,
	}
}

// dimValue renders one dimension of a key as a cell
func dimValue(k domain.Key, d domain.Dim) string {
	switch d {
	case domain.DimYear:
		return exporter.FormatInt(k.Year)
	case domain.DimMonth:
		return exporter.FormatInt(k.Month)
	case domain.DimFishKey:
		return k.FishKey
	case domain.DimCategory:
		return k.Category
	case domain.DimOriginPref:
		return k.OriginPref
	case domain.DimArea:
		return k.Area
	case domain.DimMethod:
		return k.Method
	}
	panic("operations: unknown dimension " + string(d))
}

func measures(r domain.AggregatedRow) []string {
	return []string{exporter.FormatFloat(r.Qty), exporter.FormatFloat(r.Amt), exporter.FormatNull(r.Price)}
}

// fishRecord lays out fish_key, fish_label, the given dims, then qty, amt, price
func fishRecord(r domain.AggregatedRow, dims []domain.Dim, labels *dataprocessing.LabelMap) []string {
	rec := make([]string, 0, 2+len(dims)+3)
	rec = append(rec, r.Key.FishKey, labels.Label(r.Key.FishKey))
	for _, d := range dims {
		rec = append(rec, dimValue(r.Key, d))
	}
	return append(rec, measures(r)...)
}

// fishTable shapes aggregated rows per fish
func fishTable(spec TableSpec, rows []domain.AggregatedRow, dims []domain.Dim, labels *dataprocessing.LabelMap) exporter.Table {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = fishRecord(r, dims, labels)
	}
	return spec.table(records)
}

// rankedTable shapes top-N rows per fish with the rank as last column
func rankedTable(spec TableSpec, rows []domain.RankedRow, dims []domain.Dim, labels *dataprocessing.LabelMap) exporter.Table {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = append(fishRecord(r.AggregatedRow, dims, labels), exporter.FormatInt(r.Rank))
	}
	return spec.table(records)
}

func yoyTable(spec TableSpec, rows []domain.YoyRow, labels *dataprocessing.LabelMap) exporter.Table {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = append(fishRecord(r.AggregatedRow, []domain.Dim{domain.DimYear}, labels),
			exporter.FormatNull(r.YoyQty), exporter.FormatNull(r.YoyAmt), exporter.FormatNull(r.YoyPrice))
	}
	return spec.table(records)
}

func topOriginTable(spec TableSpec, rows []domain.TopOriginRow, labels *dataprocessing.LabelMap) exporter.Table {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{
			exporter.FormatInt(r.Year), r.FishKey, labels.Label(r.FishKey),
			r.ByAmt.Key.OriginPref, exporter.FormatFloat(r.ByAmt.Amt), exporter.FormatFloat(r.ByAmt.Qty), exporter.FormatNull(r.ByAmt.Price),
			r.ByQty.Key.OriginPref, exporter.FormatFloat(r.ByQty.Qty), exporter.FormatFloat(r.ByQty.Amt), exporter.FormatNull(r.ByQty.Price),
		}
	}
	return spec.table(records)
}

func shareTable(spec TableSpec, rows []domain.ShareRow) exporter.Table {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = append([]string{exporter.FormatInt(r.Key.Year), r.Key.Category}, measures(r.AggregatedRow)...)
		records[i] = append(records[i], exporter.FormatNull(r.ShareAmt), exporter.FormatNull(r.ShareQty))
	}
	return spec.table(records)
}

// latestYoyTable shapes the latest-year ranking joined with its YoY ratios
func latestYoyTable(spec TableSpec, ranked []domain.RankedRow, yoy map[domain.Key]domain.YoyRow, labels *dataprocessing.LabelMap) exporter.Table {
	records := make([][]string, len(ranked))
	for i, r := range ranked {
		y := yoy[r.Key]
		records[i] = append(fishRecord(r.AggregatedRow, []domain.Dim{domain.DimYear}, labels),
			exporter.FormatNull(y.YoyQty), exporter.FormatNull(y.YoyAmt), exporter.FormatNull(y.YoyPrice),
			exporter.FormatInt(r.Rank))
	}
	return spec.table(records)
}

func latestByCategoryTable(spec TableSpec, rows []domain.CategoryLatestRow, labels *dataprocessing.LabelMap) exporter.Table {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{
			r.Category, r.FishKey, labels.Label(r.FishKey), exporter.FormatInt(r.Year),
			exporter.FormatNull(r.Price), exporter.FormatNull(r.YoyPrice),
			exporter.FormatFloat(r.Qty), exporter.FormatFloat(r.Amt), exporter.FormatInt(r.RankAmt),
		}
	}
	return spec.table(records)
}

func correlationTable(spec TableSpec, rows []domain.CorrelationRow, labels *dataprocessing.LabelMap) exporter.Table {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{
			r.FishKey, labels.Label(r.FishKey), exporter.FormatInt(r.NYears),
			exporter.FormatFloat(r.CorrQty), exporter.FormatFloat(r.CorrAmt), exporter.FormatFloat(r.CorrPrice),
		}
	}
	return spec.table(records)
}

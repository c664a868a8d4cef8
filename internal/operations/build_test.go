package operations_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fishintel/internal/dataprocessing"
	"fishintel/internal/exporter"
	"fishintel/internal/operations"
	"fishintel/pkg/contracts/domain"
)

func marketFact(year int, label, category, origin string, qty, amt float64) domain.FactRecord {
	return domain.FactRecord{
		Source:     domain.SourceMarket,
		Year:       year,
		FishKey:    dataprocessing.NormalizeCommodityName(label),
		FishLabel:  label,
		Origin:     origin,
		OriginPref: dataprocessing.NormalizePrefecture(origin),
		Category:   category,
		Qty:        qty,
		Amt:        amt,
	}
}

// landingsRow builds a wide row whose yearly totals are the sum of the given months
func landingsRow(year int, label, area, method string, months map[int][2]float64) domain.WideLandingsRow {
	cells := make(map[string]float64)
	var qty, amt float64
	for _, c := range dataprocessing.DefaultMonthColumns() {
		v := months[c.Month]
		cells[c.QtyColumn] = v[0]
		cells[c.AmtColumn] = v[1]
		qty += v[0]
		amt += v[1]
	}
	cells[dataprocessing.ColLandingsYearQty] = qty
	cells[dataprocessing.ColLandingsYearAmt] = amt
	return domain.WideLandingsRow{
		Fact: domain.FactRecord{
			Source:    domain.SourceLandings,
			Year:      year,
			FishKey:   dataprocessing.NormalizeCommodityName(label),
			FishLabel: label,
			Area:      area,
			Method:    method,
			Qty:       qty,
			Amt:       amt,
		},
		Cells: cells,
	}
}

var twoMonths = map[int][2]float64{1: {40, 20000}, 6: {60, 33000}}

func standardInput() operations.BuildInput {
	return operations.BuildInput{
		Market: []domain.FactRecord{
			marketFact(2023, "まあじ", "鮮魚", "長崎県", 100, 50000),
			marketFact(2023, "まさば", "鮮魚", "千葉県", 200, 40000),
			marketFact(2024, "まあじ", "鮮魚", "長崎県", 120, 66000),
			marketFact(2024, "まあじ", "鮮魚", "輸入", 30, 9000),
			marketFact(2024, "まさば", "鮮魚", "千葉県", 180, 45000),
			marketFact(2023, "まさば", "冷凍魚", "ノルウェー", 500, 150000),
			marketFact(2024, "まさば", "冷凍魚", "ノルウェー", 400, 140000),
			marketFact(2024, "まあじ", "塩干", "静岡県", 10, 8000),
		},
		Landings: []domain.WideLandingsRow{
			landingsRow(2023, "マアジ", "松浦", "まき網", twoMonths),
			landingsRow(2024, "マアジ", "松浦", "まき網", twoMonths),
			landingsRow(2024, "マアジ", "五島", "定置網", twoMonths),
			landingsRow(2024, "マサバ", "松浦", "まき網", twoMonths),
		},
	}
}

func buildStandard(t *testing.T, opts operations.BuildOptions) *operations.BuildResult {
	t.Helper()
	result, err := operations.BuildTables(context.Background(), standardInput(), opts)
	require.NoError(t, err)
	return result
}

func table(t *testing.T, result *operations.BuildResult, spec operations.TableSpec) exporter.Table {
	t.Helper()
	tbl, ok := result.Table(spec.Name)
	require.True(t, ok, "table %s missing", spec.Name)
	return tbl
}

func parseCell(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	require.NoError(t, err)
	return v
}

func TestCatalog(t *testing.T) {
	catalog := operations.Catalog()
	require.Len(t, catalog, 15)

	names := make(map[string]bool)
	files := make(map[string]bool)
	for _, spec := range catalog {
		assert.False(t, names[spec.Name], "duplicate name %s", spec.Name)
		assert.False(t, files[spec.File], "duplicate file %s", spec.File)
		assert.NotEmpty(t, spec.Header)
		names[spec.Name] = true
		files[spec.File] = true

		found, ok := operations.LookupTable(spec.Name)
		assert.True(t, ok)
		assert.Equal(t, spec.File, found.File)
	}

	_, ok := operations.LookupTable("nope")
	assert.False(t, ok)
}

func TestBuildTables_FollowsCatalog(t *testing.T) {
	result := buildStandard(t, operations.BuildOptions{TopN: 10, MinCorrelationN: 5})

	catalog := operations.Catalog()
	require.Len(t, result.Tables, len(catalog))
	for i, spec := range catalog {
		tbl := result.Tables[i]
		assert.Equal(t, spec.Name, tbl.Name)
		assert.Equal(t, spec.File, tbl.File)
		assert.Equal(t, spec.Header, tbl.Header)
		for _, rec := range tbl.Records {
			assert.Len(t, rec, len(spec.Header), "table %s", spec.Name)
		}
	}

	assert.Equal(t, 2024, result.LatestMarketYear)
	assert.Equal(t, 2024, result.LatestLandingsYear)
}

func TestBuildTables_MarketYearFish(t *testing.T) {
	result := buildStandard(t, operations.BuildOptions{TopN: 10})
	recs := table(t, result, operations.MarketYearFish).Records

	require.Len(t, recs, 4)
	// first year of an entity has no YoY
	assert.Equal(t, []string{"まあじ", "まあじ", "2023", "100", "50000", "500", "", "", ""}, recs[0])

	assert.Equal(t, []string{"まあじ", "まあじ", "2024", "160", "83000", "518.75"}, recs[1][:6])
	assert.InDelta(t, 0.6, parseCell(t, recs[1][6]), 1e-9)
	assert.InDelta(t, 0.66, parseCell(t, recs[1][7]), 1e-9)
	assert.InDelta(t, 0.0375, parseCell(t, recs[1][8]), 1e-9)

	assert.Equal(t, "まさば", recs[2][0])
	assert.Equal(t, "2023", recs[2][2])
}

func TestBuildTables_MarketLatest(t *testing.T) {
	result := buildStandard(t, operations.BuildOptions{TopN: 10})

	latest := table(t, result, operations.MarketTopFishLatest).Records
	require.Len(t, latest, 2)
	assert.Equal(t, []string{"まさば", "まさば", "2024", "580", "185000"}, latest[0][:5])
	assert.Equal(t, "1", latest[0][9])
	assert.Equal(t, "まあじ", latest[1][0])
	assert.Equal(t, "2", latest[1][9])
	assert.InDelta(t, 0.6, parseCell(t, latest[1][6]), 1e-9)

	byCategory := table(t, result, operations.MarketTopFishLatestByCategory).Records
	require.Len(t, byCategory, 4)
	categories := make([]string, len(byCategory))
	for i, r := range byCategory {
		categories[i] = r[0]
	}
	assert.Equal(t, []string{"塩干", "鮮魚", "鮮魚", "冷凍魚"}, categories)

	// no same category row in the year before
	assert.Equal(t, []string{"塩干", "まあじ", "まあじ", "2024", "800", "", "10", "8000", "1"}, byCategory[0])
	assert.Equal(t, []string{"鮮魚", "まあじ", "まあじ", "2024", "500", "0", "150", "75000", "1"}, byCategory[1])
	assert.Equal(t, []string{"鮮魚", "まさば", "まさば", "2024", "250", "0.25", "180", "45000", "2"}, byCategory[2])
}

func TestBuildTables_MarketOrigins(t *testing.T) {
	result := buildStandard(t, operations.BuildOptions{TopN: 1})

	top := table(t, result, operations.MarketYearFishOriginTop).Records
	require.Len(t, top, 4)
	assert.Equal(t, []string{"まあじ", "まあじ", "2024", "長崎県", "120", "66000", "550", "1"}, top[2])

	winners := table(t, result, operations.MarketYearFishTopOrigin).Records
	require.Len(t, winners, 4)
	assert.Equal(t, []string{"2024", "まさば", "まさば",
		domain.ForeignOrigin, "140000", "400", "350",
		domain.ForeignOrigin, "400", "140000", "350"}, winners[3])

	share := table(t, result, operations.MarketYearCategoryShare).Records
	require.NotEmpty(t, share)
	assert.Equal(t, []string{"2023", "冷凍魚", "500", "150000", "300", "0.625", "0.625"}, share[0])
}

func TestBuildTables_Landings(t *testing.T) {
	result := buildStandard(t, operations.BuildOptions{TopN: 10})

	year := table(t, result, operations.LandingsYearFish).Records
	assert.Equal(t, [][]string{
		{"まあじ", "まあじ", "2023", "100", "53000", "530"},
		{"まあじ", "まあじ", "2024", "200", "106000", "530"},
		{"まさば", "まさば", "2024", "100", "53000", "530"},
	}, year)

	latest := table(t, result, operations.LandingsTopFishLatest).Records
	assert.Equal(t, [][]string{
		{"まあじ", "まあじ", "2024", "200", "106000", "530", "1"},
		{"まさば", "まさば", "2024", "100", "53000", "530", "2"},
	}, latest)

	month := table(t, result, operations.LandingsMonthFish).Records
	require.Len(t, month, 36)
	assert.Equal(t, []string{"まあじ", "まあじ", "2023", "1", "40", "20000", "500"}, month[0])
	// empty months are kept with an absent price
	assert.Equal(t, []string{"まあじ", "まあじ", "2023", "2", "0", "0", ""}, month[1])

	area := table(t, result, operations.LandingsYearFishAreaTop).Records
	require.Len(t, area, 4)
	// exact tie: input order, which is ascending area
	assert.Equal(t, []string{"まあじ", "まあじ", "2024", "五島", "100", "53000", "530", "1"}, area[1])
	assert.Equal(t, []string{"まあじ", "まあじ", "2024", "松浦", "100", "53000", "530", "2"}, area[2])

	method := table(t, result, operations.LandingsYearFishMethodTop).Records
	require.Len(t, method, 4)
	assert.Equal(t, "まき網", method[1][3])

	assert.Len(t, table(t, result, operations.LandingsMonthFishArea).Records, 48)
	assert.Len(t, table(t, result, operations.LandingsMonthFishMethod).Records, 48)
}

func TestBuildTables_SameFishAcrossSpellings(t *testing.T) {
	in := operations.BuildInput{
		Market: []domain.FactRecord{
			marketFact(2023, "マグロ", "鮮魚", "青森", 10, 1000),
			marketFact(2024, "まぐろ", "鮮魚", "アメリカ", 20, 3000),
		},
		Landings: []domain.WideLandingsRow{
			landingsRow(2024, "ﾏｸﾞﾛ", "大間", "一本釣", map[int][2]float64{10: {2, 8000}}),
		},
	}

	result, err := operations.BuildTables(context.Background(), in, operations.BuildOptions{TopN: 10, MinCorrelationN: 5})
	require.NoError(t, err)

	yearFish := table(t, result, operations.MarketYearFish).Records
	require.Len(t, yearFish, 2)
	for _, r := range yearFish {
		assert.Equal(t, "まぐろ", r[0])
		assert.Equal(t, "マグロ", r[1], "market label seen first wins")
	}
	assert.Equal(t, []string{"まぐろ", "マグロ", "2024", "20", "3000", "150", "1", "2", "0.5"}, yearFish[1])

	origins := table(t, result, operations.MarketYearFishOriginTop).Records
	require.Len(t, origins, 2)
	assert.Equal(t, []string{"まぐろ", "マグロ", "2023", "青森県"}, origins[0][:4])
	assert.Equal(t, []string{"まぐろ", "マグロ", "2024", domain.ForeignOrigin}, origins[1][:4])

	landings := table(t, result, operations.LandingsTopFishLatest).Records
	require.Len(t, landings, 1)
	assert.Equal(t, []string{"まぐろ", "マグロ"}, landings[0][:2])
}

func TestBuildTables_MonthlyDrillDownKeepsTopPairs(t *testing.T) {
	in := standardInput()
	in.Landings = append(in.Landings,
		landingsRow(2024, "マサバ", "五島", "刺網", map[int][2]float64{3: {5, 1000}}))

	result, err := operations.BuildTables(context.Background(), in, operations.BuildOptions{TopN: 1})
	require.NoError(t, err)

	for _, r := range table(t, result, operations.LandingsMonthFishArea).Records {
		assert.False(t, r[0] == "まさば" && r[4] == "五島", "pair outside the yearly top-1 leaked: %v", r)
	}
	for _, r := range table(t, result, operations.LandingsMonthFishMethod).Records {
		assert.NotEqual(t, "刺網", r[4])
	}
}

func TestBuildTables_Correlation(t *testing.T) {
	var in operations.BuildInput
	for i := 0; i < 5; i++ {
		year := 2019 + i
		qty := float64(10 * (i + 1))
		in.Market = append(in.Market, marketFact(year, "まぐろ", "鮮魚", "静岡", qty, qty*float64(100+i)))
		in.Landings = append(in.Landings,
			landingsRow(year, "マグロ", "焼津", "はえ縄", map[int][2]float64{1: {2 * qty, 2 * qty * float64(50+i)}}))
		if i > 0 {
			// four joined years only: below the threshold
			in.Market = append(in.Market, marketFact(year, "かつお", "鮮魚", "静岡", qty, qty))
			in.Landings = append(in.Landings,
				landingsRow(year, "カツオ", "焼津", "一本釣", map[int][2]float64{1: {qty, qty}}))
		}
	}

	result, err := operations.BuildTables(context.Background(), in, operations.BuildOptions{MinCorrelationN: 5})
	require.NoError(t, err)

	corr := table(t, result, operations.CorrFish).Records
	require.Len(t, corr, 1)
	assert.Equal(t, "まぐろ", corr[0][0])
	assert.Equal(t, "まぐろ", corr[0][1])
	assert.Equal(t, "5", corr[0][2])
	assert.Equal(t, "1", corr[0][3])
	assert.Equal(t, "1", corr[0][5])
}

func TestBuildTables_EmptyCorrelationStillBuilt(t *testing.T) {
	result := buildStandard(t, operations.BuildOptions{MinCorrelationN: 5})

	corr := table(t, result, operations.CorrFish)
	assert.Empty(t, corr.Records)
	assert.Equal(t, operations.CorrFish.Header, corr.Header)
}

func TestBuildTables_ParallelMatchesSequential(t *testing.T) {
	seq := buildStandard(t, operations.BuildOptions{TopN: 3, Parallel: false})
	par := buildStandard(t, operations.BuildOptions{TopN: 3, Parallel: true})

	assert.Equal(t, seq.Tables, par.Tables)
	assert.Equal(t, seq.LatestMarketYear, par.LatestMarketYear)
	assert.Equal(t, seq.LatestLandingsYear, par.LatestLandingsYear)
}

func TestBuildTables_Deterministic(t *testing.T) {
	first := buildStandard(t, operations.BuildOptions{Parallel: true})
	second := buildStandard(t, operations.BuildOptions{Parallel: true})
	assert.Equal(t, first.Tables, second.Tables)
}

func TestBuildTables_NegativeRowsDropped(t *testing.T) {
	in := standardInput()
	in.Market = append(in.Market, marketFact(2025, "まあじ", "鮮魚", "長崎県", -5, 1000))

	result, err := operations.BuildTables(context.Background(), in, operations.BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2024, result.LatestMarketYear)
}

func TestBuildTables_EmptyInput(t *testing.T) {
	result, err := operations.BuildTables(context.Background(), operations.BuildInput{}, operations.BuildOptions{Parallel: true})
	require.NoError(t, err)

	require.Len(t, result.Tables, 15)
	for _, tbl := range result.Tables {
		assert.Empty(t, tbl.Records, tbl.Name)
	}
	assert.Zero(t, result.LatestMarketYear)
	assert.Zero(t, result.LatestLandingsYear)
}

func TestBuildTables_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, parallel := range []bool{false, true} {
		_, err := operations.BuildTables(ctx, standardInput(), operations.BuildOptions{Parallel: parallel})
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestBuildTables_LabelsPreferMarket(t *testing.T) {
	result := buildStandard(t, operations.BuildOptions{})

	label, ok := result.Labels.Lookup("まあじ")
	require.True(t, ok)
	assert.Equal(t, "まあじ", label)
}

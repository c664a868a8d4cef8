package operations

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fishintel/internal/dataprocessing"
	"fishintel/internal/exporter"
	"fishintel/pkg/contracts/domain"
)

// BuildInput is what the source readers produced
type BuildInput struct {
	Market       []domain.FactRecord
	Landings     []domain.WideLandingsRow
	MonthColumns []dataprocessing.MonthColumn
}

// BuildOptions tune the table builders
type BuildOptions struct {
	TopN            int
	MinCorrelationN int
	// Parallel runs the market and landings builders concurrently
	Parallel bool
}

// BuildResult holds every output table in catalog order
type BuildResult struct {
	Tables             []exporter.Table
	LatestMarketYear   int
	LatestLandingsYear int
	Labels             *dataprocessing.LabelMap
}

// Table returns the built table with the given manifest key
func (r *BuildResult) Table(name string) (exporter.Table, bool) {
	for _, t := range r.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return exporter.Table{}, false
}

// marketTables is the output of the market builder
type marketTables struct {
	yearFish         []domain.AggregatedRow
	latestYear       int
	yoy              exporter.Table
	category         exporter.Table
	originTop        exporter.Table
	topOrigin        exporter.Table
	share            exporter.Table
	latest           exporter.Table
	latestByCategory exporter.Table
}

// landingsTables is the output of the landings builder
type landingsTables struct {
	yearFish    []domain.AggregatedRow
	latestYear  int
	latest      exporter.Table
	year        exporter.Table
	month       exporter.Table
	monthArea   exporter.Table
	monthMethod exporter.Table
	areaTop     exporter.Table
	methodTop   exporter.Table
}

// BuildTables derives every output table from the raw source rows. It does
// no I/O. Both sources are cleaned first; labels come from the cleaned
// market rows and the raw landings rows, market first.
func BuildTables(ctx context.Context, in BuildInput, opts BuildOptions) (*BuildResult, error) {
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	if opts.MinCorrelationN <= 0 {
		opts.MinCorrelationN = dataprocessing.DefaultMinCorrelationYears
	}
	months := in.MonthColumns
	if len(months) == 0 {
		months = dataprocessing.DefaultMonthColumns()
	}

	market := dataprocessing.Clean(in.Market)
	rawYearly := dataprocessing.YearlyLandings(in.Landings)
	yearly := dataprocessing.Clean(rawYearly)
	monthly := dataprocessing.Clean(dataprocessing.Melt(in.Landings, months))
	labels := dataprocessing.BuildLabelMap(market, rawYearly)

	var m *marketTables
	var l *landingsTables
	buildMarket := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		m = buildMarketTables(market, labels, opts)
		return nil
	}
	buildLandings := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		l = buildLandingsTables(yearly, monthly, labels, opts)
		return nil
	}

	if opts.Parallel {
		var g errgroup.Group
		g.Go(buildMarket)
		g.Go(buildLandings)
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		if err := buildMarket(); err != nil {
			return nil, err
		}
		if err := buildLandings(); err != nil {
			return nil, err
		}
	}

	corr := dataprocessing.Correlate(m.yearFish, l.yearFish, opts.MinCorrelationN)

	return &BuildResult{
		Tables: []exporter.Table{
			m.yoy,
			m.category,
			m.originTop,
			m.topOrigin,
			m.share,
			m.latest,
			m.latestByCategory,
			l.latest,
			l.year,
			l.month,
			l.monthArea,
			l.monthMethod,
			l.areaTop,
			l.methodTop,
			correlationTable(CorrFish, corr, labels),
		},
		LatestMarketYear:   m.latestYear,
		LatestLandingsYear: l.latestYear,
		Labels:             labels,
	}, nil
}

func buildMarketTables(market []domain.FactRecord, labels *dataprocessing.LabelMap, opts BuildOptions) *marketTables {
	yearFish := dataprocessing.Aggregate(market, dataprocessing.ByYearFish)
	yoy := dataprocessing.WithYoY(yearFish, []domain.Dim{domain.DimFishKey})

	yoyByKey := make(map[domain.Key]domain.YoyRow, len(yoy))
	for _, r := range yoy {
		yoyByKey[r.Key] = r
	}
	latestYear, latest := dataprocessing.RankLatest(yearFish, dataprocessing.AmountDesc)

	byCategory := dataprocessing.Aggregate(market, dataprocessing.ByYearFishCategory)
	byOrigin := dataprocessing.Aggregate(market, dataprocessing.ByYearFishOrigin)
	categoryTotals := dataprocessing.Aggregate(market, dataprocessing.ByYearCategory)
	share := dataprocessing.WithShare(categoryTotals, dataprocessing.YearTotals(categoryTotals))

	return &marketTables{
		yearFish:   yearFish,
		latestYear: latestYear,
		yoy:        yoyTable(MarketYearFish, yoy, labels),
		category: fishTable(MarketYearFishCategory, byCategory,
			[]domain.Dim{domain.DimYear, domain.DimCategory}, labels),
		originTop: rankedTable(MarketYearFishOriginTop, dataprocessing.TopN(byOrigin, opts.TopN),
			[]domain.Dim{domain.DimYear, domain.DimOriginPref}, labels),
		topOrigin:        topOriginTable(MarketYearFishTopOrigin, dataprocessing.TopOrigins(byOrigin), labels),
		share:            shareTable(MarketYearCategoryShare, share),
		latest:           latestYoyTable(MarketTopFishLatest, latest, yoyByKey, labels),
		latestByCategory: latestByCategoryTable(MarketTopFishLatestByCategory, dataprocessing.LatestByCategory(byCategory), labels),
	}
}

func buildLandingsTables(yearly, monthly []domain.FactRecord, labels *dataprocessing.LabelMap, opts BuildOptions) *landingsTables {
	yearFish := dataprocessing.Aggregate(yearly, dataprocessing.ByYearFish)
	latestYear, latest := dataprocessing.RankLatest(yearFish, dataprocessing.QuantityDesc)

	areaTop := dataprocessing.TopN(dataprocessing.Aggregate(yearly, dataprocessing.ByYearFishArea), opts.TopN)
	methodTop := dataprocessing.TopN(dataprocessing.Aggregate(yearly, dataprocessing.ByYearFishMethod), opts.TopN)

	monthArea := dataprocessing.KeepRankedPairs(
		dataprocessing.Aggregate(monthly, dataprocessing.ByYearMonthFishArea), areaTop, domain.DimArea)
	monthMethod := dataprocessing.KeepRankedPairs(
		dataprocessing.Aggregate(monthly, dataprocessing.ByYearMonthFishMethod), methodTop, domain.DimMethod)

	yearDims := []domain.Dim{domain.DimYear}
	monthDims := []domain.Dim{domain.DimYear, domain.DimMonth}
	return &landingsTables{
		yearFish:   yearFish,
		latestYear: latestYear,
		latest:     rankedTable(LandingsTopFishLatest, latest, yearDims, labels),
		year:       fishTable(LandingsYearFish, yearFish, yearDims, labels),
		month: fishTable(LandingsMonthFish, dataprocessing.Aggregate(monthly, dataprocessing.ByYearMonthFish),
			monthDims, labels),
		monthArea:   fishTable(LandingsMonthFishArea, monthArea, []domain.Dim{domain.DimYear, domain.DimMonth, domain.DimArea}, labels),
		monthMethod: fishTable(LandingsMonthFishMethod, monthMethod, []domain.Dim{domain.DimYear, domain.DimMonth, domain.DimMethod}, labels),
		areaTop:     rankedTable(LandingsYearFishAreaTop, areaTop, []domain.Dim{domain.DimYear, domain.DimArea}, labels),
		methodTop:   rankedTable(LandingsYearFishMethodTop, methodTop, []domain.Dim{domain.DimYear, domain.DimMethod}, labels),
	}
}

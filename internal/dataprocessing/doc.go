// Package dataprocessing turns the raw market and landings workbooks into
// canonical fact tables and the derived summary views built from them.
//
// # Architecture
//
// The package is organized in small pure stages that each return a new
// row collection:
//
//  1. Readers: WorkbookReader extracts market facts and wide landings rows
//  2. Normalizer: NormalizeCommodityName and NormalizePrefecture produce
//     canonical keys
//  3. Cleaner: Clean drops negative measures and recomputes price
//  4. Aggregator: Aggregate sums facts over a dimension tuple
//  5. Ranker, YoY, Share and Correlate derive ranked, delta, share and
//     cross-source views
//  6. Reshaper: Melt turns the twelve month columns into monthly facts
//
// # Usage
//
//	f, err := dataprocessing.OpenWorkbook(path)
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	facts, stats, err := dataprocessing.NewWorkbookReader(f, logger).ReadMarket(sheets)
//	yearly := dataprocessing.Aggregate(dataprocessing.Clean(facts), dataprocessing.ByYearFish)
//	withYoY := dataprocessing.WithYoY(yearly, []domain.Dim{domain.DimFishKey})
//
// # Error Handling
//
// Structural problems (a missing sheet, a missing column, a month column
// without a month number) are returned as SCHEMA errors from
// internal/errors. Malformed data rows are not errors: readers drop and
// count them, and the cleaner drops negative measures.
//
// # Determinism
//
// Aggregate orders its output by the grouping tuple and every sort is
// stable, so ranks and output order never depend on map iteration.
package dataprocessing

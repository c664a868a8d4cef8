// Package operations runs the preprocessing pipeline: it reads the market and
// landings workbooks, derives every output table, and publishes the tables
// together with their manifest as one unit.
//
// A run is a fixed set of steps held in a Registry and executed in
// dependency order:
//
//	load_market, load_landings -> build_tables -> write_outputs -> publish
//
// BuildTables is the pure core of the run. It takes the raw source rows and
// returns the fifteen tables of the catalog; the market and landings builders
// are independent and run concurrently when BuildOptions.Parallel is set.
//
// Outputs are written into a staging directory beside the output directory
// and swapped into place only after every file was written. A failed or
// cancelled run removes its staging directory and leaves the previously
// published set untouched.
//
// Each run gets a uuid that is used as the trace id of its log records, as
// the run id of its spans and metrics, and as the name of the RunReport saved
// in the logs directory.
//
// Example usage:
//
//	pipeline, err := operations.NewPipeline(cfg.Pipeline, paths, logger, tracer)
//	if err != nil {
//		return err
//	}
//	result, err := pipeline.Run(ctx)
package operations

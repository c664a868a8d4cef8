package operations

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"fishintel/internal/config"
	"fishintel/internal/dataprocessing"
	apperrors "fishintel/internal/errors"
	"fishintel/internal/exporter"
	"fishintel/internal/files"
	"fishintel/internal/infrastructure"
	"fishintel/pkg/contracts/domain"
)

// Step IDs of a preprocessing run
const (
	StepLoadMarket   = "load_market"
	StepLoadLandings = "load_landings"
	StepBuildTables  = "build_tables"
	StepWriteOutputs = "write_outputs"
	StepPublish      = "publish"
)

// Pipeline recomputes every output table from the two source workbooks and
// publishes them, with the manifest, as one unit
type Pipeline struct {
	cfg      config.PipelineConfig
	paths    *config.Paths
	logger   *slog.Logger
	tracer   *PipelineTracer
	registry *Registry
	files    *files.Manager
	months   []dataprocessing.MonthColumn
}

// RunResult summarizes a successful run
type RunResult struct {
	RunID      string
	Manifest   *domain.Manifest
	OutputDir  string
	Stats      map[string]int
	ReportPath string
	Duration   time.Duration
}

// NewPipeline wires the steps of a run. A nil tracer records nothing.
func NewPipeline(cfg config.PipelineConfig, paths *config.Paths, logger *slog.Logger, tracer *PipelineTracer) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		var err error
		if tracer, err = NewPipelineTracer(nil); err != nil {
			return nil, err
		}
	}

	months, err := monthColumns(cfg)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:      cfg,
		paths:    paths,
		logger:   infrastructure.WithComponent(logger, "pipeline"),
		tracer:   tracer,
		registry: NewRegistry(),
		months:   months,
	}
	p.files = files.NewManager(paths.ProDir, p.logger)

	steps := []Step{
		NewStep(StepLoadMarket, "Load market workbook", nil, p.loadMarket, nil),
		NewStep(StepLoadLandings, "Load landings workbook", nil, p.loadLandings, nil),
		NewStep(StepBuildTables, "Build output tables",
			[]string{StepLoadMarket, StepLoadLandings}, p.buildTables, nil),
		NewStep(StepWriteOutputs, "Write outputs to staging",
			[]string{StepBuildTables}, p.writeOutputs, requireResult),
		NewStep(StepPublish, "Publish outputs",
			[]string{StepWriteOutputs}, p.publish, requireStaging),
	}
	for _, step := range steps {
		if err := p.registry.Register(step); err != nil {
			return nil, err
		}
	}
	if _, err := p.registry.GetDependencyOrder(); err != nil {
		return nil, err
	}
	return p, nil
}

// monthColumns resolves the landings month layout from the configured
// column names, falling back to the standard layout
func monthColumns(cfg config.PipelineConfig) ([]dataprocessing.MonthColumn, error) {
	if len(cfg.QtyMonthColumns) == 0 && len(cfg.AmtMonthColumns) == 0 {
		return dataprocessing.DefaultMonthColumns(), nil
	}
	months, err := dataprocessing.MonthColumnsFromNames(cfg.QtyMonthColumns, cfg.AmtMonthColumns)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid landings month columns", err)
	}
	return months, nil
}

// Registry exposes the registered steps
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Run executes one full recompute. On any failure the staging directory is
// removed and the previously published outputs stay in place.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	runID := uuid.NewString()
	ctx = infrastructure.WithTraceID(ctx, runID)
	start := time.Now()

	ctx, span := p.tracer.TraceRun(ctx, runID)
	report := NewRunReport(runID, p.reportConfig())
	report.Start()
	state := NewRunState(runID)
	state.MonthColumns = p.months

	p.logger.InfoContext(ctx, "Preprocessing run started",
		slog.String("market_file", p.paths.MarketFile),
		slog.String("landings_file", p.paths.LandingsFile),
		slog.String("output_dir", p.paths.ProDir))

	if n, err := p.files.CleanupStale(); err != nil {
		p.logger.WarnContext(ctx, "Failed to clean up stale staging directories", slog.String("error", err.Error()))
	} else if n > 0 {
		p.logger.InfoContext(ctx, "Removed stale staging directories", slog.Int("count", n))
	}

	err := p.execute(ctx, state, report)

	if state.Staging != nil {
		if derr := state.Staging.Discard(); derr != nil {
			p.logger.WarnContext(ctx, "Failed to discard staging directory",
				slog.String("dir", state.Staging.Dir),
				slog.String("error", derr.Error()))
		}
	}

	if err == nil {
		infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
			"fishintel.tables":               len(state.Result.Tables),
			"fishintel.latest_market_year":   state.Manifest.LatestMarketYear,
			"fishintel.latest_landings_year": state.Manifest.LatestLandingsYear,
		})
	}

	duration := time.Since(start)
	p.tracer.RecordRunCompletion(ctx, span, runID, duration, err)
	report.Finish(err, state.Stats())
	reportPath := p.saveReport(ctx, report)

	if err != nil {
		p.logger.ErrorContext(ctx, "Preprocessing run failed",
			slog.String("stage", FailedStep(err)),
			slog.String("error", err.Error()),
			slog.Duration("duration", duration))
		return nil, err
	}

	p.logger.InfoContext(ctx, "Preprocessing run completed",
		slog.Int("tables", len(state.Result.Tables)),
		slog.Int("latest_market_year", state.Manifest.LatestMarketYear),
		slog.Int("latest_landings_year", state.Manifest.LatestLandingsYear),
		slog.Duration("duration", duration))

	return &RunResult{
		RunID:      runID,
		Manifest:   state.Manifest,
		OutputDir:  p.files.OutputDir(),
		Stats:      state.Stats(),
		ReportPath: reportPath,
		Duration:   duration,
	}, nil
}

// execute runs the steps in dependency order and stops at the first failure
func (p *Pipeline) execute(ctx context.Context, state *RunState, report *RunReport) error {
	steps, err := p.registry.GetDependencyOrder()
	if err != nil {
		return err
	}

	for _, step := range steps {
		if cerr := ctx.Err(); cerr != nil {
			return NewCancellationError(step.ID(), cerr)
		}

		report.RecordStageStart(step.ID(), step.Name())
		if verr := step.Validate(state); verr != nil {
			report.RecordStageFailure(step.ID(), verr)
			return verr
		}

		stepCtx, span := p.tracer.TraceStage(ctx, state.RunID, step.ID())
		p.logger.InfoContext(ctx, "Stage started", slog.String("stage", step.ID()))
		started := time.Now()

		serr := step.Execute(stepCtx, state)
		elapsed := time.Since(started)
		p.tracer.RecordStageCompletion(stepCtx, span, state.RunID, step.ID(), elapsed, serr)

		if serr != nil {
			report.RecordStageFailure(step.ID(), serr)
			if ctx.Err() != nil {
				return NewCancellationError(step.ID(), serr)
			}
			return NewExecutionError(step.ID(), serr)
		}

		report.RecordStageCompletion(step.ID(), map[string]interface{}{
			"duration_ms": elapsed.Milliseconds(),
		})
		p.logger.InfoContext(ctx, "Stage completed",
			slog.String("stage", step.ID()),
			slog.Duration("duration", elapsed))
	}
	return nil
}

func (p *Pipeline) loadMarket(ctx context.Context, state *RunState) error {
	f, err := dataprocessing.OpenWorkbook(p.paths.MarketFile)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, stats, err := dataprocessing.NewWorkbookReader(f, p.logger).ReadMarket(p.cfg.MarketSheets)
	if err != nil {
		return err
	}

	state.Market = rows
	state.SetStat("market_rows", stats.Rows)
	state.SetStat("market_dropped", stats.Dropped)
	p.tracer.RecordRows(ctx, string(domain.SourceMarket), stats)
	p.logger.InfoContext(ctx, "Market workbook loaded",
		slog.Int("sheets", len(p.cfg.MarketSheets)),
		slog.Int("rows", stats.Rows),
		slog.Int("dropped", stats.Dropped))
	return nil
}

func (p *Pipeline) loadLandings(ctx context.Context, state *RunState) error {
	f, err := dataprocessing.OpenWorkbook(p.paths.LandingsFile)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, stats, err := dataprocessing.NewWorkbookReader(f, p.logger).ReadLandings(p.cfg.LandingsSheet, state.MonthColumns)
	if err != nil {
		return err
	}

	state.Landings = rows
	state.SetStat("landings_rows", stats.Rows)
	state.SetStat("landings_dropped", stats.Dropped)
	p.tracer.RecordRows(ctx, string(domain.SourceLandings), stats)
	p.logger.InfoContext(ctx, "Landings workbook loaded",
		slog.String("sheet", p.cfg.LandingsSheet),
		slog.Int("rows", stats.Rows),
		slog.Int("dropped", stats.Dropped))
	return nil
}

func (p *Pipeline) buildTables(ctx context.Context, state *RunState) error {
	result, err := BuildTables(ctx, BuildInput{
		Market:       state.Market,
		Landings:     state.Landings,
		MonthColumns: state.MonthColumns,
	}, BuildOptions{
		TopN:            p.cfg.TopN,
		MinCorrelationN: p.cfg.MinCorrelationN,
		Parallel:        p.cfg.Parallel,
	})
	if err != nil {
		return err
	}

	total := 0
	for _, t := range result.Tables {
		total += len(t.Records)
		p.logger.DebugContext(ctx, "Table built", slog.String("table", t.Name), slog.Int("rows", len(t.Records)))
	}

	state.Result = result
	state.Manifest = BuildManifest(p.cfg.ManifestVersion, state.RunID, result, p.cfg.TopN, time.Now())
	state.SetStat("tables", len(result.Tables))
	state.SetStat("output_rows", total)
	state.SetStat("fish_labels", result.Labels.Len())
	return nil
}

func (p *Pipeline) writeOutputs(ctx context.Context, state *RunState) error {
	staging, err := p.files.Stage()
	if err != nil {
		return err
	}
	state.Staging = staging

	w := exporter.NewCSVWriter(staging.Dir, p.logger)
	for _, t := range state.Result.Tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.WriteTable(t); err != nil {
			return err
		}
	}
	if err := w.WriteJSON(config.ManifestFileName, state.Manifest); err != nil {
		return err
	}

	p.tracer.RecordTablesWritten(ctx, len(state.Result.Tables))
	p.logger.InfoContext(ctx, "Outputs written to staging",
		slog.String("dir", staging.Dir),
		slog.Int("files", len(state.Result.Tables)+1))
	return nil
}

func (p *Pipeline) publish(ctx context.Context, state *RunState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return state.Staging.Publish()
}

func requireResult(state *RunState) error {
	if state.Result == nil || state.Manifest == nil {
		return NewValidationError(StepWriteOutputs, "no build result to write")
	}
	return nil
}

func requireStaging(state *RunState) error {
	if state.Staging == nil {
		return NewValidationError(StepPublish, "no staging directory to publish")
	}
	return nil
}

func (p *Pipeline) reportConfig() map[string]interface{} {
	return map[string]interface{}{
		"market_file":       p.paths.MarketFile,
		"landings_file":     p.paths.LandingsFile,
		"output_dir":        p.paths.ProDir,
		"market_sheets":     p.cfg.MarketSheets,
		"landings_sheet":    p.cfg.LandingsSheet,
		"top_n":             p.cfg.TopN,
		"min_correlation_n": p.cfg.MinCorrelationN,
		"parallel":          p.cfg.Parallel,
		"manifest_version":  p.cfg.ManifestVersion,
	}
}

// saveReport writes the run report to the logs directory and returns its
// path, or "" when reports are disabled or the write failed
func (p *Pipeline) saveReport(ctx context.Context, report *RunReport) string {
	if !p.cfg.RunReport || p.paths.LogsDir == "" {
		return ""
	}
	if err := os.MkdirAll(p.paths.LogsDir, 0755); err != nil {
		p.logger.WarnContext(ctx, "Failed to create logs directory", slog.String("error", err.Error()))
		return ""
	}

	path := p.paths.GetLogPath(ReportFileName(report.RunID))
	if err := report.SaveToFile(path); err != nil {
		p.logger.WarnContext(ctx, "Failed to save run report", slog.String("error", err.Error()))
		return ""
	}
	return path
}

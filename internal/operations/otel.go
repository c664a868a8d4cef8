package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"fishintel/internal/dataprocessing"
	"fishintel/internal/infrastructure"
)

const (
	TracerName = "fishintel.pipeline"
)

// PipelineTracer provides OpenTelemetry instrumentation for preprocessing runs
type PipelineTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewPipelineTracer creates a tracer on the given providers. Nil providers
// yield a tracer that records nothing.
func NewPipelineTracer(providers *infrastructure.OTelProviders) (*PipelineTracer, error) {
	if providers == nil {
		providers = infrastructure.NoopProviders(nil)
	}

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	return &PipelineTracer{
		tracer:  providers.Tracer,
		metrics: metrics,
	}, nil
}

// TraceRun creates the root span of a run
func (pt *PipelineTracer) TraceRun(ctx context.Context, runID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
		),
	)
}

// TraceStage creates a span for one step
func (pt *PipelineTracer) TraceStage(ctx context.Context, runID, stageID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, fmt.Sprintf("pipeline.stage.%s", stageID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("stage.id", stageID),
		),
	)
}

// RecordStageCompletion closes a stage span with its outcome and records the stage duration
func (pt *PipelineTracer) RecordStageCompletion(ctx context.Context, span trace.Span, runID, stageID string, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.Bool("stage.success", err == nil),
		attribute.Float64("stage.duration_seconds", duration.Seconds()),
	)

	infrastructure.RecordStageMetrics(ctx, pt.metrics, runID, stageID, duration, err == nil)

	if err != nil {
		span.RecordError(err, trace.WithAttributes(
			attribute.String("stage.id", stageID),
			attribute.String("error.type", "stage_execution_error"),
		))
		span.SetStatus(codes.Error, "stage execution failed")
	} else {
		span.SetStatus(codes.Ok, "stage completed")
	}
	span.End()
}

// RecordRunCompletion closes the run span and records the run counters
func (pt *PipelineTracer) RecordRunCompletion(ctx context.Context, span trace.Span, runID string, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.Bool("run.success", err == nil),
		attribute.Float64("run.duration_seconds", duration.Seconds()),
	)

	infrastructure.RecordRunMetrics(ctx, pt.metrics, duration, err)

	if err != nil {
		span.RecordError(err, trace.WithAttributes(attribute.String("run.id", runID)))
		span.SetStatus(codes.Error, fmt.Sprintf("run failed: %v", err))
	} else {
		span.SetStatus(codes.Ok, "run completed")
	}
	span.End()
}

// RecordRows counts what a source reader kept and dropped
func (pt *PipelineTracer) RecordRows(ctx context.Context, source string, stats dataprocessing.ReadStats) {
	attrs := metric.WithAttributes(attribute.String("source", source))
	pt.metrics.RowsRead.Add(ctx, int64(stats.Rows), attrs)
	pt.metrics.RowsDropped.Add(ctx, int64(stats.Dropped), attrs)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("source.read", trace.WithAttributes(
			attribute.String("source", source),
			attribute.Int("rows", stats.Rows),
			attribute.Int("dropped", stats.Dropped),
		))
	}
}

// RecordTablesWritten counts the output tables of a run
func (pt *PipelineTracer) RecordTablesWritten(ctx context.Context, n int) {
	pt.metrics.TablesWritten.Add(ctx, int64(n))
}

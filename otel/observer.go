// Package otel records run lifecycle signals into OpenTelemetry.
package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// RunObservation describes one finished tool run.
type RunObservation struct {
	ToolName string
	Mode     string
	ExitCode int
	Stopped  bool
	Duration time.Duration
}

// RunObserver records run outcomes into OpenTelemetry. A nil observer
// is safe to call and records nothing.
type RunObserver struct {
	tracer trace.Tracer

	runs          metric.Int64Counter
	cancellations metric.Int64Counter
	duration      metric.Float64Histogram
}

// NewRunObserver creates a run observer bound to the provided meter/tracer.
func NewRunObserver(meter metric.Meter, tracer trace.Tracer) (*RunObserver, error) {
	runs, err := meter.Int64Counter(
		"plar.run.executions",
		metric.WithDescription("Number of tool runs"),
	)
	if err != nil {
		return nil, err
	}
	cancellations, err := meter.Int64Counter(
		"plar.run.cancellations",
		metric.WithDescription("Number of runs stopped by the user"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		"plar.run.duration",
		metric.WithDescription("Run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RunObserver{
		tracer:        tracer,
		runs:          runs,
		cancellations: cancellations,
		duration:      duration,
	}, nil
}

// ObserveRun records one completed run.
func (o *RunObserver) ObserveRun(observation RunObservation) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("tool_name", observation.ToolName),
		attribute.String("mode", observation.Mode),
		attribute.Int("exit_code", observation.ExitCode),
		attribute.Bool("stopped", observation.Stopped),
	}

	ctx := context.Background()
	options := metric.WithAttributes(attrs...)
	o.runs.Add(ctx, 1, options)
	o.duration.Record(ctx, observation.Duration.Seconds(), options)
	if observation.Stopped {
		o.cancellations.Add(ctx, 1, options)
	}

	if o.tracer == nil {
		return
	}
	_, span := o.tracer.Start(ctx, "run.execute", trace.WithAttributes(attrs...))
	if observation.ExitCode != 0 {
		span.SetStatus(codes.Error, "non-zero exit")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

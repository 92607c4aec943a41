package transport

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/srediag/shmemdev/pkg/transport"

type telemetry struct {
	tracer        trace.Tracer
	framesRead    metric.Int64Counter
	framesWritten metric.Int64Counter
	stalls        metric.Int64Counter
	wouldBlock    metric.Int64Counter
	waitDuration  metric.Float64Histogram
	attrs         metric.MeasurementOption
}

func newTelemetry(meter metric.Meter, tracer trace.Tracer, path string) (*telemetry, error) {
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(instrumentationName)
	}
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}
	t := &telemetry{
		tracer: tracer,
		attrs:  metric.WithAttributes(attribute.String("shmemdev.path", path)),
	}
	var err error
	if t.framesRead, err = meter.Int64Counter("shmemdev.frames.read",
		metric.WithDescription("Frames returned to the consumer, repeated frames included.")); err != nil {
		return nil, err
	}
	if t.framesWritten, err = meter.Int64Counter("shmemdev.frames.written",
		metric.WithDescription("Frames published by the producer.")); err != nil {
		return nil, err
	}
	if t.stalls, err = meter.Int64Counter("shmemdev.stalls",
		metric.WithDescription("Semaphore waits that timed out.")); err != nil {
		return nil, err
	}
	if t.wouldBlock, err = meter.Int64Counter("shmemdev.would_block",
		metric.WithDescription("Non-blocking calls that found no frame.")); err != nil {
		return nil, err
	}
	if t.waitDuration, err = meter.Float64Histogram("shmemdev.wait.duration",
		metric.WithDescription("Time spent waiting for the producer signal."),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *telemetry) startOpen(ctx context.Context, name, path string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("shmemdev.path", path)))
}

func (t *telemetry) wait(ctx context.Context, d time.Duration) {
	t.waitDuration.Record(ctx, d.Seconds(), t.attrs)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

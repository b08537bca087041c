package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Observability bundles the meter and tracer used around pipeline stages.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	stageCounter   otelmetric.Int64Counter
	stageDuration  otelmetric.Float64Histogram
}

// New wires an OpenTelemetry meter exported through Prometheus and an SDK tracer.
// On exporter failure it returns an instance that records nothing.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return NewNoop(), err
	}

	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	meter := mp.Meter(serviceName)
	counter, _ := meter.Int64Counter(
		"eiv.stage.completed",
		otelmetric.WithDescription("Pipeline stages completed"),
	)
	duration, _ := meter.Float64Histogram(
		"eiv.stage.duration",
		otelmetric.WithDescription("Pipeline stage duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:  mp,
		tracerProvider: tp,
		tracer:         tp.Tracer(serviceName),
		stageCounter:   counter,
		stageDuration:  duration,
	}, nil
}

// NewNoop returns an instance with a no-op tracer and no meters.
func NewNoop() *Observability {
	return &Observability{tracer: noop.NewTracerProvider().Tracer("")}
}

// StartStage opens a span for a pipeline stage. The returned func ends it and
// records duration and status.
func (o *Observability) StartStage(ctx context.Context, stage string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, stage)

	return ctx, func(err error) {
		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		attrs := otelmetric.WithAttributes(
			attribute.String("stage", stage),
			attribute.String("status", status),
		)
		if o.stageCounter != nil {
			o.stageCounter.Add(ctx, 1, attrs)
		}
		if o.stageDuration != nil {
			o.stageDuration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
		}
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			return err
		}
	}
	if o.meterProvider != nil {
		return o.meterProvider.Shutdown(ctx)
	}
	return nil
}

package database

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Konsultn-Engineering/sqlib/database"

// observer logs, traces and counts statements.
type observer struct {
	system     string
	logger     *slog.Logger
	tracer     trace.Tracer
	statements metric.Int64Counter
	duration   metric.Float64Histogram
}

func newObserver(system string, o options) *observer {
	tp := o.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := o.meterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	obs := &observer{
		system: system,
		logger: o.logger,
		tracer: tp.Tracer(instrumentationName),
	}

	var err error
	obs.statements, err = meter.Int64Counter("sqlib.statements",
		metric.WithDescription("Number of executed statements"))
	if err != nil {
		o.logger.Warn("failed to create statement counter", "error", err)
	}
	obs.duration, err = meter.Float64Histogram("sqlib.statement.duration",
		metric.WithDescription("Statement execution time"),
		metric.WithUnit("ms"))
	if err != nil {
		o.logger.Warn("failed to create statement histogram", "error", err)
	}
	return obs
}

// start opens a span for the statement. The returned func ends it and must be
// called with the statement's outcome.
func (o *observer) start(ctx context.Context, op, query string, params *Parameters) (context.Context, func(error)) {
	o.logger.DebugContext(ctx, "executing statement",
		"op", op,
		"sql", query,
		"params", params.Len())

	attrs := []attribute.KeyValue{
		attribute.String("db.system", o.system),
		attribute.String("db.operation", op),
		attribute.String("db.statement", query),
	}
	ctx, span := o.tracer.Start(ctx, "sqlib."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...))
	began := time.Now()

	return ctx, func(err error) {
		defer span.End()

		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			o.logger.WarnContext(ctx, "statement failed",
				"op", op,
				"sql", query,
				"error", err)
		}

		set := metric.WithAttributes(
			attribute.String("db.system", o.system),
			attribute.String("db.operation", op),
			attribute.String("status", status))
		if o.statements != nil {
			o.statements.Add(ctx, 1, set)
		}
		if o.duration != nil {
			o.duration.Record(ctx, float64(time.Since(began).Microseconds())/1000, set)
		}
	}
}

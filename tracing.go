package inertia

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/pthm/inertia"

type tracerConfig struct {
	provider trace.TracerProvider
}

func (c tracerConfig) tracer() trace.Tracer {
	if c.provider != nil {
		return c.provider.Tracer(tracerName)
	}
	return otel.Tracer(tracerName)
}

func (i *Inertia) startSpan(ctx context.Context, component string) (context.Context, trace.Span) {
	return i.tracer.Start(ctx, "inertia.Render",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("inertia.component", component)),
	)
}

func annotateSpan(span trace.Span, partial bool, kind string) {
	span.SetAttributes(
		attribute.Bool("inertia.partial", partial),
		attribute.String("inertia.response_kind", kind),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

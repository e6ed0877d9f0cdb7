package oteltrace

import (
	"context"

	"github.com/shopfolk/sales-api/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type tracer struct{ t trace.Tracer }

// New wraps the globally registered OTel tracer. Deployments that want
// real export must initialize an sdktrace.TracerProvider and call
// otel.SetTracerProvider before serving; without one, spans are no-ops.
func New(name string) observability.Tracer {
	if name == "" {
		name = "sales-api"
	}
	return &tracer{t: otel.Tracer(name)}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name, trace.WithAttributes(attrs...))
}

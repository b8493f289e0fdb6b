package oteltrace

import (
	"context"

	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const defaultName = "minishop-checkout"

type tracer struct{ t trace.Tracer }

// New returns a tracer from the global provider.
func New(name string) observability.Tracer {
	return NewWithProvider(otel.GetTracerProvider(), name)
}

// NewWithProvider binds a tracer to tp. Tests pass an SDK provider with a
// span recorder.
func NewWithProvider(tp trace.TracerProvider, name string) observability.Tracer {
	if name == "" {
		name = defaultName
	}
	return &tracer{t: tp.Tracer(name)}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name, trace.WithAttributes(attrs...))
}

// Install registers an SDK tracer provider and the W3C propagators as the
// process globals. Spans get real ids, so trace_id and span_id in logs
// correlate across services, and incoming traceparent headers are honoured.
// No exporter is attached; extra span processors (an OTLP batcher, say) can
// be passed in. The returned func flushes and stops the provider.
func Install(service string, processors ...sdktrace.SpanProcessor) func(context.Context) error {
	if service == "" {
		service = defaultName
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", service))),
	}
	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	tp := sdktrace.NewTracerProvider(opts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown
}

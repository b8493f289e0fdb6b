package workerpresentation

import (
	"context"

	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// WithEventContext binds a logger for one event delivery into ctx. It carries
// an event_id (generated when attrs has none), the trace identifiers of any
// span already in ctx, and the caller's low-cardinality attrs.
func WithEventContext(ctx context.Context, tel observability.Observability, attrs map[string]string) context.Context {
	if tel == nil {
		tel = observability.Nop()
	}
	evtID := attrs["event_id"]
	if evtID == "" {
		evtID = uuid.NewString()
	}
	fields := []observability.Field{observability.F("event_id", evtID)}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	for k, v := range attrs {
		if k == "event_id" || v == "" {
			continue
		}
		fields = append(fields, observability.F(k, v))
	}

	ctx, _ = logctx.Enrich(ctx, tel.Logger(), fields...)
	return ctx
}

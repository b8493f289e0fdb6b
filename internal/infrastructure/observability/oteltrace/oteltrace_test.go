package oteltrace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracer_RecordsSpansWithAttributes(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	tr := NewWithProvider(tp, "")

	ctx, span := tr.Start(context.Background(), "UC.ReconcilePayment", attribute.String("use_case", "payment.reconcile"))
	assert.True(t, span.SpanContext().IsValid())
	_, child := tr.Start(ctx, "paystack.verify")
	child.End()
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "paystack.verify", ended[0].Name())
	assert.Equal(t, ended[1].SpanContext().TraceID(), ended[0].SpanContext().TraceID())
	assert.Contains(t, ended[1].Attributes(), attribute.String("use_case", "payment.reconcile"))
}

func TestInstall_SetsGlobalProviderWithRealIDs(t *testing.T) {
	shutdown := Install("checkout-test")
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	_, span := New("").Start(context.Background(), "probe")
	defer span.End()
	assert.True(t, span.SpanContext().IsValid())
}

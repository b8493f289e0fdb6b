package workerpresentation

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSubscriber struct {
	handlers map[string]domoutbox.Handler
}

func (s *fakeSubscriber) Subscribe(name string, h domoutbox.Handler) {
	if s.handlers == nil {
		s.handlers = map[string]domoutbox.Handler{}
	}
	s.handlers[name] = h
}

type recordingService struct {
	placed []string
	low    []string
}

func (r *recordingService) OrderPlaced(_ context.Context, e order.OrderPlacedEvent) error {
	r.placed = append(r.placed, e.OrderID)
	return nil
}

func (r *recordingService) LowStock(_ context.Context, e inventory.LowStockEvent) error {
	r.low = append(r.low, e.ProductID)
	return nil
}

func TestRegisterNotifications_RoutesByEvent(t *testing.T) {
	sub := &fakeSubscriber{}
	svc := &recordingService{}
	RegisterNotifications(sub, svc, observability.Nop())

	require.Contains(t, sub.handlers, "order.placed")
	require.Contains(t, sub.handlers, "inventory.low_stock")

	ctx := context.Background()
	require.NoError(t, sub.handlers["order.placed"](ctx, order.OrderPlacedEvent{OrderID: "o-1"}))
	require.NoError(t, sub.handlers["inventory.low_stock"](ctx, inventory.NewLowStockEvent("P1", 1, 10)))

	assert.Equal(t, []string{"o-1"}, svc.placed)
	assert.Equal(t, []string{"P1"}, svc.low)

	assert.Error(t, sub.handlers["order.placed"](ctx, inventory.NewLowStockEvent("P1", 1, 10)))
}

func TestWithEventContext_BindsEventFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logctx.With(context.Background(), zaplogger.Wrap(zap.New(core)))

	ctx = WithEventContext(ctx, nil, map[string]string{"event": "order.placed", "event_id": "evt-1", "empty": ""})
	logctx.FromOr(ctx, observability.NopLogger()).Info("handled")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "evt-1", fields["event_id"])
	assert.Equal(t, "order.placed", fields["event"])
	assert.NotContains(t, fields, "empty")
	assert.NotContains(t, fields, "trace_id")
}

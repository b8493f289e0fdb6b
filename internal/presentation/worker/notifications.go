package workerpresentation

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
)

// NotificationService is the application side driven by order events.
type NotificationService interface {
	OrderPlaced(ctx context.Context, e order.OrderPlacedEvent) error
	LowStock(ctx context.Context, e inventory.LowStockEvent) error
}

// RegisterNotifications subscribes svc to placement and low-stock events.
func RegisterNotifications(sub domoutbox.Subscriber, svc NotificationService, tel observability.Observability) {
	sub.Subscribe(order.OrderPlacedEvent{}.EventName(), func(ctx context.Context, e domoutbox.Event) error {
		evt, ok := e.(order.OrderPlacedEvent)
		if !ok {
			return fmt.Errorf("unexpected event type %T", e)
		}
		ctx = WithEventContext(ctx, tel, map[string]string{
			"event":    evt.EventName(),
			"order_id": evt.OrderID,
		})
		return svc.OrderPlaced(ctx, evt)
	})

	sub.Subscribe(inventory.LowStockEvent{}.EventName(), func(ctx context.Context, e domoutbox.Event) error {
		evt, ok := e.(inventory.LowStockEvent)
		if !ok {
			return fmt.Errorf("unexpected event type %T", e)
		}
		ctx = WithEventContext(ctx, tel, map[string]string{
			"event":      evt.EventName(),
			"product_id": evt.ProductID,
		})
		return svc.LowStock(ctx, evt)
	})
}

package notification

import (
	"context"
	"errors"

	"github.com/Zhima-Mochi/minishop-checkout/internal/application"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"go.opentelemetry.io/otel/attribute"
)

// ErrNoRecipient is returned when an order carries no customer email.
var ErrNoRecipient = errors.New("notification: no recipient")

const (
	notificationService   = "notification"
	useCaseConfirmation   = "send_order_confirmation"
	useCaseLowStockNotice = "send_low_stock_alert"
)

// Notifier delivers messages to people. Delivery failures are reported but
// never affect the order they describe.
type Notifier interface {
	OrderConfirmation(ctx context.Context, to string, e order.OrderPlacedEvent) error
	LowStockAlert(ctx context.Context, e inventory.LowStockEvent) error
}

type Service struct {
	notifier Notifier
	in       *application.Instruments
}

func NewService(notifier Notifier, tel observability.Observability) *Service {
	return &Service{
		notifier: notifier,
		in:       application.NewInstruments(tel, notificationService),
	}
}

// OrderPlaced sends the customer a confirmation for a committed order.
func (s *Service) OrderPlaced(ctx context.Context, e order.OrderPlacedEvent) (err error) {
	ctx, call := s.in.Start(ctx, useCaseConfirmation, "SendOrderConfirmation",
		attribute.String("order.id", e.OrderID),
		attribute.String("order.origin", e.Origin),
	)
	defer func() { call.End(err) }()
	call.Field("order_id", e.OrderID)

	if e.CustomerEmail == "" {
		call.Fail("NO_RECIPIENT")
		return ErrNoRecipient
	}
	if err = s.notifier.OrderConfirmation(ctx, e.CustomerEmail, e); err != nil {
		call.Fail("DELIVERY_FAILED")
		return err
	}
	return nil
}

// LowStock alerts the shop owner that a product needs restocking.
func (s *Service) LowStock(ctx context.Context, e inventory.LowStockEvent) (err error) {
	ctx, call := s.in.Start(ctx, useCaseLowStockNotice, "SendLowStockAlert",
		attribute.String("product.id", e.ProductID),
		attribute.Int("stock.remaining", e.Remaining),
	)
	defer func() { call.End(err) }()
	call.Field("product_id", e.ProductID)
	call.Field("remaining", e.Remaining)

	if err = s.notifier.LowStockAlert(ctx, e); err != nil {
		call.Fail("DELIVERY_FAILED")
		return err
	}
	return nil
}

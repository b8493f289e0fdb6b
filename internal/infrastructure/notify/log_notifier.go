package notify

import (
	"context"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
)

// LogNotifier records notifications as structured log lines. It stands in for
// a mail provider until one is configured.
type LogNotifier struct {
	log        observability.Logger
	ownerEmail string
}

func NewLogNotifier(logger observability.Logger, ownerEmail string) *LogNotifier {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &LogNotifier{log: logger.With(observability.F("component", "notifier")), ownerEmail: ownerEmail}
}

func (n *LogNotifier) OrderConfirmation(ctx context.Context, to string, e order.OrderPlacedEvent) error {
	logctx.FromOr(ctx, n.log).Info("order_confirmation_sent",
		observability.F("to", to),
		observability.F("order_id", e.OrderID),
		observability.F("total", e.Total),
		observability.F("lines", len(e.Items)),
	)
	return nil
}

func (n *LogNotifier) LowStockAlert(ctx context.Context, e inventory.LowStockEvent) error {
	logctx.FromOr(ctx, n.log).Warn("low_stock_alert_sent",
		observability.F("to", n.ownerEmail),
		observability.F("product_id", e.ProductID),
		observability.F("remaining", e.Remaining),
		observability.F("threshold", e.Threshold),
	)
	return nil
}

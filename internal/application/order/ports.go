package order

import (
	"context"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
	domain "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
)

type IDGenerator interface {
	NewID() string
}

// PlacementEvents lists what a committed placement announces: the order
// itself plus a low-stock notice per product that reached its threshold.
func PlacementEvents(o *domain.Order, items []inventory.Item) []domoutbox.Event {
	events := []domoutbox.Event{domain.NewOrderPlacedEvent(o)}
	for i := range items {
		if items[i].IsLow() {
			events = append(events, inventory.NewLowStockEvent(items[i].ProductID, items[i].Quantity, items[i].LowStockThreshold))
		}
	}
	return events
}

// UnitsOf sums line quantities for the units-decremented counter.
func UnitsOf(o *domain.Order) int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// Reader is the read side used by HTTP queries.
type Reader interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
}

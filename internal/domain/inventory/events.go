package inventory

import "time"

// LowStockEvent is emitted when a placement leaves a product at or under its
// low-stock threshold.
type LowStockEvent struct {
	ProductID  string    `json:"productId"`
	Remaining  int       `json:"remaining"`
	Threshold  int       `json:"threshold"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (LowStockEvent) EventName() string { return "inventory.low_stock" }

func (e LowStockEvent) AggregateID() string { return e.ProductID }

func NewLowStockEvent(productID string, remaining, threshold int) LowStockEvent {
	return LowStockEvent{
		ProductID:  productID,
		Remaining:  remaining,
		Threshold:  threshold,
		OccurredAt: time.Now().UTC(),
	}
}

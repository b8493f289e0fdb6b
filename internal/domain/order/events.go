package order

import "time"

// OrderPlacedEvent is emitted once an order and its stock decrement are committed.
type OrderPlacedEvent struct {
	OrderID          string         `json:"orderId"`
	Origin           string         `json:"origin"`
	PaymentReference string         `json:"paymentReference,omitempty"`
	CustomerName     string         `json:"customerName"`
	CustomerEmail    string         `json:"customerEmail"`
	Items            []LineSnapshot `json:"items"`
	Subtotal         string         `json:"subtotal"`
	Shipping         string         `json:"shipping"`
	Total            string         `json:"total"`
	Status           Status         `json:"status"`
	PaymentStatus    PaymentStatus  `json:"paymentStatus"`
	OccurredAt       time.Time      `json:"occurredAt"`
}

func (OrderPlacedEvent) EventName() string { return "order.placed" }

func (e OrderPlacedEvent) AggregateID() string { return e.OrderID }

func NewOrderPlacedEvent(o *Order) OrderPlacedEvent {
	return OrderPlacedEvent{
		OrderID:          o.ID,
		Origin:           o.Origin.String(),
		PaymentReference: o.PaymentReference(),
		CustomerName:     o.Customer.Name,
		CustomerEmail:    o.Customer.Email,
		Items:            append([]LineSnapshot(nil), o.Items...),
		Subtotal:         o.Subtotal.StringFixed(2),
		Shipping:         o.Shipping.StringFixed(2),
		Total:            o.Total.StringFixed(2),
		Status:           o.Status,
		PaymentStatus:    o.PaymentStatus,
		OccurredAt:       time.Now().UTC(),
	}
}

// OrderStatusChangedEvent is emitted when fulfilment moves an order forward.
type OrderStatusChangedEvent struct {
	OrderID    string    `json:"orderId"`
	From       Status    `json:"from"`
	To         Status    `json:"to"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (OrderStatusChangedEvent) EventName() string { return "order.status_changed" }

func (e OrderStatusChangedEvent) AggregateID() string { return e.OrderID }

func NewOrderStatusChangedEvent(id string, from, to Status) OrderStatusChangedEvent {
	return OrderStatusChangedEvent{
		OrderID:    id,
		From:       from,
		To:         to,
		OccurredAt: time.Now().UTC(),
	}
}

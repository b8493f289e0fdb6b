package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound               = errors.New("order: not found")
	ErrValidation             = errors.New("order: validation failed")
	ErrConflict               = errors.New("order: already exists")
	ErrRepository             = errors.New("order: repository failure")
	ErrInvalidStateTransition = errors.New("order: invalid state transition")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch ps := PaymentStatus(s); ps {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return ps, nil
	}
	return "", fmt.Errorf("%w: unknown payment status %q", ErrValidation, s)
}

type Customer struct {
	Name            string
	Email           string
	Phone           string
	DeliveryAddress string
}

// Draft carries everything an order needs before its origin decides the
// initial status pair.
type Draft struct {
	ID       string
	Customer Customer
	Items    []LineSnapshot
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

type Order struct {
	ID            string
	Origin        Origin
	Customer      Customer
	Items         []LineSnapshot
	Subtotal      decimal.Decimal
	Shipping      decimal.Decimal
	Total         decimal.Decimal
	Status        Status
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewManual builds an order whose totals were declared by the client. Such an
// order can never be marked paid.
func NewManual(d Draft, payment PaymentStatus) (*Order, error) {
	if payment == "" {
		payment = PaymentPending
	}
	if payment == PaymentPaid {
		return nil, fmt.Errorf("%w: manual orders cannot be marked paid", ErrValidation)
	}
	if payment != PaymentPending && payment != PaymentFailed {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrValidation, payment)
	}
	return build(d, Manual(), StatusPending, payment)
}

// NewGatewayVerified builds a confirmed, paid order for a reference the
// gateway reported as settled.
func NewGatewayVerified(d Draft, reference string) (*Order, error) {
	if reference == "" {
		return nil, fmt.Errorf("%w: payment reference is required", ErrValidation)
	}
	return build(d, GatewayVerified(reference), StatusConfirmed, PaymentPaid)
}

func build(d Draft, origin Origin, status Status, payment PaymentStatus) (*Order, error) {
	if d.ID == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}
	if err := validateLines(d.Items); err != nil {
		return nil, err
	}
	for name, v := range map[string]decimal.Decimal{"subtotal": d.Subtotal, "shipping": d.Shipping, "total": d.Total} {
		if v.IsNegative() {
			return nil, fmt.Errorf("%w: %s must be zero or greater", ErrValidation, name)
		}
	}

	now := time.Now().UTC()
	return &Order{
		ID:            d.ID,
		Origin:        origin,
		Customer:      d.Customer,
		Items:         append([]LineSnapshot(nil), d.Items...),
		Subtotal:      d.Subtotal.Round(2),
		Shipping:      d.Shipping.Round(2),
		Total:         d.Total.Round(2),
		Status:        status,
		PaymentStatus: payment,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// PaymentReference is empty for manual orders.
func (o *Order) PaymentReference() string { return o.Origin.Reference() }

// TransitionTo moves the order along its fulfilment lifecycle.
func (o *Order) TransitionTo(to Status) error {
	next, err := dispatch(stateFor(o.Status), o, to)
	if err != nil {
		return fmt.Errorf("%w: %s -> %s", err, o.Status, to)
	}
	o.Status = next.Status()
	o.touch()
	return nil
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = append([]LineSnapshot(nil), o.Items...)
	return &c
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}

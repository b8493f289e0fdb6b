package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/minishop-checkout/internal/application"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
	domain "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService        = "order-service"
	useCasePlaceManual  = "order.place_manual"
	useCaseUpdateStatus = "order.update_status"
	originLabelManual   = "manual"
)

var (
	ErrConflict   = domain.ErrConflict
	ErrNotFound   = domain.ErrNotFound
	ErrRepository = domain.ErrRepository
)

// PlaceManualOrderUseCase records an order whose totals the client declared,
// such as cash on delivery. It takes stock like any other order but can never
// produce a paid order.
type PlaceManualOrderUseCase struct {
	repo        domain.Repository
	idGenerator IDGenerator
	publisher   domoutbox.Publisher
	ins         *application.Instruments

	units observability.Counter // inventory_units_decremented_total{origin}
}

func NewPlaceManualOrderUseCase(
	repo domain.Repository,
	idGen IDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *PlaceManualOrderUseCase {
	ins := application.NewInstruments(tel, orderService)
	return &PlaceManualOrderUseCase{
		repo:        repo,
		idGenerator: idGen,
		publisher:   publisher,
		ins:         ins,
		units:       ins.Metrics().Counter(observability.MUnitsDecremented),
	}
}

type PlaceManualOrderInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	DeliveryAddress string
	// Items is the JSON-encoded line array sent by the storefront.
	Items         string
	Subtotal      string
	Shipping      string
	Total         string
	Status        string
	PaymentStatus string
}

func (uc *PlaceManualOrderUseCase) Execute(ctx context.Context, cmd PlaceManualOrderInput) (_ *domain.Order, err error) {
	ctx, call := uc.ins.Start(ctx, useCasePlaceManual, "PlaceManualOrder",
		attribute.String("order.origin", originLabelManual),
	)
	defer func() { call.End(err) }()

	if cmd.CustomerEmail == "" {
		call.Fail("CUSTOMER_EMAIL_REQUIRED")
		return nil, fmt.Errorf("%w: customer email is required", domain.ErrValidation)
	}
	if cmd.Status != "" && cmd.Status != string(domain.StatusPending) {
		call.Fail("STATUS_NOT_ALLOWED")
		return nil, fmt.Errorf("%w: new orders start pending", domain.ErrValidation)
	}
	items, derr := domain.DecodeLines(cmd.Items)
	if derr != nil {
		call.Fail("ITEMS_INVALID")
		return nil, derr
	}
	subtotal, derr := parseAmount("subtotal", cmd.Subtotal, true)
	if derr != nil {
		call.Fail("SUBTOTAL_INVALID")
		return nil, derr
	}
	shipping, derr := parseAmount("shipping", cmd.Shipping, false)
	if derr != nil {
		call.Fail("SHIPPING_INVALID")
		return nil, derr
	}
	total, derr := parseAmount("total", cmd.Total, true)
	if derr != nil {
		call.Fail("TOTAL_INVALID")
		return nil, derr
	}
	var payment domain.PaymentStatus
	if cmd.PaymentStatus != "" {
		if payment, derr = domain.ParsePaymentStatus(cmd.PaymentStatus); derr != nil {
			call.Fail("PAYMENT_STATUS_INVALID")
			return nil, derr
		}
	}
	if err := ctx.Err(); err != nil {
		call.Fail("CONTEXT_CANCELED")
		return nil, err
	}

	entity, derr := domain.NewManual(domain.Draft{
		ID: uc.idGenerator.NewID(),
		Customer: domain.Customer{
			Name:            cmd.CustomerName,
			Email:           cmd.CustomerEmail,
			Phone:           cmd.CustomerPhone,
			DeliveryAddress: cmd.DeliveryAddress,
		},
		Items:    items,
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    total,
	}, payment)
	if derr != nil {
		call.Fail("DOMAIN_CONSTRUCTION_FAILED")
		return nil, fmt.Errorf("order: construct: %w", derr)
	}
	call.Field("order_id", entity.ID)

	stock, perr := uc.repo.Place(ctx, entity)
	if perr != nil {
		switch {
		case errors.Is(perr, inventory.ErrInsufficientStock):
			call.Fail("INSUFFICIENT_STOCK")
		case errors.Is(perr, inventory.ErrNotFound):
			call.Fail("PRODUCT_NOT_FOUND")
		default:
			call.Fail("REPO_PLACE_FAILED")
		}
		return nil, wrapRepositoryError(perr)
	}
	uc.units.Add(float64(UnitsOf(entity)), observability.L("origin", originLabelManual))

	_ = call.Publish(ctx, uc.publisher, PlacementEvents(entity, stock)...)

	call.Span().SetAttributes(attribute.String("order.status", string(entity.Status)))
	call.Span().AddEvent("order.placed",
		trace.WithAttributes(attribute.String("order.id", entity.ID)),
	)
	return entity, nil
}

// UpdateStatusUseCase moves an order along its fulfilment lifecycle.
type UpdateStatusUseCase struct {
	repo      domain.Repository
	publisher domoutbox.Publisher
	ins       *application.Instruments
}

func NewUpdateStatusUseCase(repo domain.Repository, publisher domoutbox.Publisher, tel observability.Observability) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{
		repo:      repo,
		publisher: publisher,
		ins:       application.NewInstruments(tel, orderService),
	}
}

type UpdateStatusInput struct {
	OrderID string
	Status  string
}

func (uc *UpdateStatusUseCase) Execute(ctx context.Context, cmd UpdateStatusInput) (_ *domain.Order, err error) {
	ctx, call := uc.ins.Start(ctx, useCaseUpdateStatus, "UpdateOrderStatus",
		attribute.String("order.id", cmd.OrderID),
	)
	defer func() { call.End(err) }()

	if cmd.OrderID == "" {
		call.Fail("ORDER_ID_REQUIRED")
		return nil, fmt.Errorf("%w: order id is required", domain.ErrValidation)
	}
	to, derr := domain.ParseStatus(cmd.Status)
	if derr != nil {
		call.Fail("STATUS_INVALID")
		return nil, derr
	}

	entity, rerr := uc.repo.FindByID(ctx, cmd.OrderID)
	if rerr != nil {
		call.Fail("ORDER_LOAD_FAILED")
		return nil, wrapRepositoryError(rerr)
	}
	from := entity.Status
	if terr := entity.TransitionTo(to); terr != nil {
		call.Fail("STATE_TRANSITION_FAILED")
		return nil, terr
	}
	if rerr := uc.repo.Update(ctx, entity); rerr != nil {
		call.Fail("ORDER_UPDATE_FAILED")
		return nil, wrapRepositoryError(rerr)
	}
	call.Field("from", string(from))
	call.Field("to", string(to))

	_ = call.Publish(ctx, uc.publisher, domain.NewOrderStatusChangedEvent(entity.ID, from, to))
	return entity, nil
}

func parseAmount(name, raw string, required bool) (decimal.Decimal, error) {
	if raw == "" {
		if required {
			return decimal.Zero, fmt.Errorf("%w: %s is required", domain.ErrValidation, name)
		}
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s is not a decimal", domain.ErrValidation, name)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s must be zero or greater", domain.ErrValidation, name)
	}
	return d, nil
}

// wrapRepositoryError keeps classifiable failures intact and folds the rest
// into ErrRepository.
func wrapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrRepository),
		errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, inventory.ErrNotFound),
		errors.Is(err, inventory.ErrInvalidQuantity):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrRepository, err)
	}
}

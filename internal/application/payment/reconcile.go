package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/minishop-checkout/internal/application"
	apporder "github.com/Zhima-Mochi/minishop-checkout/internal/application/order"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	dompay "github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ReconcilePaymentInput struct {
	Reference string
}

type ReconcilePaymentResult struct {
	Order *domorder.Order
	// Replay is set when the reference had already produced this order.
	Replay bool
}

// ReconcilePaymentUseCase turns a gateway callback into an order. The gateway
// is the only authority on what was paid and the catalog the only authority
// on what it should have cost; the browser's cart is trusted for shape alone.
type ReconcilePaymentUseCase struct {
	gateway     dompay.Gateway
	pricer      Pricer
	orders      domorder.Repository
	lock        ReferenceLock
	idGenerator IDGenerator
	publisher   domoutbox.Publisher
	ins         *application.Instruments

	reconciliations observability.Counter // payment_reconciliations_total{outcome,reason}
	units           observability.Counter // inventory_units_decremented_total{origin}
}

func NewReconcilePaymentUseCase(
	gateway dompay.Gateway,
	pricer Pricer,
	orders domorder.Repository,
	lock ReferenceLock,
	idGen IDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *ReconcilePaymentUseCase {
	ins := application.NewInstruments(tel, paymentService)
	return &ReconcilePaymentUseCase{
		gateway:         gateway,
		pricer:          pricer,
		orders:          orders,
		lock:            lock,
		idGenerator:     idGen,
		publisher:       publisher,
		ins:             ins,
		reconciliations: ins.Metrics().Counter(observability.MReconciliations),
		units:           ins.Metrics().Counter(observability.MUnitsDecremented),
	}
}

// Execute runs one reconciliation attempt. It is never retried; OutcomeFor
// maps the returned error onto the storefront flag.
func (uc *ReconcilePaymentUseCase) Execute(ctx context.Context, cmd ReconcilePaymentInput) (_ *ReconcilePaymentResult, err error) {
	ctx, call := uc.ins.Start(ctx, useCaseReconcile, "ReconcilePayment",
		attribute.String("payment.reference", cmd.Reference),
	)
	defer func() {
		uc.reconciliations.Add(1,
			observability.L("outcome", string(OutcomeFor(err))),
			observability.L("reason", call.StatusText()),
		)
		call.End(err)
	}()
	logger := call.Logger()

	if cmd.Reference == "" {
		call.Fail("REFERENCE_REQUIRED")
		return nil, dompay.ErrMissingReference
	}
	call.Field("reference", cmd.Reference)

	release, lerr := uc.lock.Acquire(ctx, cmd.Reference)
	if lerr != nil {
		call.Fail("RECONCILIATION_IN_PROGRESS")
		if !errors.Is(lerr, dompay.ErrReconciliationInProgress) {
			lerr = fmt.Errorf("payment: acquire reference lock: %w", lerr)
		}
		return nil, lerr
	}
	defer release()

	if existing, ok, rerr := uc.findExisting(ctx, cmd.Reference); rerr != nil {
		call.Fail("REPLAY_LOOKUP_FAILED")
		return nil, rerr
	} else if ok {
		call.Status("REPLAY")
		call.Field("order_id", existing.ID)
		return &ReconcilePaymentResult{Order: existing, Replay: true}, nil
	}

	v, gerr := uc.gateway.Verify(ctx, cmd.Reference)
	if gerr != nil {
		call.Fail("GATEWAY_VERIFY_FAILED")
		if !errors.Is(gerr, dompay.ErrGateway) {
			gerr = fmt.Errorf("%w: %w", dompay.ErrGateway, gerr)
		}
		return nil, gerr
	}
	if !v.Success {
		call.Fail("PAYMENT_DECLINED")
		call.Field("gateway_status", v.Status)
		return nil, fmt.Errorf("%w: gateway status %q", dompay.ErrDeclined, v.Status)
	}
	if v.Reference != "" && v.Reference != cmd.Reference {
		call.Fail("REFERENCE_MISMATCH")
		return nil, fmt.Errorf("%w: verified %q for requested %q", dompay.ErrGateway, v.Reference, cmd.Reference)
	}

	meta, derr := dompay.DecodeMetadata(v.Metadata)
	if derr != nil {
		call.Fail("METADATA_INVALID")
		return nil, derr
	}

	quote, perr := uc.pricer.Recompute(ctx, itemsOf(meta))
	if perr != nil {
		call.Fail("RECOMPUTE_FAILED")
		return nil, perr
	}
	if !dompay.AmountsMatch(quote.Total, v.PaidAmount) {
		call.Fail("AMOUNT_MISMATCH")
		logger.Warn("amount_mismatch",
			observability.F("reference", cmd.Reference),
			observability.F("computed_total", quote.Total.StringFixed(2)),
			observability.F("paid_amount", v.PaidAmount.StringFixed(2)),
			observability.F("currency", v.Currency),
		)
		return nil, fmt.Errorf("%w: computed %s, paid %s", dompay.ErrAmountMismatch,
			quote.Total.StringFixed(2), v.PaidAmount.StringFixed(2))
	}

	email := v.CustomerEmail
	if email == "" {
		email = meta.CustomerEmail
	}
	entity, berr := domorder.NewGatewayVerified(domorder.Draft{
		ID: uc.idGenerator.NewID(),
		Customer: domorder.Customer{
			Name:            meta.CustomerName,
			Email:           email,
			Phone:           meta.CustomerPhone,
			DeliveryAddress: meta.DeliveryAddress,
		},
		Items:    quote.Snapshots(),
		Subtotal: quote.Subtotal,
		Shipping: quote.Shipping,
		Total:    quote.Total,
	}, cmd.Reference)
	if berr != nil {
		call.Fail("DOMAIN_CONSTRUCTION_FAILED")
		return nil, fmt.Errorf("payment: build order: %w", berr)
	}
	call.Field("order_id", entity.ID)

	stock, perr := uc.orders.Place(ctx, entity)
	if perr != nil {
		switch {
		case errors.Is(perr, domorder.ErrConflict):
			// Another process placed this reference between our lookup and insert.
			if existing, ok, rerr := uc.findExisting(ctx, cmd.Reference); rerr == nil && ok {
				call.Status("REPLAY")
				call.Field("order_id", existing.ID)
				return &ReconcilePaymentResult{Order: existing, Replay: true}, nil
			}
			call.Fail("ORDER_CONFLICT")
			return nil, perr
		case errors.Is(perr, inventory.ErrInsufficientStock), errors.Is(perr, inventory.ErrNotFound):
			call.Fail("PAID_ORDER_UNFULFILLABLE")
			logger.Error(unfulfillableLogEvent,
				observability.F("reference", cmd.Reference),
				observability.F("paid_amount", v.PaidAmount.StringFixed(2)),
				observability.F("currency", v.Currency),
				observability.F("customer_email", email),
				observability.E(perr),
			)
			return nil, perr
		default:
			call.Fail("REPO_PLACE_FAILED")
			if !errors.Is(perr, domorder.ErrRepository) {
				perr = fmt.Errorf("%w: %w", domorder.ErrRepository, perr)
			}
			return nil, perr
		}
	}
	uc.units.Add(float64(apporder.UnitsOf(entity)), observability.L("origin", originLabelGateway))

	_ = call.Publish(ctx, uc.publisher, apporder.PlacementEvents(entity, stock)...)

	call.Span().SetAttributes(attribute.String("order.status", string(entity.Status)))
	call.Span().AddEvent("order.placed",
		trace.WithAttributes(attribute.String("order.id", entity.ID)),
	)
	return &ReconcilePaymentResult{Order: entity}, nil
}

func (uc *ReconcilePaymentUseCase) findExisting(ctx context.Context, reference string) (*domorder.Order, bool, error) {
	existing, err := uc.orders.FindByPaymentReference(ctx, reference)
	switch {
	case err == nil:
		return existing, true, nil
	case errors.Is(err, domorder.ErrNotFound):
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("%w: find by reference: %w", domorder.ErrRepository, err)
	}
}

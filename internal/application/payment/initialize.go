package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/minishop-checkout/internal/application"
	"github.com/Zhima-Mochi/minishop-checkout/internal/application/pricing"
	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	dompay "github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	paymentService        = "payment-service"
	useCaseInitialize     = "payment.initialize"
	useCaseReconcile      = "payment.reconcile"
	originLabelGateway    = "gateway_verified"
	unfulfillableLogEvent = "paid_order_unfulfillable"
)

type InitializePaymentInput struct {
	Email    string
	Amount   decimal.Decimal
	Metadata []byte
}

type InitializePaymentResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// InitializePaymentUseCase opens a gateway transaction for a checkout. The
// client-declared amount must agree with the current catalog within the
// tolerance; the recomputed total is what gets charged.
type InitializePaymentUseCase struct {
	gateway     dompay.Gateway
	pricer      Pricer
	callbackURL string
	ins         *application.Instruments
}

func NewInitializePaymentUseCase(gateway dompay.Gateway, pricer Pricer, callbackURL string, tel observability.Observability) *InitializePaymentUseCase {
	return &InitializePaymentUseCase{
		gateway:     gateway,
		pricer:      pricer,
		callbackURL: callbackURL,
		ins:         application.NewInstruments(tel, paymentService),
	}
}

func (uc *InitializePaymentUseCase) Execute(ctx context.Context, cmd InitializePaymentInput) (_ *InitializePaymentResult, err error) {
	ctx, call := uc.ins.Start(ctx, useCaseInitialize, "InitializePayment",
		attribute.String("payment.amount", cmd.Amount.StringFixed(2)),
	)
	defer func() { call.End(err) }()

	if strings.TrimSpace(cmd.Email) == "" {
		call.Fail("EMAIL_REQUIRED")
		return nil, fmt.Errorf("%w: email is required", domorder.ErrValidation)
	}
	if !cmd.Amount.IsPositive() {
		call.Fail("AMOUNT_INVALID")
		return nil, dompay.ErrInvalidAmount
	}
	meta, derr := dompay.DecodeMetadata(cmd.Metadata)
	if derr != nil {
		call.Fail("METADATA_INVALID")
		return nil, derr
	}

	quote, perr := uc.pricer.Recompute(ctx, itemsOf(meta))
	if perr != nil {
		call.Fail("RECOMPUTE_FAILED")
		return nil, perr
	}
	if !dompay.AmountsMatch(quote.Total, cmd.Amount) {
		call.Fail("AMOUNT_MISMATCH")
		call.Field("computed_total", quote.Total.StringFixed(2))
		call.Field("requested_amount", cmd.Amount.StringFixed(2))
		return nil, fmt.Errorf("%w: cart is %s, requested %s", dompay.ErrAmountMismatch,
			quote.Total.StringFixed(2), cmd.Amount.StringFixed(2))
	}
	meta.ComputedSubtotal = quote.Subtotal

	raw, eerr := meta.Encode()
	if eerr != nil {
		call.Fail("METADATA_INVALID")
		return nil, eerr
	}
	auth, gerr := uc.gateway.Initialize(ctx, dompay.InitializeRequest{
		Email:       cmd.Email,
		AmountMinor: dompay.ToMinor(quote.Total),
		Metadata:    raw,
		CallbackURL: uc.callbackURL,
	})
	if gerr != nil {
		call.Fail("GATEWAY_INITIALIZE_FAILED")
		if !errors.Is(gerr, dompay.ErrGateway) {
			gerr = fmt.Errorf("%w: %w", dompay.ErrGateway, gerr)
		}
		return nil, gerr
	}
	call.Field("reference", auth.Reference)

	return &InitializePaymentResult{
		AuthorizationURL: auth.AuthorizationURL,
		AccessCode:       auth.AccessCode,
		Reference:        auth.Reference,
	}, nil
}

func itemsOf(meta dompay.PendingPaymentMetadata) []pricing.Item {
	items := make([]pricing.Item, 0, len(meta.Items))
	for _, it := range meta.Items {
		items = append(items, pricing.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return items
}

package payment

import (
	"errors"
	"net/url"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	dompay "github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"
)

// Outcome is the flag the storefront receives after a payment callback.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	// OutcomeFailed means the payment or its cart cannot be honoured.
	OutcomeFailed Outcome = "failed"
	// OutcomeError means something on our side went wrong; the customer may
	// have been charged and support should look.
	OutcomeError Outcome = "error"
)

func OutcomeFor(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, dompay.ErrMissingReference),
		errors.Is(err, dompay.ErrInvalidMetadata),
		errors.Is(err, dompay.ErrDeclined),
		errors.Is(err, dompay.ErrAmountMismatch),
		errors.Is(err, domorder.ErrValidation),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, domorder.ErrNotFound):
		return OutcomeFailed
	default:
		return OutcomeError
	}
}

// RedirectURL appends the payment flag, and the order id on success, to the
// storefront URL.
func RedirectURL(storefront string, outcome Outcome, orderID string) string {
	u, err := url.Parse(storefront)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set("payment", string(outcome))
	if outcome == OutcomeSuccess && orderID != "" {
		q.Set("order", orderID)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

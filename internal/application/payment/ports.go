package payment

import (
	"context"

	"github.com/Zhima-Mochi/minishop-checkout/internal/application/pricing"
)

type IDGenerator interface {
	NewID() string
}

// ReferenceLock serializes reconciliation per payment reference. Acquire
// fails with payment.ErrReconciliationInProgress instead of waiting.
type ReferenceLock interface {
	Acquire(ctx context.Context, reference string) (release func(), err error)
}

type Pricer interface {
	Recompute(ctx context.Context, items []pricing.Item) (pricing.Quote, error)
}

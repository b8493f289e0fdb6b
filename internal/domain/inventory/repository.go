package inventory

import (
	"context"
)

// Ledger is the authority on stock counts.
type Ledger interface {
	// Decrement removes quantity units and returns the remaining stock. It fails
	// with ErrInsufficientStock rather than going below zero.
	Decrement(ctx context.Context, productID string, quantity int) (int, error)
	Get(ctx context.Context, productID string) (*Item, error)
}

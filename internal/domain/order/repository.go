package order

import (
	"context"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
)

type Repository interface {
	// Place stores the order and decrements stock for every line as one unit.
	// Nothing is written when any line lacks stock. It returns the resulting
	// stock positions of the touched products. A second order with the same
	// payment reference fails with ErrConflict.
	Place(ctx context.Context, o *Order) ([]inventory.Item, error)
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByPaymentReference(ctx context.Context, reference string) (*Order, error)
	// List returns orders newest first.
	List(ctx context.Context) ([]*Order, error)
	Update(ctx context.Context, o *Order) error
}

package catalog

import "context"

type Repository interface {
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	// Save inserts or replaces the product, stock included. Used for seeding.
	Save(ctx context.Context, p *Product) error
}

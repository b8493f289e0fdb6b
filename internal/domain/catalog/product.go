package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("catalog: product not found")
	ErrInvalidPrice = errors.New("catalog: price must be zero or greater")
	ErrInvalidStock = errors.New("catalog: stock must be zero or greater")
)

// DefaultLowStockThreshold applies when a product does not set its own.
const DefaultLowStockThreshold = 10

// Product is the authoritative price and stock record for one sellable item.
type Product struct {
	ID                string
	Name              string
	Price             decimal.Decimal
	Stock             int
	ImageRef          string
	LowStockThreshold int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func New(id, name string, price decimal.Decimal, stock int, imageRef string) (*Product, error) {
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}
	now := time.Now().UTC()
	return &Product{
		ID:                id,
		Name:              name,
		Price:             price.Round(2),
		Stock:             stock,
		ImageRef:          imageRef,
		LowStockThreshold: DefaultLowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// IsLowStock drives the storefront's low-stock badge.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

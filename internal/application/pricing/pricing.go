package pricing

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/shopspring/decimal"
)

// ProductReader is the slice of the catalog pricing needs.
type ProductReader interface {
	Get(ctx context.Context, id string) (*catalog.Product, error)
}

type Item struct {
	ProductID string
	Quantity  int
}

type Line struct {
	Product   *catalog.Product
	Quantity  int
	LineTotal decimal.Decimal
}

// Quote is a server-side price for a cart. Subtotal and Total are rounded to
// two places; line totals are not.
type Quote struct {
	Lines    []Line
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Snapshots rebuilds display lines from current catalog names and prices.
func (q Quote) Snapshots() []order.LineSnapshot {
	out := make([]order.LineSnapshot, 0, len(q.Lines))
	for _, l := range q.Lines {
		out = append(out, order.LineSnapshot{
			ProductID:          l.Product.ID,
			ProductName:        l.Product.Name,
			UnitPriceAtAddTime: l.Product.Price,
			Quantity:           l.Quantity,
			ImageRef:           l.Product.ImageRef,
		})
	}
	return out
}

// ShippingPolicy charges FlatFee unless the subtotal reaches FreeThreshold.
// A zero FlatFee means shipping is free.
type ShippingPolicy struct {
	FlatFee       decimal.Decimal
	FreeThreshold decimal.Decimal
}

func (p ShippingPolicy) For(subtotal decimal.Decimal) decimal.Decimal {
	if !p.FlatFee.IsPositive() {
		return decimal.Zero
	}
	if p.FreeThreshold.IsPositive() && subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.FlatFee.Round(2)
}

type Calculator struct {
	products ProductReader
	shipping ShippingPolicy
}

func NewCalculator(products ProductReader, shipping ShippingPolicy) *Calculator {
	return &Calculator{products: products, shipping: shipping}
}

// Recompute prices items from the catalog as it is now. Any missing product
// aborts the quote with catalog.ErrNotFound.
func (c *Calculator) Recompute(ctx context.Context, items []Item) (Quote, error) {
	if len(items) == 0 {
		return Quote{}, fmt.Errorf("%w: no items to price", order.ErrValidation)
	}

	q := Quote{Lines: make([]Line, 0, len(items))}
	subtotal := decimal.Zero
	for _, it := range items {
		if it.Quantity <= 0 {
			return Quote{}, fmt.Errorf("%w: quantity for %s must be greater than zero", order.ErrValidation, it.ProductID)
		}
		p, err := c.products.Get(ctx, it.ProductID)
		if err != nil {
			return Quote{}, fmt.Errorf("pricing: product %s: %w", it.ProductID, err)
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		q.Lines = append(q.Lines, Line{Product: p, Quantity: it.Quantity, LineTotal: lineTotal})
	}

	q.Subtotal = subtotal.Round(2)
	q.Shipping = c.shipping.For(q.Subtotal)
	q.Total = q.Subtotal.Add(q.Shipping).Round(2)
	return q, nil
}

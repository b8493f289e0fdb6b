package pricing

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducts map[string]*catalog.Product

func (f fakeProducts) Get(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := f[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func products() fakeProducts {
	return fakeProducts{
		"p1": {ID: "p1", Name: "Mic", Price: dec("10.00"), Stock: 5, ImageRef: "mic.svg"},
		"p2": {ID: "p2", Name: "Cable", Price: dec("0.335"), Stock: 50},
	}
}

func TestRecompute(t *testing.T) {
	c := NewCalculator(products(), ShippingPolicy{})

	q, err := c.Recompute(context.Background(), []Item{{"p1", 2}})
	require.NoError(t, err)

	assert.Equal(t, "20.00", q.Subtotal.StringFixed(2))
	assert.True(t, q.Shipping.IsZero())
	assert.Equal(t, "20.00", q.Total.StringFixed(2))

	snaps := q.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, "Mic", snaps[0].ProductName)
	assert.Equal(t, "mic.svg", snaps[0].ImageRef)
}

func TestRecompute_RoundsOnlyAtTheEnd(t *testing.T) {
	c := NewCalculator(products(), ShippingPolicy{})

	// Rounding each line first would give 0.34 + 0.34.
	q, err := c.Recompute(context.Background(), []Item{{"p2", 1}, {"p2", 1}})
	require.NoError(t, err)
	assert.Equal(t, "0.67", q.Subtotal.StringFixed(2))
}

func TestRecompute_Errors(t *testing.T) {
	c := NewCalculator(products(), ShippingPolicy{})
	ctx := context.Background()

	_, err := c.Recompute(ctx, nil)
	assert.ErrorIs(t, err, order.ErrValidation)

	_, err = c.Recompute(ctx, []Item{{"p1", 0}})
	assert.ErrorIs(t, err, order.ErrValidation)

	_, err = c.Recompute(ctx, []Item{{"p1", 1}, {"ghost", 1}})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestShippingPolicy(t *testing.T) {
	p := ShippingPolicy{FlatFee: dec("5.99"), FreeThreshold: dec("50.00")}

	assert.Equal(t, "5.99", p.For(dec("49.99")).StringFixed(2))
	assert.True(t, p.For(dec("50.00")).IsZero())
	assert.True(t, ShippingPolicy{}.For(dec("1.00")).IsZero())

	c := NewCalculator(products(), p)
	q, err := c.Recompute(context.Background(), []Item{{"p1", 2}})
	require.NoError(t, err)
	assert.Equal(t, "25.99", q.Total.StringFixed(2))
}

package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T, stock map[string]int) *Store {
	t.Helper()
	s := NewStore()
	for id, n := range stock {
		p, err := catalog.New(id, "Product "+id, decimal.RequireFromString("10.00"), n, "")
		require.NoError(t, err)
		require.NoError(t, s.Catalog().Save(context.Background(), p))
	}
	return s
}

func paidOrder(t *testing.T, id, ref string, lines ...order.LineSnapshot) *order.Order {
	t.Helper()
	o, err := order.NewGatewayVerified(order.Draft{
		ID:       id,
		Items:    lines,
		Subtotal: decimal.RequireFromString("20.00"),
		Total:    decimal.RequireFromString("20.00"),
	}, ref)
	require.NoError(t, err)
	return o
}

func line(productID string, qty int) order.LineSnapshot {
	return order.LineSnapshot{ProductID: productID, Quantity: qty}
}

func stockOf(t *testing.T, s *Store, id string) int {
	t.Helper()
	item, err := s.Inventory().Get(context.Background(), id)
	require.NoError(t, err)
	return item.Quantity
}

func TestInventory_Decrement(t *testing.T) {
	s := seeded(t, map[string]int{"p1": 5})
	ctx := context.Background()

	left, err := s.Inventory().Decrement(ctx, "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, left)

	_, err = s.Inventory().Decrement(ctx, "p1", 4)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Equal(t, 3, stockOf(t, s, "p1"))

	_, err = s.Inventory().Decrement(ctx, "ghost", 1)
	assert.ErrorIs(t, err, inventory.ErrNotFound)

	_, err = s.Inventory().Decrement(ctx, "p1", 0)
	assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)
}

func TestOrders_PlaceDecrementsEveryLine(t *testing.T) {
	s := seeded(t, map[string]int{"p1": 5, "p2": 3})
	ctx := context.Background()

	items, err := s.Orders().Place(ctx, paidOrder(t, "o-1", "ref-1", line("p1", 2), line("p2", 1), line("p1", 1)))
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, stockOf(t, s, "p1"))
	assert.Equal(t, 2, stockOf(t, s, "p2"))

	got, err := s.Orders().FindByPaymentReference(ctx, "ref-1")
	require.NoError(t, err)
	assert.Equal(t, "o-1", got.ID)
}

func TestOrders_PlaceIsAllOrNothing(t *testing.T) {
	s := seeded(t, map[string]int{"p1": 5, "p2": 1})
	ctx := context.Background()

	_, err := s.Orders().Place(ctx, paidOrder(t, "o-1", "ref-1", line("p1", 2), line("p2", 2)))
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	assert.Equal(t, 5, stockOf(t, s, "p1"))
	assert.Equal(t, 1, stockOf(t, s, "p2"))
	_, err = s.Orders().FindByID(ctx, "o-1")
	assert.ErrorIs(t, err, order.ErrNotFound)

	_, err = s.Orders().Place(ctx, paidOrder(t, "o-2", "ref-2", line("p1", 1), line("ghost", 1)))
	assert.ErrorIs(t, err, inventory.ErrNotFound)
	assert.Equal(t, 5, stockOf(t, s, "p1"))
}

func TestOrders_DuplicateReferenceConflicts(t *testing.T) {
	s := seeded(t, map[string]int{"p1": 5})
	ctx := context.Background()

	_, err := s.Orders().Place(ctx, paidOrder(t, "o-1", "ref-1", line("p1", 1)))
	require.NoError(t, err)

	_, err = s.Orders().Place(ctx, paidOrder(t, "o-2", "ref-1", line("p1", 1)))
	assert.ErrorIs(t, err, order.ErrConflict)
	assert.Equal(t, 4, stockOf(t, s, "p1"))
}

func TestOrders_ConcurrentPlacementNeverOversells(t *testing.T) {
	s := seeded(t, map[string]int{"p1": 1})
	ctx := context.Background()

	var wg sync.WaitGroup
	var placed atomic.Int32
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o, err := order.NewManual(order.Draft{
				ID:    "o-" + string(rune('a'+i)),
				Items: []order.LineSnapshot{line("p1", 1)},
			}, order.PaymentPending)
			if err != nil {
				return
			}
			if _, err := s.Orders().Place(ctx, o); err == nil {
				placed.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), placed.Load())
	assert.Equal(t, 0, stockOf(t, s, "p1"))
}

func TestOrders_ListNewestFirstAndUpdate(t *testing.T) {
	s := seeded(t, map[string]int{"p1": 5})
	ctx := context.Background()

	_, err := s.Orders().Place(ctx, paidOrder(t, "o-1", "ref-1", line("p1", 1)))
	require.NoError(t, err)
	_, err = s.Orders().Place(ctx, paidOrder(t, "o-2", "ref-2", line("p1", 1)))
	require.NoError(t, err)

	list, err := s.Orders().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "o-2", list[0].ID)

	o := list[1]
	require.NoError(t, o.TransitionTo(order.StatusProcessing))
	require.NoError(t, s.Orders().Update(ctx, o))

	got, err := s.Orders().FindByID(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, got.Status)

	assert.ErrorIs(t, s.Orders().Update(ctx, &order.Order{ID: "ghost"}), order.ErrNotFound)
}

func TestCatalog_ReadsAreCopies(t *testing.T) {
	s := seeded(t, map[string]int{"p1": 5})
	ctx := context.Background()

	p, err := s.Catalog().Get(ctx, "p1")
	require.NoError(t, err)
	p.Stock = 0
	assert.Equal(t, 5, stockOf(t, s, "p1"))

	_, err = s.Catalog().Get(ctx, "ghost")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestReferenceLock(t *testing.T) {
	l := NewReferenceLock()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "ref-1")
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "ref-1")
	assert.ErrorIs(t, err, payment.ErrReconciliationInProgress)

	other, err := l.Acquire(ctx, "ref-2")
	require.NoError(t, err)
	other()

	release()
	release()
	again, err := l.Acquire(ctx, "ref-1")
	require.NoError(t, err)
	again()
}

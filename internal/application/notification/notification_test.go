package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	confirmations []string
	alerts        []string
	err           error
}

func (f *fakeNotifier) OrderConfirmation(_ context.Context, to string, e order.OrderPlacedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.confirmations = append(f.confirmations, to+":"+e.OrderID)
	return nil
}

func (f *fakeNotifier) LowStockAlert(_ context.Context, e inventory.LowStockEvent) error {
	if f.err != nil {
		return f.err
	}
	f.alerts = append(f.alerts, e.ProductID)
	return nil
}

func TestService_OrderPlaced(t *testing.T) {
	n := &fakeNotifier{}
	svc := NewService(n, observability.Nop())

	err := svc.OrderPlaced(context.Background(), order.OrderPlacedEvent{OrderID: "o-1", CustomerEmail: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@example.com:o-1"}, n.confirmations)

	err = svc.OrderPlaced(context.Background(), order.OrderPlacedEvent{OrderID: "o-2"})
	assert.ErrorIs(t, err, ErrNoRecipient)
	assert.Len(t, n.confirmations, 1)
}

func TestService_DeliveryFailureIsReturned(t *testing.T) {
	boom := errors.New("smtp down")
	svc := NewService(&fakeNotifier{err: boom}, nil)

	assert.ErrorIs(t, svc.OrderPlaced(context.Background(), order.OrderPlacedEvent{OrderID: "o-1", CustomerEmail: "a@b.c"}), boom)
	assert.ErrorIs(t, svc.LowStock(context.Background(), inventory.NewLowStockEvent("P1", 2, 10)), boom)
}

func TestService_LowStock(t *testing.T) {
	n := &fakeNotifier{}
	svc := NewService(n, observability.Nop())

	require.NoError(t, svc.LowStock(context.Background(), inventory.NewLowStockEvent("P1", 2, 10)))
	assert.Equal(t, []string{"P1"}, n.alerts)
}

package order

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
	domain "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("order-%d", g.n)
}

type capturePublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
}

func (p *capturePublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventName())
	}
	return out
}

func newStore(t *testing.T, stock int) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	p, err := catalog.New("p1", "Studio Mic", decimal.RequireFromString("10.00"), stock, "mic.svg")
	require.NoError(t, err)
	require.NoError(t, s.Catalog().Save(context.Background(), p))
	return s
}

const oneLine = `[{"productId":"p1","productName":"Studio Mic","unitPriceAtAddTime":"10.00","quantity":2,"imageRef":"mic.svg"}]`

func manualInput() PlaceManualOrderInput {
	return PlaceManualOrderInput{
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Items:         oneLine,
		Subtotal:      "20.00",
		Total:         "18.50",
	}
}

func TestPlaceManualOrder_Success(t *testing.T) {
	store := newStore(t, 12)
	pub := &capturePublisher{}
	uc := NewPlaceManualOrderUseCase(store.Orders(), &seqIDs{}, pub, observability.Nop())

	o, err := uc.Execute(context.Background(), manualInput())
	require.NoError(t, err)

	assert.Equal(t, "order-1", o.ID)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, domain.PaymentPending, o.PaymentStatus)
	assert.Equal(t, domain.OriginManual, o.Origin.Kind())
	assert.Equal(t, "18.50", o.Total.StringFixed(2))

	item, err := store.Inventory().Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, item.Quantity)
	assert.Equal(t, []string{"order.placed", "inventory.low_stock"}, pub.names())
}

func TestPlaceManualOrder_NeverPaid(t *testing.T) {
	store := newStore(t, 5)
	uc := NewPlaceManualOrderUseCase(store.Orders(), &seqIDs{}, nil, observability.Nop())

	in := manualInput()
	in.PaymentStatus = "paid"
	_, err := uc.Execute(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrValidation)

	item, err := store.Inventory().Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)
}

func TestPlaceManualOrder_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PlaceManualOrderInput)
	}{
		{"no email", func(in *PlaceManualOrderInput) { in.CustomerEmail = "" }},
		{"bad items", func(in *PlaceManualOrderInput) { in.Items = "nope" }},
		{"empty items", func(in *PlaceManualOrderInput) { in.Items = "[]" }},
		{"bad subtotal", func(in *PlaceManualOrderInput) { in.Subtotal = "twenty" }},
		{"negative total", func(in *PlaceManualOrderInput) { in.Total = "-1" }},
		{"confirmed status", func(in *PlaceManualOrderInput) { in.Status = "confirmed" }},
		{"unknown payment status", func(in *PlaceManualOrderInput) { in.PaymentStatus = "refunded" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewPlaceManualOrderUseCase(newStore(t, 5).Orders(), &seqIDs{}, nil, observability.Nop())
			in := manualInput()
			tt.mutate(&in)
			_, err := uc.Execute(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestPlaceManualOrder_InsufficientStock(t *testing.T) {
	store := newStore(t, 1)
	uc := NewPlaceManualOrderUseCase(store.Orders(), &seqIDs{}, nil, observability.Nop())

	_, err := uc.Execute(context.Background(), manualInput())
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	list, err := store.Orders().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateStatus(t *testing.T) {
	store := newStore(t, 20)
	ctx := context.Background()
	placed, err := NewPlaceManualOrderUseCase(store.Orders(), &seqIDs{}, nil, observability.Nop()).Execute(ctx, manualInput())
	require.NoError(t, err)

	pub := &capturePublisher{}
	uc := NewUpdateStatusUseCase(store.Orders(), pub, observability.Nop())

	o, err := uc.Execute(ctx, UpdateStatusInput{OrderID: placed.ID, Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, o.Status)
	assert.Equal(t, []string{"order.status_changed"}, pub.names())

	_, err = uc.Execute(ctx, UpdateStatusInput{OrderID: placed.ID, Status: "delivered"})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = uc.Execute(ctx, UpdateStatusInput{OrderID: placed.ID, Status: "lost"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Execute(ctx, UpdateStatusInput{OrderID: "ghost", Status: "confirmed"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := NewQueries(store.Orders()).Get(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	assert.Equal(t, domain.PaymentPending, got.PaymentStatus)
}

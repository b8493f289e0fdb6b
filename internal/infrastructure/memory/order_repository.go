package memory

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
	domain "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
)

type OrderRepository struct{ s *Store }

func (r *OrderRepository) Place(ctx context.Context, order *domain.Order) ([]inventory.Item, error) {
	_ = ctx
	if order == nil || order.ID == "" {
		return nil, fmt.Errorf("order repository: id is required")
	}

	lines := make([]inventory.Line, 0, len(order.Items))
	for _, it := range order.Items {
		lines = append(lines, inventory.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	lines, err := inventory.Merge(lines)
	if err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.orders[order.ID]; exists {
		return nil, domain.ErrConflict
	}
	ref := order.PaymentReference()
	if ref != "" {
		if _, exists := r.s.byReference[ref]; exists {
			return nil, domain.ErrConflict
		}
	}

	// Check every line before touching stock so a failure leaves nothing behind.
	for _, l := range lines {
		p, ok := r.s.products[l.ProductID]
		if !ok {
			return nil, fmt.Errorf("order repository: %s: %w", l.ProductID, inventory.ErrNotFound)
		}
		if p.Stock < l.Quantity {
			return nil, fmt.Errorf("order repository: %s: %w", l.ProductID, inventory.ErrInsufficientStock)
		}
	}

	items := make([]inventory.Item, 0, len(lines))
	for _, l := range lines {
		item, err := r.s.deductLocked(l.ProductID, l.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	r.s.orders[order.ID] = order.Clone()
	r.s.seq = append(r.s.seq, order.ID)
	if ref != "" {
		r.s.byReference[ref] = order.ID
	}
	return items, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	_ = ctx

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	order, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *OrderRepository) FindByPaymentReference(ctx context.Context, reference string) (*domain.Order, error) {
	_ = ctx
	if reference == "" {
		return nil, domain.ErrNotFound
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byReference[reference]
	if !ok {
		return nil, domain.ErrNotFound
	}
	order, found := r.s.orders[id]
	if !found {
		return nil, domain.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *OrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	_ = ctx

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Order, 0, len(r.s.seq))
	for i := len(r.s.seq) - 1; i >= 0; i-- {
		out = append(out, r.s.orders[r.s.seq[i]].Clone())
	}
	return out, nil
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	_ = ctx
	if order == nil || order.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.orders[order.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if existing.PaymentReference() != order.PaymentReference() {
		return fmt.Errorf("%w: payment reference is immutable", domain.ErrValidation)
	}
	r.s.orders[order.ID] = order.Clone()
	return nil
}

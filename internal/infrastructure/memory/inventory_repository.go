package memory

import (
	"context"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/catalog"
	domain "github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
)

type InventoryRepository struct{ s *Store }

func (r *InventoryRepository) Get(ctx context.Context, productID string) (*domain.Item, error) {
	_ = ctx

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return itemOf(p), nil
}

func (r *InventoryRepository) Decrement(ctx context.Context, productID string, quantity int) (int, error) {
	_ = ctx

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, err := r.s.deductLocked(productID, quantity)
	if err != nil {
		return 0, err
	}
	return item.Quantity, nil
}

func itemOf(p *catalog.Product) *domain.Item {
	return &domain.Item{
		ProductID:         p.ID,
		Quantity:          p.Stock,
		LowStockThreshold: p.LowStockThreshold,
		UpdatedAt:         p.UpdatedAt,
	}
}

// deductLocked applies a conditional decrement. Callers hold s.mu.
func (s *Store) deductLocked(productID string, quantity int) (*domain.Item, error) {
	p, ok := s.products[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	item := itemOf(p)
	if err := item.Deduct(quantity); err != nil {
		return nil, err
	}
	p.Stock = item.Quantity
	p.UpdatedAt = item.UpdatedAt
	return item, nil
}

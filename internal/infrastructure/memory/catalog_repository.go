package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	domain "github.com/Zhima-Mochi/minishop-checkout/internal/domain/catalog"
)

type CatalogRepository struct{ s *Store }

func (r *CatalogRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	_ = ctx

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *CatalogRepository) List(ctx context.Context) ([]*domain.Product, error) {
	_ = ctx

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CatalogRepository) Save(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil || p.ID == "" {
		return fmt.Errorf("catalog repository: id is required")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := p.Clone()
	c.UpdatedAt = time.Now().UTC()
	r.s.products[p.ID] = c
	return nil
}

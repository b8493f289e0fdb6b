package order

import (
	"context"

	domain "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
)

// Queries serves order reads. They are not instrumented as use cases.
type Queries struct {
	repo Reader
}

func NewQueries(repo Reader) *Queries {
	return &Queries{repo: repo}
}

func (q *Queries) Get(ctx context.Context, id string) (*domain.Order, error) {
	o, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	return o, nil
}

func (q *Queries) List(ctx context.Context) ([]*domain.Order, error) {
	list, err := q.repo.List(ctx)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	return list, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
)

type InventoryRepository struct{ db *sql.DB }

func (r *InventoryRepository) Get(ctx context.Context, productID string) (*domain.Item, error) {
	var item domain.Item
	err := r.db.QueryRowContext(ctx,
		`SELECT id, stock, low_stock_threshold, updated_at FROM products WHERE id = $1`, productID,
	).Scan(&item.ProductID, &item.Quantity, &item.LowStockThreshold, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query stock: %w", err)
	}
	return &item, nil
}

func (r *InventoryRepository) Decrement(ctx context.Context, productID string, quantity int) (int, error) {
	item, err := decrement(ctx, r.db, productID, quantity)
	if err != nil {
		return 0, err
	}
	return item.Quantity, nil
}

// decrement is a conditional update: it never takes stock below zero.
func decrement(ctx context.Context, q queryRower, productID string, quantity int) (*domain.Item, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	item := domain.Item{ProductID: productID}
	err := q.QueryRowContext(ctx, `
		UPDATE products SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
		RETURNING stock, low_stock_threshold, updated_at`,
		quantity, productID,
	).Scan(&item.Quantity, &item.LowStockThreshold, &item.UpdatedAt)
	if err == nil {
		return &item, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", productID, domain.ErrNotFound)
	}
	return nil, fmt.Errorf("%s: %w", productID, domain.ErrInsufficientStock)
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/Zhima-Mochi/minishop-checkout/internal/domain/catalog"
)

type CatalogRepository struct{ db *sql.DB }

const productColumns = `id, name, price, stock, image_ref, low_stock_threshold, created_at, updated_at`

func (r *CatalogRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return p, nil
}

func (r *CatalogRepository) List(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

func (r *CatalogRepository) Save(ctx context.Context, p *domain.Product) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("catalog repository: id is required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, price, stock, image_ref, low_stock_threshold)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			stock = EXCLUDED.stock,
			image_ref = EXCLUDED.image_ref,
			low_stock_threshold = EXCLUDED.low_stock_threshold,
			updated_at = NOW()`,
		p.ID, p.Name, p.Price, p.Stock, p.ImageRef, p.LowStockThreshold)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*domain.Product, error) {
	var p domain.Product
	if err := s.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.ImageRef, &p.LowStockThreshold, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

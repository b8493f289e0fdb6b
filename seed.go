package main

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

type seedProduct struct {
	id, name, price, image string
	stock, lowStock        int
}

var sampleProducts = []seedProduct{
	{"headphones-wireless", "Wireless Bluetooth Headphones", "149.99", "headphones.jpg", 45, 10},
	{"smartwatch-s6", "Smart Watch Series 6", "299.99", "smartwatch.jpg", 32, 10},
	{"tv-55-4k", "4K Ultra HD Smart TV 55\"", "599.99", "tv.jpg", 8, 10},
	{"laptop-ultrabook", "Laptop Ultrabook Pro", "1299.99", "laptop.jpg", 15, 5},
	{"jacket-leather", "Designer Leather Jacket", "249.99", "jacket.jpg", 22, 10},
	{"sneakers-running", "Running Sneakers Pro", "89.99", "sneakers.jpg", 60, 10},
}

// seedCatalog fills an empty catalog with sample products. A catalog that
// already has products is left untouched.
func seedCatalog(ctx context.Context, repo catalog.Repository) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list catalog: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for _, s := range sampleProducts {
		p, err := catalog.New(s.id, s.name, decimal.RequireFromString(s.price), s.stock, s.image)
		if err != nil {
			return 0, fmt.Errorf("seed %s: %w", s.id, err)
		}
		p.LowStockThreshold = s.lowStock
		if err := repo.Save(ctx, p); err != nil {
			return 0, fmt.Errorf("seed %s: %w", s.id, err)
		}
	}
	return len(sampleProducts), nil
}

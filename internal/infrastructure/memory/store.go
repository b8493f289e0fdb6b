package memory

import (
	"sync"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
)

// Store keeps products and orders behind one mutex so an order insert and
// its stock decrements commit together.
type Store struct {
	mu          sync.RWMutex
	products    map[string]*catalog.Product
	orders      map[string]*order.Order
	byReference map[string]string
	seq         []string // order ids in insertion order
}

func NewStore() *Store {
	return &Store{
		products:    make(map[string]*catalog.Product),
		orders:      make(map[string]*order.Order),
		byReference: make(map[string]string),
	}
}

func (s *Store) Catalog() *CatalogRepository     { return &CatalogRepository{s: s} }
func (s *Store) Inventory() *InventoryRepository { return &InventoryRepository{s: s} }
func (s *Store) Orders() *OrderRepository        { return &OrderRepository{s: s} }

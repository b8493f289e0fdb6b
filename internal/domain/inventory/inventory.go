package inventory

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("inventory: product not found")
	ErrInvalidQuantity   = errors.New("inventory: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
)

// Item is the stock position of one product at a point in time.
type Item struct {
	ProductID         string
	Quantity          int
	LowStockThreshold int
	UpdatedAt         time.Time
}

func NewItem(productID string, quantity int) (*Item, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	return &Item{
		ProductID: productID,
		Quantity:  quantity,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// Deduct removes quantity units only when that many are on hand. A failed
// deduction leaves the item untouched; stock is never clamped at zero.
func (i *Item) Deduct(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > i.Quantity {
		return ErrInsufficientStock
	}
	i.Quantity -= quantity
	i.touch()
	return nil
}

// IsLow reports whether the remaining quantity has reached the threshold.
func (i *Item) IsLow() bool {
	return i.Quantity <= i.LowStockThreshold
}

func (i *Item) touch() {
	i.UpdatedAt = time.Now().UTC()
}

// Line is one product/quantity pair to take out of stock.
type Line struct {
	ProductID string
	Quantity  int
}

// Merge folds repeated products into a single line each, keeping first-seen order.
// Quantities are validated so a batch fails before any stock is touched.
func Merge(lines []Line) ([]Line, error) {
	idx := make(map[string]int, len(lines))
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if i, ok := idx[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		idx[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out, nil
}

package order

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// LineSnapshot freezes what the customer saw for one cart line. It is for
// display; charges are always recomputed from the catalog.
type LineSnapshot struct {
	ProductID          string          `json:"productId"`
	ProductName        string          `json:"productName"`
	UnitPriceAtAddTime decimal.Decimal `json:"unitPriceAtAddTime"`
	Quantity           int             `json:"quantity"`
	ImageRef           string          `json:"imageRef"`
}

// MarshalJSON keeps the unit price in its two-decimal string form.
func (l LineSnapshot) MarshalJSON() ([]byte, error) {
	type wire LineSnapshot
	return json.Marshal(struct {
		wire
		UnitPriceAtAddTime string `json:"unitPriceAtAddTime"`
	}{wire(l), l.UnitPriceAtAddTime.StringFixed(2)})
}

// UnmarshalJSON also accepts the storefront cart keys price and image.
func (l *LineSnapshot) UnmarshalJSON(b []byte) error {
	type wire LineSnapshot
	var w struct {
		wire
		Price *decimal.Decimal `json:"price"`
		Image string           `json:"image"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*l = LineSnapshot(w.wire)
	if w.Price != nil && l.UnitPriceAtAddTime.IsZero() {
		l.UnitPriceAtAddTime = *w.Price
	}
	if l.ImageRef == "" {
		l.ImageRef = w.Image
	}
	return nil
}

func validateLines(items []LineSnapshot) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: order has no items", ErrValidation)
	}
	for i, it := range items {
		if it.ProductID == "" {
			return fmt.Errorf("%w: item %d has no productId", ErrValidation, i)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d quantity must be greater than zero", ErrValidation, i)
		}
	}
	return nil
}

// EncodeLines renders items in the JSON form kept in storage.
func EncodeLines(items []LineSnapshot) (string, error) {
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeLines parses the JSON-encoded item list sent by the storefront.
func DecodeLines(raw string) ([]LineSnapshot, error) {
	var items []LineSnapshot
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: items: %v", ErrValidation, err)
	}
	if err := validateLines(items); err != nil {
		return nil, err
	}
	return items, nil
}

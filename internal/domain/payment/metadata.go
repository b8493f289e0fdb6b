package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/shopspring/decimal"
)

// PendingPaymentMetadata rides through the gateway between initialize and
// callback. Only the item shape is trusted; prices are recomputed.
// ComputedSubtotal is informational and decodes to zero when unreadable.
type PendingPaymentMetadata struct {
	CustomerName     string               `json:"customerName"`
	CustomerEmail    string               `json:"customerEmail"`
	CustomerPhone    string               `json:"customerPhone"`
	DeliveryAddress  string               `json:"deliveryAddress"`
	Items            []order.LineSnapshot `json:"items"`
	ComputedSubtotal decimal.Decimal      `json:"computedSubtotal"`
}

func (m PendingPaymentMetadata) MarshalJSON() ([]byte, error) {
	type wire PendingPaymentMetadata
	return json.Marshal(struct {
		wire
		ComputedSubtotal string `json:"computedSubtotal"`
	}{wire(m), m.ComputedSubtotal.StringFixed(2)})
}

func (m *PendingPaymentMetadata) UnmarshalJSON(b []byte) error {
	type wire PendingPaymentMetadata
	var w struct {
		wire
		ComputedSubtotal json.RawMessage `json:"computedSubtotal"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*m = PendingPaymentMetadata(w.wire)
	m.ComputedSubtotal = decimal.Zero
	if s := strings.Trim(string(bytes.TrimSpace(w.ComputedSubtotal)), `"`); s != "" && s != "null" {
		if d, err := decimal.NewFromString(s); err == nil {
			m.ComputedSubtotal = d
		}
	}
	return nil
}

func (m PendingPaymentMetadata) Encode() (json.RawMessage, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	return b, nil
}

func (m PendingPaymentMetadata) Validate() error {
	if len(m.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidMetadata)
	}
	for i, it := range m.Items {
		if it.ProductID == "" {
			return fmt.Errorf("%w: item %d has no productId", ErrInvalidMetadata, i)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d quantity must be a positive integer", ErrInvalidMetadata, i)
		}
	}
	return nil
}

// DecodeMetadata parses metadata echoed by the gateway. The echo may be the
// object itself or a JSON string holding it. A type mismatch on any known
// field fails; unknown top-level keys added by the gateway are ignored.
func DecodeMetadata(raw json.RawMessage) (PendingPaymentMetadata, error) {
	var m PendingPaymentMetadata
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return m, fmt.Errorf("%w: missing", ErrInvalidMetadata)
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return m, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
		}
		raw = bytes.TrimSpace([]byte(inner))
	}
	if len(raw) == 0 || raw[0] != '{' {
		return m, fmt.Errorf("%w: not an object", ErrInvalidMetadata)
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	if err := m.Validate(); err != nil {
		return m, err
	}
	return m, nil
}

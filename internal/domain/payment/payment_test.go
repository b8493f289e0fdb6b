package payment

import (
	"encoding/json"
	"testing"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const metadataJSON = `{"customerName":"Ada","customerEmail":"ada@example.com","customerPhone":"080","deliveryAddress":"1 Loop Rd",` +
	`"items":[{"productId":"p1","productName":"Mic","unitPriceAtAddTime":"10.00","quantity":2,"imageRef":"mic.svg"}],` +
	`"computedSubtotal":"20.00","referrer":"https://shop.example.com"}`

func TestDecodeMetadata_ObjectAndStringEcho(t *testing.T) {
	fromObject, err := DecodeMetadata(json.RawMessage(metadataJSON))
	require.NoError(t, err)

	quoted, err := json.Marshal(metadataJSON)
	require.NoError(t, err)
	fromString, err := DecodeMetadata(quoted)
	require.NoError(t, err)

	assert.Equal(t, fromObject, fromString)
	assert.Equal(t, "Ada", fromObject.CustomerName)
	require.Len(t, fromObject.Items, 1)
	assert.Equal(t, 2, fromObject.Items[0].Quantity)
}

func TestDecodeMetadata_Rejects(t *testing.T) {
	tests := map[string]string{
		"empty":             ``,
		"null":              `null`,
		"array":             `[]`,
		"no items":          `{"customerName":"Ada","items":[]}`,
		"quantity string":   `{"items":[{"productId":"p1","quantity":"2"}]}`,
		"quantity fraction": `{"items":[{"productId":"p1","quantity":1.5}]}`,
		"quantity zero":     `{"items":[{"productId":"p1","quantity":0}]}`,
		"missing product":   `{"items":[{"quantity":1}]}`,
		"name not string":   `{"customerName":7,"items":[{"productId":"p1","quantity":1}]}`,
		"bad price":         `{"items":[{"productId":"p1","quantity":1,"unitPriceAtAddTime":"ten"}]}`,
		"string not object": `"hello"`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeMetadata(json.RawMessage(raw))
			assert.ErrorIs(t, err, ErrInvalidMetadata)
		})
	}
}

func TestMetadata_EncodeDecode(t *testing.T) {
	m := PendingPaymentMetadata{
		CustomerEmail: "ada@example.com",
		Items: []order.LineSnapshot{{
			ProductID: "p1", Quantity: 1, UnitPriceAtAddTime: decimal.RequireFromString("450.00"),
		}},
		ComputedSubtotal: decimal.RequireFromString("450.00"),
	}
	raw, err := m.Encode()
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"unitPriceAtAddTime":"450.00"`)
	assert.Contains(t, string(raw), `"computedSubtotal":"450.00"`)

	got, err := DecodeMetadata(raw)
	require.NoError(t, err)
	again, err := got.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))
	assert.Equal(t, m.Items, got.Items)
}

func TestDecodeMetadata_IgnoresUnreadableSubtotal(t *testing.T) {
	for _, subtotal := range []string{`""`, `null`, `"n/a"`, `20`} {
		t.Run(subtotal, func(t *testing.T) {
			m, err := DecodeMetadata(json.RawMessage(`{"items":[{"productId":"p1","quantity":1}],"computedSubtotal":` + subtotal + `}`))
			require.NoError(t, err)
			assert.Len(t, m.Items, 1)
		})
	}

	m, err := DecodeMetadata(json.RawMessage(`{"items":[{"productId":"p1","quantity":1}],"computedSubtotal":""}`))
	require.NoError(t, err)
	assert.True(t, m.ComputedSubtotal.IsZero())
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(2000), ToMinor(decimal.RequireFromString("20.00")))
	assert.Equal(t, int64(1001), ToMinor(decimal.RequireFromString("10.005")))
	assert.True(t, FromMinor(2000).Equal(decimal.RequireFromString("20")))
}

func TestAmountsMatch(t *testing.T) {
	computed := decimal.RequireFromString("20.00")
	assert.True(t, AmountsMatch(computed, decimal.RequireFromString("20.01")))
	assert.True(t, AmountsMatch(computed, decimal.RequireFromString("19.99")))
	assert.False(t, AmountsMatch(computed, decimal.RequireFromString("20.02")))
	assert.False(t, AmountsMatch(computed, decimal.RequireFromString("10.00")))
}

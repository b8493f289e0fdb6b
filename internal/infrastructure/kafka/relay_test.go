package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafkago.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestRelay_WritesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	relay := NewRelay(w, observability.Nop())

	evt := domorder.OrderPlacedEvent{OrderID: "o-1", Total: "20.00", Status: domorder.StatusConfirmed}
	require.NoError(t, relay.Handle(context.Background(), evt))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "o-1", string(msg.Key))
	assert.Equal(t, []kafkago.Header{{Key: "event_type", Value: []byte("order.placed")}}, msg.Headers)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "20.00", decoded["total"])
	assert.Equal(t, "confirmed", decoded["status"])
}

func TestRelay_KeysLowStockByProduct(t *testing.T) {
	w := &fakeWriter{}
	relay := NewRelay(w, nil)

	require.NoError(t, relay.Handle(context.Background(), inventory.NewLowStockEvent("p1", 3, 10)))
	assert.Equal(t, "p1", string(w.msgs[0].Key))
}

func TestRelay_WriteFailure(t *testing.T) {
	relay := NewRelay(&fakeWriter{err: errors.New("broker down")}, observability.Nop())

	err := relay.Handle(context.Background(), domorder.OrderPlacedEvent{OrderID: "o-1"})
	assert.ErrorContains(t, err, "broker down")
}

func TestNewWriter_DefaultsTopic(t *testing.T) {
	w := NewWriter("", "localhost:9092")
	assert.Equal(t, DefaultTopic, w.Topic)
}

package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	DefaultTopic = "orders.events"
	peerKafka    = "kafka"
)

// Writer is the part of *kafka.Writer the relay uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

func NewWriter(topic string, brokers ...string) *kafkago.Writer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

// Relay forwards bus events to Kafka. Messages are keyed by the aggregate id
// so one order's events stay in one partition.
type Relay struct {
	w   Writer
	log observability.Logger

	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func NewRelay(w Writer, tel observability.Observability) *Relay {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Relay{
		w:            w,
		log:          tel.Logger().With(observability.F("component", "kafka_relay")),
		extCounter:   tel.Metrics().Counter(observability.MExternalRequests),
		extHistogram: tel.Metrics().Histogram(observability.MExternalRequestDuration),
	}
}

// Register subscribes the relay to every event on the bus.
func (r *Relay) Register(sub domoutbox.Subscriber) {
	sub.Subscribe(domoutbox.AllEvents, r.Handle)
}

func (r *Relay) Handle(ctx context.Context, e domoutbox.Event) error {
	name := e.EventName()
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kafka relay: encode %s: %w", name, err)
	}

	msg := kafkago.Message{
		Key:   []byte(domoutbox.KeyOf(e)),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(name)},
		},
	}

	start := time.Now()
	err = r.w.WriteMessages(ctx, msg)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.extCounter.Add(1,
		observability.L("peer", peerKafka),
		observability.L("endpoint", name),
		observability.L("outcome", outcome),
	)
	r.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peerKafka),
		observability.L("endpoint", name),
	)

	if err != nil {
		logctx.FromOr(ctx, r.log).Warn("kafka_publish_failed",
			observability.F("event", name),
			observability.E(err),
		)
		return fmt.Errorf("kafka relay: write %s: %w", name, err)
	}
	return nil
}

func (r *Relay) Close() error { return r.w.Close() }

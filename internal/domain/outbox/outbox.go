package outbox

import "context"

// AllEvents subscribes a handler to every event name.
const AllEvents = "*"

type Event interface {
	EventName() string
}

// Keyed events name the aggregate they belong to. Relays use it to keep one
// aggregate's events in order.
type Keyed interface {
	Event
	AggregateID() string
}

type Handler func(ctx context.Context, e Event) error

// Publisher accepts events after the state they describe is committed.
// Delivery is best-effort.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Subscriber interface {
	Subscribe(eventName string, h Handler)
}

// KeyOf returns the aggregate id of a keyed event, or its name otherwise.
func KeyOf(e Event) string {
	if k, ok := e.(Keyed); ok && k.AggregateID() != "" {
		return k.AggregateID()
	}
	return e.EventName()
}

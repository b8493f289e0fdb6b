package outbox

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
)

// ErrClosed is returned by Publish once Stop has begun.
var ErrClosed = errors.New("outbox: bus closed")

const (
	componentOutbox       = "outbox"
	defaultQueueSize      = 1024
	defaultConcurrency    = 8
	defaultHandlerTimeout = 30 * time.Second
)

// Bus is an in-memory event bus fanning placed orders out to notification
// and the Kafka relay. It is not durable: events still queued when the
// process dies are lost.
type Bus struct {
	mu   sync.RWMutex // guards subs
	subs map[string][]domoutbox.Handler

	sendMu sync.RWMutex // guards closed and sends on queue
	closed bool
	queue  chan domoutbox.Event

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}

	concurrency    int
	handlerTimeout time.Duration
	log            observability.Logger
}

type Option func(*Bus)

func WithQueueSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.queue = make(chan domoutbox.Event, n)
		}
	}
}

// WithConcurrency caps how many handlers run at once for one event.
func WithConcurrency(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

func WithHandlerTimeout(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.handlerTimeout = d
		}
	}
}

func NewBus(logger observability.Logger, opts ...Option) *Bus {
	if logger == nil {
		logger = observability.NopLogger()
	}
	b := &Bus{
		subs:           make(map[string][]domoutbox.Handler),
		queue:          make(chan domoutbox.Event, defaultQueueSize),
		done:           make(chan struct{}),
		concurrency:    defaultConcurrency,
		handlerTimeout: defaultHandlerTimeout,
		log:            logger.With(observability.F("component", componentOutbox)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers h for eventName, or for every event with domoutbox.AllEvents.
func (b *Bus) Subscribe(eventName string, h domoutbox.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
		b.cancel = cancel
		go b.dispatchLoop(bg)
		logger := logctx.FromOr(ctx, b.log)
		logger.Info("event_bus_started")
	})
}

// Stop refuses new events and waits for queued ones to be handled until ctx
// expires, after which in-flight handlers are cancelled.
func (b *Bus) Stop(ctx context.Context) {
	b.stopOnce.Do(func() {
		b.sendMu.Lock()
		b.closed = true
		close(b.queue)
		b.sendMu.Unlock()

		started := b.cancel != nil
		if started {
			select {
			case <-b.done:
			case <-ctx.Done():
				b.cancel()
				<-b.done
			}
			b.cancel()
		}

		logger := logctx.FromOr(ctx, b.log)
		logger.Info("event_bus_stopped")
	})
}

func (b *Bus) Publish(ctx context.Context, e domoutbox.Event) error {
	if e == nil {
		return nil
	}

	b.sendMu.RLock()
	defer b.sendMu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	select {
	case b.queue <- e:
		logger := logctx.FromOr(ctx, b.log).With(observability.F("event", e.EventName()))
		logger.Debug("event_enqueued")
		return nil
	case <-ctx.Done():
		logger := logctx.FromOr(ctx, b.log).With(observability.F("event", e.EventName()))
		logger.Warn("event_enqueue_aborted",
			observability.E(ctx.Err()),
		)
		return ctx.Err()
	}
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	defer close(b.done)
	for e := range b.queue {
		if ctx.Err() != nil {
			b.log.Warn("event_dropped_on_shutdown", observability.F("event", e.EventName()))
			continue
		}
		b.fanout(ctx, e)
	}
}

func (b *Bus) fanout(ctx context.Context, e domoutbox.Event) {
	name := e.EventName()

	b.mu.RLock()
	handlers := append([]domoutbox.Handler(nil), b.subs[name]...)
	handlers = append(handlers, b.subs[domoutbox.AllEvents]...)
	b.mu.RUnlock()

	logger := b.log.With(observability.F("event", name))
	if len(handlers) == 0 {
		logger.Debug("event_dropped_no_subscriber")
		return
	}

	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	for _, h := range handlers {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event_handler_panic",
						observability.F("panic", r),
						observability.F("stack", string(debug.Stack())),
					)
				}
				<-sem
				wg.Done()
			}()

			hctx, cancel := context.WithTimeout(ctx, b.handlerTimeout)
			defer cancel()
			hctx = logctx.With(hctx, logger)
			if err := h(hctx, e); err != nil {
				logger.Warn("event_handler_error", observability.E(err))
			}
		}()
	}

	wg.Wait()

	logger.Debug("event_fanned_out",
		observability.F("handlers", len(handlers)),
	)
}

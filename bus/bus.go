package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/skillsenselab/healthcore/event"
	"github.com/skillsenselab/healthcore/logger"
	"github.com/skillsenselab/healthcore/observability"
)

// subscription is a registration entry. The bus owns the entry, never the
// subscriber: unregistering removes the entry and nothing else.
type subscription struct {
	sub   event.Subscriber
	queue chan event.Event // async mode only
	done  chan struct{}    // async mode only
}

// Bus is a synchronous in-process publish/subscribe dispatcher. Subscribers
// are visited in registration order; a failing callback is isolated and
// recorded without aborting delivery to the rest.
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscription
	byID   map[string]*subscription
	closed bool

	async     bool
	queueSize int

	stats   stats
	metrics *observability.CoreMetrics
	log     *logger.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithAsyncDispatch fans deliveries out to one worker per subscriber, each
// draining an ordered queue of the given size. Per-subscriber delivery order
// is preserved; a subscriber whose queue is full has the event dropped and
// recorded rather than blocking the publisher.
func WithAsyncDispatch(queueSize int) Option {
	return func(b *Bus) {
		b.async = true
		if queueSize > 0 {
			b.queueSize = queueSize
		}
	}
}

// WithMetrics attaches otel instruments to the bus.
func WithMetrics(m *observability.CoreMetrics) Option {
	return func(b *Bus) { b.metrics = m }
}

// WithLogger sets the bus logger.
func WithLogger(l *logger.Logger) Option {
	return func(b *Bus) { b.log = l }
}

// New creates an event bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		byID:      make(map[string]*subscription),
		queueSize: 64,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = logger.GetGlobalLogger().WithComponent("bus")
	}
	b.stats.publishedByCategory = make(map[event.Category]uint64)
	return b
}

// Register adds a subscriber. Registration is idempotent keyed by subscriber
// ID: re-registering an existing ID updates the entry in place, preserving
// its position in delivery order.
func (b *Bus) Register(sub event.Subscriber) error {
	if sub.ID == "" {
		return fmt.Errorf("bus: subscriber id is required")
	}
	if sub.Handler == nil {
		return fmt.Errorf("bus: subscriber %q has no handler", sub.ID)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("bus: closed")
	}

	if existing, ok := b.byID[sub.ID]; ok {
		existing.sub = sub
		return nil
	}

	entry := &subscription{sub: sub}
	if b.async {
		entry.queue = make(chan event.Event, b.queueSize)
		entry.done = make(chan struct{})
		go b.drain(entry)
	}
	b.subs = append(b.subs, entry)
	b.byID[sub.ID] = entry

	b.log.Debug("subscriber registered", logger.Fields(
		logger.FieldSubscriber, sub.ID,
		"total", len(b.subs),
	))
	return nil
}

// Unregister removes a subscriber by ID. Returns false if the ID was not
// registered; repeated calls are harmless.
func (b *Bus) Unregister(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.byID[id]
	if !ok {
		return false
	}
	delete(b.byID, id)
	for i, s := range b.subs {
		if s == entry {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			break
		}
	}
	if entry.done != nil {
		close(entry.done)
	}

	b.log.Debug("subscriber unregistered", logger.Fields(logger.FieldSubscriber, id))
	return true
}

// Publish delivers the event to every matching subscriber exactly once, in
// registration order. Callback errors and panics are recorded in stats and
// logged; they are never re-raised to the publisher.
func (b *Bus) Publish(e event.Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	snapshot := make([]*subscription, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.RUnlock()

	b.stats.recordPublish(e.Category)
	b.metrics.RecordPublish(context.Background(), string(e.Category))

	for _, entry := range snapshot {
		if !entry.sub.Matches(e) {
			continue
		}
		if b.async {
			b.enqueue(entry, e)
			continue
		}
		b.deliver(entry.sub, e)
	}
}

// deliver invokes one subscriber callback, isolating errors and panics.
func (b *Bus) deliver(sub event.Subscriber, e event.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.stats.recordFailure()
			b.metrics.RecordDeliveryFailure(context.Background(), sub.ID)
			b.log.Error("subscriber panicked", logger.Fields(
				logger.FieldSubscriber, sub.ID,
				logger.FieldEventID, e.ID,
				logger.FieldError, fmt.Sprintf("%v", r),
			))
		}
	}()

	if err := sub.Handler(e); err != nil {
		b.stats.recordFailure()
		b.metrics.RecordDeliveryFailure(context.Background(), sub.ID)
		b.log.Warn("subscriber returned error", logger.Fields(
			logger.FieldSubscriber, sub.ID,
			logger.FieldEventID, e.ID,
			logger.FieldError, err.Error(),
		))
		return
	}
	b.stats.recordDelivery()
	b.metrics.RecordDelivery(context.Background())
}

// enqueue hands the event to an async subscriber's queue without blocking.
func (b *Bus) enqueue(entry *subscription, e event.Event) {
	select {
	case entry.queue <- e:
	default:
		b.stats.recordDrop()
		b.log.Warn("subscriber queue full, dropping event", logger.Fields(
			logger.FieldSubscriber, entry.sub.ID,
			logger.FieldEventID, e.ID,
		))
	}
}

// drain is the per-subscriber worker loop for async dispatch.
func (b *Bus) drain(entry *subscription) {
	for {
		select {
		case <-entry.done:
			return
		case e := <-entry.queue:
			b.mu.RLock()
			sub := entry.sub
			b.mu.RUnlock()
			b.deliver(sub, e)
		}
	}
}

// SubscriberCount returns the number of registered subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close stops async workers and rejects further publishes.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, entry := range b.subs {
		if entry.done != nil {
			close(entry.done)
		}
	}
}

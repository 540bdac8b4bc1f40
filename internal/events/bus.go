package events

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// subscriberBuffer is the per-subscriber channel depth. Slow subscribers
// drop events rather than stalling the controller.
const subscriberBuffer = 64

// Subscription is one observer's handle on the event stream.
type Subscription struct {
	ID string
	C  <-chan Event

	ch chan Event
}

// Bus broadcasts player events to subscribers.
type Bus struct {
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers map[string]*Subscription
	closed      bool

	// High-frequency event types are throttled so observers see a
	// steady stream instead of every engine tick.
	throttle map[Type]*rate.Limiter
}

// NewBus creates a new event bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		logger:      logger,
		subscribers: make(map[string]*Subscription),
		throttle: map[Type]*rate.Limiter{
			TypePositionChanged:  rate.NewLimiter(rate.Limit(2), 2),
			TypeDownloadProgress: rate.NewLimiter(rate.Limit(2), 2),
		},
	}
}

// Subscribe registers a new observer.
func (b *Bus) Subscribe() *Subscription {
	ch := make(chan Event, subscriberBuffer)
	sub := &Subscription{
		ID: uuid.NewString(),
		C:  ch,
		ch: ch,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return sub
	}
	b.subscribers[sub.ID] = sub
	total := len(b.subscribers)
	b.mu.Unlock()

	b.logger.Debug("event subscriber added",
		"subscriber_id", sub.ID,
		"total", total,
	)
	return sub
}

// Unsubscribe removes an observer and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	sub, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
	}
	b.mu.Unlock()

	if ok {
		close(sub.ch)
	}
}

// Emit broadcasts an event to all subscribers.
// Sends are non-blocking; events are dropped for subscribers whose
// buffers are full. Throttled event types may be dropped entirely.
func (b *Bus) Emit(event Event) {
	if limiter, ok := b.throttle[event.Type]; ok && !limiter.Allow() {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, sub := range b.subscribers {
		select {
		case sub.ch <- event:
		default:
			b.logger.Warn("dropped event for slow subscriber",
				"subscriber_id", sub.ID,
				"event_type", string(event.Type),
			)
		}
	}
}

// Close shuts down the bus and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, sub := range b.subscribers {
		close(sub.ch)
	}
	b.subscribers = make(map[string]*Subscription)
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

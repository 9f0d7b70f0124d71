package service

import (
	"sync"

	"github.com/joeblew999/plat-lakemap/internal/mapview"
)

// Event kinds published on the bus.
const (
	EventMounted   = "mounted"
	EventUnmounted = "unmounted"
	EventDetail    = "detail"
)

// Event is a viewer lifecycle change or a marker detail request.
type Event struct {
	Kind   string // one of the Event* kinds
	Target string // DOM target id of the view
	Detail *mapview.DetailRequest
}

// EventBus is a simple fan-out pub/sub for viewer events.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan Event]struct{})}
}

// Publish sends an event to all subscribers (non-blocking).
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// subscriber too slow, skip
		}
	}
}

// PublishDetail publishes a marker detail request. It has the shape of the
// controller's detail callback.
func (b *EventBus) PublishDetail(req mapview.DetailRequest) {
	b.Publish(Event{Kind: EventDetail, Target: req.Target, Detail: &req})
}

// Subscribe returns a buffered channel that receives events.
func (b *EventBus) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}

// Subscribers returns the number of active subscriptions.
func (b *EventBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

package event

import (
	"sync"
	"sync/atomic"
)

// Handler processes a published event.
type Handler func(Event)

// Subscription identifies one registered handler so it can be removed.
type Subscription struct {
	topic Topic
	id    uint64
}

// Bus is a synchronous publish/subscribe bus.
//
// Delivery happens in the publisher's goroutine, in subscription order per
// topic. The zero value is not usable; construct with NewBus.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Topic][]subscriber

	published atomic.Uint64
	delivered atomic.Uint64
	panics    atomic.Uint64
}

type subscriber struct {
	id      uint64
	handler Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscriber)}
}

// Subscribe registers handler for topic and returns its subscription handle.
func (b *Bus) Subscribe(topic Topic, handler Handler) (Subscription, error) {
	if handler == nil {
		return Subscription{}, ErrNilHandler
	}
	if topic == "" {
		return Subscription{}, ErrInvalidTopic
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs[topic] = append(b.subs[topic], subscriber{id: b.nextID, handler: handler})
	return Subscription{topic: topic, id: b.nextID}, nil
}

// Unsubscribe removes a previously registered handler.
func (b *Bus) Unsubscribe(sub Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[sub.topic]
	for i, s := range list {
		if s.id == sub.id {
			b.subs[sub.topic] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers the event to every handler subscribed to its topic.
//
// A panicking handler is recovered and counted; delivery continues with the
// remaining handlers.
func (b *Bus) Publish(ev Event) {
	if ev.Topic == "" {
		return
	}

	b.mu.RLock()
	list := make([]subscriber, len(b.subs[ev.Topic]))
	copy(list, b.subs[ev.Topic])
	b.mu.RUnlock()

	b.published.Add(1)
	for _, s := range list {
		b.deliver(s, ev)
	}
}

// deliver invokes one handler with panic recovery.
func (b *Bus) deliver(s subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
		}
	}()
	s.handler(ev)
	b.delivered.Add(1)
}

// Stats reports bus counters.
type Stats struct {
	// Published is the total number of events published.
	Published uint64

	// Delivered is the total number of handler invocations that completed.
	Delivered uint64

	// HandlerPanics is the number of handlers that panicked.
	HandlerPanics uint64
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		HandlerPanics: b.panics.Load(),
	}
}

// SubscriberCount returns the number of handlers registered for topic.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

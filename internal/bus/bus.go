// Package bus is the in-process event bus the sweep agent publishes status
// through. Emission is fire-and-forget: the agent never learns whether anyone
// is listening.
package bus

import (
	"log/slog"
	"sync"
)

// EventHandler receives a published event.
type EventHandler func(event string, payload any)

// EventBus fans events out to registered subscribers.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string]EventHandler
}

func New() *EventBus {
	return &EventBus{
		subscribers: make(map[string]EventHandler),
	}
}

// Subscribe registers an event subscriber under an ID for later Unsubscribe.
// An existing subscriber with the same ID is replaced.
func (b *EventBus) Subscribe(id string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[id] = handler
}

// Unsubscribe removes a subscriber.
func (b *EventBus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, id)
}

// Emit delivers the event to all current subscribers. A panicking handler is
// logged and skipped; it must not take down the publisher.
func (b *EventBus) Emit(event string, payload any) {
	b.mu.RLock()
	handlers := make([]EventHandler, 0, len(b.subscribers))
	for _, h := range b.subscribers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Warn("bus: subscriber panicked", "event", event, "panic", r)
				}
			}()
			h(event, payload)
		}()
	}
}

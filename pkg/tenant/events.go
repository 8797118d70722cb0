package tenant

import (
	"context"
	"sync"
	"time"
)

// EventKind identifies a tenant lifecycle notification.
type EventKind string

const (
	EventCreated     EventKind = "tenant.created"
	EventSuspended   EventKind = "tenant.suspended"
	EventReactivated EventKind = "tenant.reactivated"
	EventDeleted     EventKind = "tenant.deleted"
	EventResolved    EventKind = "tenant.resolved"
)

// Event is a tenant lifecycle notification.
type Event struct {
	Kind   EventKind
	Tenant *Tenant
	At     time.Time
}

// Bus publishes tenant lifecycle events to interested listeners, such as
// the cache-warming listener that freezes the "tenants exist" flag on the
// first creation.
type Bus interface {
	Publish(ctx context.Context, event Event)
}

// NopBus discards all events. It is the default when no bus is configured.
type NopBus struct{}

func (NopBus) Publish(ctx context.Context, event Event) {}

// MemoryBus is a synchronous in-process event bus. Handlers run in
// publish order on the publishing goroutine; a handler that blocks delays
// the lifecycle operation that triggered the event.
// All methods are safe for concurrent use.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[EventKind][]func(ctx context.Context, event Event)
}

// NewMemoryBus creates an empty in-process event bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[EventKind][]func(ctx context.Context, event Event)),
	}
}

// Subscribe registers a handler for one event kind.
func (b *MemoryBus) Subscribe(kind EventKind, handler func(ctx context.Context, event Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], handler)
}

// Publish delivers the event to every handler subscribed to its kind.
func (b *MemoryBus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.Kind]
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}
}

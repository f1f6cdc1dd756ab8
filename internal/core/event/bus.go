// Package event is a double-buffered typed event bus. Behavior nodes emit
// discrete action events during tick N; the orchestrator swaps buffers at
// the next tick boundary and dispatches them to subscribers (the rendering
// or narration layer) so no consumer ever observes mid-tick state.
package event

import (
	"reflect"
	"sync"
)

// Bus buffers events across one tick boundary. Emit is only called from the
// tick goroutine; the mutex protects handler registration, which external
// collaborators may do at setup time.
type Bus struct {
	mu       sync.Mutex
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]any),
	}
}

// Emit queues an event into the back buffer; it becomes visible to
// subscribers after the current tick completes. Events are keyed by their
// concrete type.
func (b *Bus) Emit(ev any) {
	t := reflect.TypeOf(ev)
	b.back[t] = append(b.back[t], ev)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], fn)
}

// SwapBuffers rotates back to front and clears the new back buffer. Called
// once at each tick boundary by the orchestrator.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers every front-buffer event to its subscribed handlers.
func (b *Bus) DispatchAll() {
	for t, events := range b.front {
		handlers := b.handlers[t]
		for _, ev := range events {
			for _, h := range handlers {
				// Safe: Subscribe and Emit key handlers and events by the
				// same concrete type.
				reflect.ValueOf(h).Call([]reflect.Value{reflect.ValueOf(ev)})
			}
		}
	}
}

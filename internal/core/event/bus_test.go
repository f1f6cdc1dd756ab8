package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingEvent struct{ N int }
type pongEvent struct{ N int }

func TestEmitIsDeferredUntilSwap(t *testing.T) {
	b := NewBus()

	var got []pingEvent
	Subscribe(b, func(ev pingEvent) { got = append(got, ev) })

	b.Emit(pingEvent{1})
	b.Emit(pingEvent{2})
	b.DispatchAll()
	assert.Empty(t, got, "events stay buffered until the tick boundary")

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []pingEvent{{1}, {2}}, got)
}

func TestSwapClearsNewBackBuffer(t *testing.T) {
	b := NewBus()

	var got []pingEvent
	Subscribe(b, func(ev pingEvent) { got = append(got, ev) })

	b.Emit(pingEvent{1})
	b.SwapBuffers()
	b.DispatchAll()

	// Next boundary: nothing new was emitted, nothing replays.
	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []pingEvent{{1}}, got)
}

func TestDispatchRoutesByConcreteType(t *testing.T) {
	b := NewBus()

	var pings, pongs int
	Subscribe(b, func(pingEvent) { pings++ })
	Subscribe(b, func(pongEvent) { pongs++ })

	b.Emit(pingEvent{})
	b.Emit(pongEvent{})
	b.Emit(pongEvent{})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, 1, pings)
	assert.Equal(t, 2, pongs)
}

func TestMultipleHandlersPerType(t *testing.T) {
	b := NewBus()

	var first, second int
	Subscribe(b, func(pingEvent) { first++ })
	Subscribe(b, func(pingEvent) { second++ })

	b.Emit(pingEvent{})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestEventEmittedDuringDispatchWaitsOneTick(t *testing.T) {
	b := NewBus()

	var pongs int
	Subscribe(b, func(pingEvent) { b.Emit(pongEvent{}) })
	Subscribe(b, func(pongEvent) { pongs++ })

	b.Emit(pingEvent{})
	b.SwapBuffers()
	b.DispatchAll()
	assert.Zero(t, pongs)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, 1, pongs)
}

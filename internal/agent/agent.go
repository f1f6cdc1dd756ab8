// Package agent owns agent records: identity, transform, behavior
// assignment, and per-agent scratch memory. Records are mutated only by the
// behavior executor during that agent's own tick.
package agent

import (
	"github.com/google/uuid"

	"github.com/waypost/engine/internal/nav"
)

// ID encodes a 32-bit directory slot in the lower bits and a 32-bit
// generation in the upper bits. The generation increments on Remove so stale
// ids held by callers stop resolving.
type ID uint64

func newID(index, generation uint32) ID {
	return ID(uint64(generation)<<32 | uint64(index))
}

func (id ID) Index() uint32      { return uint32(id) }
func (id ID) Generation() uint32 { return uint32(id >> 32) }
func (id ID) IsZero() bool       { return id == 0 }

// Definition is the spawn-time description of an agent.
type Definition struct {
	UID            uuid.UUID // external identity; zero value means auto-assign
	Name           string
	X, Y, Z        float64
	Heading        float64
	Speed          float64
	Health         float64
	InteractRadius float64
	TreeID         string
}

// Agent is one live agent record.
type Agent struct {
	ID             ID
	UID            uuid.UUID
	Name           string
	X, Y, Z        float64
	Heading        float64 // radians, world XZ plane
	Speed          float64 // world units per second
	Health         float64
	InteractRadius float64
	TreeID         string

	Blackboard Blackboard

	// Cached movement path. Invalidated when the target cell or the grid
	// version changes; see the move actions in internal/behavior.
	Path        nav.Path
	PathIndex   int
	PathTarget  *nav.Cell
	PathVersion uint64
}

// ClearPath drops any cached path so the next movement action replans.
func (a *Agent) ClearPath() {
	a.Path = nil
	a.PathIndex = 0
	a.PathTarget = nil
}

// Snapshot is a read-only copy of the cross-agent-visible fields, taken at
// the start of a tick so queries like "nearest other agent" never observe
// another agent's mid-tick state.
type Snapshot struct {
	ID             ID
	UID            uuid.UUID
	Name           string
	X, Y, Z        float64
	Heading        float64
	Health         float64
	InteractRadius float64
}

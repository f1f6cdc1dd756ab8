package event

import "github.com/google/uuid"

// Discrete action events emitted by behavior nodes for the presentation
// layer. Positions are world-space; AgentID is the directory id at emit
// time.

// InteractionTriggered fires when an interact action succeeds inside the
// agent's interaction radius.
type InteractionTriggered struct {
	AgentID  uint64
	AgentUID uuid.UUID
	Target   string
	X, Z     float64
}

// AgentSpawned fires after a definition is instantiated, before the agent's
// first tick.
type AgentSpawned struct {
	AgentID  uint64
	AgentUID uuid.UUID
	Name     string
	X, Z     float64
}

// AgentRemoved fires at the tick barrier that applies a queued removal.
type AgentRemoved struct {
	AgentID  uint64
	AgentUID uuid.UUID
}

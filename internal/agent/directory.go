package agent

import "github.com/google/uuid"

// Directory owns all agent records for one simulation instance. Slots are
// recycled through a free list with generational ids, so a remove
// invalidates every outstanding ID without a lookup table scan.
//
// The directory is not internally synchronized: the orchestrator calls Spawn
// and flushes removals only between ticks.
type Directory struct {
	slots       []*Agent
	generations []uint32
	freeList    []uint32
	removeQueue []ID
}

func NewDirectory() *Directory {
	return &Directory{
		slots:       make([]*Agent, 0, 64),
		generations: make([]uint32, 0, 64),
		freeList:    make([]uint32, 0, 16),
	}
}

// Spawn creates an agent from a definition and returns its id.
func (d *Directory) Spawn(def Definition) ID {
	uid := def.UID
	if uid == uuid.Nil {
		uid = uuid.New()
	}
	var idx uint32
	if n := len(d.freeList); n > 0 {
		idx = d.freeList[n-1]
		d.freeList = d.freeList[:n-1]
	} else {
		idx = uint32(len(d.slots))
		d.slots = append(d.slots, nil)
		d.generations = append(d.generations, 0)
	}
	id := newID(idx, d.generations[idx])
	d.slots[idx] = &Agent{
		ID:             id,
		UID:            uid,
		Name:           def.Name,
		X:              def.X,
		Y:              def.Y,
		Z:              def.Z,
		Heading:        def.Heading,
		Speed:          def.Speed,
		Health:         def.Health,
		InteractRadius: def.InteractRadius,
		TreeID:         def.TreeID,
	}
	return id
}

// Get resolves an id to a live agent. Stale ids (removed slots, old
// generations) return false.
func (d *Directory) Get(id ID) (*Agent, bool) {
	idx := id.Index()
	if int(idx) >= len(d.slots) || d.generations[idx] != id.Generation() {
		return nil, false
	}
	a := d.slots[idx]
	if a == nil {
		return nil, false
	}
	return a, true
}

// Remove destroys the agent immediately and bumps the slot generation.
// Must not be called while a tick is in progress; use MarkRemove for that.
func (d *Directory) Remove(id ID) {
	idx := id.Index()
	if int(idx) >= len(d.slots) || d.generations[idx] != id.Generation() || d.slots[idx] == nil {
		return
	}
	d.slots[idx] = nil
	d.generations[idx]++
	d.freeList = append(d.freeList, idx)
}

// MarkRemove queues a removal to be applied at the tick barrier, so a tick
// already in progress never observes the agent disappearing mid-iteration.
func (d *Directory) MarkRemove(id ID) {
	d.removeQueue = append(d.removeQueue, id)
}

// FlushRemovals applies queued removals. Called by the orchestrator at the
// end of each tick.
func (d *Directory) FlushRemovals() {
	for _, id := range d.removeQueue {
		d.Remove(id)
	}
	d.removeQueue = d.removeQueue[:0]
}

// Len returns the number of live agents.
func (d *Directory) Len() int {
	n := 0
	for _, a := range d.slots {
		if a != nil {
			n++
		}
	}
	return n
}

// Each visits live agents in slot order, which is stable between structural
// changes — ticking in Each order keeps runs deterministic.
func (d *Directory) Each(fn func(*Agent)) {
	for _, a := range d.slots {
		if a != nil {
			fn(a)
		}
	}
}

// Snapshot copies the cross-agent-visible fields of every live agent in slot
// order. Taken once at tick start and handed to behavior nodes for
// order-independent proximity queries.
func (d *Directory) Snapshot() []Snapshot {
	out := make([]Snapshot, 0, len(d.slots))
	for _, a := range d.slots {
		if a == nil {
			continue
		}
		out = append(out, Snapshot{
			ID:             a.ID,
			UID:            a.UID,
			Name:           a.Name,
			X:              a.X,
			Y:              a.Y,
			Z:              a.Z,
			Heading:        a.Heading,
			Health:         a.Health,
			InteractRadius: a.InteractRadius,
		})
	}
	return out
}

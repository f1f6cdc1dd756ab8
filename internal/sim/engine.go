// Package sim is the orchestrator: it owns one simulation instance's grid,
// behavior library, tree catalog, and agent directory, and advances all of
// them one logical tick at a time. Grid edits and agent removals are
// serialized at the tick barrier, so ticks never observe mid-tick mutations.
package sim

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/waypost/engine/internal/agent"
	"github.com/waypost/engine/internal/behavior"
	"github.com/waypost/engine/internal/core/event"
	"github.com/waypost/engine/internal/core/system"
	"github.com/waypost/engine/internal/nav"
)

// Engine drives one simulation instance. All methods are called from the
// simulation goroutine; intra-tick parallelism across agents is permitted by
// the data model (grid and library are read-only during ticks) but the
// default executor runs agents sequentially in directory order for
// reproducible runs.
type Engine struct {
	grid   *nav.Grid
	lib    *behavior.Library
	trees  map[string]*behavior.Tree
	dir    *agent.Directory
	exec   *behavior.Executor
	bus    *event.Bus
	runner *system.Runner
	log    *zap.Logger

	tick      uint64
	inTick    bool
	editQueue []func(*nav.Grid) error
	removals  []removal
	snapshot  []agent.Snapshot
}

type removal struct {
	id  agent.ID
	uid uuid.UUID
}

// New wires an engine around an existing grid and library. The library
// should already hold every action and condition the trees will reference.
func New(grid *nav.Grid, lib *behavior.Library, log *zap.Logger) *Engine {
	e := &Engine{
		grid:  grid,
		lib:   lib,
		trees: make(map[string]*behavior.Tree, 8),
		dir:   agent.NewDirectory(),
		exec:  behavior.NewExecutor(),
		bus:   event.NewBus(),
		log:   log,
	}
	r := system.NewRunner()
	r.Register(&barrierSystem{e})
	r.Register(&dispatchSystem{e})
	r.Register(&snapshotSystem{e})
	r.Register(&behaviorSystem{e})
	r.Register(&cleanupSystem{e})
	e.runner = r
	return e
}

func (e *Engine) Grid() *nav.Grid            { return e.grid }
func (e *Engine) Library() *behavior.Library { return e.lib }
func (e *Engine) Agents() *agent.Directory   { return e.dir }
func (e *Engine) Bus() *event.Bus            { return e.bus }
func (e *Engine) TickCount() uint64          { return e.tick }

// AddTree compiles and validates a tree definition. Compilation failures are
// fatal configuration errors; a malformed tree never reaches tick execution.
func (e *Engine) AddTree(id string, def behavior.NodeDef) error {
	if _, exists := e.trees[id]; exists {
		return fmt.Errorf("%w: tree %q", behavior.ErrDuplicateName, id)
	}
	tree, err := behavior.Compile(id, def, e.lib)
	if err != nil {
		return err
	}
	e.trees[id] = tree
	return nil
}

// Tree looks up a compiled tree by id.
func (e *Engine) Tree(id string) (*behavior.Tree, bool) {
	t, ok := e.trees[id]
	return t, ok
}

// Spawn instantiates an agent definition. The assigned tree must already be
// loaded. Call between ticks only.
func (e *Engine) Spawn(def agent.Definition) (agent.ID, error) {
	if _, ok := e.trees[def.TreeID]; !ok {
		return 0, fmt.Errorf("%w: tree %q", behavior.ErrNotFound, def.TreeID)
	}
	id := e.dir.Spawn(def)
	a, _ := e.dir.Get(id)
	e.bus.Emit(event.AgentSpawned{
		AgentID:  uint64(id),
		AgentUID: a.UID,
		Name:     a.Name,
		X:        a.X,
		Z:        a.Z,
	})
	return id, nil
}

// Remove queues an agent for removal at the next tick barrier. A tick
// already in progress for that agent never observes the removal.
func (e *Engine) Remove(id agent.ID) {
	a, ok := e.dir.Get(id)
	if !ok {
		return
	}
	e.removals = append(e.removals, removal{id: id, uid: a.UID})
}

// EditGrid mutates the grid through fn. Between ticks the edit applies
// immediately and its error returns synchronously; during a tick it is
// queued for the next barrier and barrier-time failures are logged.
func (e *Engine) EditGrid(fn func(*nav.Grid) error) error {
	if e.inTick {
		e.editQueue = append(e.editQueue, fn)
		return nil
	}
	return fn(e.grid)
}

// Tick advances the simulation one step. dt is the simulated frame delta in
// seconds.
func (e *Engine) Tick(dt float64) {
	e.inTick = true
	e.runner.Tick(dt)
	e.inTick = false
	e.tick++
}

// ---------- Tick systems ----------

// barrierSystem applies grid edits queued during the previous tick.
type barrierSystem struct{ e *Engine }

func (s *barrierSystem) Phase() system.Phase { return system.PhaseBarrier }

func (s *barrierSystem) Update(_ float64) {
	for _, fn := range s.e.editQueue {
		if err := fn(s.e.grid); err != nil {
			s.e.log.Warn("queued grid edit failed", zap.Error(err))
		}
	}
	s.e.editQueue = s.e.editQueue[:0]
}

// dispatchSystem publishes last tick's events to subscribers.
type dispatchSystem struct{ e *Engine }

func (s *dispatchSystem) Phase() system.Phase { return system.PhaseDispatch }

func (s *dispatchSystem) Update(_ float64) {
	s.e.bus.SwapBuffers()
	s.e.bus.DispatchAll()
}

// snapshotSystem captures start-of-tick read-only agent copies so
// cross-agent queries are order-independent.
type snapshotSystem struct{ e *Engine }

func (s *snapshotSystem) Phase() system.Phase { return system.PhaseSnapshot }

func (s *snapshotSystem) Update(_ float64) {
	s.e.snapshot = s.e.dir.Snapshot()
}

// behaviorSystem ticks one tree per agent in directory order.
type behaviorSystem struct{ e *Engine }

func (s *behaviorSystem) Phase() system.Phase { return system.PhaseBehavior }

func (s *behaviorSystem) Update(dt float64) {
	e := s.e
	e.dir.Each(func(a *agent.Agent) {
		tree, ok := e.trees[a.TreeID]
		if !ok {
			// Spawn validates tree ids; hitting this means the catalog
			// changed under a live agent.
			e.log.Error("agent references unknown tree",
				zap.Uint64("agent", uint64(a.ID)),
				zap.String("tree", a.TreeID))
			return
		}
		ctx := &behavior.Context{
			Agent:  a,
			Dt:     dt,
			Grid:   e.grid,
			Agents: e.snapshot,
			Emit:   e.bus.Emit,
		}
		e.exec.Tick(tree, ctx)
	})
}

// cleanupSystem flushes queued removals at the end of the tick.
type cleanupSystem struct{ e *Engine }

func (s *cleanupSystem) Phase() system.Phase { return system.PhaseCleanup }

func (s *cleanupSystem) Update(_ float64) {
	e := s.e
	for _, r := range e.removals {
		e.dir.Remove(r.id)
		e.bus.Emit(event.AgentRemoved{AgentID: uint64(r.id), AgentUID: r.uid})
	}
	e.removals = e.removals[:0]
}

package system

// Phase defines execution ordering within a single simulation tick.
type Phase int

const (
	PhaseBarrier  Phase = iota // 0: apply queued grid edits and deferred mutations
	PhaseDispatch              // 1: swap event buffers, deliver last tick's events
	PhaseSnapshot              // 2: capture read-only agent snapshots
	PhaseBehavior              // 3: tick one behavior tree per agent
	PhaseCleanup               // 4: flush queued agent removals
)

// System is the interface every tick system implements. Update receives the
// frame delta in seconds.
type System interface {
	Phase() Phase
	Update(dt float64)
}

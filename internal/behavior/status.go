// Package behavior implements the behavior-tree layer: a named library of
// actions, conditions and decorators, an arena-backed tree representation
// validated at load time, and the executor that ticks one tree per agent per
// simulation step.
package behavior

// Status is the tri-state result of ticking a node. Running means the node
// requested suspension until the next tick; execution resumes at the same
// node instead of restarting.
type Status uint8

const (
	Success Status = iota
	Failure
	Running
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

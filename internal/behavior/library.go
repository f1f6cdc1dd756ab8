package behavior

import (
	"errors"
	"fmt"

	"github.com/waypost/engine/internal/agent"
	"github.com/waypost/engine/internal/nav"
)

// Sentinel errors for library registration and tree loading.
var (
	ErrDuplicateName = errors.New("behavior: name already registered")
	ErrNotFound      = errors.New("behavior: name not registered")
	ErrSchema        = errors.New("behavior: malformed tree definition")
)

// Params is the per-node parameter payload from the tree definition.
type Params map[string]any

// Float reads a numeric parameter, accepting the types YAML and Lua produce.
func (p Params) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// String reads a string parameter.
func (p Params) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

// Context carries everything a leaf may consult during one tick: the agent
// being ticked, its node parameters, the frame delta, the read-only grid,
// the start-of-tick agent snapshot, and an event sink for discrete action
// output. Collaborators are passed in explicitly — there are no ambient
// singletons.
type Context struct {
	Agent  *agent.Agent
	Params Params
	Dt     float64
	Grid   *nav.Grid
	Agents []agent.Snapshot
	Emit   func(event any)
}

// ActionFunc is a named action: a pure function of (agent, parameters)
// returning Success, Failure, or Running.
type ActionFunc func(*Context) Status

// ConditionFunc is a named condition. Conditions never suspend; the executor
// maps true to Success and false to Failure.
type ConditionFunc func(*Context) bool

// Library is the catalog of named actions and conditions usable inside
// trees. Registration happens once at startup; the library is read-only
// during ticks and may be shared freely across parallel workers.
type Library struct {
	actions    map[string]ActionFunc
	conditions map[string]ConditionFunc
}

func NewLibrary() *Library {
	return &Library{
		actions:    make(map[string]ActionFunc, 16),
		conditions: make(map[string]ConditionFunc, 16),
	}
}

func (l *Library) RegisterAction(name string, fn ActionFunc) error {
	if _, exists := l.actions[name]; exists {
		return fmt.Errorf("%w: action %q", ErrDuplicateName, name)
	}
	l.actions[name] = fn
	return nil
}

func (l *Library) RegisterCondition(name string, fn ConditionFunc) error {
	if _, exists := l.conditions[name]; exists {
		return fmt.Errorf("%w: condition %q", ErrDuplicateName, name)
	}
	l.conditions[name] = fn
	return nil
}

// Action resolves a registered action. A miss is a configuration error the
// tree loader surfaces as a schema failure — never swallowed at tick time.
func (l *Library) Action(name string) (ActionFunc, error) {
	fn, ok := l.actions[name]
	if !ok {
		return nil, fmt.Errorf("%w: action %q", ErrNotFound, name)
	}
	return fn, nil
}

func (l *Library) Condition(name string) (ConditionFunc, error) {
	fn, ok := l.conditions[name]
	if !ok {
		return nil, fmt.Errorf("%w: condition %q", ErrNotFound, name)
	}
	return fn, nil
}

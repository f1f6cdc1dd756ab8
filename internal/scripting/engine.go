// Package scripting bridges Lua-defined actions and conditions into the
// behavior library. Scripts call register_action(name, fn) and
// register_condition(name, fn) at load time; the registered functions are
// then invoked from behavior trees like any built-in leaf.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/waypost/engine/internal/behavior"
)

// Engine wraps a single gopher-lua VM. Single-goroutine access only
// (tick loop); leaf calls happen inside the behavior phase.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger

	actions    map[string]*lua.LFunction
	conditions map[string]*lua.LFunction

	// current is the context of the leaf call in flight, reachable from
	// the bb_get/bb_set globals.
	current *behavior.Context
}

// NewEngine creates a Lua engine and loads all .lua files from the given
// directory. A missing directory is not an error; scripting is optional.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:         vm,
		log:        log,
		actions:    make(map[string]*lua.LFunction),
		conditions: make(map[string]*lua.LFunction),
	}
	e.installGlobals()

	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// installGlobals exposes the registration and blackboard API to scripts.
func (e *Engine) installGlobals() {
	e.vm.SetGlobal("register_action", e.vm.NewFunction(func(l *lua.LState) int {
		name := l.CheckString(1)
		fn := l.CheckFunction(2)
		e.actions[name] = fn
		return 0
	}))
	e.vm.SetGlobal("register_condition", e.vm.NewFunction(func(l *lua.LState) int {
		name := l.CheckString(1)
		fn := l.CheckFunction(2)
		e.conditions[name] = fn
		return 0
	}))
	e.vm.SetGlobal("bb_get", e.vm.NewFunction(func(l *lua.LState) int {
		key := l.CheckString(1)
		if e.current == nil {
			l.Push(lua.LNil)
			return 1
		}
		v, ok := e.current.Agent.Blackboard.Get(key)
		if !ok {
			l.Push(lua.LNil)
			return 1
		}
		l.Push(goToLua(v))
		return 1
	}))
	e.vm.SetGlobal("bb_set", e.vm.NewFunction(func(l *lua.LState) int {
		key := l.CheckString(1)
		val := l.CheckAny(2)
		if e.current != nil {
			e.current.Agent.Blackboard.Set(key, luaToGo(val))
		}
		return 0
	}))
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Bind registers every Lua-defined action and condition into the library.
// Scripted names must not collide with built-ins.
func (e *Engine) Bind(lib *behavior.Library) error {
	for name, fn := range e.actions {
		if err := lib.RegisterAction(name, e.actionFunc(name, fn)); err != nil {
			return err
		}
	}
	for name, fn := range e.conditions {
		if err := lib.RegisterCondition(name, e.conditionFunc(name, fn)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) actionFunc(name string, fn *lua.LFunction) behavior.ActionFunc {
	return func(ctx *behavior.Context) behavior.Status {
		e.current = ctx
		defer func() { e.current = nil }()

		if err := e.vm.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, e.contextTable(ctx)); err != nil {
			e.log.Error("lua action error", zap.String("action", name), zap.Error(err))
			return behavior.Failure
		}
		result := e.vm.Get(-1)
		e.vm.Pop(1)

		switch lua.LVAsString(result) {
		case "success":
			return behavior.Success
		case "running":
			return behavior.Running
		default:
			return behavior.Failure
		}
	}
}

func (e *Engine) conditionFunc(name string, fn *lua.LFunction) behavior.ConditionFunc {
	return func(ctx *behavior.Context) bool {
		e.current = ctx
		defer func() { e.current = nil }()

		if err := e.vm.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, e.contextTable(ctx)); err != nil {
			e.log.Error("lua condition error", zap.String("condition", name), zap.Error(err))
			return false
		}
		result := e.vm.Get(-1)
		e.vm.Pop(1)
		return result == lua.LTrue
	}
}

// contextTable packs the leaf context into a Lua table.
func (e *Engine) contextTable(ctx *behavior.Context) *lua.LTable {
	t := e.vm.NewTable()

	ag := e.vm.NewTable()
	ag.RawSetString("id", lua.LNumber(ctx.Agent.ID))
	ag.RawSetString("name", lua.LString(ctx.Agent.Name))
	ag.RawSetString("x", lua.LNumber(ctx.Agent.X))
	ag.RawSetString("y", lua.LNumber(ctx.Agent.Y))
	ag.RawSetString("z", lua.LNumber(ctx.Agent.Z))
	ag.RawSetString("heading", lua.LNumber(ctx.Agent.Heading))
	ag.RawSetString("speed", lua.LNumber(ctx.Agent.Speed))
	ag.RawSetString("health", lua.LNumber(ctx.Agent.Health))
	t.RawSetString("agent", ag)

	params := e.vm.NewTable()
	for k, v := range ctx.Params {
		params.RawSetString(k, goToLua(v))
	}
	t.RawSetString("params", params)

	t.RawSetString("dt", lua.LNumber(ctx.Dt))
	return t
}

// goToLua converts the value types that appear in params and blackboards.
func goToLua(v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	default:
		return lua.LString(fmt.Sprint(x))
	}
}

func luaToGo(v lua.LValue) any {
	switch x := v.(type) {
	case lua.LBool:
		return bool(x)
	case lua.LNumber:
		return float64(x)
	case lua.LString:
		return string(x)
	default:
		return nil
	}
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}

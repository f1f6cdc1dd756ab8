package behavior

import (
	"math"
	"math/rand"

	"github.com/waypost/engine/internal/core/event"
)

// waypointEpsilonFactor scales the grid cell size into the arrival epsilon
// used when switching path waypoints.
const waypointEpsilonFactor = 0.1

// RegisterBuiltins installs the stock movement and interaction leaves. Called
// once at startup, before any Lua-scripted registrations.
func RegisterBuiltins(lib *Library) error {
	actions := map[string]ActionFunc{
		"move":     actionMove,
		"wait":     actionWait,
		"interact": actionInteract,
		"wander":   actionWander,
	}
	conditions := map[string]ConditionFunc{
		"distance":     conditionDistance,
		"health_below": conditionHealthBelow,
	}
	for name, fn := range actions {
		if err := lib.RegisterAction(name, fn); err != nil {
			return err
		}
	}
	for name, fn := range conditions {
		if err := lib.RegisterCondition(name, fn); err != nil {
			return err
		}
	}
	return nil
}

// resolveTarget finds the world position a node is aimed at, in priority
// order: explicit x/z parameters, a named agent from the start-of-tick
// snapshot, then the agent's own blackboard target.
func resolveTarget(ctx *Context) (x, z float64, ok bool) {
	if px, okx := ctx.Params.Float("x"); okx {
		if pz, okz := ctx.Params.Float("z"); okz {
			return px, pz, true
		}
	}
	if name, okn := ctx.Params.String("target"); okn {
		for _, s := range ctx.Agents {
			if s.Name == name && s.ID != ctx.Agent.ID {
				return s.X, s.Z, true
			}
		}
		return 0, 0, false
	}
	tx, okx := ctx.Agent.Blackboard.GetFloat("target/x")
	tz, okz := ctx.Agent.Blackboard.GetFloat("target/z")
	if okx && okz {
		return tx, tz, true
	}
	return 0, 0, false
}

// actionMove walks the agent toward the resolved target along a grid path.
// The path is computed once when the target cell or grid version changes and
// cached on the agent; each tick advances speed×dt, switching waypoints
// within a small epsilon. Reaching the final waypoint yields Success; an
// unreachable target yields Failure.
func actionMove(ctx *Context) Status {
	tx, tz, ok := resolveTarget(ctx)
	if !ok {
		return Failure
	}
	a := ctx.Agent
	goal := ctx.Grid.NearestCell(tx, tz)

	if a.PathTarget != goal || a.PathVersion != ctx.Grid.Version() || a.Path == nil {
		start := ctx.Grid.NearestCell(a.X, a.Z)
		path, err := ctx.Grid.FindPathAStar(start, goal)
		if err != nil || len(path) == 0 {
			a.ClearPath()
			return Failure
		}
		a.Path = path
		a.PathIndex = 0
		a.PathTarget = goal
		a.PathVersion = ctx.Grid.Version()
	}

	epsilon := ctx.Grid.CellSize() * waypointEpsilonFactor
	budget := a.Speed * ctx.Dt
	for budget > 0 {
		wx, wz := ctx.Grid.Center(a.Path[a.PathIndex])
		dx, dz := wx-a.X, wz-a.Z
		dist := math.Hypot(dx, dz)
		if dist > epsilon {
			a.Heading = math.Atan2(dz, dx)
		}
		if dist <= epsilon {
			if a.PathIndex == len(a.Path)-1 {
				a.ClearPath()
				return Success
			}
			a.PathIndex++
			continue
		}
		if budget >= dist {
			a.X, a.Z = wx, wz
			budget -= dist
			continue
		}
		a.X += dx / dist * budget
		a.Z += dz / dist * budget
		budget = 0
	}
	return Running
}

// actionWait suspends for a "seconds" parameter, accumulating elapsed time
// in the blackboard.
func actionWait(ctx *Context) Status {
	seconds, ok := ctx.Params.Float("seconds")
	if !ok || seconds <= 0 {
		return Success
	}
	elapsed, _ := ctx.Agent.Blackboard.GetFloat("wait/elapsed")
	elapsed += ctx.Dt
	if elapsed >= seconds {
		ctx.Agent.Blackboard.Delete("wait/elapsed")
		return Success
	}
	ctx.Agent.Blackboard.Set("wait/elapsed", elapsed)
	return Running
}

// actionInteract triggers a discrete interaction event when the target is
// inside the agent's interaction radius. The presentation layer renders or
// narrates the event; the engine only reports it.
func actionInteract(ctx *Context) Status {
	tx, tz, ok := resolveTarget(ctx)
	if !ok {
		return Failure
	}
	a := ctx.Agent
	if math.Hypot(tx-a.X, tz-a.Z) > a.InteractRadius {
		return Failure
	}
	name, _ := ctx.Params.String("target")
	if ctx.Emit != nil {
		ctx.Emit(event.InteractionTriggered{
			AgentID:  uint64(a.ID),
			AgentUID: a.UID,
			Target:   name,
			X:        tx,
			Z:        tz,
		})
	}
	return Success
}

// actionWander picks a random walkable cell within a "radius" parameter
// (world units, default 4 cells) and stores it as the blackboard target,
// then defers to the move action. Unreachable picks retry next tick.
func actionWander(ctx *Context) Status {
	a := ctx.Agent
	if _, ok := a.Blackboard.GetFloat("wander/x"); !ok {
		radius, okr := ctx.Params.Float("radius")
		if !okr || radius <= 0 {
			radius = ctx.Grid.CellSize() * 4
		}
		angle := rand.Float64() * 2 * math.Pi
		dist := rand.Float64() * radius
		wx := a.X + math.Cos(angle)*dist
		wz := a.Z + math.Sin(angle)*dist
		if c := ctx.Grid.NearestCell(wx, wz); !c.Walkable {
			return Running
		}
		a.Blackboard.Set("wander/x", wx)
		a.Blackboard.Set("wander/z", wz)
	}

	wx, _ := a.Blackboard.GetFloat("wander/x")
	wz, _ := a.Blackboard.GetFloat("wander/z")
	status := moveToward(ctx, wx, wz)
	if status != Running {
		a.Blackboard.Delete("wander/x")
		a.Blackboard.Delete("wander/z")
	}
	return status
}

// moveToward is the shared movement core for actions that already resolved a
// position.
func moveToward(ctx *Context, tx, tz float64) Status {
	saved := ctx.Params
	ctx.Params = Params{"x": tx, "z": tz}
	status := actionMove(ctx)
	ctx.Params = saved
	return status
}

// conditionDistance is true when the agent is within "range" world units of
// the resolved target.
func conditionDistance(ctx *Context) bool {
	tx, tz, ok := resolveTarget(ctx)
	if !ok {
		return false
	}
	rng, ok := ctx.Params.Float("range")
	if !ok {
		return false
	}
	return math.Hypot(tx-ctx.Agent.X, tz-ctx.Agent.Z) <= rng
}

// conditionHealthBelow is true when health is under a "threshold" value.
func conditionHealthBelow(ctx *Context) bool {
	threshold, ok := ctx.Params.Float("threshold")
	if !ok {
		return false
	}
	return ctx.Agent.Health < threshold
}
